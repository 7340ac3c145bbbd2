package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cartdanawa/pricescan/internal/cart"
	"github.com/cartdanawa/pricescan/internal/clock"
	"github.com/cartdanawa/pricescan/internal/dispatch"
	"github.com/cartdanawa/pricescan/internal/models"
	"github.com/cartdanawa/pricescan/internal/pricetag"
	"github.com/cartdanawa/pricescan/internal/scan"
	"github.com/cartdanawa/pricescan/internal/storage"
	"github.com/cartdanawa/pricescan/internal/store"
)

// maxUploadBytes caps frame uploads
const maxUploadBytes = 10 * 1024 * 1024

// Options configures a Handler
type Options struct {
	// Service backs /api/parse. Nil with ServiceErr set means the server has
	// no provider credentials.
	Service    *pricetag.Service
	ServiceErr error
	// Recognizer is what scan sessions submit to. Defaults to the local
	// service.
	Recognizer dispatch.Recognizer
	Spacing    time.Duration
	History    *store.ScanRepo
	Clock      clock.Clock
}

type Handler struct {
	sessionStore *storage.SessionStore
	cart         *cart.Cart
	queue        *dispatch.Queue
	service      *pricetag.Service
	serviceErr   error
	history      *store.ScanRepo
	clock        clock.Clock
}

func New(opts Options) *Handler {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	rec := opts.Recognizer
	if rec == nil {
		if opts.Service != nil {
			rec = pricetag.LocalFor(opts.Service)
		} else {
			rec = pricetag.Unconfigured(opts.ServiceErr)
		}
	}
	return &Handler{
		sessionStore: storage.New(),
		cart:         cart.New(),
		queue:        dispatch.New(rec, opts.Spacing, opts.Clock),
		service:      opts.Service,
		serviceErr:   opts.ServiceErr,
		history:      opts.History,
		clock:        opts.Clock,
	}
}

// Cart exposes the shared cart ledger
func (h *Handler) Cart() *cart.Cart {
	return h.cart
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message)
	}
	h.writeJSONStatus(w, code, map[string]string{"error": message})
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*scan.Session, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// newSession wires a session to the shared queue, the cart and, when
// configured, the scan history
func (h *Handler) newSession() *scan.Session {
	id := uuid.New().String()
	sink := scan.CartFunc(func(ctx context.Context, rec models.ScanRecord) {
		h.cart.Add(ctx, rec)
		if h.history != nil {
			h.history.Recorder(id)(ctx, rec)
		}
	})
	return scan.NewSession(id, h.queue, sink, h.clock)
}
