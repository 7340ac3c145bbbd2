package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every API route on a fresh router
func (h *Handler) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthcheck", h.HandleHealthcheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/parse", h.HandleParse).Methods(http.MethodPost)

	api.HandleFunc("/sessions", h.HandleSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions", h.HandleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", h.HandleSessionDetail).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.HandleDeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/captures", h.HandleCapture).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/text", h.HandleText).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/frame", h.HandleFrame).Methods(http.MethodPut)

	api.HandleFunc("/cart", h.HandleCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", h.HandleClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/{id}", h.HandleUpdateCartItem).Methods(http.MethodPut)
	api.HandleFunc("/cart/{id}", h.HandleRemoveCartItem).Methods(http.MethodDelete)
	api.HandleFunc("/cart/{id}/quantity", h.HandleCartQuantity).Methods(http.MethodPost)

	api.HandleFunc("/history", h.HandleHistory).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := fmt.Fprintf(w, "OK\npending=%d sessions=%d\n", h.queue.Pending(), h.sessionStore.Len()); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}
