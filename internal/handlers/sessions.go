package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cartdanawa/pricescan/internal/scan"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.List()
	sessionList := make([]scan.SessionView, 0, len(sessions))
	for _, session := range sessions {
		sessionList = append(sessionList, session.View())
	}
	h.writeJSON(w, sessionList)
}

// HandleCreateSession opens a session. The body is optional; a positive
// auto_capture_ms re-triggers on the latest uploaded frame at that interval.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var request struct {
		AutoCaptureMS int64 `json:"auto_capture_ms"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.AutoCaptureMS < 0 {
		h.writeError(w, "auto_capture_ms must not be negative", http.StatusBadRequest)
		return
	}

	session := h.newSession()
	h.sessionStore.Set(session)
	if request.AutoCaptureMS > 0 {
		session.StartAutoCapture(time.Duration(request.AutoCaptureMS) * time.Millisecond)
	}
	slog.Info("Scan session opened", "session_id", session.ID, "auto_capture_ms", request.AutoCaptureMS)
	h.writeJSONStatus(w, http.StatusCreated, session.View())
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	h.writeJSON(w, session.View())
}

// HandleDeleteSession closes a session. Reopening starts with a clean dedup
// state; any request still in flight resolves without effect on the caller.
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	session, exists := h.sessionStore.Get(sessionID)
	if !exists || !h.sessionStore.Delete(sessionID) {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	session.Close()
	slog.Info("Scan session closed", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleText(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	var request struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, session.Text(r.Context(), request.Text))
}
