package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cartdanawa/pricescan/internal/capture"
	"github.com/cartdanawa/pricescan/internal/recognition"
)

// HandleCapture stores the uploaded frame as the session's latest frame and
// runs one scan cycle on it
func (h *Handler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	snap, err := h.readSnapshot(w, r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, session.Capture(r.Context(), snap))
}

// HandleFrame replaces the session's latest frame without scanning it.
// Auto-capture sessions pick it up on their next tick.
func (h *Handler) HandleFrame(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	snap, err := h.readSnapshot(w, r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	session.SetFrame(snap)
	h.writeJSON(w, session.View())
}

func (h *Handler) readSnapshot(w http.ResponseWriter, r *http.Request) (capture.Snapshot, error) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return h.snapshotFromJSON(w, r)
	}
	return h.snapshotFromForm(w, r)
}

func (h *Handler) snapshotFromJSON(w http.ResponseWriter, r *http.Request) (capture.Snapshot, error) {
	var request struct {
		Image    string           `json:"image"`
		Guide    capture.Rect     `json:"guide"`
		Viewport capture.Viewport `json:"viewport"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&request); err != nil {
		return capture.Snapshot{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if request.Image == "" {
		return capture.Snapshot{}, fmt.Errorf("image is required")
	}

	payload, err := recognition.ImageFromDataURL(request.Image)
	if err != nil {
		return capture.Snapshot{}, fmt.Errorf("invalid image: %w", err)
	}
	frame, err := capture.DecodeFrame(bytes.NewReader(payload.Image), h.clock.Now())
	if err != nil {
		return capture.Snapshot{}, err
	}
	return capture.Snapshot{Frame: frame, Guide: request.Guide, Viewport: request.Viewport}, nil
}

func (h *Handler) snapshotFromForm(w http.ResponseWriter, r *http.Request) (capture.Snapshot, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("frame")
	if err != nil {
		file, _, err = r.FormFile("file")
		if err != nil {
			return capture.Snapshot{}, fmt.Errorf("failed to read frame: %w", err)
		}
	}
	defer file.Close()

	fileData, err := io.ReadAll(file)
	if err != nil {
		return capture.Snapshot{}, fmt.Errorf("failed to read frame contents: %w", err)
	}
	frame, err := capture.DecodeFrame(bytes.NewReader(fileData), h.clock.Now())
	if err != nil {
		return capture.Snapshot{}, err
	}

	fields := map[string]float64{}
	for _, name := range []string{"guide_x", "guide_y", "guide_width", "guide_height", "viewport_width", "viewport_height"} {
		raw := strings.TrimSpace(r.FormValue(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return capture.Snapshot{}, fmt.Errorf("invalid %s: %q", name, raw)
		}
		fields[name] = v
	}

	return capture.Snapshot{
		Frame: frame,
		Guide: capture.Rect{
			X:      fields["guide_x"],
			Y:      fields["guide_y"],
			Width:  fields["guide_width"],
			Height: fields["guide_height"],
		},
		Viewport: capture.Viewport{Size: capture.Size{
			Width:  fields["viewport_width"],
			Height: fields["viewport_height"],
		}},
	}, nil
}
