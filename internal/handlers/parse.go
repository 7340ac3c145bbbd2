package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cartdanawa/pricescan/internal/recognition"
)

// HandleParse is the recognition service endpoint. The body carries exactly
// one of text or a base64 image.
func (h *Handler) HandleParse(w http.ResponseWriter, r *http.Request) {
	var req recognition.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	hasText := strings.TrimSpace(req.Text) != ""
	hasImage := strings.TrimSpace(req.Image) != ""
	if hasText == hasImage {
		h.writeError(w, "Exactly one of text or image is required", http.StatusBadRequest)
		return
	}

	if h.service == nil {
		resp := recognition.ErrorResponse{Error: recognition.CredentialsMissing}
		if h.serviceErr != nil {
			resp.Message = h.serviceErr.Error()
		}
		slog.Error("Recognition service is not configured", "err", h.serviceErr)
		h.writeJSONStatus(w, http.StatusInternalServerError, resp)
		return
	}

	payload := recognition.TextPayload(req.Text)
	if hasImage {
		var err error
		payload, err = recognition.ImageFromDataURL(req.Image)
		if err != nil {
			h.writeError(w, "Invalid image: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	result, err := h.service.Recognize(r.Context(), payload)
	if err != nil {
		slog.Error("Recognition failed", "kind", payload.Kind, "err", err)
		h.writeJSONStatus(w, http.StatusBadGateway, recognition.ErrorResponse{Error: "Failed to parse text"})
		return
	}

	h.writeJSON(w, recognition.Response{ProductName: result.ProductName, Price: result.Price})
}
