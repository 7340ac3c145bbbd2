package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cartdanawa/pricescan/internal/cart"
	"github.com/cartdanawa/pricescan/internal/models"
)

type cartResponse struct {
	Items []models.CartItem `json:"items"`
	Total int               `json:"total"`
}

func (h *Handler) cartSnapshot() cartResponse {
	return cartResponse{Items: h.cart.List(), Total: h.cart.Total()}
}

func (h *Handler) HandleCart(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.cartSnapshot())
}

func (h *Handler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	h.writeJSON(w, h.cartSnapshot())
}

func (h *Handler) HandleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name  string `json:"name"`
		Price int    `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.cart.Update(mux.Vars(r)["id"], request.Name, request.Price)
	if err != nil {
		h.writeCartError(w, err)
		return
	}
	h.writeJSON(w, item)
}

func (h *Handler) HandleCartQuantity(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.cart.UpdateQuantity(mux.Vars(r)["id"], request.Delta)
	if err != nil {
		h.writeCartError(w, err)
		return
	}
	h.writeJSON(w, item)
}

func (h *Handler) HandleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Remove(mux.Vars(r)["id"]); err != nil {
		h.writeCartError(w, err)
		return
	}
	h.writeJSON(w, h.cartSnapshot())
}

func (h *Handler) writeCartError(w http.ResponseWriter, err error) {
	if errors.Is(err, cart.ErrNotFound) {
		h.writeError(w, "Cart item not found", http.StatusNotFound)
		return
	}
	h.writeError(w, err.Error(), http.StatusInternalServerError)
}
