package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/game-store/internal/service"
	"github.com/sakif/game-store/internal/session"
)

// CartHandler serves the session cart. Add and remove are AJAX calls from
// the game pages; the cart page itself is plain HTML.
type CartHandler struct {
	cart   *service.CartService
	render *Renderer
	logger *slog.Logger
}

func NewCartHandler(cart *service.CartService, render *Renderer, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, render: render, logger: logger}
}

// HTTP: POST /add_to_cart/{id}
func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "game")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.cart.Add(r.Context(), session.FromContext(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// HTTP: POST /remove_from_cart/{id}
func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "game")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.cart.Remove(session.FromContext(r.Context()), id)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// HandleView renders the cart with its total at current prices.
//
// HTTP: GET, POST /cart
func (h *CartHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	view, err := h.cart.View(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, "cart", "Cart", view)
}
