package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"shopline/internal/middleware"
	"shopline/internal/model"
	"shopline/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Add handles POST /api/cart/add requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if req.ProductID == 0 {
		writeError(w, http.StatusBadRequest, "Product ID is required", h.logger)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	owner := ownerFromRequest(w, r)

	cartID, err := h.service.AddItem(r.Context(), owner, req.ProductID, quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"detail":  "Product added to cart",
		"cart_id": cartID,
	})
}

// Remove handles DELETE /api/cart/remove/{product_id} requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/cart/remove/")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID < 1 {
		writeError(w, http.StatusBadRequest, "invalid product ID", h.logger)
		return
	}

	owner := ownerFromRequest(w, r)

	if err := h.service.RemoveOneUnit(r.Context(), owner, productID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": "Removed from cart"})
}

// Merge handles POST /api/cart/merge-carts requests. Authentication is
// required; the response is 200 even when there is nothing to merge.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	user := middleware.UserFrom(r)
	if user == nil {
		writeDomainError(w, model.ErrUnauthorised, h.logger)
		return
	}

	sessionID := sessionFromRequest(r)
	if sessionID == "" {
		writeJSON(w, http.StatusOK, map[string]string{"detail": "No session cart to merge"})
		return
	}

	if err := h.service.MergeCarts(r.Context(), sessionID, user.ID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart merged successfully"})
}

// View handles GET /api/cart/view-cart requests.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	owner := ownerFromRequest(w, r)

	view, err := h.service.ViewCart(r.Context(), owner)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	// Empty carts get a marker string where the items list would be.
	var items interface{} = view.Items
	if len(view.Items) == 0 {
		items = "Your cart is empty."
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cart_id":     view.CartID,
		"total_price": view.TotalPrice,
		"cart_items":  items,
	})
}
