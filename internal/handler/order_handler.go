package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"shopline/internal/middleware"
	"shopline/internal/model"
	"shopline/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order and payment HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// CreatePayment handles POST /api/order/create-payment requests.
func (h *OrderHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	user := middleware.UserFrom(r)
	owner := ownerFromRequest(w, r)

	result, err := h.service.CreatePayment(r.Context(), owner, user, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"redirect_url": result.RedirectURL})
}

// ExecutePayment handles GET /api/order/execute-payment/{order_number}
// requests: the gateway return URL after buyer approval.
func (h *OrderHandler) ExecutePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderNumber := pathSuffix(r, "/api/order/execute-payment/")
	if orderNumber == "" {
		writeError(w, http.StatusBadRequest, "order number is required", h.logger)
		return
	}

	paymentID := r.URL.Query().Get("paymentId")
	payerID := r.URL.Query().Get("PayerID")

	if err := h.service.ExecutePayment(r.Context(), paymentID, payerID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "Payment successful!",
		"payment_id":   paymentID,
		"order_number": orderNumber,
	})
}

// AfterPayment handles GET /api/order/after-payment/{order_number} requests:
// the settlement trigger once the gateway has confirmed payment.
func (h *OrderHandler) AfterPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderNumber := pathSuffix(r, "/api/order/after-payment/")
	if orderNumber == "" {
		writeError(w, http.StatusBadRequest, "order number is required", h.logger)
		return
	}

	result, err := h.service.Settle(r.Context(), orderNumber)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if result.AlreadyPaid {
		writeJSON(w, http.StatusOK, map[string]string{"detail": "order already paid"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": "payment successfull"})
}

// CancelPayment handles GET /api/order/cancel-payment/{order_number} requests.
func (h *OrderHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderNumber := pathSuffix(r, "/api/order/cancel-payment/")
	if orderNumber == "" {
		writeError(w, http.StatusBadRequest, "order number is required", h.logger)
		return
	}

	if err := h.service.Cancel(r.Context(), orderNumber); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment cancelled by user."})
}

// UpdateOrder handles PATCH /api/order/update-order/{order_number} requests.
// Admin only.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	if !h.requireAdmin(w, r) {
		return
	}

	orderNumber := pathSuffix(r, "/api/order/update-order/")
	if orderNumber == "" {
		writeError(w, http.StatusBadRequest, "order number is required", h.logger)
		return
	}

	var patch model.OrderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if _, err := h.service.UpdateOrder(r.Context(), orderNumber, &patch); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": "Order updated"})
}

// AllOrders handles GET /api/order/all-orders requests. Admin only.
func (h *OrderHandler) AllOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	if !h.requireAdmin(w, r) {
		return
	}

	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"orders_list": orders})
}

// requireAdmin writes an error and returns false unless the request carries
// an admin account.
func (h *OrderHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	user := middleware.UserFrom(r)
	if user == nil {
		writeDomainError(w, model.ErrUnauthorised, h.logger)
		return false
	}
	if !user.IsAdmin {
		writeDomainError(w, model.ErrForbidden, h.logger)
		return false
	}
	return true
}

func pathSuffix(r *http.Request, prefix string) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
}
