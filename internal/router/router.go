package router

import (
	"net/http"
	"strings"

	"shopline/internal/auth"
	"shopline/internal/handler"
	"shopline/internal/middleware"
	"shopline/internal/repository"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	verifier *auth.Verifier,
	users repository.UserRepository,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Cart handler function
	cartRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/cart/add":
			cartHandler.Add(w, r)
		case r.URL.Path == "/api/cart/merge-carts":
			cartHandler.Merge(w, r)
		case r.URL.Path == "/api/cart/view-cart":
			cartHandler.View(w, r)
		case strings.HasPrefix(r.URL.Path, "/api/cart/remove/"):
			cartHandler.Remove(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
	mux.HandleFunc("/api/cart/", cartRouteHandler)

	// Order handler function
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/order/create-payment":
			orderHandler.CreatePayment(w, r)
		case strings.HasPrefix(r.URL.Path, "/api/order/execute-payment/"):
			orderHandler.ExecutePayment(w, r)
		case strings.HasPrefix(r.URL.Path, "/api/order/after-payment/"):
			orderHandler.AfterPayment(w, r)
		case strings.HasPrefix(r.URL.Path, "/api/order/cancel-payment/"):
			orderHandler.CancelPayment(w, r)
		case strings.HasPrefix(r.URL.Path, "/api/order/update-order/"):
			orderHandler.UpdateOrder(w, r)
		case r.URL.Path == "/api/order/all-orders":
			orderHandler.AllOrders(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
	mux.HandleFunc("/api/order/", orderRouteHandler)

	// Apply middleware in order: Recovery -> Logging -> CORS -> Identity
	var h http.Handler = mux
	h = middleware.Identity(verifier, users, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
