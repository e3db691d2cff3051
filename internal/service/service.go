package service

import (
	"context"

	"shopline/internal/model"
)

// CartService defines operations on guest and user carts.
type CartService interface {
	// AddItem adds quantity units of a product to the owner's cart, creating
	// the cart lazily. Returns the cart id.
	AddItem(ctx context.Context, owner model.Owner, productID int64, quantity int) (int64, error)

	// RemoveOneUnit removes exactly one unit of a product from the owner's
	// cart, deleting the line when its quantity reaches zero.
	RemoveOneUnit(ctx context.Context, owner model.Owner, productID int64) error

	// MergeCarts folds the session cart into the user's cart. No-op when
	// there is nothing to merge.
	MergeCarts(ctx context.Context, sessionID string, userID int64) error

	// ViewCart returns the owner's cart with live per-line product data.
	ViewCart(ctx context.Context, owner model.Owner) (*model.CartView, error)
}

// CheckoutResult is the outcome of CreatePayment: the pending order plus the
// gateway approval URL the buyer is redirected to.
type CheckoutResult struct {
	Order       *model.Order
	RedirectURL string
}

// SettleResult reports whether settlement ran or was an idempotent no-op.
type SettleResult struct {
	OrderNumber string
	AlreadyPaid bool
}

// OrderService defines checkout, settlement and order administration.
type OrderService interface {
	// CreatePayment snapshots the owner's cart into a pending order and
	// registers the payment with the external gateway.
	CreatePayment(ctx context.Context, owner model.Owner, user *model.User, req *model.CheckoutRequest) (*CheckoutResult, error)

	// ExecutePayment confirms an approved payment at the gateway.
	ExecutePayment(ctx context.Context, paymentID, payerID string) error

	// Settle converts the paid order's cart contents into order line items,
	// decrements inventory and destroys the cart, atomically. Idempotent:
	// an already-paid order is a no-op success.
	Settle(ctx context.Context, orderNumber string) (*SettleResult, error)

	// Cancel deletes a pending order outright.
	Cancel(ctx context.Context, orderNumber string) error

	// UpdateOrder applies an admin partial update to an order.
	UpdateOrder(ctx context.Context, orderNumber string, patch *model.OrderPatch) (*model.Order, error)

	// ListOrders returns all orders with their purchased items.
	ListOrders(ctx context.Context) ([]model.OrderSummary, error)
}
