package model

import (
	"sort"
	"strings"
	"time"
)

// PaymentStatus tracks whether an order has been settled.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

// OrderStatus tracks fulfilment progress, mutated only by admins.
type OrderStatus string

const (
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
)

// Valid reports whether s is a known fulfilment status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderProcessing, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

// Order is the checkout shell created before payment. Line items are NOT
// created with the order: they are materialised at settlement time from
// whatever cart lines still exist at that moment. TotalPrice is a snapshot
// of the cart total taken at creation.
type Order struct {
	ID            int64         `json:"id" db:"id"`
	OrderNumber   string        `json:"order_number" db:"order_number"`
	Owner         Owner         `json:"-"`
	FullName      string        `json:"full_name" db:"full_name"`
	Street        string        `json:"street" db:"street"`
	City          string        `json:"city" db:"city"`
	State         string        `json:"state" db:"state"`
	ZipCode       string        `json:"zip_code" db:"zip_code"`
	Country       string        `json:"country" db:"country"`
	PhoneNumber   string        `json:"phone_number" db:"phone_number"`
	Email         string        `json:"email" db:"email"`
	TotalPrice    float64       `json:"total_price" db:"total_price"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	OrderStatus   OrderStatus   `json:"order_status" db:"order_status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// OrderItem is an immutable purchase record created at settlement. Price is
// the unit price times quantity, snapshot at settlement time. ProductID is
// nullable so the record survives product deletion.
type OrderItem struct {
	ID        int64   `json:"-" db:"id"`
	OrderID   int64   `json:"-" db:"order_id"`
	ProductID *int64  `json:"product_id" db:"product_id"`
	Name      string  `json:"name" db:"name"`
	Quantity  int     `json:"quantity" db:"quantity"`
	Price     float64 `json:"price" db:"price"`
}

// CheckoutRequest is the payload for POST /api/order/create-payment. Email
// may be empty for authenticated users, in which case the account email is
// used.
type CheckoutRequest struct {
	FullName    string `json:"full_name"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// Validate checks the shipping fields. The email requirement is enforced by
// the service, which can fall back to the account email.
func (r *CheckoutRequest) Validate() error {
	fields := map[string]string{
		"full_name":    r.FullName,
		"street":       r.Street,
		"city":         r.City,
		"state":        r.State,
		"zip_code":     r.ZipCode,
		"country":      r.Country,
		"phone_number": r.PhoneNumber,
	}
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return NewDomainError(ErrCodeMissingField, "missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

// OrderPatch is the explicit partial-update payload for PATCH
// /api/order/update-order. Each field distinguishes absent, null and value.
type OrderPatch struct {
	OrderStatus Optional[OrderStatus] `json:"order_status"`
}

// OrderSummary is the admin listing shape: an order with its purchased
// items nested.
type OrderSummary struct {
	Order
	Purchases []OrderItem `json:"purchases"`
}
