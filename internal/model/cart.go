package model

import "time"

// Cart is the mutable pre-checkout collection of line items for one owner.
// TotalPrice is a running sum maintained incrementally at mutation time: adds
// apply +price*qty and removals apply -price using the product price current
// at that moment. It is never recomputed from live prices at read time.
type Cart struct {
	ID         int64     `json:"id" db:"id"`
	Owner      Owner     `json:"-"`
	TotalPrice float64   `json:"total_price" db:"total_price"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CartItem is a line in a cart. Unique per (cart, product): re-adding the
// same product increments Quantity instead of inserting a second row.
type CartItem struct {
	ID        int64 `json:"id" db:"id"`
	CartID    int64 `json:"cart_id" db:"cart_id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	Quantity  int   `json:"quantity" db:"quantity"`
}

// AddItemRequest is the payload for POST /api/cart/add. Quantity defaults to
// one when omitted.
type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

// CartLine is the per-line display snapshot returned by view-cart. It is
// re-derived from the current product record on every read, so Price and
// Quantity here track the live catalogue, not the values at add time.
// Quantity is the product's current stock, mirroring the legacy serialiser.
type CartLine struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	AvgRating   float64 `json:"avg_rating"`
}

// CartView is the response payload for GET /api/cart/view-cart.
type CartView struct {
	CartID     int64      `json:"cart_id"`
	TotalPrice float64    `json:"total_price"`
	Items      []CartLine `json:"-"`
}
