package model

import "time"

// Product represents a catalogue product. Cart and order logic depend on two
// of its fields as of read time: Price (current, not historical) and Quantity
// (stock on hand).
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Price       float64   `json:"price" db:"price"`
	Category    string    `json:"category" db:"category"`
	Brand       string    `json:"brand,omitempty" db:"brand"`
	AvgRating   float64   `json:"avg_rating" db:"avg_rating"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
