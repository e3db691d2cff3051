package repository

import (
	"context"
	"errors"

	"shopline/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetByID retrieves a single product by its ID. Returns (nil, nil) when
	// the product does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDTx retrieves a single product within the provided transaction.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error)

	// DecrementStock atomically subtracts qty from the product's stock within
	// the provided transaction. Returns model.ErrInsufficientStock when the
	// decrement would drive stock negative; no change is applied in that case.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID int64, qty int) error
}

// CartRepository defines the interface for cart data access operations.
// Mutating methods take a pgx.Tx so services can compose them into a single
// request-scoped transaction.
type CartRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetByOwner retrieves the owner's cart. Returns (nil, nil) when absent.
	GetByOwner(ctx context.Context, owner model.Owner) (*model.Cart, error)

	// GetByOwnerForUpdate retrieves the owner's cart with a row lock so
	// concurrent mutations of the same cart serialise.
	GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, owner model.Owner) (*model.Cart, error)

	// Create inserts an empty cart for the owner.
	Create(ctx context.Context, tx pgx.Tx, owner model.Owner) (*model.Cart, error)

	// GetItemForUpdate retrieves the (cart, product) line with a row lock.
	// Returns (nil, nil) when absent.
	GetItemForUpdate(ctx context.Context, tx pgx.Tx, cartID, productID int64) (*model.CartItem, error)

	// InsertItem inserts a new cart line.
	InsertItem(ctx context.Context, tx pgx.Tx, item *model.CartItem) error

	// UpdateItemQuantity sets the quantity of an existing line.
	UpdateItemQuantity(ctx context.Context, tx pgx.Tx, itemID int64, quantity int) error

	// DeleteItem removes a cart line.
	DeleteItem(ctx context.Context, tx pgx.Tx, itemID int64) error

	// ListItemsForUpdate retrieves all lines of a cart with row locks.
	ListItemsForUpdate(ctx context.Context, tx pgx.Tx, cartID int64) ([]model.CartItem, error)

	// CountItems returns the number of lines in a cart.
	CountItems(ctx context.Context, cartID int64) (int, error)

	// ListLines retrieves the display view of a cart: each line joined with
	// the current product name, price, stock and rating.
	ListLines(ctx context.Context, cartID int64) ([]model.CartLine, error)

	// AddToTotal applies a delta to the cart's running total.
	AddToTotal(ctx context.Context, tx pgx.Tx, cartID int64, delta float64) error

	// Reparent moves a session cart to a user: clears session_id, sets user_id.
	Reparent(ctx context.Context, tx pgx.Tx, cartID, userID int64) error

	// Delete removes a cart and, by cascade, its lines.
	Delete(ctx context.Context, tx pgx.Tx, cartID int64) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order and fills in its generated ID.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByNumber retrieves an order by its order number. Returns (nil, nil)
	// when absent.
	GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error)

	// GetByNumberForUpdate retrieves an order with a row lock, serialising
	// concurrent settlement attempts.
	GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, orderNumber string) (*model.Order, error)

	// MarkPaid flips the order's payment status to PAID.
	MarkPaid(ctx context.Context, tx pgx.Tx, orderID int64) error

	// UpdateStatus sets the fulfilment status of an order.
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	// DeleteByNumber removes an order. Returns false when no order matched.
	DeleteByNumber(ctx context.Context, orderNumber string) (bool, error)

	// CreateItems inserts order line items within the provided transaction.
	CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// ListAll retrieves every order, newest first.
	ListAll(ctx context.Context) ([]model.Order, error)

	// ListItems retrieves the line items of an order.
	ListItems(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}

// UserRepository defines the interface for account lookups. Account
// registration and login live in the external auth service.
type UserRepository interface {
	// GetByEmail retrieves a user by email. Returns (nil, nil) when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation, used to retry order-number generation on collision.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
