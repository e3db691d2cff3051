package repository

import (
	"context"
	"fmt"

	"shopline/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, order_number, user_id, session_id, full_name, street, city, state,
	zip_code, country, phone_number, email, total_price, payment_status, order_status, created_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new order within the provided transaction. A unique
// violation on order_number is returned as-is so the caller can retry with
// a fresh number (checked via IsUniqueViolation).
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	userID, sessionID := order.Owner.Columns()
	if userID == nil && sessionID == nil {
		return fmt.Errorf("order owner is not set")
	}

	query := `
		INSERT INTO orders (order_number, user_id, session_id, full_name, street, city, state,
			zip_code, country, phone_number, email, total_price, payment_status, order_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		order.OrderNumber,
		userID,
		sessionID,
		order.FullName,
		order.Street,
		order.City,
		order.State,
		order.ZipCode,
		order.Country,
		order.PhoneNumber,
		order.Email,
		order.TotalPrice,
		order.PaymentStatus,
		order.OrderStatus,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if !IsUniqueViolation(err) {
			r.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to create order")
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Msg("order created")

	return nil
}

// GetByNumber retrieves an order by its order number.
func (r *orderRepository) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return r.getByNumber(ctx, r.pool, orderNumber, false)
}

// GetByNumberForUpdate retrieves an order with a row lock.
func (r *orderRepository) GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, orderNumber string) (*model.Order, error) {
	return r.getByNumber(ctx, tx, orderNumber, true)
}

func (r *orderRepository) getByNumber(ctx context.Context, q queryRower, orderNumber string, forUpdate bool) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE order_number = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		order     model.Order
		userID    *int64
		sessionID *string
	)
	err := q.QueryRow(ctx, query, orderNumber).Scan(
		&order.ID,
		&order.OrderNumber,
		&userID,
		&sessionID,
		&order.FullName,
		&order.Street,
		&order.City,
		&order.State,
		&order.ZipCode,
		&order.Country,
		&order.PhoneNumber,
		&order.Email,
		&order.TotalPrice,
		&order.PaymentStatus,
		&order.OrderStatus,
		&order.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_number", orderNumber).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	order.Owner, err = model.OwnerFromColumns(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid order owner state: %w", err)
	}

	return &order, nil
}

// MarkPaid flips the order's payment status to PAID.
func (r *orderRepository) MarkPaid(ctx context.Context, tx pgx.Tx, orderID int64) error {
	query := `UPDATE orders SET payment_status = $2 WHERE id = $1`

	_, err := tx.Exec(ctx, query, orderID, model.PaymentPaid)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to mark order paid")
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	return nil
}

// UpdateStatus sets the fulfilment status of an order.
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	query := `UPDATE orders SET order_status = $2 WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, orderID, status)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("order_id", orderID).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	r.logger.Debug().
		Int64("order_id", orderID).
		Str("status", string(status)).
		Msg("order status updated")

	return nil
}

// DeleteByNumber removes an order.
func (r *orderRepository) DeleteByNumber(ctx context.Context, orderNumber string) (bool, error) {
	query := `DELETE FROM orders WHERE order_number = $1`

	tag, err := r.pool.Exec(ctx, query, orderNumber)
	if err != nil {
		r.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to delete order")
		return false, fmt.Errorf("failed to delete order: %w", err)
	}

	deleted := tag.RowsAffected() > 0
	if deleted {
		r.logger.Debug().Str("order_number", orderNumber).Msg("order deleted")
	}

	return deleted, nil
}

// CreateItems inserts order line items within the provided transaction.
func (r *orderRepository) CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (order_id, product_id, name, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.OrderID, item.ProductID, item.Name, item.Quantity, item.Price)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).
				Int64("order_id", items[i].OrderID).
				Str("name", items[i].Name).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().Int("count", len(items)).Msg("order items created")

	return nil
}

// ListAll retrieves every order, newest first.
func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var (
			order     model.Order
			userID    *int64
			sessionID *string
		)
		err := rows.Scan(
			&order.ID,
			&order.OrderNumber,
			&userID,
			&sessionID,
			&order.FullName,
			&order.Street,
			&order.City,
			&order.State,
			&order.ZipCode,
			&order.Country,
			&order.PhoneNumber,
			&order.Email,
			&order.TotalPrice,
			&order.PaymentStatus,
			&order.OrderStatus,
			&order.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.Owner, err = model.OwnerFromColumns(userID, sessionID)
		if err != nil {
			return nil, fmt.Errorf("invalid order owner state: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ListItems retrieves the line items of an order.
func (r *orderRepository) ListItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Quantity, &item.Price); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
