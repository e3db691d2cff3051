package repository

import (
	"context"
	"fmt"

	"shopline/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// ownerPredicate returns the WHERE column and argument for a cart owner.
// The column names are fixed strings, never caller input.
func ownerPredicate(owner model.Owner) (string, any, error) {
	if uid, ok := owner.UserID(); ok {
		return "user_id", uid, nil
	}
	if sid, ok := owner.SessionID(); ok {
		return "session_id", sid, nil
	}
	return "", nil, fmt.Errorf("owner is not set")
}

// GetByOwner retrieves the owner's cart.
func (r *cartRepository) GetByOwner(ctx context.Context, owner model.Owner) (*model.Cart, error) {
	return r.getByOwner(ctx, r.pool, owner, false)
}

// GetByOwnerForUpdate retrieves the owner's cart with a row lock.
func (r *cartRepository) GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, owner model.Owner) (*model.Cart, error) {
	return r.getByOwner(ctx, tx, owner, true)
}

func (r *cartRepository) getByOwner(ctx context.Context, q queryRower, owner model.Owner, forUpdate bool) (*model.Cart, error) {
	column, arg, err := ownerPredicate(owner)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, session_id, total_price, created_at, updated_at
		FROM carts
		WHERE %s = $1
	`, column)
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		cart      model.Cart
		userID    *int64
		sessionID *string
	)
	err = q.QueryRow(ctx, query, arg).Scan(
		&cart.ID,
		&userID,
		&sessionID,
		&cart.TotalPrice,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Stringer("owner", owner).Msg("cart not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Stringer("owner", owner).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	cart.Owner, err = model.OwnerFromColumns(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid cart owner state: %w", err)
	}

	return &cart, nil
}

// Create inserts an empty cart for the owner.
func (r *cartRepository) Create(ctx context.Context, tx pgx.Tx, owner model.Owner) (*model.Cart, error) {
	userID, sessionID := owner.Columns()
	if userID == nil && sessionID == nil {
		return nil, fmt.Errorf("owner is not set")
	}

	query := `
		INSERT INTO carts (user_id, session_id, total_price, created_at, updated_at)
		VALUES ($1, $2, 0, NOW(), NOW())
		RETURNING id, total_price, created_at, updated_at
	`

	cart := model.Cart{Owner: owner}
	err := tx.QueryRow(ctx, query, userID, sessionID).Scan(
		&cart.ID,
		&cart.TotalPrice,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Stringer("owner", owner).Msg("failed to create cart")
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	r.logger.Debug().Int64("cart_id", cart.ID).Stringer("owner", owner).Msg("cart created")

	return &cart, nil
}

// GetItemForUpdate retrieves the (cart, product) line with a row lock.
func (r *cartRepository) GetItemForUpdate(ctx context.Context, tx pgx.Tx, cartID, productID int64) (*model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
		FOR UPDATE
	`

	var item model.CartItem
	err := tx.QueryRow(ctx, query, cartID, productID).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Int64("cart_id", cartID).
			Int64("product_id", productID).
			Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}

	return &item, nil
}

// InsertItem inserts a new cart line and fills in its generated ID.
func (r *cartRepository) InsertItem(ctx context.Context, tx pgx.Tx, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query, item.CartID, item.ProductID, item.Quantity).Scan(&item.ID)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("cart_id", item.CartID).
			Int64("product_id", item.ProductID).
			Msg("failed to insert cart item")
		return fmt.Errorf("failed to insert cart item: %w", err)
	}

	return nil
}

// UpdateItemQuantity sets the quantity of an existing line.
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, tx pgx.Tx, itemID int64, quantity int) error {
	query := `UPDATE cart_items SET quantity = $2 WHERE id = $1`

	_, err := tx.Exec(ctx, query, itemID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Int64("item_id", itemID).Msg("failed to update cart item quantity")
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	return nil
}

// DeleteItem removes a cart line.
func (r *cartRepository) DeleteItem(ctx context.Context, tx pgx.Tx, itemID int64) error {
	query := `DELETE FROM cart_items WHERE id = $1`

	_, err := tx.Exec(ctx, query, itemID)
	if err != nil {
		r.logger.Error().Err(err).Int64("item_id", itemID).Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

// ListItemsForUpdate retrieves all lines of a cart with row locks.
func (r *cartRepository) ListItemsForUpdate(ctx context.Context, tx pgx.Tx, cartID int64) ([]model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Int64("cart_id", cartID).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// CountItems returns the number of lines in a cart.
func (r *cartRepository) CountItems(ctx context.Context, cartID int64) (int, error) {
	query := `SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, cartID).Scan(&count); err != nil {
		r.logger.Error().Err(err).Int64("cart_id", cartID).Msg("failed to count cart items")
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}

	return count, nil
}

// ListLines retrieves the display view of a cart. Name, price, stock and
// rating come from the current product record, not from add-time values.
func (r *cartRepository) ListLines(ctx context.Context, cartID int64) ([]model.CartLine, error) {
	query := `
		SELECT ci.product_id, p.name, p.quantity, p.price, p.avg_rating
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Int64("cart_id", cartID).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var line model.CartLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Quantity, &line.Price, &line.AvgRating); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart line row")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart line rows")
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

// AddToTotal applies a delta to the cart's running total.
func (r *cartRepository) AddToTotal(ctx context.Context, tx pgx.Tx, cartID int64, delta float64) error {
	query := `UPDATE carts SET total_price = total_price + $2, updated_at = NOW() WHERE id = $1`

	_, err := tx.Exec(ctx, query, cartID, delta)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("cart_id", cartID).
			Float64("delta", delta).
			Msg("failed to update cart total")
		return fmt.Errorf("failed to update cart total: %w", err)
	}

	return nil
}

// Reparent moves a session cart to a user. Clearing session_id and setting
// user_id in one statement keeps the owner XOR invariant intact.
func (r *cartRepository) Reparent(ctx context.Context, tx pgx.Tx, cartID, userID int64) error {
	query := `
		UPDATE carts
		SET user_id = $2, session_id = NULL, updated_at = NOW()
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query, cartID, userID)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("cart_id", cartID).
			Int64("user_id", userID).
			Msg("failed to reparent cart")
		return fmt.Errorf("failed to reparent cart: %w", err)
	}

	r.logger.Debug().Int64("cart_id", cartID).Int64("user_id", userID).Msg("cart reparented")

	return nil
}

// Delete removes a cart; its lines go with it via ON DELETE CASCADE.
func (r *cartRepository) Delete(ctx context.Context, tx pgx.Tx, cartID int64) error {
	query := `DELETE FROM carts WHERE id = $1`

	_, err := tx.Exec(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Int64("cart_id", cartID).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	r.logger.Debug().Int64("cart_id", cartID).Msg("cart deleted")

	return nil
}
