package service

import (
	"context"
	"fmt"

	"shopline/internal/model"
	"shopline/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// AddItem adds quantity units of a product to the owner's cart.
func (s *cartService) AddItem(ctx context.Context, owner model.Owner, productID int64, quantity int) (int64, error) {
	if quantity < 1 {
		return 0, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to add item: %w", err)
	}
	if product == nil {
		return 0, model.ErrProductNotFound
	}

	// Advisory check only: stock is not reserved here and can change before
	// checkout. The binding check happens at settlement.
	if quantity > product.Quantity {
		s.logger.Warn().
			Int64("product_id", productID).
			Int("requested", quantity).
			Int("stock", product.Quantity).
			Msg("insufficient stock for add")
		return 0, model.ErrInsufficientStock
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to add item: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cart, err := s.cartRepo.GetByOwnerForUpdate(ctx, tx, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to add item: %w", err)
	}
	if cart == nil {
		cart, err = s.cartRepo.Create(ctx, tx, owner)
		if err != nil {
			return 0, fmt.Errorf("failed to add item: %w", err)
		}
	}

	item, err := s.cartRepo.GetItemForUpdate(ctx, tx, cart.ID, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to add item: %w", err)
	}

	if item != nil {
		err = s.cartRepo.UpdateItemQuantity(ctx, tx, item.ID, item.Quantity+quantity)
	} else {
		err = s.cartRepo.InsertItem(ctx, tx, &model.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		})
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add item: %w", err)
	}

	if err = s.cartRepo.AddToTotal(ctx, tx, cart.ID, product.Price*float64(quantity)); err != nil {
		return 0, fmt.Errorf("failed to add item: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to add item: %w", err)
	}

	s.logger.Info().
		Int64("cart_id", cart.ID).
		Int64("product_id", productID).
		Int("quantity", quantity).
		Stringer("owner", owner).
		Msg("product added to cart")

	return cart.ID, nil
}

// RemoveOneUnit removes exactly one unit of a product from the owner's cart.
// The running total always drops by one current unit price, whether the line
// is decremented or deleted.
func (s *cartService) RemoveOneUnit(ctx context.Context, owner model.Owner, productID int64) error {
	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cart, err := s.cartRepo.GetByOwnerForUpdate(ctx, tx, owner)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	if cart == nil {
		err = model.ErrCartNotFound
		return err
	}

	item, err := s.cartRepo.GetItemForUpdate(ctx, tx, cart.ID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	if item == nil {
		err = model.ErrCartItemNotFound
		return err
	}

	product, err := s.productRepo.GetByIDTx(ctx, tx, productID)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	if product == nil {
		err = model.ErrProductNotFound
		return err
	}

	if item.Quantity-1 == 0 {
		err = s.cartRepo.DeleteItem(ctx, tx, item.ID)
	} else {
		err = s.cartRepo.UpdateItemQuantity(ctx, tx, item.ID, item.Quantity-1)
	}
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if err = s.cartRepo.AddToTotal(ctx, tx, cart.ID, -product.Price); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	s.logger.Info().
		Int64("cart_id", cart.ID).
		Int64("product_id", productID).
		Msg("removed one unit from cart")

	return nil
}

// MergeCarts folds the session cart into the user's cart in one transaction.
// A user without a cart gets the session cart re-parented instead of copied.
func (s *cartService) MergeCarts(ctx context.Context, sessionID string, userID int64) error {
	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to merge carts: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	sessionCart, err := s.cartRepo.GetByOwnerForUpdate(ctx, tx, model.SessionOwner(sessionID))
	if err != nil {
		return fmt.Errorf("failed to merge carts: %w", err)
	}
	if sessionCart == nil {
		// Nothing to merge.
		return nil
	}

	userCart, err := s.cartRepo.GetByOwnerForUpdate(ctx, tx, model.UserOwner(userID))
	if err != nil {
		return fmt.Errorf("failed to merge carts: %w", err)
	}

	if userCart == nil {
		if err := s.cartRepo.Reparent(ctx, tx, sessionCart.ID, userID); err != nil {
			return fmt.Errorf("failed to merge carts: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to merge carts: %w", err)
		}
		committed = true

		s.logger.Info().
			Int64("cart_id", sessionCart.ID).
			Int64("user_id", userID).
			Msg("session cart re-parented to user")
		return nil
	}

	sessionItems, err := s.cartRepo.ListItemsForUpdate(ctx, tx, sessionCart.ID)
	if err != nil {
		return fmt.Errorf("failed to merge carts: %w", err)
	}

	for _, sessionItem := range sessionItems {
		userItem, err := s.cartRepo.GetItemForUpdate(ctx, tx, userCart.ID, sessionItem.ProductID)
		if err != nil {
			return fmt.Errorf("failed to merge carts: %w", err)
		}

		if userItem != nil {
			err = s.cartRepo.UpdateItemQuantity(ctx, tx, userItem.ID, userItem.Quantity+sessionItem.Quantity)
		} else {
			err = s.cartRepo.InsertItem(ctx, tx, &model.CartItem{
				CartID:    userCart.ID,
				ProductID: sessionItem.ProductID,
				Quantity:  sessionItem.Quantity,
			})
		}
		if err != nil {
			return fmt.Errorf("failed to merge carts: %w", err)
		}
	}

	if err := s.cartRepo.AddToTotal(ctx, tx, userCart.ID, sessionCart.TotalPrice); err != nil {
		return fmt.Errorf("failed to merge carts: %w", err)
	}

	if err := s.cartRepo.Delete(ctx, tx, sessionCart.ID); err != nil {
		return fmt.Errorf("failed to merge carts: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to merge carts: %w", err)
	}
	committed = true

	s.logger.Info().
		Int64("session_cart_id", sessionCart.ID).
		Int64("user_cart_id", userCart.ID).
		Int("items_merged", len(sessionItems)).
		Msg("carts merged")

	return nil
}

// ViewCart returns the owner's cart with live per-line product data. The
// stored running total and the live line prices may legitimately disagree
// when prices changed after items were added.
func (s *cartService) ViewCart(ctx context.Context, owner model.Owner) (*model.CartView, error) {
	cart, err := s.cartRepo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to view cart: %w", err)
	}
	if cart == nil {
		return nil, model.ErrCartNotFound
	}

	lines, err := s.cartRepo.ListLines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to view cart: %w", err)
	}

	return &model.CartView{
		CartID:     cart.ID,
		TotalPrice: cart.TotalPrice,
		Items:      lines,
	}, nil
}
