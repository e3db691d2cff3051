package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"shopline/internal/mail"
	"shopline/internal/model"
	"shopline/internal/payment"
	"shopline/internal/repository"

	"github.com/rs/zerolog"
)

// maxOrderNumberAttempts bounds retries when a generated order number
// collides with an existing one inside the same second.
const maxOrderNumberAttempts = 3

// orderService implements OrderService.
type orderService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	gateway      payment.Gateway
	mailer       mail.Sender
	callbackBase string
	now          func() time.Time
	logger       zerolog.Logger
}

// NewOrderService creates a new order service. callbackBase is the public
// base URL of this API, used to build the gateway return/cancel URLs.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	gateway payment.Gateway,
	mailer mail.Sender,
	callbackBase string,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		gateway:      gateway,
		mailer:       mailer,
		callbackBase: strings.TrimRight(callbackBase, "/"),
		now:          time.Now,
		logger:       logger.With().Str("service", "order").Logger(),
	}
}

// generateOrderNumber builds the human-facing order identifier: a
// second-precision timestamp plus a 4-digit random suffix.
func (s *orderService) generateOrderNumber() string {
	return fmt.Sprintf("%s-%04d", s.now().Format("20060102150405"), rand.Intn(10000))
}

// CreatePayment snapshots the owner's cart into a pending order and registers
// the payment with the gateway. The order insert and the gateway call share
// one transaction so a gateway rejection leaves no order behind.
func (s *orderService) CreatePayment(ctx context.Context, owner model.Owner, user *model.User, req *model.CheckoutRequest) (*CheckoutResult, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeInvalidJSON, "request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if email == "" && user != nil {
		email = user.Email
	}
	if email == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "missing required fields: email")
	}

	cart, err := s.cartRepo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	if cart == nil {
		return nil, model.ErrEmptyCart
	}
	count, err := s.cartRepo.CountItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	if count == 0 {
		return nil, model.ErrEmptyCart
	}

	order := &model.Order{
		Owner:         owner,
		FullName:      req.FullName,
		Street:        req.Street,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		Country:       req.Country,
		PhoneNumber:   req.PhoneNumber,
		Email:         email,
		TotalPrice:    cart.TotalPrice,
		PaymentStatus: model.PaymentUnpaid,
		OrderStatus:   model.OrderProcessing,
	}

	for attempt := 1; ; attempt++ {
		order.OrderNumber = s.generateOrderNumber()

		redirectURL, err := s.tryCreatePayment(ctx, order)
		if err == nil {
			s.logger.Info().
				Str("order_number", order.OrderNumber).
				Float64("total_price", order.TotalPrice).
				Stringer("owner", owner).
				Msg("payment created")
			return &CheckoutResult{Order: order, RedirectURL: redirectURL}, nil
		}

		if repository.IsUniqueViolation(err) && attempt < maxOrderNumberAttempts {
			s.logger.Warn().
				Str("order_number", order.OrderNumber).
				Int("attempt", attempt).
				Msg("order number collision, retrying")
			continue
		}

		if repository.IsUniqueViolation(err) {
			return nil, model.ErrOrderConflict
		}
		return nil, err
	}
}

// tryCreatePayment runs one order-insert-plus-gateway attempt in a single
// transaction.
func (s *orderService) tryCreatePayment(ctx context.Context, order *model.Order) (string, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create payment: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.Create(ctx, tx, order); err != nil {
		return "", err
	}

	redirectURL, gwErr := s.gateway.CreatePayment(ctx, payment.CreatePaymentRequest{
		Amount:      order.TotalPrice,
		Currency:    "USD",
		Description: "Payment for products in your cart.",
		ReturnURL:   s.callbackBase + "/api/order/execute-payment/" + order.OrderNumber,
		CancelURL:   s.callbackBase + "/api/order/cancel-payment/" + order.OrderNumber,
	})
	if gwErr != nil {
		s.logger.Error().Err(gwErr).Str("order_number", order.OrderNumber).Msg("gateway rejected payment")
		err = model.NewDomainError(model.ErrCodeGateway, gwErr.Error())
		return "", err
	}

	if err = tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to create payment: %w", err)
	}

	return redirectURL, nil
}

// ExecutePayment confirms an approved payment at the gateway.
func (s *orderService) ExecutePayment(ctx context.Context, paymentID, payerID string) error {
	if paymentID == "" || payerID == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "paymentId and PayerID are required")
	}

	if err := s.gateway.ExecutePayment(ctx, paymentID, payerID); err != nil {
		s.logger.Error().Err(err).Str("payment_id", paymentID).Msg("failed to execute payment")
		return model.NewDomainError(model.ErrCodeGateway, err.Error())
	}

	return nil
}

// Settle converts the order's cart contents into order line items, decrements
// inventory and destroys the cart, all in one transaction. The row lock on
// the order serialises duplicate gateway callbacks; the second caller sees
// PAID and returns without side effects.
func (s *orderService) Settle(ctx context.Context, orderNumber string) (*SettleResult, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to settle order: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetByNumberForUpdate(ctx, tx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to settle order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.PaymentStatus == model.PaymentPaid {
		s.logger.Info().Str("order_number", orderNumber).Msg("order already paid")
		return &SettleResult{OrderNumber: orderNumber, AlreadyPaid: true}, nil
	}

	cart, err := s.cartRepo.GetByOwnerForUpdate(ctx, tx, order.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to settle order: %w", err)
	}

	var orderItems []model.OrderItem
	if cart != nil {
		items, err := s.cartRepo.ListItemsForUpdate(ctx, tx, cart.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to settle order: %w", err)
		}

		for _, item := range items {
			product, err := s.productRepo.GetByIDTx(ctx, tx, item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("failed to settle order: %w", err)
			}
			if product == nil {
				return nil, fmt.Errorf("failed to settle order: product %d no longer exists", item.ProductID)
			}

			if err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				// Includes the would-go-negative rejection; everything done
				// so far rolls back.
				return nil, err
			}

			productID := item.ProductID
			orderItems = append(orderItems, model.OrderItem{
				OrderID:   order.ID,
				ProductID: &productID,
				Name:      product.Name,
				Quantity:  item.Quantity,
				Price:     product.Price * float64(item.Quantity),
			})

			if err := s.cartRepo.AddToTotal(ctx, tx, cart.ID, -product.Price*float64(item.Quantity)); err != nil {
				return nil, fmt.Errorf("failed to settle order: %w", err)
			}

			if err := s.cartRepo.DeleteItem(ctx, tx, item.ID); err != nil {
				return nil, fmt.Errorf("failed to settle order: %w", err)
			}
		}

		if err := s.orderRepo.CreateItems(ctx, tx, orderItems); err != nil {
			return nil, fmt.Errorf("failed to settle order: %w", err)
		}

		// The cart has served its purpose.
		if err := s.cartRepo.Delete(ctx, tx, cart.ID); err != nil {
			return nil, fmt.Errorf("failed to settle order: %w", err)
		}
	}

	if err := s.orderRepo.MarkPaid(ctx, tx, order.ID); err != nil {
		return nil, fmt.Errorf("failed to settle order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to settle order: %w", err)
	}
	committed = true

	s.logger.Info().
		Str("order_number", orderNumber).
		Int("item_count", len(orderItems)).
		Msg("order settled")

	// Notification happens after commit: a mail outage must not undo a paid
	// order.
	body := fmt.Sprintf("Your order is being processed we will update you on it. your order number is %s", orderNumber)
	if err := s.mailer.Send(ctx, order.Email, "Order", body); err != nil {
		s.logger.Warn().Err(err).Str("order_number", orderNumber).Msg("failed to notify buyer")
	}

	return &SettleResult{OrderNumber: orderNumber}, nil
}

// Cancel deletes a pending order outright. Nothing else to undo: creation
// touched neither cart nor inventory.
func (s *orderService) Cancel(ctx context.Context, orderNumber string) error {
	deleted, err := s.orderRepo.DeleteByNumber(ctx, orderNumber)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	if !deleted {
		return model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_number", orderNumber).Msg("order cancelled")
	return nil
}

// UpdateOrder applies an admin partial update. A field absent from the patch
// is left untouched; an explicit null is rejected.
func (s *orderService) UpdateOrder(ctx context.Context, orderNumber string, patch *model.OrderPatch) (*model.Order, error) {
	order, err := s.orderRepo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if patch == nil || !patch.OrderStatus.Set {
		return order, nil
	}
	if !patch.OrderStatus.Valid || !patch.OrderStatus.Value.Valid() {
		return nil, model.ErrInvalidStatus
	}

	status := patch.OrderStatus.Value
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	order.OrderStatus = status

	s.logger.Info().
		Str("order_number", orderNumber).
		Str("status", string(status)).
		Msg("order status updated")

	body := fmt.Sprintf("Your order is being %s.\norder number: %s", status, orderNumber)
	if err := s.mailer.Send(ctx, order.Email, "Update on order", body); err != nil {
		s.logger.Warn().Err(err).Str("order_number", orderNumber).Msg("failed to notify buyer")
	}

	return order, nil
}

// ListOrders returns all orders with their purchased items, newest first.
func (s *orderService) ListOrders(ctx context.Context) ([]model.OrderSummary, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	summaries := make([]model.OrderSummary, 0, len(orders))
	for _, order := range orders {
		items, err := s.orderRepo.ListItems(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list orders: %w", err)
		}
		summaries = append(summaries, model.OrderSummary{Order: order, Purchases: items})
	}

	return summaries, nil
}
