package service

import (
	"context"
	"errors"
	"testing"

	"shopline/internal/model"
	"shopline/internal/payment"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validCheckoutRequest() *model.CheckoutRequest {
	return &model.CheckoutRequest{
		FullName:    "Ada Lovelace",
		Street:      "12 Analytical Way",
		City:        "London",
		State:       "LDN",
		ZipCode:     "E1 6AN",
		Country:     "UK",
		PhoneNumber: "+44 20 7946 0000",
		Email:       "ada@example.com",
	}
}

func newTestOrderService(
	orderRepo *MockOrderRepository,
	cartRepo *MockCartRepository,
	productRepo *MockProductRepository,
	gateway *MockGateway,
	mailer *MockSender,
) OrderService {
	return NewOrderService(orderRepo, cartRepo, productRepo, gateway, mailer, "http://localhost:8080", zerolog.Nop())
}

func TestOrderService_CreatePayment_Success(t *testing.T) {
	ctx := context.Background()
	owner := model.UserOwner(42)
	cart := &model.Cart{ID: 3, Owner: owner, TotalPrice: 99.98}

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	mockGateway := new(MockGateway)
	mockMailer := new(MockSender)
	mockTx := new(MockTx)

	svc := newTestOrderService(mockOrderRepo, mockCartRepo, mockProductRepo, mockGateway, mockMailer)

	mockCartRepo.On("GetByOwner", ctx, owner).Return(cart, nil)
	mockCartRepo.On("CountItems", ctx, int64(3)).Return(2, nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("Create", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockGateway.On("CreatePayment", ctx, mock.MatchedBy(func(req payment.CreatePaymentRequest) bool {
		return req.Amount == 99.98 && req.Currency == "USD"
	})).Return("https://gateway.example/approve/abc", nil)
	mockTx.On("Commit", ctx).Return(nil)

	result, err := svc.CreatePayment(ctx, owner, nil, validCheckoutRequest())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "https://gateway.example/approve/abc", result.RedirectURL)
	assert.NotEmpty(t, result.Order.OrderNumber)
	assert.Equal(t, 99.98, result.Order.TotalPrice)
	assert.Equal(t, model.PaymentUnpaid, result.Order.PaymentStatus)
	assert.Equal(t, model.OrderProcessing, result.Order.OrderStatus)

	mockOrderRepo.AssertExpectations(t)
	mockGateway.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestOrderService_CreatePayment_MissingFields(t *testing.T) {
	ctx := context.Background()
	owner := model.UserOwner(42)

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)

	svc := newTestOrderService(mockOrderRepo, mockCartRepo, new(MockProductRepository), new(MockGateway), new(MockSender))

	req := validCheckoutRequest()
	req.Street = ""
	req.Country = ""

	result, err := svc.CreatePayment(ctx, owner, nil, req)

	require.Error(t, err)
	assert.Nil(t, result)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeMissingField, domainErr.Code)
	assert.Equal(t, "missing required fields: country, street", domainErr.Message)
	mockCartRepo.AssertNotCalled(t, "GetByOwner")
}

func TestOrderService_CreatePayment_EmailFallback(t *testing.T) {
	ctx := context.Background()
	owner := model.UserOwner(42)
	user := &model.User{ID: 42, Email: "account@example.com"}
	cart := &model.Cart{ID: 3, Owner: owner, TotalPrice: 10.00}

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)
	mockGateway := new(MockGateway)
	mockTx := new(MockTx)

	svc := newTestOrderService(mockOrderRepo, mockCartRepo, new(MockProductRepository), mockGateway, new(MockSender))

	mockCartRepo.On("GetByOwner", ctx, owner).Return(cart, nil)
	mockCartRepo.On("CountItems", ctx, int64(3)).Return(1, nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("Create", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockGateway.On("CreatePayment", ctx, mock.Anything).Return("https://gateway.example/approve", nil)
	mockTx.On("Commit", ctx).Return(nil)

	req := validCheckoutRequest()
	req.Email = ""

	result, err := svc.CreatePayment(ctx, owner, user, req)

	require.NoError(t, err)
	assert.Equal(t, "account@example.com", result.Order.Email)
}

func TestOrderService_CreatePayment_EmptyCart(t *testing.T) {
	ctx := context.Background()
	owner := model.SessionOwner("sess-1")

	t.Run("No cart", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		mockCartRepo := new(MockCartRepository)

		svc := newTestOrderService(mockOrderRepo, mockCartRepo, new(MockProductRepository), new(MockGateway), new(MockSender))

		mockCartRepo.On("GetByOwner", ctx, owner).Return(nil, nil)

		result, err := svc.CreatePayment(ctx, owner, nil, validCheckoutRequest())

		assert.Equal(t, model.ErrEmptyCart, err)
		assert.Nil(t, result)
	})

	t.Run("Cart with no lines", func(t *testing.T) {
		cart := &model.Cart{ID: 3, Owner: owner}

		mockOrderRepo := new(MockOrderRepository)
		mockCartRepo := new(MockCartRepository)

		svc := newTestOrderService(mockOrderRepo, mockCartRepo, new(MockProductRepository), new(MockGateway), new(MockSender))

		mockCartRepo.On("GetByOwner", ctx, owner).Return(cart, nil)
		mockCartRepo.On("CountItems", ctx, int64(3)).Return(0, nil)

		result, err := svc.CreatePayment(ctx, owner, nil, validCheckoutRequest())

		assert.Equal(t, model.ErrEmptyCart, err)
		assert.Nil(t, result)
		mockOrderRepo.AssertNotCalled(t, "BeginTx")
	})
}

func TestOrderService_CreatePayment_OrderNumberCollision(t *testing.T) {
	ctx := context.Background()
	owner := model.UserOwner(42)
	cart := &model.Cart{ID: 3, Owner: owner, TotalPrice: 10.00}
	uniqueViolation := &pgconn.PgError{Code: "23505"}

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)
	mockGateway := new(MockGateway)
	mockTx := new(MockTx)

	svc := newTestOrderService(mockOrderRepo, mockCartRepo, new(MockProductRepository), mockGateway, new(MockSender))

	mockCartRepo.On("GetByOwner", ctx, owner).Return(cart, nil)
	mockCartRepo.On("CountItems", ctx, int64(3)).Return(1, nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	// First attempt collides, second succeeds with a fresh number.
	mockOrderRepo.On("Create", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(uniqueViolation).Once()
	mockOrderRepo.On("Create", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil).Once()
	mockGateway.On("CreatePayment", ctx, mock.Anything).Return("https://gateway.example/approve", nil)
	mockTx.On("Rollback", ctx).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	result, err := svc.CreatePayment(ctx, owner, nil, validCheckoutRequest())

	require.NoError(t, err)
	require.NotNil(t, result)
	mockOrderRepo.AssertExpectations(t)
}

func TestOrderService_CreatePayment_CollisionsExhausted(t *testing.T) {
	ctx := context.Background()
	owner := model.UserOwner(42)
	cart := &model.Cart{ID: 3, Owner: owner, TotalPrice: 10.00}
	uniqueViolation := &pgconn.PgError{Code: "23505"}

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)
	mockTx := new(MockTx)

	svc := newTestOrderService(mockOrderRepo, mockCartRepo, new(MockProductRepository), new(MockGateway), new(MockSender))

	mockCartRepo.On("GetByOwner", ctx, owner).Return(cart, nil)
	mockCartRepo.On("CountItems", ctx, int64(3)).Return(1, nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("Create", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(uniqueViolation).Times(3)
	mockTx.On("Rollback", ctx).Return(nil)

	result, err := svc.CreatePayment(ctx, owner, nil, validCheckoutRequest())

	assert.Equal(t, model.ErrOrderConflict, err)
	assert.Nil(t, result)
	mockOrderRepo.AssertExpectations(t)
}

func TestOrderService_CreatePayment_GatewayRejection(t *testing.T) {
	ctx := context.Background()
	owner := model.UserOwner(42)
	cart := &model.Cart{ID: 3, Owner: owner, TotalPrice: 10.00}

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)
	mockGateway := new(MockGateway)
	mockTx := new(MockTx)

	svc := newTestOrderService(mockOrderRepo, mockCartRepo, new(MockProductRepository), mockGateway, new(MockSender))

	mockCartRepo.On("GetByOwner", ctx, owner).Return(cart, nil)
	mockCartRepo.On("CountItems", ctx, int64(3)).Return(1, nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("Create", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockGateway.On("CreatePayment", ctx, mock.Anything).Return("", errors.New("card declined"))
	mockTx.On("Rollback", ctx).Return(nil)

	result, err := svc.CreatePayment(ctx, owner, nil, validCheckoutRequest())

	require.Error(t, err)
	assert.Nil(t, result)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeGateway, domainErr.Code)

	// The rejected order must not survive.
	assert.True(t, mockTx.rolledBack)
	mockTx.AssertNotCalled(t, "Commit")
}

func TestOrderService_ExecutePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockGateway := new(MockGateway)
		svc := newTestOrderService(new(MockOrderRepository), new(MockCartRepository), new(MockProductRepository), mockGateway, new(MockSender))

		mockGateway.On("ExecutePayment", ctx, "PAY-123", "PAYER-456").Return(nil)

		err := svc.ExecutePayment(ctx, "PAY-123", "PAYER-456")

		require.NoError(t, err)
		mockGateway.AssertExpectations(t)
	})

	t.Run("Missing params", func(t *testing.T) {
		mockGateway := new(MockGateway)
		svc := newTestOrderService(new(MockOrderRepository), new(MockCartRepository), new(MockProductRepository), mockGateway, new(MockSender))

		err := svc.ExecutePayment(ctx, "", "PAYER-456")

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.ErrCodeMissingField, domainErr.Code)
		mockGateway.AssertNotCalled(t, "ExecutePayment")
	})

	t.Run("Gateway failure", func(t *testing.T) {
		mockGateway := new(MockGateway)
		svc := newTestOrderService(new(MockOrderRepository), new(MockCartRepository), new(MockProductRepository), mockGateway, new(MockSender))

		mockGateway.On("ExecutePayment", ctx, "PAY-123", "PAYER-456").Return(errors.New("gateway down"))

		err := svc.ExecutePayment(ctx, "PAY-123", "PAYER-456")

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.ErrCodeGateway, domainErr.Code)
	})
}

func TestOrderService_Settle_Success(t *testing.T) {
	ctx := context.Background()
	owner := model.UserOwner(42)

	order := &model.Order{
		ID:            17,
		OrderNumber:   "20260828120000-0042",
		Owner:         owner,
		Email:         "ada@example.com",
		TotalPrice:    35.00,
		PaymentStatus: model.PaymentUnpaid,
	}
	cart := &model.Cart{ID: 3, Owner: owner, TotalPrice: 35.00}
	items := []model.CartItem{
		{ID: 21, CartID: 3, ProductID: 1, Quantity: 2},
		{ID: 22, CartID: 3, ProductID: 2, Quantity: 1},
	}
	productOne := &model.Product{ID: 1, Name: "Keyboard", Price: 10.00, Quantity: 5}
	productTwo := &model.Product{ID: 2, Name: "Mouse", Price: 15.00, Quantity: 5}

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	mockMailer := new(MockSender)
	mockTx := new(MockTx)

	svc := newTestOrderService(mockOrderRepo, mockCartRepo, mockProductRepo, new(MockGateway), mockMailer)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByNumberForUpdate", ctx, mockTx, order.OrderNumber).Return(order, nil)
	mockCartRepo.On("GetByOwnerForUpdate", ctx, mockTx, owner).Return(cart, nil)
	mockCartRepo.On("ListItemsForUpdate", ctx, mockTx, int64(3)).Return(items, nil)

	mockProductRepo.On("GetByIDTx", ctx, mockTx, int64(1)).Return(productOne, nil)
	mockProductRepo.On("DecrementStock", ctx, mockTx, int64(1), 2).Return(nil)
	mockProductRepo.On("GetByIDTx", ctx, mockTx, int64(2)).Return(productTwo, nil)
	mockProductRepo.On("DecrementStock", ctx, mockTx, int64(2), 1).Return(nil)

	mockCartRepo.On("AddToTotal", ctx, mockTx, int64(3), -20.00).Return(nil)
	mockCartRepo.On("AddToTotal", ctx, mockTx, int64(3), -15.00).Return(nil)
	mockCartRepo.On("DeleteItem", ctx, mockTx, int64(21)).Return(nil)
	mockCartRepo.On("DeleteItem", ctx, mockTx, int64(22)).Return(nil)

	mockOrderRepo.On("CreateItems", ctx, mockTx, mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 &&
			items[0].Name == "Keyboard" && items[0].Price == 20.00 &&
			items[1].Name == "Mouse" && items[1].Price == 15.00
	})).Return(nil)
	mockCartRepo.On("Delete", ctx, mockTx, int64(3)).Return(nil)
	mockOrderRepo.On("MarkPaid", ctx, mockTx, int64(17)).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)
	mockMailer.On("Send", ctx, "ada@example.com", "Order", mock.AnythingOfType("string")).Return(nil)

	result, err := svc.Settle(ctx, order.OrderNumber)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.AlreadyPaid)

	mockOrderRepo.AssertExpectations(t)
	mockCartRepo.AssertExpectations(t)
	mockProductRepo.AssertExpectations(t)
	mockMailer.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestOrderService_Settle_AlreadyPaid(t *testing.T) {
	ctx := context.Background()

	order := &model.Order{
		ID:            17,
		OrderNumber:   "20260828120000-0042",
		Owner:         model.UserOwner(42),
		PaymentStatus: model.PaymentPaid,
	}

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	mockMailer := new(MockSender)
	mockTx := new(MockTx)

	svc := newTestOrderService(mockOrderRepo, mockCartRepo, mockProductRepo, new(MockGateway), mockMailer)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByNumberForUpdate", ctx, mockTx, order.OrderNumber).Return(order, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	result, err := svc.Settle(ctx, order.OrderNumber)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.AlreadyPaid)

	// No second settlement: stock, cart and mail untouched.
	mockProductRepo.AssertNotCalled(t, "DecrementStock")
	mockCartRepo.AssertNotCalled(t, "GetByOwnerForUpdate")
	mockOrderRepo.AssertNotCalled(t, "MarkPaid")
	mockMailer.AssertNotCalled(t, "Send")
}

func TestOrderService_Settle_OrderNotFound(t *testing.T) {
	ctx := context.Background()

	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	svc := newTestOrderService(mockOrderRepo, new(MockCartRepository), new(MockProductRepository), new(MockGateway), new(MockSender))

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByNumberForUpdate", ctx, mockTx, "missing").Return(nil, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	result, err := svc.Settle(ctx, "missing")

	assert.Equal(t, model.ErrOrderNotFound, err)
	assert.Nil(t, result)
}

func TestOrderService_Settle_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	owner := model.UserOwner(42)

	order := &model.Order{
		ID:            17,
		OrderNumber:   "20260828120000-0042",
		Owner:         owner,
		Email:         "ada@example.com",
		PaymentStatus: model.PaymentUnpaid,
	}
	cart := &model.Cart{ID: 3, Owner: owner}
	items := []model.CartItem{
		{ID: 21, CartID: 3, ProductID: 1, Quantity: 99},
	}
	product := &model.Product{ID: 1, Name: "Keyboard", Price: 10.00, Quantity: 5}

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	mockMailer := new(MockSender)
	mockTx := new(MockTx)

	svc := newTestOrderService(mockOrderRepo, mockCartRepo, mockProductRepo, new(MockGateway), mockMailer)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByNumberForUpdate", ctx, mockTx, order.OrderNumber).Return(order, nil)
	mockCartRepo.On("GetByOwnerForUpdate", ctx, mockTx, owner).Return(cart, nil)
	mockCartRepo.On("ListItemsForUpdate", ctx, mockTx, int64(3)).Return(items, nil)
	mockProductRepo.On("GetByIDTx", ctx, mockTx, int64(1)).Return(product, nil)
	mockProductRepo.On("DecrementStock", ctx, mockTx, int64(1), 99).Return(model.ErrInsufficientStock)
	mockTx.On("Rollback", ctx).Return(nil)

	result, err := svc.Settle(ctx, order.OrderNumber)

	assert.Equal(t, model.ErrInsufficientStock, err)
	assert.Nil(t, result)

	// The whole settlement rolls back: order stays UNPAID, cart survives.
	assert.True(t, mockTx.rolledBack)
	mockOrderRepo.AssertNotCalled(t, "MarkPaid")
	mockCartRepo.AssertNotCalled(t, "Delete")
	mockMailer.AssertNotCalled(t, "Send")
}

func TestOrderService_Settle_MailFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	owner := model.UserOwner(42)

	order := &model.Order{
		ID:            17,
		OrderNumber:   "20260828120000-0042",
		Owner:         owner,
		Email:         "ada@example.com",
		PaymentStatus: model.PaymentUnpaid,
	}

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)
	mockMailer := new(MockSender)
	mockTx := new(MockTx)

	svc := newTestOrderService(mockOrderRepo, mockCartRepo, new(MockProductRepository), new(MockGateway), mockMailer)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByNumberForUpdate", ctx, mockTx, order.OrderNumber).Return(order, nil)
	// Cart already gone; settlement still marks the order paid.
	mockCartRepo.On("GetByOwnerForUpdate", ctx, mockTx, owner).Return(nil, nil)
	mockOrderRepo.On("MarkPaid", ctx, mockTx, int64(17)).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)
	mockMailer.On("Send", ctx, "ada@example.com", "Order", mock.AnythingOfType("string")).
		Return(errors.New("smtp down"))

	result, err := svc.Settle(ctx, order.OrderNumber)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.AlreadyPaid)
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		svc := newTestOrderService(mockOrderRepo, new(MockCartRepository), new(MockProductRepository), new(MockGateway), new(MockSender))

		mockOrderRepo.On("DeleteByNumber", ctx, "20260828120000-0042").Return(true, nil)

		err := svc.Cancel(ctx, "20260828120000-0042")

		require.NoError(t, err)
		mockOrderRepo.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		svc := newTestOrderService(mockOrderRepo, new(MockCartRepository), new(MockProductRepository), new(MockGateway), new(MockSender))

		mockOrderRepo.On("DeleteByNumber", ctx, "missing").Return(false, nil)

		err := svc.Cancel(ctx, "missing")

		assert.Equal(t, model.ErrOrderNotFound, err)
	})
}

func TestOrderService_UpdateOrder(t *testing.T) {
	ctx := context.Background()

	order := &model.Order{
		ID:          17,
		OrderNumber: "20260828120000-0042",
		Email:       "ada@example.com",
		OrderStatus: model.OrderProcessing,
	}

	t.Run("Status change", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		mockMailer := new(MockSender)
		svc := newTestOrderService(mockOrderRepo, new(MockCartRepository), new(MockProductRepository), new(MockGateway), mockMailer)

		mockOrderRepo.On("GetByNumber", ctx, order.OrderNumber).Return(order, nil)
		mockOrderRepo.On("UpdateStatus", ctx, int64(17), model.OrderShipped).Return(nil)
		mockMailer.On("Send", ctx, "ada@example.com", "Update on order", mock.AnythingOfType("string")).Return(nil)

		patch := &model.OrderPatch{
			OrderStatus: model.Optional[model.OrderStatus]{Set: true, Valid: true, Value: model.OrderShipped},
		}

		updated, err := svc.UpdateOrder(ctx, order.OrderNumber, patch)

		require.NoError(t, err)
		assert.Equal(t, model.OrderShipped, updated.OrderStatus)
		mockOrderRepo.AssertExpectations(t)
		mockMailer.AssertExpectations(t)
	})

	t.Run("Absent field is a no-op", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		mockMailer := new(MockSender)
		svc := newTestOrderService(mockOrderRepo, new(MockCartRepository), new(MockProductRepository), new(MockGateway), mockMailer)

		mockOrderRepo.On("GetByNumber", ctx, order.OrderNumber).Return(order, nil)

		updated, err := svc.UpdateOrder(ctx, order.OrderNumber, &model.OrderPatch{})

		require.NoError(t, err)
		assert.Equal(t, order, updated)
		mockOrderRepo.AssertNotCalled(t, "UpdateStatus")
		mockMailer.AssertNotCalled(t, "Send")
	})

	t.Run("Explicit null rejected", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		svc := newTestOrderService(mockOrderRepo, new(MockCartRepository), new(MockProductRepository), new(MockGateway), new(MockSender))

		mockOrderRepo.On("GetByNumber", ctx, order.OrderNumber).Return(order, nil)

		patch := &model.OrderPatch{
			OrderStatus: model.Optional[model.OrderStatus]{Set: true, Valid: false},
		}

		updated, err := svc.UpdateOrder(ctx, order.OrderNumber, patch)

		assert.Equal(t, model.ErrInvalidStatus, err)
		assert.Nil(t, updated)
	})

	t.Run("Unknown status rejected", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		svc := newTestOrderService(mockOrderRepo, new(MockCartRepository), new(MockProductRepository), new(MockGateway), new(MockSender))

		mockOrderRepo.On("GetByNumber", ctx, order.OrderNumber).Return(order, nil)

		patch := &model.OrderPatch{
			OrderStatus: model.Optional[model.OrderStatus]{Set: true, Valid: true, Value: "TELEPORTED"},
		}

		updated, err := svc.UpdateOrder(ctx, order.OrderNumber, patch)

		assert.Equal(t, model.ErrInvalidStatus, err)
		assert.Nil(t, updated)
	})

	t.Run("Not found", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		svc := newTestOrderService(mockOrderRepo, new(MockCartRepository), new(MockProductRepository), new(MockGateway), new(MockSender))

		mockOrderRepo.On("GetByNumber", ctx, "missing").Return(nil, nil)

		updated, err := svc.UpdateOrder(ctx, "missing", &model.OrderPatch{})

		assert.Equal(t, model.ErrOrderNotFound, err)
		assert.Nil(t, updated)
	})
}

func TestOrderService_ListOrders(t *testing.T) {
	ctx := context.Background()

	orders := []model.Order{
		{ID: 2, OrderNumber: "20260828130000-0001"},
		{ID: 1, OrderNumber: "20260828120000-0042"},
	}
	productID := int64(1)
	itemsTwo := []model.OrderItem{{OrderID: 2, ProductID: &productID, Name: "Keyboard", Quantity: 1, Price: 10.00}}
	itemsOne := []model.OrderItem{}

	mockOrderRepo := new(MockOrderRepository)
	svc := newTestOrderService(mockOrderRepo, new(MockCartRepository), new(MockProductRepository), new(MockGateway), new(MockSender))

	mockOrderRepo.On("ListAll", ctx).Return(orders, nil)
	mockOrderRepo.On("ListItems", ctx, int64(2)).Return(itemsTwo, nil)
	mockOrderRepo.On("ListItems", ctx, int64(1)).Return(itemsOne, nil)

	summaries, err := svc.ListOrders(ctx)

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "20260828130000-0001", summaries[0].OrderNumber)
	assert.Equal(t, itemsTwo, summaries[0].Purchases)
	assert.Empty(t, summaries[1].Purchases)
}
