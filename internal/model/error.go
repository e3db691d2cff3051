package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeCartNotFound      = "CART_NOT_FOUND"
	ErrCodeCartItemNotFound  = "CART_ITEM_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeOrderConflict     = "ORDER_CONFLICT"
	ErrCodeGateway           = "GATEWAY_ERROR"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure carried from services to handlers,
// where Code selects the HTTP status.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrCartNotFound      = NewDomainError(ErrCodeCartNotFound, "Cart not found")
	ErrCartItemNotFound  = NewDomainError(ErrCodeCartItemNotFound, "Product is not in the cart")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Not enough stock")
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Your cart is empty!")
	ErrInvalidStatus     = NewDomainError(ErrCodeInvalidStatus, "Order status must be PROCESSING, SHIPPED or DELIVERED")
	ErrOrderConflict     = NewDomainError(ErrCodeOrderConflict, "Could not allocate a unique order number")
	ErrUnauthorised      = NewDomainError(ErrCodeUnauthorised, "Missing or invalid credentials")
	ErrForbidden         = NewDomainError(ErrCodeForbidden, "You dont have permission to perform this command.")
)
