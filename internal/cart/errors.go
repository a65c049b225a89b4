package cart

import "errors"

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidDiscount    = errors.New("discount must be between zero and the line amount")
	ErrLineNotFound       = errors.New("line not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInsufficientTender = errors.New("tendered amount is less than the total")
	ErrTenderMismatch     = errors.New("tender legs do not add up to the total")
	ErrUnknownMethod      = errors.New("unknown payment method")
)
