package service

import "errors"

// Business errors surfaced to handlers. Validation-class errors map to 4xx;
// anything else is treated as a dependency failure (5xx).
var (
	ErrValidation        = errors.New("validation failed")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNegativeStock     = errors.New("stock cannot be negative")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrAlreadyRefunded   = errors.New("sale already refunded")
	ErrSKUExists         = errors.New("SKU already exists")
	ErrUsernameExists    = errors.New("username or email already exists")
)

// IsValidationError reports whether err belongs to the 4xx class.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrNegativeStock) ||
		errors.Is(err, ErrSKUExists) ||
		errors.Is(err, ErrUsernameExists)
}
