package service

import "errors"

// ErrValidation matches every input validation failure; the specific error
// carries the client-facing message.
var ErrValidation = errors.New("validation failed")

type validationError struct{ msg string }

func (e *validationError) Error() string        { return e.msg }
func (e *validationError) Is(target error) bool { return target == ErrValidation }

func newValidationError(msg string) error { return &validationError{msg: msg} }

var (
	ErrProductMissingFields   = newValidationError("Missing required fields")
	ErrProductEmptyField      = newValidationError("Fields must not be empty")
	ErrProductInvalidPrice    = newValidationError("Price must be greater than 0")
	ErrProductPriceOutOfRange = newValidationError("Price must have at most 2 decimal places and be less than 100000000")
	ErrProductInvalidCategory = newValidationError("Invalid category")
	ErrInvalidSort            = newValidationError("sortBy must be one of price_asc, price_desc, name_asc, name_desc")
	ErrInvalidLimit           = newValidationError("limit must be a positive integer")
	ErrMissingCredentials     = newValidationError("Email and password are required")
)

var ErrInvalidCredentials = errors.New("Invalid email or password")
