package domain

import "errors"

var (
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidRole            = errors.New("invalid role")
	ErrUserNotFound           = errors.New("user not found")
	ErrProtectedUser          = errors.New("admin accounts cannot be deleted")
	ErrInvalidImage           = errors.New("invalid image format")
	ErrProductNotFound        = errors.New("product not found")
	ErrNotFoundOrUnauthorized = errors.New("product not found or unauthorized")
	ErrOrderNotFound          = errors.New("order not found")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrCartFull               = errors.New("cart is full")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrDuplicateCheckout      = errors.New("checkout already submitted")
	ErrSessionNotFound        = errors.New("session not found")
)
