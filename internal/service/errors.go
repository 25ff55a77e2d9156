package service

import "errors"

var (
	// ErrInvalidInput wraps validation failures on caller-supplied data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden is returned when the acting user lacks the required role.
	ErrForbidden = errors.New("forbidden")
)
