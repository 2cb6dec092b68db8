package files

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrNotFound        = errors.New("file not found")
)
