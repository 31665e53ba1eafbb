package errors

import "errors"

var (
	ErrInvalidInput        = errors.New("points input is invalid")
	ErrPointsNotFound      = errors.New("points record not found")
	ErrIdempotencyConflict = errors.New("credit reference reused with different payload")
)
