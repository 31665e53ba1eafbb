package errors

import "errors"

var (
	ErrNoSubmissions = errors.New("cannot determine a winner without submissions")
	ErrInvalidSide   = errors.New("submission side is not a valid contest side")
)
