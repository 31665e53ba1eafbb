package errors

import "errors"

var (
	ErrTopicExhausted  = errors.New("topic generation exhausted all attempts")
	ErrQuotaExceeded   = errors.New("topic generation quota exceeded")
	ErrInvalidTopic    = errors.New("generated topic failed structural validation")
	ErrTooSimilar      = errors.New("generated topic is too similar to a recent contest")
	ErrGeneratorFailed = errors.New("topic generation service failed")
)
