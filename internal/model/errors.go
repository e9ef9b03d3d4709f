package model

import "errors"

// Error taxonomy for a planning run. Every failure is fatal; nothing is
// retried automatically.
var (
	ErrRemoteRead       = errors.New("remote read failed")
	ErrInvalidTokenData = errors.New("invalid token data")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrQuoteUnavailable = errors.New("quote unavailable")
	ErrSubmission       = errors.New("transaction submission failed")
)
