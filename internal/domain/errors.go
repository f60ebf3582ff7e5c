package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrQuoteFailed         = errors.New("rate quote failed")
	ErrGenerationFailed    = errors.New("itinerary generation failed")
)
