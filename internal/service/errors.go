package service

import "errors"

// Service-level sentinel errors. Handlers map these onto problem-detail
// responses; anything else is treated as an internal failure.
var (
	ErrNotFound              = errors.New("resource not found")
	ErrEstimateConverted     = errors.New("estimate already converted")
	ErrEstimateNotConverted  = errors.New("estimate has no work order")
	ErrInvalidPartType       = errors.New("invalid part type")
	ErrInvalidNumberKind     = errors.New("invalid number kind")
	ErrVoidReasonRequired    = errors.New("void reason required")
	ErrFileTooLarge          = errors.New("file exceeds maximum upload size")
	ErrInvalidStatus         = errors.New("invalid status transition")
)
