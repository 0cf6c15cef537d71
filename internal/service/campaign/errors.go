package campaign

import "errors"

// Sentinel errors for the campaign service layer.
var (
	ErrNotFound         = errors.New("campaign not found")
	ErrInvalidInput     = errors.New("invalid campaign input")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrTenantMismatch   = errors.New("campaign belongs to another tenant")
)
