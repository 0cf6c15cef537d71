package abtest

import "errors"

// Sentinel errors for the A/B test service layer.
var (
	ErrNotFound          = errors.New("ab test not found")
	ErrInvalidInput      = errors.New("invalid ab test input")
	ErrInvalidTransition = errors.New("invalid ab test status transition")
)
