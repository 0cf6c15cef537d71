package scoring

import "errors"

// Sentinel errors for the scoring service layer.
var (
	ErrNotFound     = errors.New("contact not found")
	ErrLostContact  = errors.New("contact is lost and cannot be scored")
	ErrInvalidStage = errors.New("contact has an invalid pipeline stage")
)
