package analyses

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrTireNotDetected   = errors.New("no tire detected in photo")
	ErrVisionUnavailable = errors.New("vision service unavailable")
)

const (
	ErrorCodeValidation        = "validation_error"
	ErrorCodeTireNotDetected   = "tire_not_detected"
	ErrorCodeVisionUnavailable = "vision_unavailable"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeInternal          = "internal_error"
)
