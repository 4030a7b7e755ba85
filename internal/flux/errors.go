package flux

import (
	"errors"
	"fmt"
)

var (
	ErrNoRequestID = errors.New("no request ID in response")
	ErrTimeout     = errors.New("image generation timed out")
)

// APIError is a non-2xx answer from the service. Detail carries the
// structured error body when it parsed as JSON, the raw text otherwise.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Detail)
}

// GenerationError is an explicit Failed status reported by the service.
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Reason
}

// ProcessingError means the service said Ready but the result payload could
// not be turned into an image. Payload is the raw status body for diagnosis.
type ProcessingError struct {
	Err     error
	Payload []byte
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing generation result: %v (payload: %s)", e.Err, e.Payload)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
