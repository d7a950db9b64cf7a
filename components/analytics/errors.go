package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork matches every *NetworkError via errors.Is.
	ErrNetwork = errors.New("analytics: network error")
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("analytics: validation error")

	errMissingSource    = errors.New("analytics: data source not configured")
	errMissingPredictor = errors.New("analytics: predictor not configured")
)

// NetworkError reports a transport failure or a non-2xx response.
type NetworkError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("analytics: %s: remote error %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("analytics: %s: remote error %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("analytics: %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("analytics: %s: network error", e.Op)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ValidationError reports input rejected locally or by the backend.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("analytics: invalid %s: %s", e.Field, e.Message)
	}
	return "analytics: invalid input: " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
