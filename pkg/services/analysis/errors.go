package analysis

import (
	"errors"
	"fmt"
)

// ErrInFlight rejects a submit while another analysis request is
// outstanding. At most one analysis is in flight at a time.
var ErrInFlight = errors.New("an analysis is already in flight")

// GenerationFailedError covers transport failures, provider errors and empty
// generator output. No record is appended; the caller may retry the same
// input bundle.
type GenerationFailedError struct {
	Err error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationFailedError) Unwrap() error { return e.Err }
