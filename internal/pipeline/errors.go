package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoFiles is returned when a request carries no documents.
var ErrNoFiles = errors.New("no files uploaded")

// ExtractionError reports an uploaded document that could not be read. The
// whole request fails on the first one.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ModelError wraps any failure of the generative model call.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model invocation: %v", e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// PayloadTooLargeError is returned before the model is called when a request
// exceeds a configured limit.
type PayloadTooLargeError struct {
	Reason string
}

func (e *PayloadTooLargeError) Error() string {
	return "payload too large: " + e.Reason
}
