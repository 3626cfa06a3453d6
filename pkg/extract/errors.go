package extract

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyUpload      = errors.New("Empty upload")
	ErrTooLarge         = errors.New("Upload too large")
	ErrRasterize        = errors.New("Could not rasterize PDF")
	ErrUnsupportedImage = errors.New("Unsupported or corrupt image")
)

// InputError is a user-correctable problem with the upload. Its message is
// safe to show to the client.
type InputError struct {
	Err   error
	Cause error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err, e.Cause)
	}
	return e.Err.Error()
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *InputError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Message is the client-facing text.
func (e *InputError) Message() string { return e.Err.Error() }

// ExternalFailure reports that the document model failed. It is never retried.
type ExternalFailure struct {
	Stage string
	Err   error
}

func (e *ExternalFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *ExternalFailure) Unwrap() error { return e.Err }

func inputErr(sentinel, cause error) error {
	return &InputError{Err: sentinel, Cause: cause}
}
