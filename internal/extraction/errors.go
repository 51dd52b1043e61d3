package extraction

import (
	"errors"
	"fmt"
)

// ErrMissingContent is returned when the job posting text is empty. No completion is requested.
var ErrMissingContent = errors.New("job posting content is empty")

// ErrExtractionFailed classifies every completion, validation or decoding failure.
var ErrExtractionFailed = errors.New("job analysis failed")

// Error wraps an extraction failure with its underlying cause.
// errors.Is(err, ErrExtractionFailed) holds for every *Error.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrExtractionFailed.
func (e *Error) Is(target error) bool {
	return target == ErrExtractionFailed
}
