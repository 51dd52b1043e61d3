package composition

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAnalysis is returned when no job analysis is available.
	ErrMissingAnalysis = errors.New("job analysis is required")
	// ErrMissingResume is returned when the résumé text is empty.
	ErrMissingResume = errors.New("resume text is required")
	// ErrCompositionFailed classifies every completion or structural failure.
	ErrCompositionFailed = errors.New("cover letter composition failed")
)

// Error wraps a composition failure with its underlying cause.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("composition failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("composition failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrCompositionFailed.
func (e *Error) Is(target error) bool {
	return target == ErrCompositionFailed
}
