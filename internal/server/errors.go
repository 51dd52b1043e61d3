// Package server provides the HTTP API that drives cover letter sessions.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/coverletter-agent/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNoCoverLetter indicates the session has not generated a cover letter yet
type ErrNoCoverLetter struct {
	SessionID string
}

func (e *ErrNoCoverLetter) Error() string {
	return fmt.Sprintf("session %s has no cover letter yet", e.SessionID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var noLetter *ErrNoCoverLetter
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &noLetter):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// StatusForKind returns the HTTP status code reported for a failed pipeline action.
func StatusForKind(kind pipeline.ErrorKind) int {
	switch kind {
	case pipeline.KindInvalidInput, pipeline.KindEmptyUpload, pipeline.KindUnsupportedFormat, pipeline.KindMissingResume:
		return http.StatusBadRequest
	case pipeline.KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case pipeline.KindMissingContent, pipeline.KindUnreadableUpload:
		return http.StatusUnprocessableEntity
	case pipeline.KindInvalidTransition:
		return http.StatusConflict
	case pipeline.KindExtractionFailed, pipeline.KindCompositionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
