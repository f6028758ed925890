package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/cityaid-service/internal/domain"
)

// DomainError standardizes application errors surfaced to transports.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("PERMISSION_DENIED", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewStorageError(err error) *DomainError {
	return &DomainError{
		Code:       "STORAGE_ERROR",
		Message:    "storage failure",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts domain and persistence errors into DomainError.
// Expected domain outcomes map to stable codes; anything unrecognized passes
// through as STORAGE_ERROR without being swallowed.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return NewDomainError("VALIDATION_FAILED", validation.Error(), http.StatusBadRequest,
			map[string]any{"field": validation.Field})
	}
	var malformed *domain.MalformedIdentifierError
	if errors.As(err, &malformed) {
		return NewDomainError("MALFORMED_IDENTIFIER", malformed.Error(), http.StatusBadRequest,
			map[string]any{"value": malformed.Value})
	}
	var illegal *domain.IllegalTransitionError
	if errors.As(err, &illegal) {
		return NewDomainError("ILLEGAL_TRANSITION", illegal.Error(), http.StatusConflict,
			map[string]any{"from_state": string(illegal.From), "transition": string(illegal.Attempted)})
	}

	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return NewDomainError("PERMISSION_DENIED", err.Error(), http.StatusForbidden, nil)
	case errors.Is(err, domain.ErrCaseNotFound):
		return NewDomainError("CASE_NOT_FOUND", err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, domain.ErrFileNotFound):
		return NewDomainError("FILE_NOT_FOUND", err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, domain.ErrFileCaseMismatch):
		return NewDomainError("FILE_CASE_MISMATCH", err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrInvalidTeamForIdentifier):
		return NewDomainError("INVALID_TEAM_FOR_IDENTIFIER", err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrSequenceOverflow):
		return NewDomainError("SEQUENCE_OVERFLOW", err.Error(), http.StatusConflict, nil)
	case errors.Is(err, domain.ErrAllocationExhausted):
		return NewDomainError("ALLOCATION_EXHAUSTED", err.Error(), http.StatusConflict, nil)
	case errors.Is(err, domain.ErrConcurrentModification):
		return NewDomainError("CONCURRENT_MODIFICATION", err.Error(), http.StatusConflict, nil)
	case errors.Is(err, pgx.ErrNoRows):
		return NewDomainError("CASE_NOT_FOUND", "resource not found", http.StatusNotFound, nil)
	}

	return NewStorageError(err)
}
