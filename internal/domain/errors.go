package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors callers branch on. All are expected, recoverable outcomes.
var (
	ErrInvalidTeamForIdentifier = errors.New("only Alpha and Beta teams can appear in a case identifier")
	ErrSequenceOverflow         = errors.New("case sequence exceeds the 3-digit identifier field")
	ErrAllocationExhausted      = errors.New("case sequence exhausted for partition")
	ErrConcurrentModification   = errors.New("case was modified concurrently")
	ErrCaseNotFound             = errors.New("case not found")
	ErrFileNotFound             = errors.New("file not found")
	ErrFileCaseMismatch         = errors.New("file does not belong to this case")
	ErrPermissionDenied         = errors.New("permission denied")
)

// MalformedIdentifierError reports a case identifier that does not match
// the CS-<year>-<city>-<AL|BE>-<seq> shape.
type MalformedIdentifierError struct {
	Value string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed case identifier: %q", e.Value)
}

// IllegalTransitionError reports a transition attempted from a state that
// does not permit it.
type IllegalTransitionError struct {
	From      CaseState
	Attempted Transition
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("transition %s not allowed from state %s", e.Attempted, e.From)
}

// ValidationError reports an input shape violation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
