package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/cityaid-service/internal/domain"
)

// ErrDuplicateCaseID signals that the rendered case identifier is already
// persisted. CreateCase treats it as an allocation race and retries.
var ErrDuplicateCaseID = errors.New("case identifier already exists")

// CaseFilter narrows case listings.
type CaseFilter struct {
	City   *domain.CityCode
	Team   *domain.TeamType
	State  *domain.CaseState
	Limit  int
	Offset int
}

// CaseRepository encapsulates case persistence. Implementations must commit
// a case together with its history rows atomically.
type CaseRepository interface {
	// Create persists a new case and its initial history row in one
	// transaction. Returns ErrDuplicateCaseID when the identifier is taken.
	Create(ctx context.Context, c *domain.Case) error
	// GetByID loads a case with its full history, ordered chronologically,
	// and its attached files. Returns domain.ErrCaseNotFound when absent.
	GetByID(ctx context.Context, id domain.CaseID) (*domain.Case, error)
	// ListWithFilter returns a page of cases plus the total match count.
	ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.Case, int, error)
	// UpdateMetadata persists title/description/budget/dates/notes and audit
	// fields without touching state or history.
	UpdateMetadata(ctx context.Context, c *domain.Case) error
	// ApplyTransition commits a transition already applied in memory: a
	// compare-and-swap on the stored state against change.From plus the new
	// history row, in one transaction. Returns
	// domain.ErrConcurrentModification when the stored state moved.
	ApplyTransition(ctx context.Context, c *domain.Case, change domain.StateChange) error
}

// FileRepository encapsulates attached-file persistence.
type FileRepository interface {
	Create(ctx context.Context, f *domain.File) error
	GetByID(ctx context.Context, id string) (*domain.File, error)
	ListByCase(ctx context.Context, caseID domain.CaseID) ([]domain.File, error)
	UpdateMetadata(ctx context.Context, f *domain.File) error
}

// SequenceRepository allocates case sequence numbers. Next must be atomic:
// two concurrent calls for the same partition never return the same value.
type SequenceRepository interface {
	// Next returns the next unused sequence for (year, city, team), starting
	// at 1. Returns domain.ErrAllocationExhausted at the 999 ceiling.
	Next(ctx context.Context, year int, city domain.CityCode, team domain.TeamType) (int, error)
}
