package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spec-kit/cityaid-service/internal/domain"
)

// In-memory implementations backing unit tests and local development without
// a database. They honor the same contracts as the Postgres repositories,
// including CAS transition semantics and atomic sequence allocation.

// MemoryCaseRepository is a mutex-guarded CaseRepository.
type MemoryCaseRepository struct {
	mu    sync.RWMutex
	cases map[string]*domain.Case
}

// NewMemoryCaseRepository creates an empty in-memory case store.
func NewMemoryCaseRepository() *MemoryCaseRepository {
	return &MemoryCaseRepository{cases: make(map[string]*domain.Case)}
}

func (r *MemoryCaseRepository) Create(_ context.Context, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := c.ID.String()
	if _, exists := r.cases[key]; exists {
		return ErrDuplicateCaseID
	}
	r.cases[key] = copyCase(c)
	return nil
}

func (r *MemoryCaseRepository) GetByID(_ context.Context, id domain.CaseID) (*domain.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.cases[id.String()]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	return copyCase(stored), nil
}

func (r *MemoryCaseRepository) ListWithFilter(_ context.Context, filter CaseFilter) ([]domain.Case, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Case
	for _, c := range r.cases {
		if filter.City != nil && c.City != *filter.City {
			continue
		}
		if filter.Team != nil && c.OwningTeam != *filter.Team {
			continue
		}
		if filter.State != nil && c.State != *filter.State {
			continue
		}
		matched = append(matched, *copyCase(c))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Audit.CreatedAt.After(matched[j].Audit.CreatedAt)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Case{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *MemoryCaseRepository) UpdateMetadata(_ context.Context, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.cases[c.ID.String()]
	if !ok {
		return domain.ErrCaseNotFound
	}
	stored.Title = c.Title
	stored.Description = c.Description
	stored.Budget = c.Budget
	stored.StartDate = c.StartDate
	stored.EndDate = c.EndDate
	stored.WorkNotes = c.WorkNotes
	stored.Audit.UpdatedAt = c.Audit.UpdatedAt
	stored.Audit.UpdatedBy = c.Audit.UpdatedBy
	return nil
}

func (r *MemoryCaseRepository) ApplyTransition(_ context.Context, c *domain.Case, change domain.StateChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.cases[c.ID.String()]
	if !ok {
		return domain.ErrCaseNotFound
	}
	if stored.State != change.From {
		return domain.ErrConcurrentModification
	}
	stored.State = change.To
	stored.Audit.UpdatedAt = c.Audit.UpdatedAt
	stored.Audit.UpdatedBy = c.Audit.UpdatedBy
	stored.History = append(stored.History, c.LatestHistory())
	return nil
}

// AttachFile mirrors the denormalized files relation for tests.
func (r *MemoryCaseRepository) AttachFile(caseID domain.CaseID, f *domain.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.cases[caseID.String()]
	if !ok {
		return domain.ErrCaseNotFound
	}
	file := *f
	stored.Files = append(stored.Files, &file)
	return nil
}

func copyCase(c *domain.Case) *domain.Case {
	dup := *c
	dup.History = append([]domain.ApprovalHistory(nil), c.History...)
	dup.Files = nil
	for _, f := range c.Files {
		file := *f
		dup.Files = append(dup.Files, &file)
	}
	return &dup
}

// MemoryFileRepository is a mutex-guarded FileRepository.
type MemoryFileRepository struct {
	mu    sync.RWMutex
	files map[string]*domain.File
}

// NewMemoryFileRepository creates an empty in-memory file store.
func NewMemoryFileRepository() *MemoryFileRepository {
	return &MemoryFileRepository{files: make(map[string]*domain.File)}
}

func (r *MemoryFileRepository) Create(_ context.Context, f *domain.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	file := *f
	r.files[f.ID] = &file
	return nil
}

func (r *MemoryFileRepository) GetByID(_ context.Context, id string) (*domain.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.files[id]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	file := *stored
	return &file, nil
}

func (r *MemoryFileRepository) ListByCase(_ context.Context, caseID domain.CaseID) ([]domain.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var files []domain.File
	for _, f := range r.files {
		if f.CaseID == caseID {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Audit.CreatedAt.Before(files[j].Audit.CreatedAt)
	})
	return files, nil
}

func (r *MemoryFileRepository) UpdateMetadata(_ context.Context, f *domain.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.files[f.ID]
	if !ok {
		return domain.ErrFileNotFound
	}
	stored.Name = f.Name
	stored.Sensitivity = f.Sensitivity
	stored.Audit.UpdatedAt = f.Audit.UpdatedAt
	stored.Audit.UpdatedBy = f.Audit.UpdatedBy
	return nil
}

// MemorySequenceRepository is a mutex-guarded SequenceRepository.
type MemorySequenceRepository struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewMemorySequenceRepository creates an empty in-memory allocator store.
func NewMemorySequenceRepository() *MemorySequenceRepository {
	return &MemorySequenceRepository{counters: make(map[string]int)}
}

func (r *MemorySequenceRepository) Next(_ context.Context, year int, city domain.CityCode, team domain.TeamType) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%d|%s|%s", year, city, team.Code())
	if r.counters[key] >= domain.MaxCaseSequence {
		return 0, domain.ErrAllocationExhausted
	}
	r.counters[key]++
	return r.counters[key], nil
}

// Seed sets the last used sequence for a partition, for tests exercising the
// allocation ceiling.
func (r *MemorySequenceRepository) Seed(year int, city domain.CityCode, team domain.TeamType, lastSeq int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%d|%s|%s", year, city, team.Code())
	r.counters[key] = lastSeq
}
