package service

import (
	"context"

	"github.com/spec-kit/cityaid-service/internal/domain"
	"github.com/spec-kit/cityaid-service/internal/repository"
)

// Allocator hands out the next sequence number for a (year, city, owning
// team) partition. The underlying store performs the increment atomically;
// the allocator only validates the partition.
type Allocator struct {
	sequences repository.SequenceRepository
}

// NewAllocator constructs the allocator.
func NewAllocator(sequences repository.SequenceRepository) *Allocator {
	return &Allocator{sequences: sequences}
}

// NextSequence returns the next unused sequence for the partition, starting
// at 1. Fails with domain.ErrInvalidTeamForIdentifier for non-owning teams
// and domain.ErrAllocationExhausted at the 999 ceiling.
func (a *Allocator) NextSequence(ctx context.Context, year int, city domain.CityCode, team domain.TeamType) (int, error) {
	if !team.IsOwning() {
		return 0, domain.ErrInvalidTeamForIdentifier
	}
	return a.sequences.Next(ctx, year, city, team)
}
