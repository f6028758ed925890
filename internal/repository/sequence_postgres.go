package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/cityaid-service/internal/domain"
)

type sequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository instantiates the Postgres-backed sequence allocator
// store. Allocation is a single atomic upsert, so two concurrent callers on
// the same partition can never observe the same value.
func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &sequenceRepository{pool: pool}
}

func (r *sequenceRepository) Next(ctx context.Context, year int, city domain.CityCode, team domain.TeamType) (int, error) {
	// The WHERE clause stops the counter at the 3-digit ceiling: once
	// last_seq reaches 999 the upsert updates nothing and returns no row.
	const query = `
        INSERT INTO case_sequences (year, city_code, team_code, last_seq)
        VALUES ($1, $2, $3, 1)
        ON CONFLICT (year, city_code, team_code)
        DO UPDATE SET last_seq = case_sequences.last_seq + 1
        WHERE case_sequences.last_seq < $4
        RETURNING last_seq`
	var seq int
	err := r.pool.QueryRow(ctx, query, year, string(city), team.Code(), domain.MaxCaseSequence).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAllocationExhausted
		}
		return 0, err
	}
	return seq, nil
}
