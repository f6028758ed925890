package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/cityaid-service/internal/domain"
)

const uniqueViolationCode = "23505"

type caseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository instantiates the Postgres-backed case repository.
func NewCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &caseRepository{pool: pool}
}

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertCase = `
        INSERT INTO cases (id, city_code, owning_team, state, title, description, budget,
                           start_date, end_date, work_notes, created_at, updated_at, created_by, updated_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	if _, err := tx.Exec(ctx, insertCase,
		c.ID.String(),
		string(c.City),
		string(c.OwningTeam),
		string(c.State),
		c.Title,
		c.Description,
		c.Budget,
		c.StartDate,
		c.EndDate,
		c.WorkNotes,
		c.Audit.CreatedAt,
		c.Audit.UpdatedAt,
		c.Audit.CreatedBy,
		c.Audit.UpdatedBy,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateCaseID
		}
		return err
	}

	for _, entry := range c.History {
		if err := insertHistory(ctx, tx, entry); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *caseRepository) GetByID(ctx context.Context, id domain.CaseID) (*domain.Case, error) {
	const query = `
        SELECT id, city_code, owning_team, state, title, description, budget,
               start_date, end_date, work_notes, created_at, updated_at, created_by, updated_by
        FROM cases WHERE id=$1`
	c, err := scanCase(r.pool.QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, err
	}

	history, err := r.listHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.History = history

	files, err := listFilesByCase(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	for i := range files {
		c.Files = append(c.Files, &files[i])
	}
	return c, nil
}

func (r *caseRepository) ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.Case, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.City != nil {
		args = append(args, string(*filter.City))
		clauses = append(clauses, fmt.Sprintf("city_code=$%d", len(args)))
	}
	if filter.Team != nil {
		args = append(args, string(*filter.Team))
		clauses = append(clauses, fmt.Sprintf("owning_team=$%d", len(args)))
	}
	if filter.State != nil {
		args = append(args, string(*filter.State))
		clauses = append(clauses, fmt.Sprintf("state=$%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM cases WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
        SELECT id, city_code, owning_team, state, title, description, budget,
               start_date, end_date, work_notes, created_at, updated_at, created_by, updated_by
        FROM cases WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *c)
	}
	return result, total, rows.Err()
}

func (r *caseRepository) UpdateMetadata(ctx context.Context, c *domain.Case) error {
	const query = `
        UPDATE cases SET title=$1, description=$2, budget=$3, start_date=$4, end_date=$5,
            work_notes=$6, updated_at=$7, updated_by=$8
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		c.Title,
		c.Description,
		c.Budget,
		c.StartDate,
		c.EndDate,
		c.WorkNotes,
		c.Audit.UpdatedAt,
		c.Audit.UpdatedBy,
		c.ID.String(),
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCaseNotFound
	}
	return nil
}

func (r *caseRepository) ApplyTransition(ctx context.Context, c *domain.Case, change domain.StateChange) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const cas = `
        UPDATE cases SET state=$1, updated_at=$2, updated_by=$3
        WHERE id=$4 AND state=$5`
	cmd, err := tx.Exec(ctx, cas,
		string(change.To),
		c.Audit.UpdatedAt,
		c.Audit.UpdatedBy,
		c.ID.String(),
		string(change.From),
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// Distinguish a vanished row from a concurrent transition.
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM cases WHERE id=$1)", c.ID.String()).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrCaseNotFound
		}
		return domain.ErrConcurrentModification
	}

	if err := insertHistory(ctx, tx, c.LatestHistory()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *caseRepository) listHistory(ctx context.Context, id domain.CaseID) ([]domain.ApprovalHistory, error) {
	const query = `
        SELECT id, case_id, from_state, to_state, actor, comment, created_at
        FROM approval_history WHERE case_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.ApprovalHistory
	for rows.Next() {
		var (
			entry     domain.ApprovalHistory
			rawCaseID string
			from, to  string
		)
		if err := rows.Scan(&entry.ID, &rawCaseID, &from, &to, &entry.Actor, &entry.Comment, &entry.CreatedAt); err != nil {
			return nil, err
		}
		caseID, err := domain.ParseCaseID(rawCaseID)
		if err != nil {
			return nil, err
		}
		entry.CaseID = caseID
		entry.FromState = domain.CaseState(from)
		entry.ToState = domain.CaseState(to)
		history = append(history, entry)
	}
	return history, rows.Err()
}

func insertHistory(ctx context.Context, tx pgx.Tx, entry domain.ApprovalHistory) error {
	const query = `
        INSERT INTO approval_history (id, case_id, from_state, to_state, actor, comment, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := tx.Exec(ctx, query,
		entry.ID,
		entry.CaseID.String(),
		string(entry.FromState),
		string(entry.ToState),
		entry.Actor,
		entry.Comment,
		entry.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*domain.Case, error) {
	var (
		c          domain.Case
		rawID      string
		city, team string
		state      string
		budget     *decimal.Decimal
		start, end *time.Time
	)
	if err := row.Scan(
		&rawID,
		&city,
		&team,
		&state,
		&c.Title,
		&c.Description,
		&budget,
		&start,
		&end,
		&c.WorkNotes,
		&c.Audit.CreatedAt,
		&c.Audit.UpdatedAt,
		&c.Audit.CreatedBy,
		&c.Audit.UpdatedBy,
	); err != nil {
		return nil, err
	}
	id, err := domain.ParseCaseID(rawID)
	if err != nil {
		return nil, err
	}
	c.ID = id
	c.City = domain.CityCode(city)
	c.OwningTeam = domain.TeamType(team)
	c.State = domain.CaseState(state)
	c.Budget = budget
	c.StartDate = start
	c.EndDate = end
	return &c, nil
}
