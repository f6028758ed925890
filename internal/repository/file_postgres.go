package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/cityaid-service/internal/domain"
)

type fileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository instantiates the Postgres-backed file repository.
func NewFileRepository(pool *pgxpool.Pool) FileRepository {
	return &fileRepository{pool: pool}
}

func (r *fileRepository) Create(ctx context.Context, f *domain.File) error {
	const query = `
        INSERT INTO files (id, case_id, name, external_url, city_code, owning_team, sensitivity,
                           created_at, updated_at, created_by, updated_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.pool.Exec(ctx, query,
		f.ID,
		f.CaseID.String(),
		f.Name,
		f.ExternalURL,
		string(f.City),
		string(f.OwningTeam),
		string(f.Sensitivity),
		f.Audit.CreatedAt,
		f.Audit.UpdatedAt,
		f.Audit.CreatedBy,
		f.Audit.UpdatedBy,
	)
	return err
}

func (r *fileRepository) GetByID(ctx context.Context, id string) (*domain.File, error) {
	const query = `
        SELECT id, case_id, name, external_url, city_code, owning_team, sensitivity,
               created_at, updated_at, created_by, updated_by
        FROM files WHERE id=$1`
	f, err := scanFile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *fileRepository) ListByCase(ctx context.Context, caseID domain.CaseID) ([]domain.File, error) {
	return listFilesByCase(ctx, r.pool, caseID)
}

func (r *fileRepository) UpdateMetadata(ctx context.Context, f *domain.File) error {
	const query = `
        UPDATE files SET name=$1, sensitivity=$2, updated_at=$3, updated_by=$4
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		f.Name,
		string(f.Sensitivity),
		f.Audit.UpdatedAt,
		f.Audit.UpdatedBy,
		f.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

func listFilesByCase(ctx context.Context, pool *pgxpool.Pool, caseID domain.CaseID) ([]domain.File, error) {
	const query = `
        SELECT id, case_id, name, external_url, city_code, owning_team, sensitivity,
               created_at, updated_at, created_by, updated_by
        FROM files WHERE case_id=$1 ORDER BY created_at ASC`
	rows, err := pool.Query(ctx, query, caseID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []domain.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

func scanFile(row rowScanner) (*domain.File, error) {
	var (
		f           domain.File
		rawCaseID   string
		city, team  string
		sensitivity string
	)
	if err := row.Scan(
		&f.ID,
		&rawCaseID,
		&f.Name,
		&f.ExternalURL,
		&city,
		&team,
		&sensitivity,
		&f.Audit.CreatedAt,
		&f.Audit.UpdatedAt,
		&f.Audit.CreatedBy,
		&f.Audit.UpdatedBy,
	); err != nil {
		return nil, err
	}
	caseID, err := domain.ParseCaseID(rawCaseID)
	if err != nil {
		return nil, err
	}
	f.CaseID = caseID
	f.City = domain.CityCode(city)
	f.OwningTeam = domain.TeamType(team)
	f.Sensitivity = domain.SensitivityLevel(sensitivity)
	return &f, nil
}
