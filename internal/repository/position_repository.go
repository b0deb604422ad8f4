package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/applicant-tracker/internal/domain"
)

// PositionRepository encapsulates job opening persistence.
type PositionRepository interface {
	Create(ctx context.Context, position *domain.Position) error
	GetByID(ctx context.Context, id string) (*domain.Position, error)
	List(ctx context.Context, status *domain.PositionStatus) ([]domain.Position, error)
	UpdateStatus(ctx context.Context, id string, status domain.PositionStatus) (*domain.Position, error)
}

type positionRepository struct {
	pool *pgxpool.Pool
}

// NewPositionRepository instantiates repository.
func NewPositionRepository(pool *pgxpool.Pool) PositionRepository {
	return &positionRepository{pool: pool}
}

const positionColumns = `
        p.id, p.title, p.description, p.status, p.manager_id, COALESCE(u.full_name, ''), p.created_at, p.updated_at`

func (r *positionRepository) Create(ctx context.Context, position *domain.Position) error {
	const query = `
        INSERT INTO positions (title, description, status, manager_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		position.Title,
		position.Description,
		position.Status,
		position.ManagerID,
	).Scan(&position.ID, &position.CreatedAt, &position.UpdatedAt)
}

func (r *positionRepository) GetByID(ctx context.Context, id string) (*domain.Position, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	query := `SELECT` + positionColumns + `
        FROM positions p LEFT JOIN users u ON u.id = p.manager_id
        WHERE p.id=$1`
	return scanPosition(r.pool.QueryRow(ctx, query, id))
}

func (r *positionRepository) List(ctx context.Context, status *domain.PositionStatus) ([]domain.Position, error) {
	query := `SELECT` + positionColumns + `
        FROM positions p LEFT JOIN users u ON u.id = p.manager_id`
	args := []any{}
	if status != nil {
		args = append(args, *status)
		query += ` WHERE p.status=$1`
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Position
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *position)
	}
	return result, rows.Err()
}

func (r *positionRepository) UpdateStatus(ctx context.Context, id string, status domain.PositionStatus) (*domain.Position, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	const query = `
        UPDATE positions SET status=$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func scanPosition(row pgx.Row) (*domain.Position, error) {
	var position domain.Position
	if err := row.Scan(
		&position.ID,
		&position.Title,
		&position.Description,
		&position.Status,
		&position.ManagerID,
		&position.ManagerName,
		&position.CreatedAt,
		&position.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &position, nil
}
