package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/policy"
)

// CandidateRepository encapsulates candidate persistence.
//
// UpdateStage is the only way to change a stage: it writes the new stage and
// appends the matching history entry in one transaction, so the current stage
// always equals the newest entry's NewStage.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *domain.Candidate) error
	GetByID(ctx context.Context, id string) (*domain.Candidate, error)
	List(ctx context.Context, scope policy.CandidateScope) ([]domain.Candidate, error)
	// UpdateStage returns the appended history entry, or nil when the
	// candidate already had the requested stage. A non-nil guard sees the
	// stage read under the row lock; its error aborts the write unchanged.
	UpdateStage(ctx context.Context, id string, stage domain.Stage, changedBy *string, guard StageGuard) (*domain.StageHistoryEntry, error)
}

// StageGuard re-checks a stage change against the locked current stage.
type StageGuard func(current domain.Stage) error

type candidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository instantiates repository.
func NewCandidateRepository(pool *pgxpool.Pool) CandidateRepository {
	return &candidateRepository{pool: pool}
}

const candidateSelect = `
        SELECT c.id, c.position_id, p.title, p.manager_id, c.full_name, c.email, c.phone,
               c.resume_path, c.stage, c.created_at, c.updated_at
        FROM candidates c JOIN positions p ON p.id = c.position_id`

func (r *candidateRepository) Create(ctx context.Context, candidate *domain.Candidate) error {
	const query = `
        INSERT INTO candidates (position_id, full_name, email, phone, resume_path, stage)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		candidate.PositionID,
		candidate.FullName,
		candidate.Email,
		candidate.Phone,
		candidate.ResumePath,
		candidate.Stage,
	).Scan(&candidate.ID, &candidate.CreatedAt, &candidate.UpdatedAt)
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return scanCandidate(r.pool.QueryRow(ctx, candidateSelect+` WHERE c.id=$1`, id))
}

func (r *candidateRepository) List(ctx context.Context, scope policy.CandidateScope) ([]domain.Candidate, error) {
	if scope.DenyAll {
		return []domain.Candidate{}, nil
	}
	clauses := []string{"1=1"}
	args := []any{}

	if scope.ManagerID != nil {
		args = append(args, *scope.ManagerID)
		clauses = append(clauses, fmt.Sprintf("p.manager_id=$%d", len(args)))
	}
	if len(scope.Stages) > 0 {
		placeholders := make([]string, len(scope.Stages))
		for i, stage := range scope.Stages {
			args = append(args, stage)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("c.stage IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC`, candidateSelect, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Candidate{}
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *candidate)
	}
	return result, rows.Err()
}

func (r *candidateRepository) UpdateStage(ctx context.Context, id string, stage domain.Stage, changedBy *string, guard StageGuard) (*domain.StageHistoryEntry, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var entry *domain.StageHistoryEntry
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var previous domain.Stage
		if err := tx.QueryRow(ctx, `SELECT stage FROM candidates WHERE id=$1 FOR UPDATE`, id).Scan(&previous); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(previous); err != nil {
				return err
			}
		}
		if previous == stage {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE candidates SET stage=$1, updated_at=NOW() WHERE id=$2`, stage, id); err != nil {
			return err
		}
		appended := &domain.StageHistoryEntry{
			CandidateID:   id,
			PreviousStage: previous,
			NewStage:      stage,
			ChangedBy:     changedBy,
		}
		const insert = `
            INSERT INTO stage_history (candidate_id, previous_stage, new_stage, changed_by)
            VALUES ($1,$2,$3,$4)
            RETURNING id, changed_at`
		if err := tx.QueryRow(ctx, insert, id, previous, stage, changedBy).Scan(&appended.ID, &appended.ChangedAt); err != nil {
			return err
		}
		entry = appended
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func scanCandidate(row pgx.Row) (*domain.Candidate, error) {
	var candidate domain.Candidate
	if err := row.Scan(
		&candidate.ID,
		&candidate.PositionID,
		&candidate.PositionTitle,
		&candidate.PositionManagerID,
		&candidate.FullName,
		&candidate.Email,
		&candidate.Phone,
		&candidate.ResumePath,
		&candidate.Stage,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &candidate, nil
}
