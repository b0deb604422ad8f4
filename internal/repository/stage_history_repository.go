package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/applicant-tracker/internal/domain"
)

// StageHistoryRepository reads the append-only stage log. Entries are written
// by CandidateRepository.UpdateStage only.
type StageHistoryRepository interface {
	ListByCandidate(ctx context.Context, candidateID string) ([]domain.StageHistoryEntry, error)
}

type stageHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStageHistoryRepository builds repository.
func NewStageHistoryRepository(pool *pgxpool.Pool) StageHistoryRepository {
	return &stageHistoryRepository{pool: pool}
}

func (r *stageHistoryRepository) ListByCandidate(ctx context.Context, candidateID string) ([]domain.StageHistoryEntry, error) {
	if err := checkID(candidateID); err != nil {
		return nil, err
	}
	const query = `
        SELECT id, candidate_id, previous_stage, new_stage, changed_by, changed_at
        FROM stage_history WHERE candidate_id=$1 ORDER BY changed_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.StageHistoryEntry{}
	for rows.Next() {
		var entry domain.StageHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.CandidateID,
			&entry.PreviousStage,
			&entry.NewStage,
			&entry.ChangedBy,
			&entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
