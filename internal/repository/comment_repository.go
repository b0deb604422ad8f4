package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/applicant-tracker/internal/domain"
)

// CommentRepository persists internal candidate comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByCandidate(ctx context.Context, candidateID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository constructs repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        WITH inserted AS (
            INSERT INTO candidate_comments (candidate_id, author_id, body)
            VALUES ($1,$2,$3)
            RETURNING id, author_id, created_at
        )
        SELECT i.id, COALESCE(u.full_name, ''), i.created_at
        FROM inserted i LEFT JOIN users u ON u.id = i.author_id`
	return r.pool.QueryRow(ctx, query,
		comment.CandidateID,
		comment.AuthorID,
		comment.Body,
	).Scan(&comment.ID, &comment.AuthorName, &comment.CreatedAt)
}

func (r *commentRepository) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Comment, error) {
	if err := checkID(candidateID); err != nil {
		return nil, err
	}
	const query = `
        SELECT c.id, c.candidate_id, c.author_id, COALESCE(u.full_name, ''), c.body, c.created_at
        FROM candidate_comments c LEFT JOIN users u ON u.id = c.author_id
        WHERE c.candidate_id=$1 ORDER BY c.created_at DESC, c.id DESC`
	rows, err := r.pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Comment{}
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.CandidateID,
			&comment.AuthorID,
			&comment.AuthorName,
			&comment.Body,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
