// Package memory provides in-process repositories used when no Postgres DSN
// is configured and as fakes in tests. Every method serialises on one mutex.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/policy"
	"github.com/spec-kit/applicant-tracker/internal/repository"
)

// Store holds every table. Slices keep insertion order so listings can walk
// them backwards for newest-first results.
type Store struct {
	mu         sync.Mutex
	users      []*domain.User
	positions  []*domain.Position
	candidates []*domain.Candidate
	history    []*domain.StageHistoryEntry
	comments   []*domain.Comment
	now        func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

// Users exposes the user table.
func (s *Store) Users() repository.UserRepository { return (*userRepo)(s) }

// Positions exposes the position table.
func (s *Store) Positions() repository.PositionRepository { return (*positionRepo)(s) }

// Candidates exposes the candidate table.
func (s *Store) Candidates() repository.CandidateRepository { return (*candidateRepo)(s) }

// History exposes the stage history log.
func (s *Store) History() repository.StageHistoryRepository { return (*historyRepo)(s) }

// Comments exposes candidate comments.
func (s *Store) Comments() repository.CommentRepository { return (*commentRepo)(s) }

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return errDuplicate("users_email_key")
		}
	}
	now := s.now()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	s.users = append(s.users, &stored)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.userByID(id); u != nil {
		copied := *u
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.User
	for _, u := range s.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	return result, nil
}

type positionRepo Store

func (r *positionRepo) Create(_ context.Context, position *domain.Position) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userByID(position.ManagerID) == nil {
		return errForeignKey("positions_manager_id_fkey")
	}
	now := s.now()
	position.ID = uuid.NewString()
	position.CreatedAt, position.UpdatedAt = now, now
	stored := *position
	s.positions = append(s.positions, &stored)
	position.ManagerName = s.managerName(position.ManagerID)
	return nil
}

func (r *positionRepo) GetByID(_ context.Context, id string) (*domain.Position, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.positionByID(id); p != nil {
		return s.positionView(p), nil
	}
	return nil, pgx.ErrNoRows
}

func (r *positionRepo) List(_ context.Context, status *domain.PositionStatus) ([]domain.Position, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Position
	for i := len(s.positions) - 1; i >= 0; i-- {
		p := s.positions[i]
		if status != nil && p.Status != *status {
			continue
		}
		result = append(result, *s.positionView(p))
	}
	return result, nil
}

func (r *positionRepo) UpdateStatus(_ context.Context, id string, status domain.PositionStatus) (*domain.Position, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.positionByID(id)
	if p == nil {
		return nil, pgx.ErrNoRows
	}
	p.Status = status
	p.UpdatedAt = s.now()
	return s.positionView(p), nil
}

type candidateRepo Store

func (r *candidateRepo) Create(_ context.Context, candidate *domain.Candidate) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	position := s.positionByID(candidate.PositionID)
	if position == nil {
		return errForeignKey("candidates_position_id_fkey")
	}
	now := s.now()
	candidate.ID = uuid.NewString()
	candidate.CreatedAt, candidate.UpdatedAt = now, now
	candidate.PositionTitle = position.Title
	candidate.PositionManagerID = position.ManagerID
	stored := *candidate
	s.candidates = append(s.candidates, &stored)
	return nil
}

func (r *candidateRepo) GetByID(_ context.Context, id string) (*domain.Candidate, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.candidateByID(id); c != nil {
		return s.candidateView(c), nil
	}
	return nil, pgx.ErrNoRows
}

func (r *candidateRepo) List(_ context.Context, scope policy.CandidateScope) ([]domain.Candidate, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []domain.Candidate{}
	for i := len(s.candidates) - 1; i >= 0; i-- {
		view := s.candidateView(s.candidates[i])
		if scope.Matches(view) {
			result = append(result, *view)
		}
	}
	return result, nil
}

func (r *candidateRepo) UpdateStage(_ context.Context, id string, stage domain.Stage, changedBy *string, guard repository.StageGuard) (*domain.StageHistoryEntry, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.candidateByID(id)
	if c == nil {
		return nil, pgx.ErrNoRows
	}
	if guard != nil {
		if err := guard(c.Stage); err != nil {
			return nil, err
		}
	}
	if c.Stage == stage {
		return nil, nil
	}
	now := s.now()
	entry := &domain.StageHistoryEntry{
		ID:            uuid.NewString(),
		CandidateID:   id,
		PreviousStage: c.Stage,
		NewStage:      stage,
		ChangedBy:     changedBy,
		ChangedAt:     now,
	}
	c.Stage = stage
	c.UpdatedAt = now
	s.history = append(s.history, entry)
	copied := *entry
	return &copied, nil
}

type historyRepo Store

func (r *historyRepo) ListByCandidate(_ context.Context, candidateID string) ([]domain.StageHistoryEntry, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []domain.StageHistoryEntry{}
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].CandidateID == candidateID {
			result = append(result, *s.history[i])
		}
	}
	return result, nil
}

type commentRepo Store

func (r *commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.candidateByID(comment.CandidateID) == nil {
		return errForeignKey("candidate_comments_candidate_id_fkey")
	}
	comment.ID = uuid.NewString()
	comment.CreatedAt = s.now()
	if u := s.userByID(comment.AuthorID); u != nil {
		comment.AuthorName = u.FullName
	}
	stored := *comment
	s.comments = append(s.comments, &stored)
	return nil
}

func (r *commentRepo) ListByCandidate(_ context.Context, candidateID string) ([]domain.Comment, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []domain.Comment{}
	for i := len(s.comments) - 1; i >= 0; i-- {
		c := s.comments[i]
		if c.CandidateID != candidateID {
			continue
		}
		copied := *c
		if u := s.userByID(c.AuthorID); u != nil {
			copied.AuthorName = u.FullName
		}
		result = append(result, copied)
	}
	return result, nil
}

func (s *Store) userByID(id string) *domain.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Store) positionByID(id string) *domain.Position {
	for _, p := range s.positions {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Store) candidateByID(id string) *domain.Candidate {
	for _, c := range s.candidates {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) managerName(id string) string {
	if u := s.userByID(id); u != nil {
		return u.FullName
	}
	return ""
}

func (s *Store) positionView(p *domain.Position) *domain.Position {
	copied := *p
	copied.ManagerName = s.managerName(p.ManagerID)
	return &copied
}

func (s *Store) candidateView(c *domain.Candidate) *domain.Candidate {
	copied := *c
	if p := s.positionByID(c.PositionID); p != nil {
		copied.PositionTitle = p.Title
		copied.PositionManagerID = p.ManagerID
	}
	return &copied
}
