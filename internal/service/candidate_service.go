package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/events"
	"github.com/spec-kit/applicant-tracker/internal/observability"
	"github.com/spec-kit/applicant-tracker/internal/pipeline"
	"github.com/spec-kit/applicant-tracker/internal/policy"
	"github.com/spec-kit/applicant-tracker/internal/repository"
	"github.com/spec-kit/applicant-tracker/internal/storage"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

const maxCommentLength = 4000

// ResumeLink is a freshly signed résumé URL. Available is false when the
// candidate has no stored file or signing failed.
type ResumeLink struct {
	URL       string
	Available bool
	ExpiresAt time.Time
}

// StageChange is the outcome of SetStage. Entry is nil when the candidate
// already was in the requested stage.
type StageChange struct {
	Candidate *domain.Candidate
	Entry     *domain.StageHistoryEntry
}

// CandidateService coordinates dashboard reads and mutations on candidates.
type CandidateService struct {
	candidates repository.CandidateRepository
	history    repository.StageHistoryRepository
	comments   repository.CommentRepository
	store      storage.ResumeStore
	machine    *pipeline.Machine
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	resumeTTL  time.Duration
	now        func() time.Time
}

// CandidateDependencies bundles collaborators for the candidate service.
type CandidateDependencies struct {
	CandidateRepo repository.CandidateRepository
	HistoryRepo   repository.StageHistoryRepository
	CommentRepo   repository.CommentRepository
	Store         storage.ResumeStore
	Machine       *pipeline.Machine
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	ResumeURLTTL  time.Duration
}

// NewCandidateService constructs the service.
func NewCandidateService(deps CandidateDependencies) *CandidateService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	machine := deps.Machine
	if machine == nil {
		machine = pipeline.NewMachine(pipeline.ModeFree)
	}
	ttl := deps.ResumeURLTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &CandidateService{
		candidates: deps.CandidateRepo,
		history:    deps.HistoryRepo,
		comments:   deps.CommentRepo,
		store:      deps.Store,
		machine:    machine,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		resumeTTL:  ttl,
		now:        time.Now,
	}
}

// Machine exposes the configured pipeline rules for the views.
func (s *CandidateService) Machine() *pipeline.Machine {
	return s.machine
}

// List returns the candidates visible to user, newest first.
func (s *CandidateService) List(ctx context.Context, user *domain.User) ([]domain.Candidate, error) {
	return s.candidates.List(ctx, policy.CandidateScopeFor(user))
}

// Get loads one candidate the user is allowed to see.
func (s *CandidateService) Get(ctx context.Context, user *domain.User, candidateID string) (*domain.Candidate, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, lookupErr("candidate", err)
	}
	if !policy.CanViewCandidate(user, candidate) {
		return nil, apperrors.NewForbidden("no tienes acceso a este candidato")
	}
	return candidate, nil
}

// History returns the stage log of a candidate, newest first.
func (s *CandidateService) History(ctx context.Context, user *domain.User, candidateID string) ([]domain.StageHistoryEntry, error) {
	if _, err := s.Get(ctx, user, candidateID); err != nil {
		return nil, err
	}
	return s.history.ListByCandidate(ctx, candidateID)
}

// Comments returns internal comments on a candidate, newest first.
func (s *CandidateService) Comments(ctx context.Context, user *domain.User, candidateID string) ([]domain.Comment, error) {
	if _, err := s.Get(ctx, user, candidateID); err != nil {
		return nil, err
	}
	return s.comments.ListByCandidate(ctx, candidateID)
}

// AddComment appends an internal comment authored by user.
func (s *CandidateService) AddComment(ctx context.Context, user *domain.User, candidateID, body string) (*domain.Comment, error) {
	candidate, err := s.Get(ctx, user, candidateID)
	if err != nil {
		return nil, err
	}
	if !policy.CanComment(user, candidate) {
		return nil, apperrors.NewForbidden("no puedes comentar este candidato")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("el comentario no puede estar vacío", map[string]any{"body": "requerido"})
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return nil, apperrors.NewValidationError("el comentario es demasiado largo", map[string]any{"body": "máximo 4000 caracteres"})
	}

	comment := &domain.Comment{
		CandidateID: candidate.ID,
		AuthorID:    user.ID,
		AuthorName:  user.FullName,
		Body:        body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, writeErr("candidate", "no se pudo guardar el comentario", err)
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventCandidateCommentAdded,
		AggregateID: candidate.ID,
		Actor:       userActor(user),
		Payload: events.CandidateCommentAddedPayload{
			CommentID:   comment.ID,
			BodyPreview: preview(body, 80),
		},
	})
	return comment, nil
}

// SetStage moves a candidate. The repository appends the history entry in
// the same transaction; the candidate e-mail is sent by the
// candidate_stage_changed subscriber and cannot fail the change.
func (s *CandidateService) SetStage(ctx context.Context, user *domain.User, candidateID string, stage domain.Stage) (*StageChange, error) {
	candidate, err := s.Get(ctx, user, candidateID)
	if err != nil {
		return nil, err
	}
	if !policy.CanSetStage(user, candidate) {
		return nil, apperrors.NewForbidden("no puedes mover este candidato")
	}
	if err := s.machine.Validate(candidate.Stage, stage); err != nil {
		return nil, err
	}
	if candidate.Stage == stage {
		return &StageChange{Candidate: candidate}, nil
	}

	changedBy := user.ID
	entry, err := s.candidates.UpdateStage(ctx, candidate.ID, stage, &changedBy, s.stageGuard(user, candidate, stage))
	if err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		s.logger.Error("stage update failed",
			zap.String("candidate_id", candidate.ID),
			zap.String("stage", string(stage)),
			zap.Error(err))
		return nil, writeErr("candidate", "no se pudo actualizar la etapa", err)
	}
	if entry == nil {
		candidate.Stage = stage
		return &StageChange{Candidate: candidate}, nil
	}

	candidate.Stage = entry.NewStage
	candidate.UpdatedAt = entry.ChangedAt
	s.metrics.RecordStageChange(string(stage))
	s.logger.Info("candidate stage changed",
		zap.String("candidate_id", candidate.ID),
		zap.String("from", string(entry.PreviousStage)),
		zap.String("to", string(entry.NewStage)),
		zap.String("changed_by", changedBy))

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventCandidateStageChanged,
		AggregateID: candidate.ID,
		Actor:       userActor(user),
		Payload: events.CandidateStageChangedPayload{
			CandidateName:  candidate.FullName,
			CandidateEmail: candidate.Email,
			PreviousStage:  entry.PreviousStage,
			NewStage:       entry.NewStage,
			HistoryID:      entry.ID,
		},
	})
	return &StageChange{Candidate: candidate, Entry: entry}, nil
}

// stageGuard repeats the scope and transition checks against the stage the
// repository holds locked, so a move that landed after the read above cannot
// widen what the caller may do.
func (s *CandidateService) stageGuard(user *domain.User, read *domain.Candidate, to domain.Stage) repository.StageGuard {
	return func(current domain.Stage) error {
		locked := *read
		locked.Stage = current
		if !policy.CanSetStage(user, &locked) {
			return apperrors.NewForbidden("no puedes mover este candidato")
		}
		return s.machine.Validate(current, to)
	}
}

// ResumeURL signs a new short-lived link on every call.
func (s *CandidateService) ResumeURL(ctx context.Context, user *domain.User, candidateID string) (ResumeLink, error) {
	candidate, err := s.Get(ctx, user, candidateID)
	if err != nil {
		return ResumeLink{}, err
	}
	if strings.TrimSpace(candidate.ResumePath) == "" {
		s.metrics.RecordResumeLink("missing")
		return ResumeLink{}, nil
	}

	expiresAt := s.now().Add(s.resumeTTL)
	url, err := s.store.SignedURL(ctx, candidate.ResumePath, s.resumeTTL)
	if err != nil {
		s.metrics.RecordResumeLink("failed")
		s.logger.Warn("resume link unavailable",
			zap.String("candidate_id", candidate.ID),
			zap.String("path", candidate.ResumePath),
			zap.Error(err))
		return ResumeLink{}, nil
	}
	s.metrics.RecordResumeLink("signed")
	return ResumeLink{URL: url, Available: true, ExpiresAt: expiresAt}, nil
}

func preview(body string, limit int) string {
	if utf8.RuneCountInString(body) <= limit {
		return body
	}
	runes := []rune(body)
	return string(runes[:limit]) + "…"
}
