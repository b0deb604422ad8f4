package service

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/events"
	"github.com/spec-kit/applicant-tracker/internal/observability"
	"github.com/spec-kit/applicant-tracker/internal/pipeline"
	"github.com/spec-kit/applicant-tracker/internal/repository"
	"github.com/spec-kit/applicant-tracker/internal/storage"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// ResumeFile is the uploaded résumé as received from the form.
type ResumeFile struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// SubmitApplicationInput describes a public application.
type SubmitApplicationInput struct {
	PositionID string
	FullName   string
	Email      string
	Phone      string
	Resume     *ResumeFile
}

// ApplicationService handles public application intake.
type ApplicationService struct {
	positions      repository.PositionRepository
	candidates     repository.CandidateRepository
	store          storage.ResumeStore
	dispatcher     events.Dispatcher
	metrics        *observability.Metrics
	logger         *zap.Logger
	maxUploadBytes int64
	now            func() time.Time
}

// ApplicationDependencies bundles collaborators for the intake service.
type ApplicationDependencies struct {
	PositionRepo   repository.PositionRepository
	CandidateRepo  repository.CandidateRepository
	Store          storage.ResumeStore
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	MaxUploadBytes int64
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		positions:      deps.PositionRepo,
		candidates:     deps.CandidateRepo,
		store:          deps.Store,
		dispatcher:     deps.Dispatcher,
		metrics:        deps.Metrics,
		logger:         logger,
		maxUploadBytes: deps.MaxUploadBytes,
		now:            time.Now,
	}
}

// Submit validates the form, stores the résumé and creates the candidate in
// the initial stage. Nothing is written when validation fails, and the
// candidate row only ever references an uploaded path.
func (s *ApplicationService) Submit(ctx context.Context, input SubmitApplicationInput) (*domain.Candidate, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)

	if err := s.validate(input); err != nil {
		s.metrics.RecordApplication("validation_failed")
		return nil, err
	}

	position, err := s.positions.GetByID(ctx, input.PositionID)
	if err != nil {
		s.metrics.RecordApplication("position_not_found")
		return nil, lookupErr("position", err)
	}
	if !position.IsOpen() {
		s.metrics.RecordApplication("position_closed")
		return nil, apperrors.NewValidationError("el puesto ya no acepta postulaciones", map[string]any{
			"position_id": "cerrado",
		})
	}

	path := s.resumePath(input.Email, input.Resume.FileName)
	contentType := input.Resume.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.store.Upload(ctx, path, input.Resume.Reader, input.Resume.Size, contentType); err != nil {
		s.metrics.RecordApplication("upload_failed")
		s.logger.Error("resume upload failed", zap.String("path", path), zap.Error(err))
		return nil, apperrors.NewUploadError(err)
	}

	candidate := &domain.Candidate{
		PositionID: position.ID,
		FullName:   input.FullName,
		Email:      input.Email,
		ResumePath: path,
		Stage:      pipeline.InitialStage,
	}
	if input.Phone != "" {
		phone := input.Phone
		candidate.Phone = &phone
	}

	if err := s.candidates.Create(ctx, candidate); err != nil {
		s.metrics.RecordApplication("persistence_failed")
		s.removeOrphan(ctx, path)
		return nil, apperrors.NewPersistenceError("no se pudo registrar la postulación", err)
	}
	candidate.PositionTitle = position.Title
	candidate.PositionManagerID = position.ManagerID

	s.metrics.RecordApplication("accepted")
	s.logger.Info("application submitted",
		zap.String("candidate_id", candidate.ID),
		zap.String("position_id", position.ID))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventApplicationSubmitted,
		AggregateID: candidate.ID,
		Payload: events.ApplicationSubmittedPayload{
			PositionID: position.ID,
			Email:      candidate.Email,
			ResumePath: path,
		},
	})
	return candidate, nil
}

func (s *ApplicationService) validate(input SubmitApplicationInput) error {
	details := map[string]any{}
	if input.FullName == "" {
		details["full_name"] = "requerido"
	}
	if input.Email == "" {
		details["email"] = "requerido"
	} else if addr, err := mail.ParseAddress(input.Email); err != nil || addr.Address != input.Email {
		details["email"] = "formato inválido"
	}
	switch {
	case input.Resume == nil || input.Resume.Reader == nil || input.Resume.Size <= 0:
		details["cv"] = "requerido"
	case s.maxUploadBytes > 0 && input.Resume.Size > s.maxUploadBytes:
		details["cv"] = fmt.Sprintf("el archivo supera %d bytes", s.maxUploadBytes)
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("revisa los datos de la postulación", details)
	}
	return nil
}

// resumePath builds public/{email}-{unixMillis}-{rand}.{ext}.
func (s *ApplicationService) resumePath(email, fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		ext = "bin"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("public/%s-%d-%s.%s", email, s.now().UnixMilli(), suffix, ext)
}

func (s *ApplicationService) removeOrphan(ctx context.Context, path string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.store.Delete(cleanupCtx, path); err != nil {
		s.logger.Warn("orphaned resume left in storage", zap.String("path", path), zap.Error(err))
		return
	}
	s.logger.Info("removed orphaned resume", zap.String("path", path))
}
