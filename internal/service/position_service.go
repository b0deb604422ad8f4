package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/events"
	"github.com/spec-kit/applicant-tracker/internal/policy"
	"github.com/spec-kit/applicant-tracker/internal/repository"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// CreatePositionInput describes a new job opening.
type CreatePositionInput struct {
	Title       string
	Description string
	ManagerID   string
}

// PositionService manages job openings.
type PositionService struct {
	positions  repository.PositionRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PositionDependencies bundles collaborators for the position service.
type PositionDependencies struct {
	PositionRepo repository.PositionRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewPositionService constructs the service.
func NewPositionService(deps PositionDependencies) *PositionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PositionService{
		positions:  deps.PositionRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ListOpen returns the public job board.
func (s *PositionService) ListOpen(ctx context.Context) ([]domain.Position, error) {
	status := domain.PositionStatusOpen
	return s.positions.List(ctx, &status)
}

// GetPublic returns an open position. Closed positions are reported as
// missing to anonymous callers.
func (s *PositionService) GetPublic(ctx context.Context, positionID string) (*domain.Position, error) {
	position, err := s.positions.GetByID(ctx, positionID)
	if err != nil {
		return nil, lookupErr("position", err)
	}
	if !position.IsOpen() {
		return nil, apperrors.NewNotFound("position", nil)
	}
	return position, nil
}

// ListAll returns every position with its manager name.
func (s *PositionService) ListAll(ctx context.Context, user *domain.User) ([]domain.Position, error) {
	if err := policy.RequirePositionAdmin(user); err != nil {
		return nil, err
	}
	return s.positions.List(ctx, nil)
}

// ListManagers returns the users that can own a position.
func (s *PositionService) ListManagers(ctx context.Context, user *domain.User) ([]domain.User, error) {
	if err := policy.RequirePositionAdmin(user); err != nil {
		return nil, err
	}
	return s.users.ListByRole(ctx, domain.RoleAreaManager)
}

// Create opens a new position owned by an area manager.
func (s *PositionService) Create(ctx context.Context, user *domain.User, input CreatePositionInput) (*domain.Position, error) {
	if err := policy.RequirePositionAdmin(user); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.ManagerID = strings.TrimSpace(input.ManagerID)

	details := map[string]any{}
	if input.Title == "" {
		details["title"] = "requerido"
	}
	if input.Description == "" {
		details["description"] = "requerido"
	}
	if input.ManagerID == "" {
		details["manager_id"] = "requerido"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("completa todos los campos del puesto", details)
	}

	manager, err := s.users.GetByID(ctx, input.ManagerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("gerente no encontrado", map[string]any{"manager_id": "desconocido"})
		}
		return nil, err
	}
	if manager.Role != domain.RoleAreaManager {
		return nil, apperrors.NewValidationError("el responsable debe ser Gerente_Area", map[string]any{"manager_id": "rol inválido"})
	}

	position := &domain.Position{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.PositionStatusOpen,
		ManagerID:   manager.ID,
	}
	if err := s.positions.Create(ctx, position); err != nil {
		return nil, apperrors.NewPersistenceError("no se pudo crear el puesto", err)
	}
	position.ManagerName = manager.FullName

	s.logger.Info("position created",
		zap.String("position_id", position.ID),
		zap.String("manager_id", manager.ID),
		zap.String("created_by", user.ID))
	return position, nil
}

// ToggleStatus opens a closed position or closes an open one. Candidates and
// their history are not touched.
func (s *PositionService) ToggleStatus(ctx context.Context, user *domain.User, positionID string) (*domain.Position, error) {
	if err := policy.RequirePositionAdmin(user); err != nil {
		return nil, err
	}
	current, err := s.positions.GetByID(ctx, positionID)
	if err != nil {
		return nil, lookupErr("position", err)
	}

	next := current.Status.Toggle()
	updated, err := s.positions.UpdateStatus(ctx, current.ID, next)
	if err != nil {
		return nil, writeErr("position", "no se pudo actualizar el puesto", err)
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventPositionStatusChanged,
		AggregateID: updated.ID,
		Actor:       userActor(user),
		Payload: events.PositionStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: updated.Status,
		},
	})
	return updated, nil
}
