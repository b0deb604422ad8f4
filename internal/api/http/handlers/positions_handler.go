package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/applicant-tracker/internal/api/dto"
	"github.com/spec-kit/applicant-tracker/internal/service"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// PositionsHandler serves the public job board and position administration.
type PositionsHandler struct {
	positions *service.PositionService
}

// NewPositionsHandler constructs handler.
func NewPositionsHandler(positions *service.PositionService) *PositionsHandler {
	return &PositionsHandler{positions: positions}
}

// ListOpen GET /api/positions.
func (h *PositionsHandler) ListOpen(c *fiber.Ctx) error {
	positions, err := h.positions.ListOpen(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PublicPositionResponse, 0, len(positions))
	for i := range positions {
		items = append(items, dto.NewPublicPosition(&positions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/positions/:id.
func (h *PositionsHandler) Get(c *fiber.Ctx) error {
	position, err := h.positions.GetPublic(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPublicPosition(position)})
}

// ListAll GET /api/admin/positions.
func (h *PositionsHandler) ListAll(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	positions, err := h.positions.ListAll(c.UserContext(), user)
	if err != nil {
		return err
	}
	items := make([]dto.PositionResponse, 0, len(positions))
	for i := range positions {
		items = append(items, dto.NewPosition(&positions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /api/admin/positions.
func (h *PositionsHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreatePositionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("solicitud inválida", nil)
	}
	position, err := h.positions.Create(c.UserContext(), user, service.CreatePositionInput{
		Title:       req.Title,
		Description: req.Description,
		ManagerID:   req.ManagerID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPosition(position)})
}

// Toggle POST /api/admin/positions/:id/toggle.
func (h *PositionsHandler) Toggle(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	position, err := h.positions.ToggleStatus(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPosition(position)})
}

// Managers GET /api/admin/managers.
func (h *PositionsHandler) Managers(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	managers, err := h.positions.ListManagers(c.UserContext(), user)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(managers))
	for i := range managers {
		items = append(items, dto.NewUser(&managers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
