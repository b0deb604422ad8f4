package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/applicant-tracker/internal/api/dto"
	"github.com/spec-kit/applicant-tracker/internal/service"
)

// ApplicationsHandler accepts public applications over JSON/multipart.
type ApplicationsHandler struct {
	applications *service.ApplicationService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(applications *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{applications: applications}
}

// Submit POST /api/positions/:positionId/applications (multipart, field "cv").
func (h *ApplicationsHandler) Submit(c *fiber.Ctx) error {
	input, closeFile, err := applicationFromForm(c)
	if err != nil {
		return err
	}
	defer closeFile()

	candidate, err := h.applications.Submit(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ApplicationResponse{
		CandidateID: candidate.ID,
		PositionID:  candidate.PositionID,
		Stage:       candidate.Stage,
		CreatedAt:   candidate.CreatedAt,
	}})
}
