package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/applicant-tracker/internal/api/dto"
	"github.com/spec-kit/applicant-tracker/internal/policy"
	"github.com/spec-kit/applicant-tracker/internal/service"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// AuthHandler exposes JSON login for dashboard users.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("solicitud inválida", nil)
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUser(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MeResponse{
		User:               dto.NewUser(user),
		CanManagePositions: policy.CanManagePositions(user),
		VisibleStages:      policy.VisibleStages(user),
	}})
}
