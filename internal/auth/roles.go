package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/policy"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user := UserFromContext(c)
		if user == nil {
			return apperrors.NewUnauthorized("inicia sesión para continuar")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[user.Role]; !exists {
			return apperrors.NewForbidden("tu rol no permite esta acción")
		}
		return c.Next()
	}
}

// RequireRecruiter restricts position administration routes.
func RequireRecruiter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := UserFromContext(c)
		if user == nil {
			return apperrors.NewUnauthorized("inicia sesión para continuar")
		}
		if err := policy.RequirePositionAdmin(user); err != nil {
			return err
		}
		return c.Next()
	}
}
