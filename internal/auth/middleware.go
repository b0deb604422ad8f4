package auth

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/repository"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// LoginPath is where page requests without a session are sent.
const LoginPath = "/login"

// Principal represents the authenticated caller for one request.
type Principal struct {
	User *domain.User
}

// AuthMiddleware resolves the session token into a Principal.
type AuthMiddleware struct {
	tokens     *TokenManager
	users      repository.UserRepository
	cookieName string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, cookieName: cookieName}
}

// Handle enforces authentication for JSON routes. Bearer tokens win over the
// session cookie.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		token = c.Cookies(m.cookieName)
	}
	if token == "" {
		return apperrors.NewUnauthorized("faltan credenciales")
	}
	principal, err := m.resolve(c, token)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// HandlePage enforces authentication for HTML routes. Callers without a valid
// session are redirected to the login page.
func (m *AuthMiddleware) HandlePage(c *fiber.Ctx) error {
	token := c.Cookies(m.cookieName)
	if token == "" {
		return redirectToLogin(c)
	}
	principal, err := m.resolve(c, token)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeUnauthorized) {
			c.ClearCookie(m.cookieName)
			return redirectToLogin(c)
		}
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx, token string) (*Principal, error) {
	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("token inválido")
	}
	user, err := m.users.GetByID(c.UserContext(), claims.UserID())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("usuario no encontrado")
		}
		return nil, apperrors.MapError(err)
	}
	if user.Role != claims.Role {
		return nil, apperrors.NewUnauthorized("la sesión expiró, vuelve a ingresar")
	}
	return &Principal{User: user}, nil
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func redirectToLogin(c *fiber.Ctx) error {
	target := LoginPath
	if c.Method() == fiber.MethodGet {
		target += "?next=" + url.QueryEscape(c.OriginalURL())
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.User != nil
}

// UserFromContext returns the authenticated user or nil.
func UserFromContext(c *fiber.Ctx) *domain.User {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal.User
}
