package service

import (
	"context"
	"testing"

	"github.com/spec-kit/applicant-tracker/internal/config"
	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/repository/memory"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

func newAuthService() *AuthService {
	return NewAuthService(config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4}, AuthDependencies{
		UserRepo: memory.NewStore().Users(),
	})
}

func TestCreateUserAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService()

	user, err := svc.CreateUser(ctx, CreateUserInput{FullName: "Marta Gil", Email: "Marta@Example.com", Password: "s3cret-pass", Role: domain.RoleAreaManager})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Email != "marta@example.com" || user.PasswordHash == "s3cret-pass" {
		t.Fatalf("user = %+v", user)
	}

	logged, token, _, err := svc.Login(ctx, "marta@example.com", "s3cret-pass")
	if err != nil || logged.ID != user.ID || token == "" {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil || claims.UserID() != user.ID || claims.Role != domain.RoleAreaManager {
		t.Fatalf("claims = %+v %v", claims, err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService()
	_, _ = svc.CreateUser(ctx, CreateUserInput{FullName: "R", Email: "rh@example.com", Password: "s3cret-pass", Role: domain.RoleRecruiter})

	if _, _, _, err := svc.Login(ctx, "rh@example.com", "wrong-pass"); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "s3cret-pass"); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService()
	if _, err := svc.CreateUser(ctx, CreateUserInput{FullName: "X", Email: "x@example.com", Password: "s3cret-pass", Role: "Admin"}); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected role validation, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, CreateUserInput{FullName: "X", Email: "x@example.com", Password: "short", Role: domain.RoleRecruiter}); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected password validation, got %v", err)
	}
	_, _ = svc.CreateUser(ctx, CreateUserInput{FullName: "X", Email: "x@example.com", Password: "s3cret-pass", Role: domain.RoleRecruiter})
	if _, err := svc.CreateUser(ctx, CreateUserInput{FullName: "Y", Email: "X@example.com", Password: "s3cret-pass", Role: domain.RoleRecruiter}); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected duplicate validation, got %v", err)
	}
}
