package dto

import (
	"time"

	"github.com/spec-kit/applicant-tracker/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public shape of a dashboard user.
type UserResponse struct {
	ID       string      `json:"id"`
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// MeResponse describes the caller and what the dashboard should show them.
type MeResponse struct {
	User               UserResponse   `json:"user"`
	CanManagePositions bool           `json:"can_manage_positions"`
	VisibleStages      []domain.Stage `json:"visible_stages"`
}

// NewUser maps a user without credentials.
func NewUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
	}
}
