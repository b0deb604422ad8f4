package dto

import (
	"time"

	"github.com/spec-kit/applicant-tracker/internal/domain"
)

// CreatePositionRequest payload.
type CreatePositionRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	ManagerID   string `json:"manager_id" form:"manager_id"`
}

// PublicPositionResponse is what anonymous visitors see.
type PublicPositionResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// PositionResponse is the administrative view of a position.
type PositionResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.PositionStatus `json:"status"`
	ManagerID   string                `json:"manager_id"`
	ManagerName string                `json:"manager_name"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewPublicPosition maps a position for the job board.
func NewPublicPosition(p *domain.Position) PublicPositionResponse {
	return PublicPositionResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

// NewPosition maps a position for recruiters.
func NewPosition(p *domain.Position) PositionResponse {
	return PositionResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		ManagerID:   p.ManagerID,
		ManagerName: p.ManagerName,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
