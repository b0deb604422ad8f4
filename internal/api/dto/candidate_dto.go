package dto

import (
	"time"

	"github.com/spec-kit/applicant-tracker/internal/domain"
)

// SetStageRequest payload. Stage accepts the stored value or the English name.
type SetStageRequest struct {
	Stage string `json:"stage" form:"stage"`
}

// CommentRequest payload.
type CommentRequest struct {
	Body string `json:"body" form:"body"`
}

// ApplicationResponse acknowledges a submitted application.
type ApplicationResponse struct {
	CandidateID string       `json:"candidate_id"`
	PositionID  string       `json:"position_id"`
	Stage       domain.Stage `json:"stage"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CandidateResponse represents a candidate on the dashboard.
type CandidateResponse struct {
	ID            string       `json:"id"`
	PositionID    string       `json:"position_id"`
	PositionTitle string       `json:"position_title"`
	FullName      string       `json:"full_name"`
	Email         string       `json:"email"`
	Phone         *string      `json:"phone"`
	Stage         domain.Stage `json:"stage"`
	HasResume     bool         `json:"has_resume"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// HistoryEntryResponse represents one stage transition.
type HistoryEntryResponse struct {
	ID            string       `json:"id"`
	PreviousStage domain.Stage `json:"previous_stage"`
	NewStage      domain.Stage `json:"new_stage"`
	ChangedBy     *string      `json:"changed_by"`
	ChangedAt     time.Time    `json:"changed_at"`
}

// CommentResponse represents an internal comment.
type CommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResumeLinkResponse carries a short-lived résumé link.
type ResumeLinkResponse struct {
	Available bool       `json:"available"`
	URL       string     `json:"url,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// StageChangeResponse is returned after a stage update.
type StageChangeResponse struct {
	Candidate CandidateResponse     `json:"candidate"`
	Entry     *HistoryEntryResponse `json:"history_entry"`
}

// NewCandidate maps a candidate.
func NewCandidate(c *domain.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:            c.ID,
		PositionID:    c.PositionID,
		PositionTitle: c.PositionTitle,
		FullName:      c.FullName,
		Email:         c.Email,
		Phone:         c.Phone,
		Stage:         c.Stage,
		HasResume:     c.ResumePath != "",
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// NewHistoryEntry maps a history entry.
func NewHistoryEntry(e *domain.StageHistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:            e.ID,
		PreviousStage: e.PreviousStage,
		NewStage:      e.NewStage,
		ChangedBy:     e.ChangedBy,
		ChangedAt:     e.ChangedAt,
	}
}

// NewComment maps a comment.
func NewComment(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
	}
}
