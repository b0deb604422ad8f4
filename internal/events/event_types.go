package events

import (
	"time"

	"github.com/spec-kit/applicant-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicationSubmitted  EventType = "application_submitted"
	EventCandidateStageChanged EventType = "candidate_stage_changed"
	EventCandidateCommentAdded EventType = "candidate_comment_added"
	EventPositionStatusChanged EventType = "position_status_changed"
)

// Actor identifies who caused an event. UserID is nil for public intake.
type Actor struct {
	UserID *string     `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	AggregateID string    `json:"aggregate_id"`
	Actor       Actor     `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	PositionID string `json:"position_id"`
	Email      string `json:"email"`
	ResumePath string `json:"resume_path"`
}

// CandidateStageChangedPayload carries what the candidate e-mail needs.
type CandidateStageChangedPayload struct {
	CandidateName  string       `json:"candidate_name"`
	CandidateEmail string       `json:"candidate_email"`
	PreviousStage  domain.Stage `json:"previous_stage"`
	NewStage       domain.Stage `json:"new_stage"`
	HistoryID      string       `json:"history_id"`
}

// CandidateCommentAddedPayload payload.
type CandidateCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	BodyPreview string `json:"body_preview"`
}

// PositionStatusChangedPayload payload.
type PositionStatusChangedPayload struct {
	OldStatus domain.PositionStatus `json:"old_status"`
	NewStatus domain.PositionStatus `json:"new_status"`
}
