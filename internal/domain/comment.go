package domain

import "time"

// Comment is an internal note left on a candidate. Candidates never see it.
type Comment struct {
	ID          string
	CandidateID string
	AuthorID    string
	AuthorName  string
	Body        string
	CreatedAt   time.Time
}
