package domain

import "time"

// StageHistoryEntry is an immutable record of one stage transition.
type StageHistoryEntry struct {
	ID            string
	CandidateID   string
	PreviousStage Stage
	NewStage      Stage
	ChangedBy     *string
	ChangedAt     time.Time
}
