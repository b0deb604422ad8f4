package domain

import (
	"strings"
	"time"
)

// Candidate is an applicant tied to one position.
type Candidate struct {
	ID                string
	PositionID        string
	PositionTitle     string
	PositionManagerID string
	FullName          string
	Email             string
	Phone             *string
	ResumePath        string
	Stage             Stage
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FirstName returns the first token of the full name.
func (c *Candidate) FirstName() string {
	if c == nil {
		return ""
	}
	return FirstName(c.FullName)
}

// FirstName returns the first whitespace separated token of name.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
