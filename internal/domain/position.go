package domain

import "time"

// PositionStatus captures whether a job opening accepts applications.
type PositionStatus string

const (
	PositionStatusOpen   PositionStatus = "Abierto"
	PositionStatusClosed PositionStatus = "Cerrado"
)

// Toggle returns the opposite status.
func (s PositionStatus) Toggle() PositionStatus {
	if s == PositionStatusOpen {
		return PositionStatusClosed
	}
	return PositionStatusOpen
}

// Position is a job opening owned by an area manager.
type Position struct {
	ID          string
	Title       string
	Description string
	Status      PositionStatus
	ManagerID   string
	ManagerName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOpen reports whether the position is listed publicly.
func (p *Position) IsOpen() bool {
	return p != nil && p.Status == PositionStatusOpen
}
