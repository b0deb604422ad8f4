// Package dashboard groups candidates into Kanban columns and applies moves
// optimistically, rolling back when the write fails.
package dashboard

import (
	"context"
	"sync"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// Column is one stage lane of the board.
type Column struct {
	Stage      domain.Stage
	Candidates []domain.Candidate
}

// Label renders the stage name for display.
func (c Column) Label() string {
	return c.Stage.Label()
}

// PersistFunc writes a stage change.
type PersistFunc func(ctx context.Context, candidateID string, stage domain.Stage) error

// Board is the in-memory view of the pipeline for one user.
type Board struct {
	mu      sync.Mutex
	columns []Column
}

// Build groups candidates by stage into the given columns, keeping the input
// order inside each column. Candidates in stages without a column are left out.
func Build(candidates []domain.Candidate, stages []domain.Stage) *Board {
	index := make(map[domain.Stage]int, len(stages))
	columns := make([]Column, len(stages))
	for i, stage := range stages {
		index[stage] = i
		columns[i] = Column{Stage: stage, Candidates: []domain.Candidate{}}
	}
	for _, candidate := range candidates {
		if i, ok := index[candidate.Stage]; ok {
			columns[i].Candidates = append(columns[i].Candidates, candidate)
		}
	}
	return &Board{columns: columns}
}

// Columns returns a snapshot of the lanes.
func (b *Board) Columns() []Column {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneColumns(b.columns)
}

// Move shows the candidate in the target lane immediately, then calls
// persist. When persist fails the board is restored to its previous state
// and the error is returned for display.
func (b *Board) Move(ctx context.Context, candidateID string, stage domain.Stage, persist PersistFunc) error {
	b.mu.Lock()
	snapshot := cloneColumns(b.columns)
	moved, ok := b.take(candidateID)
	if !ok {
		b.mu.Unlock()
		return apperrors.NewNotFound("candidate", map[string]any{"candidate_id": candidateID})
	}
	moved.Stage = stage
	for i := range b.columns {
		if b.columns[i].Stage == stage {
			b.columns[i].Candidates = append([]domain.Candidate{moved}, b.columns[i].Candidates...)
			break
		}
	}
	b.mu.Unlock()

	if err := persist(ctx, candidateID, stage); err != nil {
		b.mu.Lock()
		b.columns = snapshot
		b.mu.Unlock()
		return err
	}
	return nil
}

// Contains reports whether the candidate is on the board.
func (b *Board) Contains(candidateID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, column := range b.columns {
		for _, candidate := range column.Candidates {
			if candidate.ID == candidateID {
				return true
			}
		}
	}
	return false
}

// Count returns the number of candidates on the board.
func (b *Board) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, column := range b.columns {
		total += len(column.Candidates)
	}
	return total
}

func (b *Board) take(candidateID string) (domain.Candidate, bool) {
	for i := range b.columns {
		for j, candidate := range b.columns[i].Candidates {
			if candidate.ID != candidateID {
				continue
			}
			lane := b.columns[i].Candidates
			b.columns[i].Candidates = append(append([]domain.Candidate{}, lane[:j]...), lane[j+1:]...)
			return candidate, true
		}
	}
	return domain.Candidate{}, false
}

func cloneColumns(columns []Column) []Column {
	out := make([]Column, len(columns))
	for i, column := range columns {
		out[i] = Column{Stage: column.Stage, Candidates: append([]domain.Candidate{}, column.Candidates...)}
	}
	return out
}
