// Package pipeline holds the candidate stage state machine.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// Mode selects how strictly stage assignments are checked.
type Mode string

const (
	// ModeFree lets any stage be assigned from any stage. This is the
	// behaviour recruiters rely on to correct mistakes from the board.
	ModeFree Mode = "free"
	// ModeForwardOnly restricts moves to the transition table below.
	ModeForwardOnly Mode = "forward_only"
)

// ParseMode maps a config value to a Mode, defaulting to ModeFree.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeFree:
		return ModeFree, nil
	case ModeForwardOnly:
		return ModeForwardOnly, nil
	default:
		return "", fmt.Errorf("unknown pipeline mode %q", raw)
	}
}

// InitialStage is the only stage a new candidate may start in.
const InitialStage = domain.StageApplicationReceived

var forwardTransitions = map[domain.Stage][]domain.Stage{
	domain.StageApplicationReceived: {domain.StageHRReview, domain.StageManagerReview, domain.StageInterviewScheduled, domain.StageRejected},
	domain.StageHRReview:            {domain.StageManagerReview, domain.StageInterviewScheduled, domain.StageRejected},
	domain.StageManagerReview:       {domain.StageInterviewScheduled, domain.StageRejected},
	domain.StageInterviewScheduled:  {domain.StageHired, domain.StageRejected},
	domain.StageHired:               {},
	domain.StageRejected:            {},
}

// Machine validates stage assignments.
type Machine struct {
	mode Mode
}

// NewMachine builds a machine for the given mode.
func NewMachine(mode Mode) *Machine {
	if mode == "" {
		mode = ModeFree
	}
	return &Machine{mode: mode}
}

// Mode returns the configured mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// Validate checks that a candidate may move from one stage to another.
// Moving to the current stage is always allowed and treated as a no-op by callers.
func (m *Machine) Validate(from, to domain.Stage) error {
	if !to.Valid() {
		return apperrors.NewValidationError("etapa desconocida", map[string]any{"stage": string(to)})
	}
	if !from.Valid() {
		return apperrors.NewValidationError("el candidato tiene una etapa desconocida", map[string]any{"stage": string(from)})
	}
	if from == to || m.mode == ModeFree {
		return nil
	}
	for _, next := range forwardTransitions[from] {
		if next == to {
			return nil
		}
	}
	return apperrors.NewValidationError("cambio de etapa no permitido", map[string]any{
		"from": string(from),
		"to":   string(to),
	})
}

// Targets lists the stages reachable from the given stage, in pipeline order.
func (m *Machine) Targets(from domain.Stage) []domain.Stage {
	if m.mode == ModeFree {
		return domain.Stages()
	}
	targets := []domain.Stage{from}
	targets = append(targets, forwardTransitions[from]...)
	return targets
}
