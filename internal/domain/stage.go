package domain

import "strings"

// Stage enumerates the fixed hiring pipeline. Values match the stored data.
type Stage string

const (
	StageApplicationReceived Stage = "Aplicacion_Recibida"
	StageHRReview            Stage = "En_Revision_RH"
	StageManagerReview       Stage = "Revision_Gerente"
	StageInterviewScheduled  Stage = "Entrevista_Agendada"
	StageHired               Stage = "Contratado"
	StageRejected            Stage = "Rechazado"
)

var orderedStages = []Stage{
	StageApplicationReceived,
	StageHRReview,
	StageManagerReview,
	StageInterviewScheduled,
	StageHired,
	StageRejected,
}

var stageAliases = map[string]Stage{
	"application_received": StageApplicationReceived,
	"hr_review":            StageHRReview,
	"manager_review":       StageManagerReview,
	"interview_scheduled":  StageInterviewScheduled,
	"hired":                StageHired,
	"rejected":             StageRejected,
}

// Stages returns every stage in pipeline order.
func Stages() []Stage {
	out := make([]Stage, len(orderedStages))
	copy(out, orderedStages)
	return out
}

// ParseStage accepts a stored value or its English name.
func ParseStage(raw string) (Stage, bool) {
	raw = strings.TrimSpace(raw)
	for _, s := range orderedStages {
		if strings.EqualFold(raw, string(s)) {
			return s, true
		}
	}
	if s, ok := stageAliases[strings.ToLower(raw)]; ok {
		return s, true
	}
	return "", false
}

// Valid reports whether s is part of the pipeline.
func (s Stage) Valid() bool {
	for _, candidate := range orderedStages {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further movement is expected.
func (s Stage) Terminal() bool {
	return s == StageHired || s == StageRejected
}

// Label renders the stage for display.
func (s Stage) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}
