// Package policy decides which dashboard users may see or change which records.
//
// The repository applies CandidateScope inside its queries and services
// re-check single records with the Can* helpers. Templates also use
// CanManagePositions to hide navigation, but that check is cosmetic.
package policy

import (
	"github.com/spec-kit/applicant-tracker/internal/domain"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// CandidateScope restricts candidate queries. Empty fields mean unrestricted.
type CandidateScope struct {
	ManagerID *string
	Stages    []domain.Stage
	// DenyAll is set for callers without a usable role.
	DenyAll bool
}

// Matches reports whether a candidate falls inside the scope.
func (s CandidateScope) Matches(c *domain.Candidate) bool {
	if s.DenyAll || c == nil {
		return false
	}
	if s.ManagerID != nil && c.PositionManagerID != *s.ManagerID {
		return false
	}
	if len(s.Stages) > 0 {
		for _, stage := range s.Stages {
			if stage == c.Stage {
				return true
			}
		}
		return false
	}
	return true
}

// CandidateScopeFor returns the visibility scope of a user.
func CandidateScopeFor(user *domain.User) CandidateScope {
	if user == nil {
		return CandidateScope{DenyAll: true}
	}
	switch user.Role {
	case domain.RoleRecruiter:
		return CandidateScope{}
	case domain.RoleAreaManager:
		id := user.ID
		return CandidateScope{ManagerID: &id, Stages: []domain.Stage{domain.StageManagerReview}}
	default:
		return CandidateScope{DenyAll: true}
	}
}

// CanViewCandidate reports whether user may read the candidate, its history and comments.
func CanViewCandidate(user *domain.User, c *domain.Candidate) bool {
	return CandidateScopeFor(user).Matches(c)
}

// CanSetStage reports whether user may move the candidate.
func CanSetStage(user *domain.User, c *domain.Candidate) bool {
	return CanViewCandidate(user, c)
}

// CanComment reports whether user may comment on the candidate.
func CanComment(user *domain.User, c *domain.Candidate) bool {
	return CanViewCandidate(user, c)
}

// CanManagePositions reports whether user may create, open or close positions.
func CanManagePositions(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleRecruiter
}

// RequirePositionAdmin returns an authorization error for non-recruiters.
func RequirePositionAdmin(user *domain.User) error {
	if !CanManagePositions(user) {
		return apperrors.NewForbidden("acceso denegado: esta sección es solo para RH")
	}
	return nil
}

// VisibleStages lists the Kanban columns shown to a user.
func VisibleStages(user *domain.User) []domain.Stage {
	if user != nil && user.Role == domain.RoleRecruiter {
		return domain.Stages()
	}
	return []domain.Stage{
		domain.StageManagerReview,
		domain.StageInterviewScheduled,
		domain.StageHired,
		domain.StageRejected,
	}
}
