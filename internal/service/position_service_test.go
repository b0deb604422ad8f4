package service

import (
	"context"
	"testing"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/pipeline"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

func TestClosingPositionHidesItButKeepsCandidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pipeline.ModeFree)
	ana := f.apply(t, "Ana Ruiz", "ana@x.com")
	if _, err := f.candidates.SetStage(ctx, f.recruiter, ana.ID, domain.StageHRReview); err != nil {
		t.Fatalf("set stage: %v", err)
	}

	closed, err := f.positions.ToggleStatus(ctx, f.recruiter, f.position.ID)
	if err != nil || closed.Status != domain.PositionStatusClosed {
		t.Fatalf("toggle: %+v %v", closed, err)
	}

	open, _ := f.positions.ListOpen(ctx)
	if len(open) != 0 {
		t.Fatalf("closed position still listed: %+v", open)
	}
	if _, err := f.positions.GetPublic(ctx, f.position.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("closed position should be hidden, got %v", err)
	}

	stored, err := f.candidates.Get(ctx, f.recruiter, ana.ID)
	if err != nil || stored.Stage != domain.StageHRReview {
		t.Fatalf("candidate changed: %+v %v", stored, err)
	}
	history, _ := f.candidates.History(ctx, f.recruiter, ana.ID)
	if len(history) != 1 {
		t.Fatalf("history changed: %d entries", len(history))
	}

	reopened, _ := f.positions.ToggleStatus(ctx, f.recruiter, f.position.ID)
	if reopened.Status != domain.PositionStatusOpen {
		t.Fatalf("status = %s", reopened.Status)
	}
}

func TestPositionAdministrationIsRecruiterOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pipeline.ModeFree)

	if _, err := f.positions.ListAll(ctx, f.manager); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.positions.ToggleStatus(ctx, f.manager, f.position.ID); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.positions.ListManagers(ctx, f.manager); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	all, err := f.positions.ListAll(ctx, f.recruiter)
	if err != nil || len(all) != 1 || all[0].ManagerName != "Marta Gil" {
		t.Fatalf("list all = %+v %v", all, err)
	}
	managers, _ := f.positions.ListManagers(ctx, f.recruiter)
	if len(managers) != 2 {
		t.Fatalf("managers = %d", len(managers))
	}
}

func TestCreatePositionValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pipeline.ModeFree)

	_, err := f.positions.Create(ctx, f.recruiter, CreatePositionInput{Title: "Data"})
	details := apperrors.ToDomainError(err).Details
	if details["description"] == nil || details["manager_id"] == nil {
		t.Fatalf("details = %v", details)
	}

	_, err = f.positions.Create(ctx, f.recruiter, CreatePositionInput{Title: "Data", Description: "SQL", ManagerID: f.recruiter.ID})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("recruiter cannot own a position, got %v", err)
	}

	created, err := f.positions.Create(ctx, f.recruiter, CreatePositionInput{Title: "Data", Description: "SQL", ManagerID: f.otherManager.ID})
	if err != nil || created.Status != domain.PositionStatusOpen {
		t.Fatalf("create: %+v %v", created, err)
	}
}
