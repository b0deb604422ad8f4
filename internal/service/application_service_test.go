package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/pipeline"
	"github.com/spec-kit/applicant-tracker/internal/policy"
	"github.com/spec-kit/applicant-tracker/internal/repository"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

func TestSubmitCreatesCandidateWithStoredPath(t *testing.T) {
	f := newFixture(t, pipeline.ModeFree)
	candidate := f.apply(t, "Ana Ruiz", "Ana@X.com")

	if candidate.Stage != domain.StageApplicationReceived {
		t.Fatalf("stage = %s", candidate.Stage)
	}
	pattern := regexp.MustCompile(`^public/ana@x\.com-\d+-[0-9a-f]{8}\.pdf$`)
	if !pattern.MatchString(candidate.ResumePath) {
		t.Fatalf("unexpected path %q", candidate.ResumePath)
	}
	if strings.HasPrefix(candidate.ResumePath, "http") {
		t.Fatal("candidate must reference a path, not a URL")
	}
	if !f.files.Has(candidate.ResumePath) {
		t.Fatal("resume not uploaded")
	}
}

func TestSubmitWithoutResumeCreatesNothing(t *testing.T) {
	f := newFixture(t, pipeline.ModeFree)
	_, err := f.applications.Submit(context.Background(), SubmitApplicationInput{
		PositionID: f.position.ID,
		FullName:   "Ana Ruiz",
		Email:      "ana@x.com",
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if details := apperrors.ToDomainError(err).Details; details["cv"] == nil {
		t.Fatalf("expected cv detail, got %v", details)
	}

	all, _ := f.db.Candidates().List(context.Background(), policy.CandidateScope{})
	if len(all) != 0 || f.files.Len() != 0 {
		t.Fatalf("nothing should be written: %d candidates, %d files", len(all), f.files.Len())
	}
}

func TestSubmitValidatesFields(t *testing.T) {
	f := newFixture(t, pipeline.ModeFree)
	_, err := f.applications.Submit(context.Background(), SubmitApplicationInput{
		PositionID: f.position.ID,
		FullName:   "  ",
		Email:      "not-an-email",
		Resume:     pdf("cv.pdf"),
	})
	details := apperrors.ToDomainError(err).Details
	if details["full_name"] == nil || details["email"] == nil {
		t.Fatalf("expected name and email details, got %v", details)
	}
	if f.files.Len() != 0 {
		t.Fatal("nothing should be uploaded")
	}
}

func TestSubmitRejectsClosedAndMissingPositions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pipeline.ModeFree)

	_, err := f.applications.Submit(ctx, SubmitApplicationInput{PositionID: "missing", FullName: "A", Email: "a@x.com", Resume: pdf("a.pdf")})
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := f.positions.ToggleStatus(ctx, f.recruiter, f.position.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	_, err = f.applications.Submit(ctx, SubmitApplicationInput{PositionID: f.position.ID, FullName: "A", Email: "a@x.com", Resume: pdf("a.pdf")})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error for closed position, got %v", err)
	}
}

func TestSubmitUploadFailure(t *testing.T) {
	f := newFixture(t, pipeline.ModeFree)
	f.files.FailUpload = errors.New("bucket unavailable")

	_, err := f.applications.Submit(context.Background(), SubmitApplicationInput{
		PositionID: f.position.ID, FullName: "Ana", Email: "ana@x.com", Resume: pdf("cv.pdf"),
	})
	if !apperrors.HasCode(err, apperrors.CodeUpload) {
		t.Fatalf("expected upload error, got %v", err)
	}
	all, _ := f.db.Candidates().List(context.Background(), policy.CandidateScope{})
	if len(all) != 0 {
		t.Fatal("no candidate should exist after a failed upload")
	}
}

type failingCandidates struct {
	repository.CandidateRepository
}

func (failingCandidates) Create(context.Context, *domain.Candidate) error {
	return &pgconn.PgError{Code: "08006", Message: "connection failure"}
}

func TestSubmitPersistenceFailureRemovesUpload(t *testing.T) {
	f := newFixture(t, pipeline.ModeFree)
	svc := NewApplicationService(ApplicationDependencies{
		PositionRepo:  f.db.Positions(),
		CandidateRepo: failingCandidates{f.db.Candidates()},
		Store:         f.files,
	})

	_, err := svc.Submit(context.Background(), SubmitApplicationInput{
		PositionID: f.position.ID, FullName: "Ana", Email: "ana@x.com", Resume: pdf("cv.pdf"),
	})
	if !apperrors.HasCode(err, apperrors.CodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if f.files.Len() != 0 {
		t.Fatal("orphaned upload should have been removed")
	}
}
