package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/policy"
)

func seed(t *testing.T) (*Store, *domain.User, *domain.Position) {
	t.Helper()
	ctx := context.Background()
	store := NewStore()
	manager := &domain.User{FullName: "Marta Gil", Email: "marta@example.com", Role: domain.RoleAreaManager}
	if err := store.Users().Create(ctx, manager); err != nil {
		t.Fatalf("create manager: %v", err)
	}
	position := &domain.Position{Title: "Backend", Description: "Go", Status: domain.PositionStatusOpen, ManagerID: manager.ID}
	if err := store.Positions().Create(ctx, position); err != nil {
		t.Fatalf("create position: %v", err)
	}
	return store, manager, position
}

func TestUpdateStageAppendsHistory(t *testing.T) {
	ctx := context.Background()
	store, _, position := seed(t)

	candidate := &domain.Candidate{PositionID: position.ID, FullName: "Ana Ruiz", Email: "ana@x.com", ResumePath: "public/a.pdf", Stage: domain.StageApplicationReceived}
	if err := store.Candidates().Create(ctx, candidate); err != nil {
		t.Fatalf("create candidate: %v", err)
	}

	entry, err := store.Candidates().UpdateStage(ctx, candidate.ID, domain.StageHRReview, nil, nil)
	if err != nil || entry == nil {
		t.Fatalf("update stage: %v %v", entry, err)
	}
	if _, err := store.Candidates().UpdateStage(ctx, candidate.ID, domain.StageManagerReview, nil, nil); err != nil {
		t.Fatalf("update stage: %v", err)
	}

	same, err := store.Candidates().UpdateStage(ctx, candidate.ID, domain.StageManagerReview, nil, nil)
	if err != nil || same != nil {
		t.Fatalf("same-stage update should be a no-op, got %v %v", same, err)
	}

	history, _ := store.History().ListByCandidate(ctx, candidate.ID)
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].NewStage != domain.StageManagerReview || history[0].PreviousStage != domain.StageHRReview {
		t.Fatalf("newest entry first, got %+v", history[0])
	}

	stored, _ := store.Candidates().GetByID(ctx, candidate.ID)
	if stored.Stage != history[0].NewStage {
		t.Fatalf("candidate stage %s does not match newest history %s", stored.Stage, history[0].NewStage)
	}
}

func TestCandidateListAppliesScope(t *testing.T) {
	ctx := context.Background()
	store, manager, position := seed(t)

	for _, stage := range []domain.Stage{domain.StageApplicationReceived, domain.StageManagerReview} {
		c := &domain.Candidate{PositionID: position.ID, FullName: "C " + string(stage), Email: "c@x.com", ResumePath: "p", Stage: stage}
		if err := store.Candidates().Create(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, _ := store.Candidates().List(ctx, policy.CandidateScope{})
	if len(all) != 2 {
		t.Fatalf("unscoped list = %d", len(all))
	}
	scoped, _ := store.Candidates().List(ctx, policy.CandidateScopeFor(manager))
	if len(scoped) != 1 || scoped[0].Stage != domain.StageManagerReview {
		t.Fatalf("manager list = %+v", scoped)
	}
	if scoped[0].PositionTitle != "Backend" {
		t.Fatalf("position title not joined: %q", scoped[0].PositionTitle)
	}
}

func TestMissingRecordsReturnNoRows(t *testing.T) {
	store := NewStore()
	if _, err := store.Candidates().GetByID(context.Background(), "missing"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if _, err := store.Positions().UpdateStatus(context.Background(), "missing", domain.PositionStatusClosed); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestCommentsNewestFirstWithAuthor(t *testing.T) {
	ctx := context.Background()
	store, manager, position := seed(t)
	candidate := &domain.Candidate{PositionID: position.ID, FullName: "Ana", Email: "a@x.com", ResumePath: "p", Stage: domain.StageApplicationReceived}
	_ = store.Candidates().Create(ctx, candidate)

	for _, body := range []string{"primero", "segundo"} {
		if err := store.Comments().Create(ctx, &domain.Comment{CandidateID: candidate.ID, AuthorID: manager.ID, Body: body}); err != nil {
			t.Fatalf("comment: %v", err)
		}
	}
	comments, _ := store.Comments().ListByCandidate(ctx, candidate.ID)
	if len(comments) != 2 || comments[0].Body != "segundo" || comments[0].AuthorName != "Marta Gil" {
		t.Fatalf("comments = %+v", comments)
	}
}
