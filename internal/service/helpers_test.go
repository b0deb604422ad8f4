package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/events"
	"github.com/spec-kit/applicant-tracker/internal/pipeline"
	"github.com/spec-kit/applicant-tracker/internal/repository/memory"
	"github.com/spec-kit/applicant-tracker/internal/storage"
)

type sentNotification struct {
	Email string
	Name  string
	Stage domain.Stage
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, email, name string, stage domain.Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{Email: email, Name: name, Stage: stage})
	return f.err
}

type fixture struct {
	db           *memory.Store
	files        *storage.MemoryStore
	notifier     *fakeNotifier
	mail         *NotificationService
	applications *ApplicationService
	candidates   *CandidateService
	positions    *PositionService
	recruiter    *domain.User
	manager      *domain.User
	otherManager *domain.User
	position     *domain.Position
}

func newFixture(t *testing.T, mode pipeline.Mode) *fixture {
	t.Helper()
	ctx := context.Background()
	db := memory.NewStore()
	files := storage.NewMemoryStore("/resumes")
	notifier := &fakeNotifier{}
	dispatcher := events.NewInMemoryDispatcher()
	notifications := NewNotificationService(dispatcher, notifier, nil, nil)
	notifications.RegisterHandlers()

	f := &fixture{
		db:       db,
		files:    files,
		notifier: notifier,
		mail:     notifications,
		applications: NewApplicationService(ApplicationDependencies{
			PositionRepo:   db.Positions(),
			CandidateRepo:  db.Candidates(),
			Store:          files,
			Dispatcher:     dispatcher,
			MaxUploadBytes: 1 << 20,
		}),
		candidates: NewCandidateService(CandidateDependencies{
			CandidateRepo: db.Candidates(),
			HistoryRepo:   db.History(),
			CommentRepo:   db.Comments(),
			Store:         files,
			Machine:       pipeline.NewMachine(mode),
			Dispatcher:    dispatcher,
		}),
		positions: NewPositionService(PositionDependencies{
			PositionRepo: db.Positions(),
			UserRepo:     db.Users(),
			Dispatcher:   dispatcher,
		}),
	}

	f.recruiter = mustUser(t, db, "Rocío Recruiter", "rh@example.com", domain.RoleRecruiter)
	f.manager = mustUser(t, db, "Marta Gil", "marta@example.com", domain.RoleAreaManager)
	f.otherManager = mustUser(t, db, "Luis Paz", "luis@example.com", domain.RoleAreaManager)

	position, err := f.positions.Create(ctx, f.recruiter, CreatePositionInput{
		Title:       "Backend Engineer",
		Description: "Go services",
		ManagerID:   f.manager.ID,
	})
	if err != nil {
		t.Fatalf("create position: %v", err)
	}
	f.position = position
	return f
}

// sentNotifications drains pending e-mails and returns what the fake saw.
func (f *fixture) sentNotifications() []sentNotification {
	f.mail.Wait()
	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	return append([]sentNotification(nil), f.notifier.sent...)
}

func mustUser(t *testing.T, db *memory.Store, name, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{FullName: name, Email: email, PasswordHash: "x", Role: role}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (f *fixture) apply(t *testing.T, name, email string) *domain.Candidate {
	t.Helper()
	candidate, err := f.applications.Submit(context.Background(), SubmitApplicationInput{
		PositionID: f.position.ID,
		FullName:   name,
		Email:      email,
		Resume:     pdf("cv.pdf"),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return candidate
}

func pdf(name string) *ResumeFile {
	body := "%PDF-1.4 test"
	return &ResumeFile{FileName: name, ContentType: "application/pdf", Size: int64(len(body)), Reader: strings.NewReader(body)}
}
