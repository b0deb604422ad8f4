package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/applicant-tracker/internal/api/http/handlers"
	"github.com/spec-kit/applicant-tracker/internal/auth"
	"github.com/spec-kit/applicant-tracker/internal/config"
	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/events"
	"github.com/spec-kit/applicant-tracker/internal/pipeline"
	"github.com/spec-kit/applicant-tracker/internal/policy"
	"github.com/spec-kit/applicant-tracker/internal/repository/memory"
	"github.com/spec-kit/applicant-tracker/internal/service"
	"github.com/spec-kit/applicant-tracker/internal/storage"
)

const testPassword = "secreto123"

type stubLimiter struct {
	remaining int
}

func (l *stubLimiter) Allow(context.Context, string) (bool, error) {
	if l.remaining <= 0 {
		return false, nil
	}
	l.remaining--
	return true, nil
}

type testServer struct {
	app       *fiber.App
	db        *memory.Store
	files     *storage.MemoryStore
	tokens    *auth.TokenManager
	recruiter *domain.User
	manager   *domain.User
	position  *domain.Position
}

func newTestServer(t *testing.T, limiter Limiter) *testServer {
	t.Helper()
	return newTestServerWithMode(t, limiter, pipeline.ModeFree)
}

func newTestServerWithMode(t *testing.T, limiter Limiter, mode pipeline.Mode) *testServer {
	t.Helper()
	ctx := context.Background()
	db := memory.NewStore()
	files := storage.NewMemoryStore("/resumes")
	dispatcher := events.NewInMemoryDispatcher()

	authCfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4, CookieName: "ats_session"}
	authService := service.NewAuthService(authCfg, service.AuthDependencies{UserRepo: db.Users()})
	positions := service.NewPositionService(service.PositionDependencies{
		PositionRepo: db.Positions(),
		UserRepo:     db.Users(),
		Dispatcher:   dispatcher,
	})
	applications := service.NewApplicationService(service.ApplicationDependencies{
		PositionRepo:   db.Positions(),
		CandidateRepo:  db.Candidates(),
		Store:          files,
		Dispatcher:     dispatcher,
		MaxUploadBytes: 1 << 20,
	})
	candidates := service.NewCandidateService(service.CandidateDependencies{
		CandidateRepo: db.Candidates(),
		HistoryRepo:   db.History(),
		CommentRepo:   db.Comments(),
		Store:         files,
		Machine:       pipeline.NewMachine(mode),
		Dispatcher:    dispatcher,
	})

	recruiter, err := authService.CreateUser(ctx, service.CreateUserInput{
		FullName: "Rita Reclutadora", Email: "rita@example.com", Password: testPassword, Role: domain.RoleRecruiter,
	})
	if err != nil {
		t.Fatalf("create recruiter: %v", err)
	}
	manager, err := authService.CreateUser(ctx, service.CreateUserInput{
		FullName: "Mario Gerente", Email: "mario@example.com", Password: testPassword, Role: domain.RoleAreaManager,
	})
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}
	position := &domain.Position{Title: "Backend Developer", Description: "Go", Status: domain.PositionStatusOpen, ManagerID: manager.ID}
	if err := db.Positions().Create(ctx, position); err != nil {
		t.Fatalf("create position: %v", err)
	}

	app := New(AppConfig{Name: "test"})
	var intake fiber.Handler
	if limiter != nil {
		intake = IntakeRateLimit(limiter, nil, nil)
	}
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("test", "dev", nil),
		Pages: handlers.NewPagesHandler(handlers.PagesDependencies{
			Positions:    positions,
			Applications: applications,
			Candidates:   candidates,
			Auth:         authService,
			Cookie:       handlers.SessionCookie{Name: authCfg.CookieName},
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Positions:      handlers.NewPositionsHandler(positions),
		Applications:   handlers.NewApplicationsHandler(applications),
		Candidates:     handlers.NewCandidatesHandler(candidates),
		Resumes:        handlers.NewResumesHandler(files),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), db.Users(), authCfg.CookieName),
		IntakeLimiter:  intake,
	})

	return &testServer{
		app:       app,
		db:        db,
		files:     files,
		tokens:    authService.TokenManager(),
		recruiter: recruiter,
		manager:   manager,
		position:  position,
	}
}

func (s *testServer) do(t *testing.T, req *nethttp.Request) *nethttp.Response {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

func (s *testServer) login(t *testing.T, email string) *nethttp.Cookie {
	t.Helper()
	form := url.Values{"email": {email}, "password": {testPassword}}
	req := httptest.NewRequest(nethttp.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp := s.do(t, req)
	if resp.StatusCode != nethttp.StatusSeeOther {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "ats_session" && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func (s *testServer) bearer(t *testing.T, user *domain.User) string {
	t.Helper()
	token, _, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + token
}

func applicationBody(t *testing.T, withResume bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("full_name", "Ana Ruiz")
	_ = writer.WriteField("email", "ana@example.com")
	_ = writer.WriteField("phone", "+52 555 0000")
	if withResume {
		part, err := writer.CreateFormFile(handlers.ResumeField, "cv.pdf")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = part.Write([]byte("%PDF-1.4 test"))
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func (s *testServer) apply(t *testing.T, withResume bool) *nethttp.Response {
	t.Helper()
	body, contentType := applicationBody(t, withResume)
	req := httptest.NewRequest(nethttp.MethodPost, "/apply/"+s.position.ID, body)
	req.Header.Set(fiber.HeaderContentType, contentType)
	return s.do(t, req)
}

func decodeError(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	var payload struct {
		Error map[string]any `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return payload.Error
}

func TestHealthLive(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.do(t, httptest.NewRequest(nethttp.MethodGet, "/health/live", nil))
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestDashboardRedirectsToLoginWithoutSession(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.do(t, httptest.NewRequest(nethttp.MethodGet, "/dashboard", nil))
	if resp.StatusCode != nethttp.StatusSeeOther {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if loc := resp.Header.Get(fiber.HeaderLocation); !strings.HasPrefix(loc, "/login") {
		t.Fatalf("location = %q", loc)
	}
}

func TestLoginRedirectsToDashboard(t *testing.T) {
	s := newTestServer(t, nil)
	cookie := s.login(t, "rita@example.com")

	req := httptest.NewRequest(nethttp.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	resp := s.do(t, req)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}
}

func TestLoginWithWrongPasswordRendersForm(t *testing.T) {
	s := newTestServer(t, nil)
	form := url.Values{"email": {"rita@example.com"}, "password": {"equivocada"}}
	req := httptest.NewRequest(nethttp.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp := s.do(t, req)
	if resp.StatusCode != nethttp.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "ats_session" && cookie.Value != "" {
			t.Fatal("session cookie should not be set")
		}
	}
}

func TestAPIRequiresAuthentication(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/candidates", nil))
	if resp.StatusCode != nethttp.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeError(t, resp)
	if body["code"] != "UNAUTHORIZED" || body["message"] != "faltan credenciales" {
		t.Fatalf("error = %v", body)
	}
}

func TestManagerCannotManagePositions(t *testing.T) {
	s := newTestServer(t, nil)
	cookie := s.login(t, "mario@example.com")

	req := httptest.NewRequest(nethttp.MethodGet, "/dashboard/positions", nil)
	req.AddCookie(cookie)
	resp := s.do(t, req)
	if resp.StatusCode != nethttp.StatusForbidden {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	apiReq := httptest.NewRequest(nethttp.MethodGet, "/api/admin/positions", nil)
	apiReq.Header.Set(fiber.HeaderAuthorization, s.bearer(t, s.manager))
	apiResp := s.do(t, apiReq)
	if apiResp.StatusCode != nethttp.StatusForbidden {
		t.Fatalf("api status = %d", apiResp.StatusCode)
	}
}

func TestApplyThenListAsRecruiter(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.apply(t, true)
	if resp.StatusCode != nethttp.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d body=%s", resp.StatusCode, body)
	}
	if s.files.Len() != 1 {
		t.Fatalf("stored files = %d", s.files.Len())
	}

	req := httptest.NewRequest(nethttp.MethodGet, "/api/candidates", nil)
	req.Header.Set(fiber.HeaderAuthorization, s.bearer(t, s.recruiter))
	listResp := s.do(t, req)
	if listResp.StatusCode != nethttp.StatusOK {
		t.Fatalf("list status = %d", listResp.StatusCode)
	}
	var payload struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0]["stage"] != string(domain.StageApplicationReceived) {
		t.Fatalf("candidates = %v", payload.Data)
	}

	managerReq := httptest.NewRequest(nethttp.MethodGet, "/api/candidates", nil)
	managerReq.Header.Set(fiber.HeaderAuthorization, s.bearer(t, s.manager))
	managerResp := s.do(t, managerReq)
	payload.Data = nil
	if err := json.NewDecoder(managerResp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Data) != 0 {
		t.Fatalf("manager should not see received applications, got %v", payload.Data)
	}
}

func TestApplyWithoutResumeIsRejected(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.apply(t, false)
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if s.files.Len() != 0 {
		t.Fatalf("nothing should be stored, got %d", s.files.Len())
	}
}

func TestApplyIsRateLimited(t *testing.T) {
	s := newTestServer(t, &stubLimiter{remaining: 1})
	if resp := s.apply(t, true); resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("first status = %d", resp.StatusCode)
	}
	if resp := s.apply(t, true); resp.StatusCode != nethttp.StatusTooManyRequests {
		t.Fatalf("second status = %d", resp.StatusCode)
	}
	if s.files.Len() != 1 {
		t.Fatalf("stored files = %d", s.files.Len())
	}
}

func TestMoveCandidateFromDashboard(t *testing.T) {
	s := newTestServer(t, nil)
	if resp := s.apply(t, true); resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("apply status = %d", resp.StatusCode)
	}
	list, err := s.db.Candidates().List(context.Background(), policy.CandidateScope{})
	if err != nil || len(list) != 1 {
		t.Fatalf("candidates = %v err=%v", list, err)
	}
	candidate := list[0]

	cookie := s.login(t, "rita@example.com")
	form := url.Values{"stage": {string(domain.StageManagerReview)}}
	req := httptest.NewRequest(nethttp.MethodPost, "/dashboard/candidates/"+candidate.ID+"/stage", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.AddCookie(cookie)
	resp := s.do(t, req)
	if resp.StatusCode != nethttp.StatusSeeOther {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if loc := resp.Header.Get(fiber.HeaderLocation); loc != "/dashboard" {
		t.Fatalf("location = %q", loc)
	}

	history, err := s.db.History().ListByCandidate(context.Background(), candidate.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].NewStage != domain.StageManagerReview {
		t.Fatalf("history = %+v", history)
	}
}

func TestRejectedMoveRerendersBoardWithCardInPlace(t *testing.T) {
	ctx := context.Background()
	s := newTestServerWithMode(t, nil, pipeline.ModeForwardOnly)
	if resp := s.apply(t, true); resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("apply status = %d", resp.StatusCode)
	}
	list, err := s.db.Candidates().List(ctx, policy.CandidateScope{})
	if err != nil || len(list) != 1 {
		t.Fatalf("candidates = %v err=%v", list, err)
	}
	candidate := list[0]
	if _, err := s.db.Candidates().UpdateStage(ctx, candidate.ID, domain.StageHRReview, &s.recruiter.ID, nil); err != nil {
		t.Fatalf("seed stage: %v", err)
	}

	cookie := s.login(t, "rita@example.com")
	form := url.Values{"stage": {string(domain.StageApplicationReceived)}}
	req := httptest.NewRequest(nethttp.MethodPost, "/dashboard/candidates/"+candidate.ID+"/stage", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.AddCookie(cookie)
	resp := s.do(t, req)
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	page := string(raw)
	if !strings.Contains(page, `<div class="error">cambio de etapa no permitido</div>`) {
		t.Fatalf("error banner missing:\n%s", page)
	}

	link := "/dashboard/candidate/" + candidate.ID
	var lane string
	for _, section := range strings.Split(page, `<section class="lane">`)[1:] {
		if strings.Contains(section, link) {
			lane = section
			break
		}
	}
	if !strings.Contains(lane, "<h3>"+domain.StageHRReview.Label()+" (1)</h3>") {
		t.Fatalf("card not back in its lane:\n%s", lane)
	}

	stored, err := s.db.Candidates().GetByID(ctx, candidate.ID)
	if err != nil || stored.Stage != domain.StageHRReview {
		t.Fatalf("stored stage = %v err=%v", stored, err)
	}
}

func TestUnknownPageRendersNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.do(t, httptest.NewRequest(nethttp.MethodGet, "/no-such-page", nil))
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, fiber.MIMETextHTML) {
		t.Fatalf("content type = %q", ct)
	}
}
