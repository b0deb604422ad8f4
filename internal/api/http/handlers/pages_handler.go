package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/applicant-tracker/internal/auth"
	"github.com/spec-kit/applicant-tracker/internal/dashboard"
	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/pipeline"
	"github.com/spec-kit/applicant-tracker/internal/policy"
	"github.com/spec-kit/applicant-tracker/internal/service"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// SessionCookie configures the browser session cookie.
type SessionCookie struct {
	Name   string
	Secure bool
}

// PagesHandler renders the HTML views.
type PagesHandler struct {
	positions    *service.PositionService
	applications *service.ApplicationService
	candidates   *service.CandidateService
	auth         *service.AuthService
	cookie       SessionCookie
}

// PagesDependencies bundles the services behind the views.
type PagesDependencies struct {
	Positions    *service.PositionService
	Applications *service.ApplicationService
	Candidates   *service.CandidateService
	Auth         *service.AuthService
	Cookie       SessionCookie
}

// NewPagesHandler constructs handler.
func NewPagesHandler(deps PagesDependencies) *PagesHandler {
	return &PagesHandler{
		positions:    deps.Positions,
		applications: deps.Applications,
		candidates:   deps.Candidates,
		auth:         deps.Auth,
		cookie:       deps.Cookie,
	}
}

type applicationForm struct {
	FullName string
	Email    string
	Phone    string
}

type cardView struct {
	Candidate domain.Candidate
	Targets   []domain.Stage
}

type columnView struct {
	Stage domain.Stage
	Label string
	Cards []cardView
}

// Index GET /.
func (h *PagesHandler) Index(c *fiber.Ctx) error {
	positions, err := h.positions.ListOpen(c.UserContext())
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "index", fiber.Map{"Title": "Vacantes", "Positions": positions})
}

// ApplyForm GET /apply/:positionId.
func (h *PagesHandler) ApplyForm(c *fiber.Ctx) error {
	position, err := h.positions.GetPublic(c.UserContext(), c.Params("positionId"))
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "apply", fiber.Map{
		"Title":    position.Title,
		"Position": position,
		"Form":     applicationForm{},
		"Errors":   map[string]any{},
	})
}

// Apply POST /apply/:positionId.
func (h *PagesHandler) Apply(c *fiber.Ctx) error {
	position, err := h.positions.GetPublic(c.UserContext(), c.Params("positionId"))
	if err != nil {
		return err
	}

	input, closeFile, err := applicationFromForm(c)
	if err == nil {
		defer closeFile()
		_, err = h.applications.Submit(c.UserContext(), input)
	}
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		if domainErr.Code == apperrors.CodeNotFound {
			return err
		}
		fieldErrors := domainErr.Details
		if fieldErrors == nil {
			fieldErrors = map[string]any{}
		}
		return h.render(c, domainErr.HTTPStatus, "apply", fiber.Map{
			"Title":    position.Title,
			"Position": position,
			"Form":     applicationForm{FullName: input.FullName, Email: input.Email, Phone: input.Phone},
			"Errors":   fieldErrors,
			"Error":    domainErr.Message,
		})
	}

	return h.render(c, http.StatusCreated, "apply", fiber.Map{
		"Title":     position.Title,
		"Position":  position,
		"Submitted": true,
		"Name":      domain.FirstName(input.FullName),
	})
}

// LoginForm GET /login.
func (h *PagesHandler) LoginForm(c *fiber.Ctx) error {
	return h.render(c, http.StatusOK, "login", fiber.Map{"Title": "Acceso", "Next": c.Query("next")})
}

// Login POST /login.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	next := c.FormValue("next")
	_, token, exp, err := h.auth.Login(c.UserContext(), email, c.FormValue("password"))
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		if domainErr.HTTPStatus >= http.StatusInternalServerError {
			return err
		}
		return h.render(c, domainErr.HTTPStatus, "login", fiber.Map{
			"Title": "Acceso",
			"Error": domainErr.Message,
			"Email": email,
			"Next":  next,
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(safeNext(next), fiber.StatusSeeOther)
}

// Logout POST /logout.
func (h *PagesHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(auth.LoginPath, fiber.StatusSeeOther)
}

// Dashboard GET /dashboard.
func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	board, err := h.board(c.UserContext(), user)
	if err != nil {
		return err
	}
	return h.renderBoard(c, http.StatusOK, board, "")
}

// MoveCandidate POST /dashboard/candidates/:candidateId/stage. The board is
// updated before the write and restored when the write fails.
func (h *PagesHandler) MoveCandidate(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	candidateID := c.Params("candidateId")
	stage, err := parseStage(c.FormValue("stage"))
	if err != nil {
		return err
	}

	persist := func(ctx context.Context, id string, to domain.Stage) error {
		_, err := h.candidates.SetStage(ctx, user, id, to)
		return err
	}

	returnToDetail := c.FormValue("return") == "detail"
	board, err := h.board(c.UserContext(), user)
	if err != nil {
		return err
	}
	if !board.Contains(candidateID) || returnToDetail {
		if err := persist(c.UserContext(), candidateID, stage); err != nil {
			return err
		}
	} else if err := board.Move(c.UserContext(), candidateID, stage, persist); err != nil {
		domainErr := apperrors.ToDomainError(err)
		return h.renderBoard(c, domainErr.HTTPStatus, board, domainErr.Message)
	}

	if returnToDetail {
		return c.Redirect("/dashboard/candidate/"+candidateID, fiber.StatusSeeOther)
	}
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

// Candidate GET /dashboard/candidate/:candidateId.
func (h *PagesHandler) Candidate(c *fiber.Ctx) error {
	return h.renderCandidate(c, http.StatusOK, "")
}

// AddComment POST /dashboard/candidate/:candidateId/comments.
func (h *PagesHandler) AddComment(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	candidateID := c.Params("candidateId")
	if _, err := h.candidates.AddComment(c.UserContext(), user, candidateID, c.FormValue("body")); err != nil {
		if apperrors.HasCode(err, apperrors.CodeValidation) {
			return h.renderCandidate(c, http.StatusBadRequest, apperrors.ToDomainError(err).Message)
		}
		return err
	}
	return c.Redirect("/dashboard/candidate/"+candidateID, fiber.StatusSeeOther)
}

// Positions GET /dashboard/positions.
func (h *PagesHandler) Positions(c *fiber.Ctx) error {
	return h.renderPositions(c, http.StatusOK, positionForm{}, nil, "")
}

type positionForm struct {
	Title       string
	Description string
	ManagerID   string
}

// CreatePosition POST /dashboard/positions.
func (h *PagesHandler) CreatePosition(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	form := positionForm{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		ManagerID:   c.FormValue("manager_id"),
	}
	_, err = h.positions.Create(c.UserContext(), user, service.CreatePositionInput{
		Title:       form.Title,
		Description: form.Description,
		ManagerID:   form.ManagerID,
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeValidation) {
			domainErr := apperrors.ToDomainError(err)
			return h.renderPositions(c, http.StatusBadRequest, form, domainErr.Details, domainErr.Message)
		}
		return err
	}
	return c.Redirect("/dashboard/positions", fiber.StatusSeeOther)
}

// TogglePosition POST /dashboard/positions/:positionId/toggle.
func (h *PagesHandler) TogglePosition(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if _, err := h.positions.ToggleStatus(c.UserContext(), user, c.Params("positionId")); err != nil {
		return err
	}
	return c.Redirect("/dashboard/positions", fiber.StatusSeeOther)
}

func (h *PagesHandler) board(ctx context.Context, user *domain.User) (*dashboard.Board, error) {
	candidates, err := h.candidates.List(ctx, user)
	if err != nil {
		return nil, err
	}
	return dashboard.Build(candidates, policy.VisibleStages(user)), nil
}

func (h *PagesHandler) renderBoard(c *fiber.Ctx, status int, board *dashboard.Board, message string) error {
	machine := h.candidates.Machine()
	columns := board.Columns()
	views := make([]columnView, 0, len(columns))
	for _, column := range columns {
		view := columnView{Stage: column.Stage, Label: column.Label(), Cards: make([]cardView, 0, len(column.Candidates))}
		for _, candidate := range column.Candidates {
			view.Cards = append(view.Cards, cardView{Candidate: candidate, Targets: moveTargets(machine, candidate.Stage)})
		}
		views = append(views, view)
	}
	return h.render(c, status, "dashboard", fiber.Map{"Title": "Dashboard", "Columns": views, "Error": message})
}

func (h *PagesHandler) renderCandidate(c *fiber.Ctx, status int, commentError string) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	id := c.Params("candidateId")

	candidate, err := h.candidates.Get(ctx, user, id)
	if err != nil {
		return err
	}
	history, err := h.candidates.History(ctx, user, id)
	if err != nil {
		return err
	}
	comments, err := h.candidates.Comments(ctx, user, id)
	if err != nil {
		return err
	}
	resume, err := h.candidates.ResumeURL(ctx, user, id)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return h.render(c, status, "candidate", fiber.Map{
		"Title":        candidate.FullName,
		"Candidate":    candidate,
		"History":      history,
		"Comments":     comments,
		"Resume":       resume,
		"Targets":      moveTargets(h.candidates.Machine(), candidate.Stage),
		"CommentError": commentError,
	})
}

func (h *PagesHandler) renderPositions(c *fiber.Ctx, status int, form positionForm, fieldErrors map[string]any, message string) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	positions, err := h.positions.ListAll(c.UserContext(), user)
	if err != nil {
		return err
	}
	managers, err := h.positions.ListManagers(c.UserContext(), user)
	if err != nil {
		return err
	}
	if fieldErrors == nil {
		fieldErrors = map[string]any{}
	}
	return h.render(c, status, "positions", fiber.Map{
		"Title":     "Puestos",
		"Positions": positions,
		"Managers":  managers,
		"Form":      form,
		"Errors":    fieldErrors,
		"Error":     message,
	})
}

func (h *PagesHandler) render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	if user := auth.UserFromContext(c); user != nil {
		data["User"] = user
		data["CanManagePositions"] = policy.CanManagePositions(user)
	}
	return c.Status(status).Render(name, data)
}

// moveTargets lists the stages a card can be moved to, leaving out the one
// it already sits in.
func moveTargets(machine *pipeline.Machine, current domain.Stage) []domain.Stage {
	targets := machine.Targets(current)
	out := make([]domain.Stage, 0, len(targets))
	for _, stage := range targets {
		if stage != current {
			out = append(out, stage)
		}
	}
	return out
}

// safeNext only follows local redirects.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return "/dashboard"
}
