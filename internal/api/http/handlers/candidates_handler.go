package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/applicant-tracker/internal/api/dto"
	"github.com/spec-kit/applicant-tracker/internal/service"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// CandidatesHandler exposes dashboard candidate endpoints.
type CandidatesHandler struct {
	candidates *service.CandidateService
}

// NewCandidatesHandler constructs handler.
func NewCandidatesHandler(candidates *service.CandidateService) *CandidatesHandler {
	return &CandidatesHandler{candidates: candidates}
}

// List GET /api/candidates.
func (h *CandidatesHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	candidates, err := h.candidates.List(c.UserContext(), user)
	if err != nil {
		return err
	}
	items := make([]dto.CandidateResponse, 0, len(candidates))
	for i := range candidates {
		items = append(items, dto.NewCandidate(&candidates[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/candidates/:id.
func (h *CandidatesHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	candidate, err := h.candidates.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCandidate(candidate)})
}

// SetStage PATCH /api/candidates/:id/stage.
func (h *CandidatesHandler) SetStage(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SetStageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("solicitud inválida", nil)
	}
	stage, err := parseStage(req.Stage)
	if err != nil {
		return err
	}

	change, err := h.candidates.SetStage(c.UserContext(), user, c.Params("id"), stage)
	if err != nil {
		return err
	}
	resp := dto.StageChangeResponse{Candidate: dto.NewCandidate(change.Candidate)}
	if change.Entry != nil {
		entry := dto.NewHistoryEntry(change.Entry)
		resp.Entry = &entry
	}
	return c.JSON(fiber.Map{"data": resp})
}

// History GET /api/candidates/:id/history.
func (h *CandidatesHandler) History(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	entries, err := h.candidates.History(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewHistoryEntry(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Comments GET /api/candidates/:id/comments.
func (h *CandidatesHandler) Comments(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	comments, err := h.candidates.Comments(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.NewComment(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /api/candidates/:id/comments.
func (h *CandidatesHandler) AddComment(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("solicitud inválida", nil)
	}
	comment, err := h.candidates.AddComment(c.UserContext(), user, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewComment(comment)})
}

// ResumeURL GET /api/candidates/:id/resume-url.
func (h *CandidatesHandler) ResumeURL(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	link, err := h.candidates.ResumeURL(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.ResumeLinkResponse{Available: link.Available}
	if link.Available {
		resp.URL = link.URL
		expires := link.ExpiresAt
		resp.ExpiresAt = &expires
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": resp})
}
