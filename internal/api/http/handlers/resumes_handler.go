package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/applicant-tracker/internal/storage"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// ResumesHandler serves signed links of the in-memory résumé store. It is
// only mounted when no object storage endpoint is configured.
type ResumesHandler struct {
	store *storage.MemoryStore
}

// NewResumesHandler constructs handler.
func NewResumesHandler(store *storage.MemoryStore) *ResumesHandler {
	return &ResumesHandler{store: store}
}

// Download GET /resumes/:token.
func (h *ResumesHandler) Download(c *fiber.Ctx) error {
	obj, ok := h.store.Resolve(c.Params("token"))
	if !ok {
		return apperrors.NewNotFound("resume", nil)
	}
	c.Set(fiber.HeaderContentType, obj.ContentType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(obj.Data)
}
