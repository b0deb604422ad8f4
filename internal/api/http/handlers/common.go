package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/applicant-tracker/internal/auth"
	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/service"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// ResumeField is the multipart field carrying the résumé.
const ResumeField = "cv"

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user := auth.UserFromContext(c)
	if user == nil {
		return nil, apperrors.NewUnauthorized("inicia sesión para continuar")
	}
	return user, nil
}

func parseStage(raw string) (domain.Stage, error) {
	stage, ok := domain.ParseStage(raw)
	if !ok {
		return "", apperrors.NewValidationError("etapa desconocida", map[string]any{"stage": raw})
	}
	return stage, nil
}

// applicationFromForm reads the intake form. A missing file yields a nil
// Resume so the service reports it as a field error. The returned func
// closes the opened file.
func applicationFromForm(c *fiber.Ctx) (service.SubmitApplicationInput, func(), error) {
	input := service.SubmitApplicationInput{
		PositionID: c.Params("positionId"),
		FullName:   c.FormValue("full_name"),
		Email:      c.FormValue("email"),
		Phone:      c.FormValue("phone"),
	}
	noop := func() {}

	header, err := c.FormFile(ResumeField)
	if err != nil || header == nil || header.Size == 0 {
		return input, noop, nil
	}
	file, err := header.Open()
	if err != nil {
		return input, noop, apperrors.NewValidationError("no se pudo leer el archivo", map[string]any{ResumeField: "ilegible"})
	}
	input.Resume = resumeFile(header, file)
	return input, func() { _ = file.Close() }, nil
}

func resumeFile(header *multipart.FileHeader, file multipart.File) *service.ResumeFile {
	return &service.ResumeFile{
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Reader:      file,
	}
}
