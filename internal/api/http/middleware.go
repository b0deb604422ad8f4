package http

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/spec-kit/applicant-tracker/internal/auth"
	"github.com/spec-kit/applicant-tracker/internal/observability"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

const requestIDKey = "requestid"

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestid.New(requestid.Config{ContextKey: requestIDKey}))
	app.Use(requestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// requestLogger runs outermost so the status it records is the one the
// error middleware wrote.
func requestLogger(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)
		status := c.Response().StatusCode()

		route := c.Route().Path
		if status == fiber.StatusNotFound && route == "/" && c.Path() != "/" {
			route = "unmatched"
		}
		metrics.RecordRequest(route, c.Method(), status, duration)

		fields := []zap.Field{
			zap.String("request_id", requestID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request", fields...)
		case strings.HasPrefix(c.Path(), "/health"), c.Path() == "/metrics":
			logger.Debug("request", fields...)
		default:
			logger.Info("request", fields...)
		}
		return err
	}
}

func errorHandlingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed", zap.String("request_id", requestID(c)), zap.Error(domainErr))
				}
				if wantsJSON(c) {
					err = writeJSONError(c, domainErr)
				} else {
					err = writePageError(c, domainErr)
				}
			}
		}()
		return c.Next()
	}
}

// toDomainError also covers errors raised by fiber itself, such as an
// unmatched route or an oversized body.
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := apperrors.CodeInternal
		message := fiberErr.Message
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			code = apperrors.CodeNotFound
			message = "ruta no encontrada"
		case fiber.StatusRequestEntityTooLarge:
			code = apperrors.CodeValidation
			message = "la solicitud excede el tamaño permitido"
		case fiber.StatusUnauthorized:
			code = apperrors.CodeUnauthorized
		case fiber.StatusForbidden:
			code = apperrors.CodeForbidden
		case fiber.StatusTooManyRequests:
			code = apperrors.CodeRateLimited
		default:
			if fiberErr.Code < fiber.StatusInternalServerError {
				code = apperrors.CodeValidation
			}
		}
		return apperrors.NewDomainError(code, message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func writeJSONError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

func writePageError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	message := domainErr.Message
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		message = "Ocurrió un error inesperado. Intenta de nuevo."
	}
	data := fiber.Map{
		"Title":   "Error",
		"Status":  domainErr.HTTPStatus,
		"Message": message,
	}
	if user := auth.UserFromContext(c); user != nil {
		data["User"] = user
	}
	c.Status(domainErr.HTTPStatus)
	if err := c.Render("error", data); err != nil {
		return c.Status(domainErr.HTTPStatus).SendString(message)
	}
	return nil
}

func wantsJSON(c *fiber.Ctx) bool {
	path := c.Path()
	return strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/health") || path == "/metrics"
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestIDKey).(string); ok {
		return id
	}
	return ""
}
