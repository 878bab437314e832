package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-portal/internal/application/dto"
	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/pkg/logger"
)

// statusFor mapea la categoría del error a su estado HTTP.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindAuthenticationRequired:
		return fiber.StatusUnauthorized
	case domain.KindAuthorizationDenied:
		return fiber.StatusForbidden
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError escribe el envelope de error. Los internos se registran y salen sin detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var ae *domain.AppError
	if !errors.As(err, &ae) || ae.Kind == domain.KindInternal {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail(domain.ErrInternal.Code, domain.ErrInternal.Message))
	}
	return c.Status(statusFor(ae.Kind)).JSON(failOf(ae))
}

func respondOK(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(dto.OK(data))
}

// ErrorHandler errores no manejados de Fiber (404 de ruta, body demasiado grande, panics recuperados).
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := "HTTP_ERROR"
			switch fe.Code {
			case fiber.StatusNotFound:
				code = "NOT_FOUND"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case fiber.StatusRequestEntityTooLarge:
				code = "PAYLOAD_TOO_LARGE"
			}
			return c.Status(fe.Code).JSON(dto.Fail(code, fe.Message))
		}
		return respondError(c, log, err)
	}
}

func failOf(ae *domain.AppError) dto.Envelope {
	return dto.Fail(ae.Code, ae.Message)
}
