package handlers

import (
	"errors"

	"storefront/pkg/apperrors"
	"storefront/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every API response. Code mirrors the HTTP status.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data"`
	Errors  map[string]string `json:"errors,omitempty"`
	Reason  string            `json:"reason,omitempty"`
	Code    int               `json:"code"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Code:    status,
	})
}

func ok(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusOK, message, data)
}

func created(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusCreated, message, data)
}

// ErrorHandler renders every error returned by a handler or middleware into the
// envelope. Internal errors are logged with their stack; their message is only shown
// when exposeInternal is set.
func ErrorHandler(log *logger.Logger, exposeInternal bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(Envelope{Message: fiberErr.Message, Code: fiberErr.Code})
		}

		typed := apperrors.As(err)
		if typed == nil {
			typed = apperrors.Wrap(apperrors.CodeInternal, err, "unexpected error")
		}
		meta := apperrors.MetadataFor(typed.Code())

		message := typed.Message()
		if !meta.Exposed {
			log.Error(c.UserContext(), "request failed", err)
			message = meta.PublicMessage
			if exposeInternal {
				message = err.Error()
			}
		}

		return c.Status(meta.HTTPStatus).JSON(Envelope{
			Message: message,
			Errors:  typed.Fields(),
			Reason:  typed.Reason(),
			Code:    meta.HTTPStatus,
		})
	}
}
