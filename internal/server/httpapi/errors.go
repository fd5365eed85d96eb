package httpapi

import (
	"errors"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, common.ErrConstraintViolation):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common.ErrDuplicateVersion), errors.Is(err, common.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

func handleError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{Status: status, Message: message})
}

// errorHandler renders errors returned by handlers. Internal errors are
// logged and hidden from the client.
func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return handleError(c, fe.Code, fe.Message)
	}

	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return handleError(c, status, "internal error")
	}

	return handleError(c, status, err.Error())
}
