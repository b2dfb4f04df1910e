package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/gofiber/fiber/v3"
)

// mapErrorToStatus maps service errors to HTTP status codes.
func mapErrorToStatus(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrTokenInvalid),
		errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusGone
	case errors.Is(err, common.ErrTokenUsed):
		return http.StatusConflict
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler is the app-wide fiber error handler. Internal failures are
// logged with their cause and answered with a generic message.
func (s *Server) errorHandler(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error(c.Context(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
