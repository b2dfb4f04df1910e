package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/server/auth"
	"github.com/gofiber/fiber/v3"
)

const userIDKey = "userID"

// requireUser validates the bearer token and stores the caller's id in Locals.
func (s *Server) requireUser(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return fmt.Errorf("%w: missing bearer token", common.ErrorUnauthorized)
	}

	claims, err := auth.ParseToken(token, s.secret)
	if err != nil {
		return err
	}

	c.Locals(userIDKey, claims.UserID)
	return c.Next()
}

func extractToken(c fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func userID(c fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func (s *Server) logRequests(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = mapErrorToStatus(err)
	}
	s.log.Info(c.Context(), "http request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start))
	return err
}
