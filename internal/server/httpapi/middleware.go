package httpapi

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/gofiber/fiber/v2"
)

const ownerKey = "userId"

// authJWT resolves the bearer token to its user and stores the ID in the
// request locals.
func (s *HTTPServer) authJWT(c *fiber.Ctx) error {
	authHeader := c.Get(common.AuthorizationHeaderName)
	if authHeader == "" || !strings.HasPrefix(authHeader, common.BearerPrefix) {
		return handleError(c, fiber.StatusUnauthorized, "missing or invalid Authorization header")
	}

	userID, err := s.services.Users.Authenticate(strings.TrimPrefix(authHeader, common.BearerPrefix))
	if err != nil {
		return handleError(c, fiber.StatusUnauthorized, "invalid or expired token")
	}

	c.Locals(ownerKey, userID)
	return c.Next()
}

func owner(c *fiber.Ctx) int64 {
	id, _ := c.Locals(ownerKey).(int64)
	return id
}

// requestLogger logs every request with its status and latency.
func (s *HTTPServer) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = statusFor(err)
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}

	s.logger.Debug(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start))
	return err
}
