package rest

import (
	"strings"
	"time"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/common"
	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userID"

// requireAccessToken resolves the bearer token to a user ID stored in
// c.Locals; anything else is a 401.
func (s *Server) requireAccessToken(c *fiber.Ctx) error {
	header := c.Get(common.AuthorizationHeaderName)
	accessToken, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok || accessToken == "" {
		return respondUnauthorized(c, "missing token")
	}

	userID, err := s.users.Authenticate(accessToken)
	if err != nil {
		return respondUnauthorized(c, err.Error())
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"request_id", c.Get(common.RequestIDHeaderName),
		"device_id", c.Get(common.DeviceIDHeaderName),
		"elapsed", time.Since(start),
	)
	return err
}

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
