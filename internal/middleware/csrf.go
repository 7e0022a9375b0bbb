package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cabsure/cabsure-backend/internal/csrf"
)

// RequireCSRF rejects state-changing requests whose x-csrf-token header does
// not match the HMAC-verified csrf_token cookie. Safe methods pass through
// untouched. Rejection happens before any business logic runs.
func RequireCSRF(guard *csrf.Guard, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		token := c.Get(csrf.HeaderName)
		cookieValue := c.Cookies(csrf.CookieName)

		if !guard.Validate(token, cookieValue) {
			correlationID := uuid.New().String()
			log.WithFields(logrus.Fields{
				"correlation_id": correlationID,
				"path":           c.Path(),
				"method":         c.Method(),
			}).Warn("csrf validation failed")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"ok":             false,
				"error":          "FORBIDDEN",
				"message":        "csrf token missing or invalid",
				"correlation_id": correlationID,
			})
		}

		return c.Next()
	}
}
