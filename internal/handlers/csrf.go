package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/cabsure/cabsure-backend/internal/csrf"
)

// CSRFHandler issues double-submit tokens to the booking form
type CSRFHandler struct {
	guard      *csrf.Guard
	log        *logrus.Logger
	production bool
}

// NewCSRFHandler creates a new CSRF token handler
func NewCSRFHandler(guard *csrf.Guard, log *logrus.Logger, production bool) *CSRFHandler {
	return &CSRFHandler{guard: guard, log: log, production: production}
}

// Issue sets the signed cookie and returns the raw token the client must echo
// in the x-csrf-token header on every non-GET request.
func (h *CSRFHandler) Issue(c *fiber.Ctx) error {
	cookieValue, token, err := h.guard.Issue()
	if err != nil {
		return respondError(c, h.log, err, h.production)
	}

	c.Cookie(&fiber.Cookie{
		Name:     csrf.CookieName,
		Value:    cookieValue,
		Expires:  time.Now().Add(csrf.CookieTTL),
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return c.JSON(fiber.Map{
		"ok":         true,
		"csrf_token": token,
	})
}
