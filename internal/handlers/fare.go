package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/cabsure/cabsure-backend/internal/apperr"
	"github.com/cabsure/cabsure-backend/internal/fare"
	"github.com/cabsure/cabsure-backend/internal/models"
)

// FareHandler serves read-only fare previews for the booking form
type FareHandler struct {
	engine     *fare.Engine
	log        *logrus.Logger
	production bool
}

// NewFareHandler creates a new fare handler
func NewFareHandler(engine *fare.Engine, log *logrus.Logger, production bool) *FareHandler {
	return &FareHandler{engine: engine, log: log, production: production}
}

// Quote prices a route without requiring verification. The returned number is
// a preview; the booking pipeline re-derives the authoritative fare.
func (h *FareHandler) Quote(c *fiber.Ctx) error {
	origin := c.Query("origin")
	destination := c.Query("destination")
	carType := c.Query("car_type", models.CarTypeHatchback)

	if origin == "" || destination == "" {
		return respondError(c, h.log, apperr.ValidationFailed("origin and destination are required"), h.production)
	}
	if !models.ValidCarType(carType) {
		return respondError(c, h.log, apperr.ValidationFailed("car_type must be one of HATCHBACK, SEDAN, SUV"), h.production)
	}

	q := h.engine.Quote(origin, destination, carType)

	return c.JSON(fiber.Map{
		"ok":           true,
		"fare_inr":     q.FareInr,
		"distance_km":  q.DistanceKm,
		"duration_min": q.DurationMin,
		"known_route":  q.KnownRoute,
	})
}
