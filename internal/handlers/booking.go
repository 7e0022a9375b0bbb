package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/cabsure/cabsure-backend/internal/apperr"
	"github.com/cabsure/cabsure-backend/internal/booking"
	"github.com/cabsure/cabsure-backend/internal/storage"
)

// BookingHandler handles booking-related requests
type BookingHandler struct {
	orchestrator *booking.Orchestrator
	store        storage.Store
	log          *logrus.Logger
	production   bool
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(orchestrator *booking.Orchestrator, store storage.Store, log *logrus.Logger, production bool) *BookingHandler {
	return &BookingHandler{
		orchestrator: orchestrator,
		store:        store,
		log:          log,
		production:   production,
	}
}

// CreateBooking handles creating a new booking through the authorization pipeline
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req struct {
		Phone           string `json:"phone"`
		OtpSessionToken string `json:"otp_session_token"`
		OriginText      string `json:"origin_text"`
		DestinationText string `json:"destination_text"`
		PickupDatetime  string `json:"pickup_datetime"`
		CarType         string `json:"car_type"`
		DiscountCode    string `json:"discount_code"`
		IdempotencyKey  string `json:"idempotency_key"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, h.log, apperr.ValidationFailed("invalid request body"), h.production)
	}

	pickupAt, err := time.Parse(time.RFC3339, req.PickupDatetime)
	if err != nil {
		return respondError(c, h.log, apperr.ValidationFailed("pickup_datetime must be ISO-8601"), h.production)
	}

	res, err := h.orchestrator.CreateBooking(c.UserContext(), booking.Request{
		Phone:           req.Phone,
		OtpSessionToken: req.OtpSessionToken,
		OriginText:      req.OriginText,
		DestinationText: req.DestinationText,
		PickupAt:        pickupAt,
		CarType:         req.CarType,
		DiscountCode:    req.DiscountCode,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		return respondError(c, h.log, err, h.production)
	}

	status := fiber.StatusCreated
	if res.Replayed {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(fiber.Map{
		"ok": true,
		"booking": fiber.Map{
			"id":             res.Booking.ID,
			"fare_quote_inr": res.Booking.FareQuoteInr,
			"event_id":       res.Booking.EventID,
		},
	})
}

// GetBookingByEventID retrieves a booking by its external event ID, the
// identifier confirmation messages and downstream systems carry.
func (h *BookingHandler) GetBookingByEventID(c *fiber.Ctx) error {
	eventID := c.Params("eventID")
	if eventID == "" {
		return respondError(c, h.log, apperr.ValidationFailed("event ID is required"), h.production)
	}

	b, err := h.store.GetBookingByEventID(c.UserContext(), eventID)
	if errors.Is(err, storage.ErrNotFound) {
		return respondError(c, h.log, apperr.NotFound("booking not found"), h.production)
	}
	if err != nil {
		return respondError(c, h.log, err, h.production)
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"booking": b,
	})
}

// GetBooking retrieves a booking by ID
func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return respondError(c, h.log, apperr.ValidationFailed("booking ID is required"), h.production)
	}

	b, err := h.store.GetBooking(c.UserContext(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return respondError(c, h.log, apperr.NotFound("booking not found"), h.production)
	}
	if err != nil {
		return respondError(c, h.log, err, h.production)
	}

	return c.JSON(fiber.Map{
		"ok":      true,
		"booking": b,
	})
}
