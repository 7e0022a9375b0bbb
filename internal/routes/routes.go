package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/cabsure/cabsure-backend/internal/booking"
	"github.com/cabsure/cabsure-backend/internal/csrf"
	"github.com/cabsure/cabsure-backend/internal/fare"
	"github.com/cabsure/cabsure-backend/internal/handlers"
	"github.com/cabsure/cabsure-backend/internal/middleware"
	"github.com/cabsure/cabsure-backend/internal/otp"
	"github.com/cabsure/cabsure-backend/internal/ratelimit"
	"github.com/cabsure/cabsure-backend/internal/services"
	"github.com/cabsure/cabsure-backend/internal/storage"
)

// Deps carries everything the route tree needs.
type Deps struct {
	Guard        *csrf.Guard
	Limiter      *ratelimit.Limiter
	OTPStore     *otp.Store
	Sessions     otp.SessionStore
	Engine       *fare.Engine
	Orchestrator *booking.Orchestrator
	Store        storage.Store
	Notifier     services.Notifier
	Log          *logrus.Logger
	Production   bool
	Health       handlers.HealthStatus
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Deps) {
	app.Get("/health", handlers.Health(deps.Health))

	otpHandler := handlers.NewOTPHandler(deps.OTPStore, deps.Sessions, deps.Limiter, deps.Notifier, deps.Log, deps.Production)
	bookingHandler := handlers.NewBookingHandler(deps.Orchestrator, deps.Store, deps.Log, deps.Production)
	fareHandler := handlers.NewFareHandler(deps.Engine, deps.Log, deps.Production)
	csrfHandler := handlers.NewCSRFHandler(deps.Guard, deps.Log, deps.Production)

	api := app.Group("/api")

	// CSRF applies to every state-changing request under /api; the token
	// endpoint itself is a safe GET.
	api.Use(middleware.RequireCSRF(deps.Guard, deps.Log))

	api.Get("/csrf", csrfHandler.Issue)
	api.Get("/fare/quote", fareHandler.Quote)

	otpGroup := api.Group("/otp")
	otpGroup.Post("/issue", otpHandler.Issue)
	otpGroup.Post("/verify", otpHandler.Verify)

	bookings := api.Group("/bookings")
	bookings.Post("/", bookingHandler.CreateBooking)
	bookings.Get("/event/:eventID", bookingHandler.GetBookingByEventID)
	bookings.Get("/:id", bookingHandler.GetBooking)
}
