package booking

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cabsure/cabsure-backend/internal/apperr"
	"github.com/cabsure/cabsure-backend/internal/fare"
	"github.com/cabsure/cabsure-backend/internal/idempotency"
	"github.com/cabsure/cabsure-backend/internal/models"
	"github.com/cabsure/cabsure-backend/internal/otp"
	"github.com/cabsure/cabsure-backend/internal/ratelimit"
	"github.com/cabsure/cabsure-backend/internal/storage"
	"github.com/cabsure/cabsure-backend/internal/utils"
)

// Submission rate limit per phone. The fixed window tolerates up to 2× this
// across a window boundary.
const (
	submitRateWindow = time.Minute
	submitRateMax    = 5
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Request is a booking submission after HTTP decoding.
type Request struct {
	Phone           string
	OtpSessionToken string
	OriginText      string
	DestinationText string
	PickupAt        time.Time
	CarType         string
	DiscountCode    string
	IdempotencyKey  string
}

// Result carries the persisted booking; Replayed is true when the idempotency
// store answered from a prior submission.
type Result struct {
	Booking  *models.Booking
	Replayed bool
}

// Orchestrator runs the booking pipeline: validate, rate-limit, consume the
// OTP session, re-derive the fare, persist exactly once per idempotency key.
type Orchestrator struct {
	limiter      *ratelimit.Limiter
	sessions     otp.SessionStore
	engine       *fare.Engine
	idem         idempotency.Store
	store        storage.Store
	log          *logrus.Logger
	timeProvider func() time.Time
}

// OrchestratorOpts allows tests to inject a clock.
type OrchestratorOpts struct {
	TimeProvider func() time.Time
}

// NewOrchestrator wires the booking pipeline.
func NewOrchestrator(
	limiter *ratelimit.Limiter,
	sessions otp.SessionStore,
	engine *fare.Engine,
	idem idempotency.Store,
	store storage.Store,
	log *logrus.Logger,
	opts *OrchestratorOpts,
) *Orchestrator {
	o := &Orchestrator{
		limiter:      limiter,
		sessions:     sessions,
		engine:       engine,
		idem:         idem,
		store:        store,
		log:          log,
		timeProvider: time.Now,
	}
	if opts != nil && opts.TimeProvider != nil {
		o.timeProvider = opts.TimeProvider
	}
	return o
}

// CreateBooking runs the pipeline. Every step is a hard precondition: failing
// any returns an error without side effects. The session consume and the
// persist run inside the idempotency guard so a client retry with the same key
// observes the first call's outcome instead of failing on the spent session.
func (o *Orchestrator) CreateBooking(ctx context.Context, req Request) (*Result, error) {
	if err := o.validate(req); err != nil {
		return nil, err
	}

	decision := o.limiter.Allow(ctx, "booking:"+req.Phone, submitRateWindow, submitRateMax)
	if !decision.Allowed {
		return nil, apperr.RateLimited("too many booking attempts, try again shortly")
	}

	offer, err := o.lookupOffer(ctx, req.DiscountCode)
	if err != nil {
		return nil, err
	}

	payload, replayed, err := o.idem.GetOrCompute(ctx, req.IdempotencyKey, func() ([]byte, error) {
		return o.authorizeAndPersist(ctx, req, offer)
	})
	if err != nil {
		return nil, err
	}

	var booking models.Booking
	if err := json.Unmarshal(payload, &booking); err != nil {
		return nil, apperr.Internal(err)
	}

	if replayed {
		o.log.WithFields(logrus.Fields{
			"booking_id":      booking.ID,
			"idempotency_key": req.IdempotencyKey,
		}).Info("booking replayed from idempotency store")
	}

	return &Result{Booking: &booking, Replayed: replayed}, nil
}

func (o *Orchestrator) validate(req Request) error {
	if !phonePattern.MatchString(req.Phone) {
		return apperr.ValidationFailed("phone must be a 10-digit number")
	}
	if req.OtpSessionToken == "" {
		return apperr.ValidationFailed("otp_session_token is required")
	}
	if req.OriginText == "" || req.DestinationText == "" {
		return apperr.ValidationFailed("origin_text and destination_text are required")
	}
	if !req.PickupAt.After(o.timeProvider()) {
		return apperr.ValidationFailed("pickup_datetime must be in the future")
	}
	if !models.ValidCarType(req.CarType) {
		return apperr.ValidationFailed("car_type must be one of HATCHBACK, SEDAN, SUV")
	}
	if req.IdempotencyKey == "" {
		return apperr.ValidationFailed("idempotency_key is required")
	}
	return nil
}

// lookupOffer resolves the discount code. An unknown code is not an error:
// the fare engine treats a nil offer as discount_valid=false.
func (o *Orchestrator) lookupOffer(ctx context.Context, code string) (*models.DiscountOffer, error) {
	if code == "" {
		return nil, nil
	}
	offer, err := o.store.GetOfferByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return offer, nil
}

// authorizeAndPersist is the guarded computation: it consumes the single-use
// OTP session, re-derives the fare server-side and writes the booking row.
func (o *Orchestrator) authorizeAndPersist(ctx context.Context, req Request, offer *models.DiscountOffer) ([]byte, error) {
	consume, err := o.sessions.Consume(ctx, req.OtpSessionToken)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !consume.OK {
		switch consume.Reason {
		case otp.ReasonUsed:
			return nil, apperr.AlreadyUsed("otp session has already been used")
		default:
			return nil, apperr.Unauthorized("otp session missing or expired")
		}
	}
	if consume.Phone != req.Phone {
		return nil, apperr.Unauthorized("phone does not match the verified session")
	}

	quote := o.engine.Quote(req.OriginText, req.DestinationText, req.CarType)
	discount := o.engine.ApplyDiscount(quote.FareInr, offer, req.PickupAt)

	booking := &models.Booking{
		ID:              utils.GenerateSecureID("BK"),
		EventID:         uuid.New().String(),
		Phone:           req.Phone,
		OriginText:      req.OriginText,
		DestinationText: req.DestinationText,
		PickupAt:        req.PickupAt,
		CarType:         req.CarType,
		FareQuoteInr:    discount.FinalFareInr,
		DistanceKm:      quote.DistanceKm,
		DurationMin:     quote.DurationMin,
		DiscountInr:     discount.AppliedInr,
		NightSurcharge:  discount.NightSurcharge,
		IdempotencyKey:  req.IdempotencyKey,
		Status:          models.BookingStatusConfirmed,
	}
	if discount.DiscountValid {
		booking.DiscountCode = offer.Code
	}

	if err := o.store.CreateBooking(ctx, booking); err != nil {
		return nil, apperr.Internal(err)
	}

	o.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"event_id":   booking.EventID,
		"fare_inr":   booking.FareQuoteInr,
		"car_type":   booking.CarType,
	}).Info("booking created")

	return json.Marshal(booking)
}
