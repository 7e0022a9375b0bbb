package handlers

import (
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/cabsure/cabsure-backend/internal/apperr"
	"github.com/cabsure/cabsure-backend/internal/otp"
	"github.com/cabsure/cabsure-backend/internal/ratelimit"
	"github.com/cabsure/cabsure-backend/internal/services"
)

// Issuance limits: a 30s resend cool-down per phone, a sustained per-phone cap,
// and a verify cap that bounds guessing the 4-digit space within the TTL.
const (
	issueCooldown   = 30 * time.Second
	issueWindow     = 10 * time.Minute
	issueWindowMax  = 5
	verifyWindow    = time.Minute
	verifyWindowMax = 5
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// OTPHandler handles phone verification requests
type OTPHandler struct {
	otpStore   *otp.Store
	sessions   otp.SessionStore
	limiter    *ratelimit.Limiter
	notifier   services.Notifier
	log        *logrus.Logger
	production bool
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(
	otpStore *otp.Store,
	sessions otp.SessionStore,
	limiter *ratelimit.Limiter,
	notifier services.Notifier,
	log *logrus.Logger,
	production bool,
) *OTPHandler {
	return &OTPHandler{
		otpStore:   otpStore,
		sessions:   sessions,
		limiter:    limiter,
		notifier:   notifier,
		log:        log,
		production: production,
	}
}

// Issue generates and delivers a verification code for the phone.
func (h *OTPHandler) Issue(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, h.log, apperr.ValidationFailed("invalid request body"), h.production)
	}
	if !phonePattern.MatchString(req.Phone) {
		return respondError(c, h.log, apperr.ValidationFailed("phone must be a 10-digit number"), h.production)
	}

	ctx := c.UserContext()
	if d := h.limiter.Allow(ctx, "otp:cooldown:"+req.Phone, issueCooldown, 1); !d.Allowed {
		return respondError(c, h.log, apperr.RateLimited("please wait before requesting another code"), h.production)
	}
	if d := h.limiter.Allow(ctx, "otp:issue:"+req.Phone, issueWindow, issueWindowMax); !d.Allowed {
		return respondError(c, h.log, apperr.RateLimited("too many codes requested, try again later"), h.production)
	}

	iss, err := h.otpStore.Issue(ctx, req.Phone)
	if err != nil {
		return respondError(c, h.log, err, h.production)
	}

	if err := h.notifier.SendOTP(req.Phone, iss.Code); err != nil {
		return respondError(c, h.log, err, h.production)
	}

	h.log.WithField("phone", req.Phone).Info("OTP issued")

	resp := fiber.Map{
		"ok":    true,
		"phone": req.Phone,
	}
	if !h.production {
		// echoed for local testing only; never present in production builds
		resp["code"] = iss.Code
	}
	return c.JSON(resp)
}

// Verify checks the submitted code and mints a single-use booking
// authorization session on success.
func (h *OTPHandler) Verify(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, h.log, apperr.ValidationFailed("invalid request body"), h.production)
	}
	if !phonePattern.MatchString(req.Phone) {
		return respondError(c, h.log, apperr.ValidationFailed("phone must be a 10-digit number"), h.production)
	}
	if len(req.OTP) != 4 {
		return respondError(c, h.log, apperr.ValidationFailed("otp must be a 4-digit code"), h.production)
	}

	ctx := c.UserContext()
	if d := h.limiter.Allow(ctx, "otp:verify:"+req.Phone, verifyWindow, verifyWindowMax); !d.Allowed {
		return respondError(c, h.log, apperr.RateLimited("too many attempts, try again later"), h.production)
	}

	ok, err := h.otpStore.Verify(ctx, req.Phone, req.OTP)
	if err != nil {
		return respondError(c, h.log, err, h.production)
	}
	if !ok {
		return respondError(c, h.log, apperr.Unauthorized("invalid or expired code"), h.production)
	}

	sess, err := h.sessions.Create(ctx, req.Phone)
	if err != nil {
		return respondError(c, h.log, err, h.production)
	}

	h.log.WithField("phone", req.Phone).Info("OTP verified")

	return c.JSON(fiber.Map{
		"ok":                 true,
		"verified":           true,
		"otp_session_token":  sess.Token,
		"expires_in_seconds": int(time.Until(sess.ExpiresAt).Seconds()),
	})
}
