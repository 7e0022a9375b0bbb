package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cabsure/cabsure-backend/internal/apperr"
)

// respondError normalizes any error to the stable taxonomy. Internal errors
// are logged with a correlation id and never leak details to the client.
func respondError(c *fiber.Ctx, log *logrus.Logger, err error, production bool) error {
	appErr := apperr.From(err)
	correlationID := uuid.New().String()

	entry := log.WithFields(logrus.Fields{
		"correlation_id": correlationID,
		"error_code":     appErr.Code,
		"path":           c.Path(),
	})
	if appErr.Code == apperr.CodeInternal {
		entry.WithField("error", appErr.Error()).Error("request failed")
	} else {
		entry.Info("request rejected")
	}

	message := appErr.Message
	if appErr.Code == apperr.CodeInternal && production {
		message = "something went wrong, please try again"
	}

	return c.Status(appErr.StatusCode()).JSON(fiber.Map{
		"ok":             false,
		"error":          appErr.Code,
		"message":        message,
		"correlation_id": correlationID,
	})
}
