package services

import (
	"github.com/sirupsen/logrus"
)

// Notifier delivers OTP codes out-of-band. The core never sees delivery
// details; real SMS is an infrastructure concern behind this interface.
type Notifier interface {
	SendOTP(phone, code string) error
}

// ConsoleNotifier logs the code instead of sending SMS. Development only —
// production wiring must use the Twilio notifier.
type ConsoleNotifier struct {
	log *logrus.Logger
}

// NewConsoleNotifier creates a console notifier.
func NewConsoleNotifier(log *logrus.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (c *ConsoleNotifier) SendOTP(phone, code string) error {
	c.log.WithFields(logrus.Fields{
		"phone": phone,
		"code":  code,
	}).Info("OTP (console notifier, dev only)")
	return nil
}
