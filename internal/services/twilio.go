package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioNotifier sends OTP codes over SMS via Twilio
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
	log    *logrus.Logger
}

// NewTwilioNotifier creates a new Twilio-backed notifier
func NewTwilioNotifier(accountSID, authToken, from string, log *logrus.Logger) (*TwilioNotifier, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioNotifier{
		client: client,
		from:   from,
		log:    log,
	}, nil
}

// SendOTP sends the verification code as an SMS. The code itself is never
// logged, only the delivery outcome.
func (t *TwilioNotifier) SendOTP(phone, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo("+91" + phone)
	params.SetBody(fmt.Sprintf("%s is your CabSure verification code. Valid for 5 minutes.", code))

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		t.log.WithFields(logrus.Fields{
			"phone": phone,
			"error": err.Error(),
		}).Error("failed to send OTP SMS")
		return fmt.Errorf("failed to send OTP SMS: %w", err)
	}

	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, *resp.ErrorMessage)
	}

	t.log.WithField("phone", phone).Info("OTP SMS sent")
	return nil
}
