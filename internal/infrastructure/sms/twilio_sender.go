// Package sms sends transactional texts. Only payment confirmations go
// out by SMS; everything else stays in-app.
package sms

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(to, body string) error
}

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender builds a sender using TWILIO_ACCOUNT_SID and
// TWILIO_AUTH_TOKEN from the environment.
func NewTwilioSender(from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClient(),
		from:   from,
	}
}

func (s *TwilioSender) Send(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	_, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	return nil
}

// NopSender drops messages; used when SMS is disabled in config.
type NopSender struct{}

func (NopSender) Send(to, body string) error {
	return nil
}
