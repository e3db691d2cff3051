package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender delivers buyer notifications. Delivery failures must never undo a
// committed settlement; callers log and move on.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// sendGridSender implements Sender using the SendGrid API.
type sendGridSender struct {
	apiKey string
	from   string
	logger zerolog.Logger
}

// NewSendGridSender creates a SendGrid-backed mail sender.
func NewSendGridSender(apiKey, from string, logger zerolog.Logger) Sender {
	return &sendGridSender{
		apiKey: apiKey,
		from:   from,
		logger: logger.With().Str("component", "mail").Logger(),
	}
}

func (s *sendGridSender) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail("", s.from),
		subject,
		sgmail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	client := sendgrid.NewSendClient(s.apiKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error().Err(err).Str("to", to).Msg("failed to send mail")
		return fmt.Errorf("failed to send mail: %w", err)
	}

	if resp.StatusCode >= 400 {
		s.logger.Error().
			Int("status", resp.StatusCode).
			Str("to", to).
			Msg("mail provider rejected message")
		return fmt.Errorf("mail provider rejected message: status %d", resp.StatusCode)
	}

	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("mail sent")
	return nil
}

// nopSender discards notifications; used when mail is disabled.
type nopSender struct{}

// NewNopSender returns a Sender that does nothing.
func NewNopSender() Sender {
	return nopSender{}
}

func (nopSender) Send(context.Context, string, string, string) error {
	return nil
}
