package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/lborres/pinto/core"
	"github.com/lborres/pinto/internal/logging"
)

var ErrDeliveryRejected = errors.New("mail provider rejected the message")

// Sender is the part of the SendGrid client the mailer needs.
type Sender interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

type SendGridConfig struct {
	APIKey   string
	From     string
	FromName string
	AppURL   string
}

type SendGridMailer struct {
	client Sender
	from   *sgmail.Email
	links  Links
	logger logging.Logger
}

var _ core.Mailer = (*SendGridMailer)(nil)

func NewSendGridMailer(cfg SendGridConfig, logger logging.Logger) *SendGridMailer {
	return NewSendGridMailerWithSender(sendgrid.NewSendClient(cfg.APIKey), cfg, logger)
}

// NewSendGridMailerWithSender uses a caller-supplied client, for tests.
func NewSendGridMailerWithSender(client Sender, cfg SendGridConfig, logger logging.Logger) *SendGridMailer {
	if cfg.FromName == "" {
		cfg.FromName = "Pinto"
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &SendGridMailer{
		client: client,
		from:   sgmail.NewEmail(cfg.FromName, cfg.From),
		links:  Links{AppURL: cfg.AppURL},
		logger: logger,
	}
}

func (m *SendGridMailer) SendVerification(ctx context.Context, to *core.User, token string) error {
	return m.send(ctx, VerificationMessage(m.links, to, token))
}

func (m *SendGridMailer) SendPasswordReset(ctx context.Context, to *core.User, token string) error {
	return m.send(ctx, ResetMessage(m.links, to, token))
}

func (m *SendGridMailer) send(ctx context.Context, msg Message) error {
	email := sgmail.NewSingleEmail(m.from, msg.Subject, sgmail.NewEmail(msg.ToName, msg.To), msg.Text, msg.HTML)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrDeliveryRejected, resp.StatusCode)
	}

	m.logger.Info(ctx, "mail sent", "kind", msg.Kind, "status", resp.StatusCode)
	return nil
}
