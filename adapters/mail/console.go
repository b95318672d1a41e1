package mail

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/lborres/pinto/core"
	"github.com/lborres/pinto/internal/logging"
)

// ConsoleMailer writes rendered emails to a writer instead of sending them.
// Meant for development: the links it prints carry live tokens, so they go
// to the outbox writer and never into the structured log.
type ConsoleMailer struct {
	links  Links
	logger logging.Logger

	mu  sync.Mutex
	out io.Writer
}

var _ core.Mailer = (*ConsoleMailer)(nil)

func NewConsoleMailer(appURL string, out io.Writer, logger logging.Logger) *ConsoleMailer {
	if out == nil {
		out = os.Stderr
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &ConsoleMailer{links: Links{AppURL: appURL}, out: out, logger: logger}
}

func (m *ConsoleMailer) SendVerification(ctx context.Context, to *core.User, token string) error {
	return m.write(ctx, VerificationMessage(m.links, to, token))
}

func (m *ConsoleMailer) SendPasswordReset(ctx context.Context, to *core.User, token string) error {
	return m.write(ctx, ResetMessage(m.links, to, token))
}

func (m *ConsoleMailer) write(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := fmt.Fprintf(m.out, "---- mail to %s <%s>\nSubject: %s\n\n%s----\n", msg.ToName, msg.To, msg.Subject, msg.Text)
	if err != nil {
		return fmt.Errorf("failed to write mail: %w", err)
	}
	m.logger.Debug(ctx, "mail written to console", "kind", msg.Kind, "to", msg.To)
	return nil
}
