package notify

import (
	"context"
	"log/slog"
)

// Message is one outbound notification mail.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer is the outbound mail transport. The real transport lives outside
// this service; delivery here is best-effort relative to the event that
// caused it.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes mail to the log instead of sending it. Used in
// development and as a stand-in until a real transport is wired.
type LogMailer struct {
	log *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{log: logger.With("component", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.log.InfoContext(ctx, "mail",
		"to", msg.To,
		"subject", msg.Subject,
		"body_len", len(msg.Body),
	)
	return nil
}
