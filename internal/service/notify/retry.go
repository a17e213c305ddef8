package notify

import (
	"context"
	"fmt"
	"time"
)

// sendWithRetry delivers one mail, retrying transient transport failures
// up to the configured attempt count with a fixed delay between attempts.
func (s *Service) sendWithRetry(ctx context.Context, msg Message) error {
	attempts := s.cfg.MailRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = s.mailer.Send(ctx, msg)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		s.log.Warn("mail send failed, retrying",
			"to", msg.To, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(s.cfg.MailRetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
