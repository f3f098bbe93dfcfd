package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FinalExpenseIQ/leadline/internal/twiliosms"
)

// TwilioService implements Service over a Twilio SMS client. The client
// is injected so tests can substitute a mock sender.
type TwilioService struct {
	client twiliosms.Sender
}

// NewTwilioService creates a Service backed by the given Twilio client.
func NewTwilioService(client twiliosms.Sender) *TwilioService {
	return &TwilioService{client: client}
}

// SendMessage delivers the text through Twilio, bounded by
// DefaultSendTimeout unless the caller supplied a tighter deadline.
func (s *TwilioService) SendMessage(ctx context.Context, to string, body string) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultSendTimeout)
		defer cancel()
	}

	messageID, err := s.client.SendMessage(ctx, to, body)
	if err != nil {
		slog.Error("TwilioService SendMessage failed", "error", err, "to", to)
		return "", fmt.Errorf("delivery to %s failed: %w", to, err)
	}
	slog.Debug("TwilioService SendMessage succeeded", "to", to, "messageID", messageID)
	return messageID, nil
}

// Configured reports true; the service is only constructed with a real client.
func (s *TwilioService) Configured() bool { return true }

// Mode returns the production delivery mode.
func (s *TwilioService) Mode() string { return ModeProduction }
