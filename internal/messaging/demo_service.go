package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DemoService implements Service by logging messages instead of sending
// them. It stands in for the real channel whenever no provider credential
// is configured, so local development never needs a Twilio account.
// Replies from leads won't trigger webhooks in this mode.
type DemoService struct {
	mu   sync.Mutex
	sent []DemoMessage
}

// DemoMessage is one logged outbound message.
type DemoMessage struct {
	To   string
	Body string
	Time time.Time
}

// NewDemoService creates a logging-only delivery service.
func NewDemoService() *DemoService {
	return &DemoService{}
}

// SendMessage logs the message and returns a synthetic identifier.
func (s *DemoService) SendMessage(ctx context.Context, to string, body string) (string, error) {
	now := time.Now()
	s.mu.Lock()
	s.sent = append(s.sent, DemoMessage{To: to, Body: body, Time: now})
	s.mu.Unlock()

	slog.Info("DemoService would send SMS", "to", to, "body", body)
	return fmt.Sprintf("demo_%d", now.UnixMilli()), nil
}

// Sent returns a copy of every message logged so far.
func (s *DemoService) Sent() []DemoMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DemoMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

// Configured reports false; no real provider credential is in place.
func (s *DemoService) Configured() bool { return false }

// Mode returns the demo delivery mode.
func (s *DemoService) Mode() string { return ModeDemo }
