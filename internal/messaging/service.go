// Package messaging provides the outbound channel abstraction for Leadline.
//
// The controller depends only on the Service interface; the Twilio-backed
// implementation serves production and a logging stub serves demo mode,
// so a missing credential degrades the system instead of breaking it.
package messaging

import (
	"context"
	"time"
)

// Delivery mode names reported by the health endpoint.
const (
	ModeProduction = "production"
	ModeDemo       = "demo"
)

// DefaultSendTimeout bounds a single outbound send. The caller must not
// hold any per-lead critical section while waiting on it.
const DefaultSendTimeout = 15 * time.Second

// Service is the pluggable outbound message delivery abstraction.
type Service interface {
	// SendMessage delivers text to a canonical phone number and returns
	// the provider's message identifier.
	SendMessage(ctx context.Context, to string, body string) (messageID string, err error)

	// Configured reports whether a real provider credential is in place.
	Configured() bool

	// Mode returns "production" or "demo".
	Mode() string
}
