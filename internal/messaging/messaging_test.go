package messaging

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/FinalExpenseIQ/leadline/internal/twiliosms"
)

func TestDemoServiceRecordsMessages(t *testing.T) {
	svc := NewDemoService()

	id, err := svc.SendMessage(context.Background(), "+15551234567", "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if !strings.HasPrefix(id, "demo_") {
		t.Errorf("message ID = %q, want demo_ prefix", id)
	}

	sent := svc.Sent()
	if len(sent) != 1 {
		t.Fatalf("Sent() returned %d messages, want 1", len(sent))
	}
	if sent[0].To != "+15551234567" || sent[0].Body != "hello" {
		t.Errorf("recorded message = %+v", sent[0])
	}

	if svc.Configured() {
		t.Error("DemoService reports configured, want false")
	}
	if svc.Mode() != ModeDemo {
		t.Errorf("Mode() = %q, want %q", svc.Mode(), ModeDemo)
	}
}

func TestTwilioServiceDelegates(t *testing.T) {
	mock := twiliosms.NewMockClient()
	svc := NewTwilioService(mock)

	id, err := svc.SendMessage(context.Background(), "+15551234567", "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if id == "" {
		t.Error("message ID is empty")
	}
	if len(mock.SentMessages) != 1 {
		t.Fatalf("mock recorded %d messages, want 1", len(mock.SentMessages))
	}
	if mock.SentMessages[0].To != "+15551234567" {
		t.Errorf("To = %q", mock.SentMessages[0].To)
	}

	if !svc.Configured() {
		t.Error("TwilioService reports unconfigured, want true")
	}
	if svc.Mode() != ModeProduction {
		t.Errorf("Mode() = %q, want %q", svc.Mode(), ModeProduction)
	}
}

func TestTwilioServiceWrapsFailure(t *testing.T) {
	provider := errors.New("provider rejected")
	mock := twiliosms.NewMockClient()
	mock.FailWith = provider
	svc := NewTwilioService(mock)

	_, err := svc.SendMessage(context.Background(), "+15551234567", "hello")
	if err == nil {
		t.Fatal("SendMessage succeeded, want error")
	}
	if !errors.Is(err, provider) {
		t.Errorf("error %v does not wrap the provider failure", err)
	}
}
