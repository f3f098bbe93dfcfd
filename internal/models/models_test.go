package models

import (
	"encoding/json"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		token string
		want  Answer
		ok    bool
	}{
		{"1", AnswerYes, true},
		{"2", AnswerNo, true},
		{"yes", "", false},
		{"no", "", false},
		{"3", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseAnswer(tt.token)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseAnswer(%q) = (%q, %v), want (%q, %v)", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePreference(t *testing.T) {
	tests := []struct {
		token string
		want  Preference
		ok    bool
	}{
		{"1", PreferenceBurial, true},
		{"2", PreferenceCremation, true},
		{"burial", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParsePreference(tt.token)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePreference(%q) = (%q, %v), want (%q, %v)", tt.token, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsValidLeadStatus(t *testing.T) {
	for _, s := range []LeadStatus{LeadStatusActive, LeadStatusCallingNow, LeadStatusConsultationScheduled, LeadStatusQuestions} {
		if !IsValidLeadStatus(s) {
			t.Errorf("IsValidLeadStatus(%q) = false, want true", s)
		}
	}
	if IsValidLeadStatus("archived") {
		t.Error(`IsValidLeadStatus("archived") = true, want false`)
	}
}

func TestLeadUpdateIsEmpty(t *testing.T) {
	if !(LeadUpdate{}).IsEmpty() {
		t.Error("zero LeadUpdate is not empty")
	}

	step := 2
	if (LeadUpdate{Step: &step}).IsEmpty() {
		t.Error("LeadUpdate with Step set reports empty")
	}

	takeover := true
	if (LeadUpdate{AgentTakeover: &takeover}).IsEmpty() {
		t.Error("LeadUpdate with AgentTakeover set reports empty")
	}
}

// The envelope omits empty fields, so an error response carries only
// success and error and a send response only success and messageId.
func TestAPIResponseWireShape(t *testing.T) {
	data, err := json.Marshal(Error("boom"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if got := string(data); got != `{"success":false,"error":"boom"}` {
		t.Errorf("error envelope = %s", got)
	}

	data, err = json.Marshal(APIResponse{Success: true, MessageID: "SM123"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if got := string(data); got != `{"success":true,"messageId":"SM123"}` {
		t.Errorf("send envelope = %s", got)
	}
}

func TestRequestValidation(t *testing.T) {
	inbound := InboundMessage{From: "+15551234567"}
	if err := inbound.Validate(); err != nil {
		t.Errorf("InboundMessage with empty body should validate, got %v", err)
	}
	inbound.From = ""
	if err := inbound.Validate(); err != ErrMissingFrom {
		t.Errorf("Validate() = %v, want ErrMissingFrom", err)
	}

	start := StartConversationRequest{}
	if err := start.Validate(); err != ErrMissingPhoneNumber {
		t.Errorf("Validate() = %v, want ErrMissingPhoneNumber", err)
	}

	send := AdminSendRequest{To: "+15551234567"}
	if err := send.Validate(); err != ErrMissingMessage {
		t.Errorf("Validate() = %v, want ErrMissingMessage", err)
	}
	send = AdminSendRequest{Message: "hi"}
	if err := send.Validate(); err != ErrMissingRecipient {
		t.Errorf("Validate() = %v, want ErrMissingRecipient", err)
	}
}
