// Package models defines the core data structures for Leadline.
//
// It includes the Lead record, the enums decoded from inbound SMS tokens,
// and the request/response types shared across modules.
package models

import (
	"errors"
	"time"
)

// Answer is a yes/no health screening answer decoded from an accepted
// inbound token ("1" or "2"). Internal logic never compares raw strings.
type Answer string

const (
	// AnswerYes indicates the lead answered yes ("1").
	AnswerYes Answer = "yes"
	// AnswerNo indicates the lead answered no ("2").
	AnswerNo Answer = "no"
)

// ParseAnswer decodes a trimmed, lowercased inbound token into an Answer.
// Only the exact tokens "1" and "2" are accepted.
func ParseAnswer(token string) (Answer, bool) {
	switch token {
	case "1":
		return AnswerYes, true
	case "2":
		return AnswerNo, true
	default:
		return "", false
	}
}

// Preference is the lead's burial or cremation choice.
type Preference string

const (
	// PreferenceBurial indicates the lead chose burial ("1").
	PreferenceBurial Preference = "burial"
	// PreferenceCremation indicates the lead chose cremation ("2").
	PreferenceCremation Preference = "cremation"
)

// ParsePreference decodes an inbound token into a Preference.
func ParsePreference(token string) (Preference, bool) {
	switch token {
	case "1":
		return PreferenceBurial, true
	case "2":
		return PreferenceCremation, true
	default:
		return "", false
	}
}

// LeadStatus represents where a lead sits in the funnel.
type LeadStatus string

const (
	// LeadStatusActive indicates the lead is still in the automated dialogue.
	LeadStatusActive LeadStatus = "active"
	// LeadStatusCallingNow indicates the lead asked for an immediate call.
	LeadStatusCallingNow LeadStatus = "calling_now"
	// LeadStatusConsultationScheduled indicates the lead asked to schedule a consultation.
	LeadStatusConsultationScheduled LeadStatus = "consultation_scheduled"
	// LeadStatusQuestions indicates the lead wants to ask free-text questions.
	LeadStatusQuestions LeadStatus = "questions"
)

// IsValidLeadStatus checks if the given lead status is supported.
func IsValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadStatusActive, LeadStatusCallingNow, LeadStatusConsultationScheduled, LeadStatusQuestions:
		return true
	default:
		return false
	}
}

// Lead is one prospect's conversation record, keyed by canonical phone
// number. Answer and preference fields stay empty until the corresponding
// step has been passed; Step is the cursor for the question currently
// outstanding.
type Lead struct {
	ID            string     `json:"id"`
	PhoneNumber   string     `json:"phone_number"`
	State         string     `json:"state,omitempty"`
	Preference    Preference `json:"preference,omitempty"`
	Tobacco       Answer     `json:"tobacco,omitempty"`
	Oxygen        Answer     `json:"oxygen,omitempty"`
	Hospitalized  Answer     `json:"hospitalized,omitempty"`
	Controlled    Answer     `json:"controlled_conditions,omitempty"`
	Serious       Answer     `json:"serious_conditions,omitempty"`
	Step          int        `json:"step"`
	Status        LeadStatus `json:"status"`
	AgentTakeover bool       `json:"agent_takeover"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LeadUpdate is a partial update merged into a stored Lead. Nil fields are
// left untouched; the store refreshes updated_at on every merge.
type LeadUpdate struct {
	State         *string
	Preference    *Preference
	Tobacco       *Answer
	Oxygen        *Answer
	Hospitalized  *Answer
	Controlled    *Answer
	Serious       *Answer
	Step          *int
	Status        *LeadStatus
	AgentTakeover *bool
}

// IsEmpty reports whether the update carries no fields.
func (u LeadUpdate) IsEmpty() bool {
	return u.State == nil && u.Preference == nil && u.Tobacco == nil &&
		u.Oxygen == nil && u.Hospitalized == nil && u.Controlled == nil &&
		u.Serious == nil && u.Step == nil && u.Status == nil && u.AgentTakeover == nil
}

// Error variables for request validation and testability.
var (
	ErrMissingPhoneNumber = errors.New("phone_number is required")
	ErrMissingFrom        = errors.New("From is required")
	ErrMissingRecipient   = errors.New("to is required")
	ErrMissingMessage     = errors.New("message is required")
)

// InboundMessage is the provider webhook payload for POST /sms.
type InboundMessage struct {
	From string `json:"From"`
	Body string `json:"Body"`
}

// Validate checks the webhook payload carries a sender. An empty body is
// allowed; it simply fails token matching and triggers a re-prompt.
func (m *InboundMessage) Validate() error {
	if m.From == "" {
		return ErrMissingFrom
	}
	return nil
}

// StartConversationRequest is the payload for POST /start-conversation,
// posted by the landing page opt-in form.
type StartConversationRequest struct {
	PhoneNumber string `json:"phone_number"`
	Source      string `json:"source,omitempty"`
}

// Validate checks the opt-in payload.
func (r *StartConversationRequest) Validate() error {
	if r.PhoneNumber == "" {
		return ErrMissingPhoneNumber
	}
	return nil
}

// AdminSendRequest is the payload for POST /admin/send-sms.
type AdminSendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Validate checks the manual send payload.
func (r *AdminSendRequest) Validate() error {
	if r.To == "" {
		return ErrMissingRecipient
	}
	if r.Message == "" {
		return ErrMissingMessage
	}
	return nil
}

// TakeoverRequest is the payload for POST /admin/takeover.
type TakeoverRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// Validate checks the takeover payload.
func (r *TakeoverRequest) Validate() error {
	if r.PhoneNumber == "" {
		return ErrMissingPhoneNumber
	}
	return nil
}

// APIResponse is the standard JSON envelope for admin and opt-in
// endpoints. Handlers fill the fields relevant to the operation; empty
// ones are omitted from the wire form.
type APIResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	LeadID    string `json:"lead_id,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Success: false, Error: message}
}
