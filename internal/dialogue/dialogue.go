// Package dialogue implements the scripted SMS conversation state machine.
//
// Transition is a pure function from (lead, inbound text) to (field
// updates, next step, outbound reply). The caller persists the updates
// atomically before sending the reply, so a crash between persist and
// send can only ever duplicate a prompt, never skip or repeat a
// transition.
package dialogue

import (
	"log/slog"
	"strings"

	"github.com/FinalExpenseIQ/leadline/internal/models"
)

// Step constants name every position of the conversation cursor. The
// step uniquely determines which question is outstanding; steps at or
// past StepDone are terminal.
const (
	StepState        = 1
	StepPreference   = 2
	StepTobacco      = 3
	StepOxygen       = 4
	StepHospitalized = 5
	StepControlled   = 6
	StepSerious      = 7
	StepCallToAction = 8
	StepDone         = 9
)

// Result is the outcome of one transition. Updates and NextStep must be
// persisted together before Reply is sent. On invalid input Updates is
// empty and NextStep equals the lead's current step.
type Result struct {
	Updates  models.LeadUpdate
	NextStep int
	Reply    string
}

// Advanced reports whether the transition moved the cursor forward.
func (r Result) Advanced() bool {
	return r.Updates.Step != nil
}

// healthQuestion describes one yes/no screening step: where the decoded
// answer lands on the lead, and what to say next.
type healthQuestion struct {
	question string
	assign   func(*models.LeadUpdate, models.Answer)
	// reply produces the outbound text after a valid answer. Only the
	// final question branches on the answer.
	reply func(models.Answer) string
}

// healthQuestions is the transition table for steps 3 through 7.
var healthQuestions = map[int]healthQuestion{
	StepTobacco: {
		question: MsgAskTobacco,
		assign:   func(u *models.LeadUpdate, a models.Answer) { u.Tobacco = &a },
		reply:    func(models.Answer) string { return MsgAskOxygen },
	},
	StepOxygen: {
		question: MsgAskOxygen,
		assign:   func(u *models.LeadUpdate, a models.Answer) { u.Oxygen = &a },
		reply:    func(models.Answer) string { return MsgAskHospitalized },
	},
	StepHospitalized: {
		question: MsgAskHospitalized,
		assign:   func(u *models.LeadUpdate, a models.Answer) { u.Hospitalized = &a },
		reply:    func(models.Answer) string { return MsgAskControlled },
	},
	StepControlled: {
		question: MsgAskControlled,
		assign:   func(u *models.LeadUpdate, a models.Answer) { u.Controlled = &a },
		reply:    func(models.Answer) string { return MsgAskSerious },
	},
	StepSerious: {
		question: MsgAskSerious,
		assign:   func(u *models.LeadUpdate, a models.Answer) { u.Serious = &a },
		reply: func(a models.Answer) string {
			if a == models.AnswerYes {
				return MsgGuaranteedIssue
			}
			return MsgPreferredTier
		},
	},
}

// Transition evaluates one inbound message against the lead's current
// step. Matching is case-insensitive and trimmed; anything other than
// the exact accepted tokens re-prompts the original question and leaves
// the lead unchanged.
func Transition(lead models.Lead, inbound string) Result {
	body := strings.ToLower(strings.TrimSpace(inbound))
	slog.Debug("dialogue.Transition evaluating", "phone", lead.PhoneNumber, "step", lead.Step, "body", body)

	switch {
	case lead.Step == StepState:
		return transitionState(lead, body)
	case lead.Step == StepPreference:
		return transitionPreference(lead, body)
	case lead.Step >= StepTobacco && lead.Step <= StepSerious:
		return transitionHealthQuestion(lead, body)
	case lead.Step == StepCallToAction:
		return transitionCallToAction(lead, body)
	default:
		// Terminal; the script is finished and an agent owns the lead.
		return stay(lead, MsgThankYou)
	}
}

// stay leaves the lead untouched and re-prompts with the given text.
func stay(lead models.Lead, reply string) Result {
	return Result{NextStep: lead.Step, Reply: reply}
}

func transitionState(lead models.Lead, body string) Result {
	if body == BootstrapToken {
		// Admin-initiated conversation: re-send the welcome prompt and
		// keep waiting for the state answer.
		slog.Debug("dialogue.Transition admin bootstrap", "phone", lead.PhoneNumber)
		return stay(lead, MsgWelcome)
	}

	if !IsUSState(body) {
		slog.Debug("dialogue.Transition invalid state name", "phone", lead.PhoneNumber, "body", body)
		return stay(lead, MsgInvalidState)
	}

	state := body
	next := StepPreference
	return Result{
		Updates:  models.LeadUpdate{State: &state, Step: &next},
		NextStep: next,
		Reply:    MsgAskPreference,
	}
}

func transitionPreference(lead models.Lead, body string) Result {
	pref, ok := models.ParsePreference(body)
	if !ok {
		slog.Debug("dialogue.Transition invalid preference token", "phone", lead.PhoneNumber, "body", body)
		return stay(lead, MsgInvalidPreference)
	}

	next := StepTobacco
	return Result{
		Updates:  models.LeadUpdate{Preference: &pref, Step: &next},
		NextStep: next,
		Reply:    MsgAskTobacco,
	}
}

func transitionHealthQuestion(lead models.Lead, body string) Result {
	q := healthQuestions[lead.Step]

	answer, ok := models.ParseAnswer(body)
	if !ok {
		slog.Debug("dialogue.Transition invalid answer token", "phone", lead.PhoneNumber, "step", lead.Step, "body", body)
		return stay(lead, invalidAnswerPrefix+q.question)
	}

	next := lead.Step + 1
	updates := models.LeadUpdate{Step: &next}
	q.assign(&updates, answer)

	return Result{
		Updates:  updates,
		NextStep: next,
		Reply:    q.reply(answer),
	}
}

func transitionCallToAction(lead models.Lead, body string) Result {
	var status models.LeadStatus
	var reply string

	switch body {
	case "1":
		status = models.LeadStatusCallingNow
		reply = MsgCallRequested(lead.PhoneNumber)
	case "2":
		status = models.LeadStatusConsultationScheduled
		reply = MsgConsultationScheduled
	case "3":
		status = models.LeadStatusQuestions
		reply = MsgQuestionsWelcome
	default:
		slog.Debug("dialogue.Transition invalid call-to-action token", "phone", lead.PhoneNumber, "body", body)
		return stay(lead, MsgInvalidCallToAction)
	}

	next := StepDone
	return Result{
		Updates:  models.LeadUpdate{Step: &next, Status: &status},
		NextStep: next,
		Reply:    reply,
	}
}
