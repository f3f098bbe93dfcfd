package dialogue

import (
	"strings"
	"testing"

	"github.com/FinalExpenseIQ/leadline/internal/models"
)

func leadAtStep(step int) models.Lead {
	return models.Lead{
		ID:          "lead-1",
		PhoneNumber: "+15551234567",
		Step:        step,
		Status:      models.LeadStatusActive,
	}
}

func TestTransitionStateValid(t *testing.T) {
	result := Transition(leadAtStep(StepState), "Oregon")

	if !result.Advanced() {
		t.Fatal("expected transition to advance on a valid state")
	}
	if result.NextStep != StepPreference {
		t.Errorf("NextStep = %d, want %d", result.NextStep, StepPreference)
	}
	if result.Updates.State == nil || *result.Updates.State != "oregon" {
		t.Errorf("Updates.State = %v, want oregon", result.Updates.State)
	}
	if result.Reply != MsgAskPreference {
		t.Errorf("Reply = %q, want the preference prompt", result.Reply)
	}
}

func TestTransitionStateCaseInsensitive(t *testing.T) {
	for _, input := range []string{"oregon", "OREGON", "  Oregon  ", "New York"} {
		result := Transition(leadAtStep(StepState), input)
		if !result.Advanced() {
			t.Errorf("Transition(%q) did not advance", input)
		}
	}
}

func TestTransitionStateInvalid(t *testing.T) {
	for _, input := range []string{"Narnia", "3", "", "OR"} {
		result := Transition(leadAtStep(StepState), input)
		if result.Advanced() {
			t.Errorf("Transition(%q) advanced, want re-prompt", input)
		}
		if !result.Updates.IsEmpty() {
			t.Errorf("Transition(%q) produced updates %+v, want none", input, result.Updates)
		}
		if result.NextStep != StepState {
			t.Errorf("Transition(%q) NextStep = %d, want %d", input, result.NextStep, StepState)
		}
		if result.Reply != MsgInvalidState {
			t.Errorf("Transition(%q) Reply = %q, want invalid state prompt", input, result.Reply)
		}
	}
}

func TestTransitionStateBootstrapToken(t *testing.T) {
	result := Transition(leadAtStep(StepState), BootstrapToken)

	if result.Advanced() {
		t.Error("bootstrap token must not consume the state question")
	}
	if result.Reply != MsgWelcome {
		t.Errorf("Reply = %q, want the welcome prompt", result.Reply)
	}
}

func TestTransitionPreference(t *testing.T) {
	tests := []struct {
		input string
		want  models.Preference
	}{
		{"1", models.PreferenceBurial},
		{"2", models.PreferenceCremation},
	}

	for _, tt := range tests {
		result := Transition(leadAtStep(StepPreference), tt.input)
		if result.NextStep != StepTobacco {
			t.Errorf("Transition(%q) NextStep = %d, want %d", tt.input, result.NextStep, StepTobacco)
		}
		if result.Updates.Preference == nil || *result.Updates.Preference != tt.want {
			t.Errorf("Transition(%q) Preference = %v, want %q", tt.input, result.Updates.Preference, tt.want)
		}
		if result.Reply != MsgAskTobacco {
			t.Errorf("Transition(%q) Reply = %q, want first health question", tt.input, result.Reply)
		}
	}
}

func TestTransitionPreferenceInvalid(t *testing.T) {
	result := Transition(leadAtStep(StepPreference), "burial")

	if result.Advanced() {
		t.Error("spelled-out preference must not advance; only 1/2 are accepted")
	}
	if result.Reply != MsgInvalidPreference {
		t.Errorf("Reply = %q, want invalid preference prompt", result.Reply)
	}
}

// Each health step persists exactly one answer field and moves to the
// next question.
func TestTransitionHealthQuestions(t *testing.T) {
	tests := []struct {
		step      int
		nextReply string
		field     func(models.LeadUpdate) *models.Answer
	}{
		{StepTobacco, MsgAskOxygen, func(u models.LeadUpdate) *models.Answer { return u.Tobacco }},
		{StepOxygen, MsgAskHospitalized, func(u models.LeadUpdate) *models.Answer { return u.Oxygen }},
		{StepHospitalized, MsgAskControlled, func(u models.LeadUpdate) *models.Answer { return u.Hospitalized }},
		{StepControlled, MsgAskSerious, func(u models.LeadUpdate) *models.Answer { return u.Controlled }},
	}

	for _, tt := range tests {
		result := Transition(leadAtStep(tt.step), "2")
		if result.NextStep != tt.step+1 {
			t.Errorf("step %d: NextStep = %d, want %d", tt.step, result.NextStep, tt.step+1)
		}
		if got := tt.field(result.Updates); got == nil || *got != models.AnswerNo {
			t.Errorf("step %d: answer field = %v, want %q", tt.step, got, models.AnswerNo)
		}
		if result.Reply != tt.nextReply {
			t.Errorf("step %d: Reply = %q, want next question", tt.step, result.Reply)
		}
	}
}

func TestTransitionSeriousBranchesQuote(t *testing.T) {
	yes := Transition(leadAtStep(StepSerious), "1")
	if yes.Updates.Serious == nil || *yes.Updates.Serious != models.AnswerYes {
		t.Errorf("Serious = %v, want %q", yes.Updates.Serious, models.AnswerYes)
	}
	if yes.Reply != MsgGuaranteedIssue {
		t.Errorf("yes branch Reply = %q, want the Guaranteed Issue quote", yes.Reply)
	}
	if !strings.Contains(yes.Reply, "$68/month") {
		t.Error("Guaranteed Issue quote missing the $10,000 rate")
	}

	no := Transition(leadAtStep(StepSerious), "2")
	if no.Reply != MsgPreferredTier {
		t.Errorf("no branch Reply = %q, want the Preferred tier quote", no.Reply)
	}
	if !strings.Contains(no.Reply, "$45/month") {
		t.Error("Preferred tier quote missing the $10,000 rate")
	}
}

func TestTransitionHealthQuestionInvalid(t *testing.T) {
	for _, input := range []string{"yes", "maybe", "0", ""} {
		result := Transition(leadAtStep(StepTobacco), input)
		if result.Advanced() {
			t.Errorf("Transition(%q) advanced, want re-prompt", input)
		}
		wantReply := "Please reply with a valid option:\n" + MsgAskTobacco
		if result.Reply != wantReply {
			t.Errorf("Transition(%q) Reply = %q, want restated question", input, result.Reply)
		}
	}
}

func TestTransitionCallToAction(t *testing.T) {
	tests := []struct {
		input      string
		wantStatus models.LeadStatus
	}{
		{"1", models.LeadStatusCallingNow},
		{"2", models.LeadStatusConsultationScheduled},
		{"3", models.LeadStatusQuestions},
	}

	for _, tt := range tests {
		result := Transition(leadAtStep(StepCallToAction), tt.input)
		if result.NextStep != StepDone {
			t.Errorf("Transition(%q) NextStep = %d, want %d", tt.input, result.NextStep, StepDone)
		}
		if result.Updates.Status == nil || *result.Updates.Status != tt.wantStatus {
			t.Errorf("Transition(%q) Status = %v, want %q", tt.input, result.Updates.Status, tt.wantStatus)
		}
	}
}

func TestTransitionCallToActionReplies(t *testing.T) {
	callNow := Transition(leadAtStep(StepCallToAction), "1")
	if !strings.Contains(callNow.Reply, "+15551234567") {
		t.Errorf("call-now Reply %q does not quote the lead's number", callNow.Reply)
	}
	if !strings.Contains(callNow.Reply, AgentPhoneDisplay) {
		t.Errorf("call-now Reply %q does not quote the agent's number", callNow.Reply)
	}

	scheduled := Transition(leadAtStep(StepCallToAction), "2")
	if !strings.Contains(scheduled.Reply, "within 2 hours") {
		t.Errorf("consultation Reply %q missing the 2-hour window", scheduled.Reply)
	}
}

func TestTransitionCallToActionInvalid(t *testing.T) {
	result := Transition(leadAtStep(StepCallToAction), "4")

	if result.Advanced() {
		t.Error("invalid call-to-action token must not advance")
	}
	if result.Reply != MsgInvalidCallToAction {
		t.Errorf("Reply = %q, want the option menu", result.Reply)
	}
}

// After the script completes every inbound message gets the thank-you
// acknowledgement and nothing changes.
func TestTransitionTerminal(t *testing.T) {
	for _, step := range []int{StepDone, 12} {
		result := Transition(leadAtStep(step), "hello?")
		if !result.Updates.IsEmpty() {
			t.Errorf("step %d produced updates %+v, want none", step, result.Updates)
		}
		if result.NextStep != step {
			t.Errorf("step %d NextStep = %d, want unchanged", step, result.NextStep)
		}
		if result.Reply != MsgThankYou {
			t.Errorf("step %d Reply = %q, want thank-you", step, result.Reply)
		}
	}
}

func TestIsUSState(t *testing.T) {
	for _, s := range []string{"oregon", "new york", "wyoming"} {
		if !IsUSState(s) {
			t.Errorf("IsUSState(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"Oregon", "puerto rico", "narnia", ""} {
		if IsUSState(s) {
			t.Errorf("IsUSState(%q) = true, want false", s)
		}
	}
}
