// Package dialogue implements the scripted SMS conversation state machine.
//
// This file holds the fixed outbound copy for every step of the script.
// Re-prompts always restate the original question so the lead knows what
// is being asked, never a generic error.
package dialogue

// AgentPhoneDisplay is the human-readable callback number quoted in the
// call-to-action copy.
const AgentPhoneDisplay = "(503) 764-5097"

// BootstrapToken is the literal body used when an admin starts a
// conversation on behalf of a lead; it re-sends the welcome prompt
// without consuming the state question.
const BootstrapToken = "[admin_started]"

// Outbound script copy, one constant per prompt.
const (
	MsgWelcome = "Welcome to Final Expense Insurance! First, what state are you located in? Please reply with your state name (e.g., 'California', 'Texas', etc.)"

	MsgInvalidState = "Please reply with a valid US state name (e.g., 'California', 'Texas', etc.)"

	MsgAskPreference = "Thanks! Do you prefer burial or cremation?\nReply:\n1 for Burial\n2 for Cremation"

	MsgInvalidPreference = "Please reply with a valid option:\n1 for Burial\n2 for Cremation"

	MsgAskTobacco = "Health Question 1 of 5:\nHave you used tobacco in the past 12 months?\nReply:\n1 for Yes\n2 for No"

	MsgAskOxygen = "Health Question 2 of 5:\nDo you currently use oxygen, a wheelchair, or reside in a nursing home?\nReply:\n1 for Yes\n2 for No"

	MsgAskHospitalized = "Health Question 3 of 5:\nIn the past 2 years, have you been hospitalized overnight for any reason?\nReply:\n1 for Yes\n2 for No"

	MsgAskControlled = "Health Question 4 of 5:\nDo you have any well-controlled conditions (high blood pressure, high cholesterol, type 2 diabetes with medication)?\nReply:\n1 for Yes\n2 for No"

	MsgAskSerious = "Health Question 5 of 5:\nIn the past 2 years, have you been diagnosed with cancer, heart attack, stroke, COPD, kidney failure, or HIV/AIDS?\nReply:\n1 for Yes\n2 for No"

	MsgGuaranteedIssue = "Based on your health profile, you may qualify for our Guaranteed Issue plan. Here are your coverage options:\n$10,000 coverage: ~$68/month\n$15,000 coverage: ~$102/month\n$25,000 coverage: ~$170/month\n\nReady to secure your rate?\n1 - Call me now: " + AgentPhoneDisplay + "\n2 - Schedule consultation\n3 - Text me more questions"

	MsgPreferredTier = "Great! Based on your health profile, you may qualify for our Preferred tier coverage with excellent rates. Here are your coverage options:\n$10,000 coverage: ~$45/month\n$15,000 coverage: ~$68/month\n$25,000 coverage: ~$113/month\n\nReady to secure your rate?\n1 - Call me now: " + AgentPhoneDisplay + "\n2 - Schedule consultation\n3 - Text me more questions"

	MsgInvalidCallToAction = "Please choose an option:\n1 - Call me now: " + AgentPhoneDisplay + "\n2 - Schedule consultation\n3 - Text me more questions"

	MsgConsultationScheduled = "Great! I'll schedule a consultation for you. An agent will contact you within 2 hours to set up a convenient time."

	MsgQuestionsWelcome = "Of course! What questions do you have about Final Expense Insurance? I'm here to help."

	MsgThankYou = "Thank you for your interest! An agent will contact you shortly."

	// MsgAgentHolding acknowledges inbound messages once an agent has
	// taken over; the engine is bypassed entirely.
	MsgAgentHolding = "An agent will contact you shortly. Thank you for your patience."

	// MsgTakeoverNotice is sent to the lead when an admin triggers takeover.
	MsgTakeoverNotice = "An agent has taken over this conversation. They will contact you shortly."

	// MsgProcessingError is the apology fallback sent when the system
	// failed to process an inbound message.
	MsgProcessingError = "Sorry, there was an error processing your message. Please try again or call " + AgentPhoneDisplay + " for assistance."
)

// invalidAnswerPrefix is prepended to the restated question when a yes/no
// step receives an unrecognized token.
const invalidAnswerPrefix = "Please reply with a valid option:\n"

// MsgCallRequested builds the immediate-call confirmation, quoting the
// lead's own number back to them.
func MsgCallRequested(phoneNumber string) string {
	return "Perfect! I'll have an agent call you right away at " + phoneNumber + ". Please answer any calls from " + AgentPhoneDisplay + "."
}

// usStates is the set of valid answers to the state question, lowercased.
var usStates = map[string]bool{
	"alabama": true, "alaska": true, "arizona": true, "arkansas": true,
	"california": true, "colorado": true, "connecticut": true, "delaware": true,
	"florida": true, "georgia": true, "hawaii": true, "idaho": true,
	"illinois": true, "indiana": true, "iowa": true, "kansas": true,
	"kentucky": true, "louisiana": true, "maine": true, "maryland": true,
	"massachusetts": true, "michigan": true, "minnesota": true, "mississippi": true,
	"missouri": true, "montana": true, "nebraska": true, "nevada": true,
	"new hampshire": true, "new jersey": true, "new mexico": true, "new york": true,
	"north carolina": true, "north dakota": true, "ohio": true, "oklahoma": true,
	"oregon": true, "pennsylvania": true, "rhode island": true, "south carolina": true,
	"south dakota": true, "tennessee": true, "texas": true, "utah": true,
	"vermont": true, "virginia": true, "washington": true, "west virginia": true,
	"wisconsin": true, "wyoming": true,
}

// IsUSState reports whether the lowercased input names one of the 50 states.
func IsUSState(s string) bool {
	return usStates[s]
}
