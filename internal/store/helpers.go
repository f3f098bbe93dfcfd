package store

import (
	"database/sql"
	"fmt"

	"github.com/FinalExpenseIQ/leadline/internal/models"
)

// leadColumns is the shared SELECT column list for both SQL backends.
const leadColumns = `id, phone_number, state, preference, tobacco, oxygen, hospitalized, controlled_conditions, serious_conditions, step, status, agent_takeover, created_at, updated_at`

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanLead scans one lead row in leadColumns order.
func scanLead(row rowScanner) (models.Lead, error) {
	var l models.Lead
	var state, preference, tobacco, oxygen, hospitalized, controlled, serious sql.NullString
	err := row.Scan(
		&l.ID, &l.PhoneNumber, &state, &preference, &tobacco, &oxygen,
		&hospitalized, &controlled, &serious, &l.Step, &l.Status,
		&l.AgentTakeover, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return l, fmt.Errorf("scan lead failed: %w", err)
	}
	l.State = state.String
	l.Preference = models.Preference(preference.String)
	l.Tobacco = models.Answer(tobacco.String)
	l.Oxygen = models.Answer(oxygen.String)
	l.Hospitalized = models.Answer(hospitalized.String)
	l.Controlled = models.Answer(controlled.String)
	l.Serious = models.Answer(serious.String)
	return l, nil
}

// updateColumns flattens the non-nil fields of a LeadUpdate into parallel
// column and value slices. Placeholder formatting is backend-specific.
func updateColumns(u models.LeadUpdate) ([]string, []interface{}) {
	var cols []string
	var vals []interface{}

	if u.State != nil {
		cols = append(cols, "state")
		vals = append(vals, *u.State)
	}
	if u.Preference != nil {
		cols = append(cols, "preference")
		vals = append(vals, string(*u.Preference))
	}
	if u.Tobacco != nil {
		cols = append(cols, "tobacco")
		vals = append(vals, string(*u.Tobacco))
	}
	if u.Oxygen != nil {
		cols = append(cols, "oxygen")
		vals = append(vals, string(*u.Oxygen))
	}
	if u.Hospitalized != nil {
		cols = append(cols, "hospitalized")
		vals = append(vals, string(*u.Hospitalized))
	}
	if u.Controlled != nil {
		cols = append(cols, "controlled_conditions")
		vals = append(vals, string(*u.Controlled))
	}
	if u.Serious != nil {
		cols = append(cols, "serious_conditions")
		vals = append(vals, string(*u.Serious))
	}
	if u.Step != nil {
		cols = append(cols, "step")
		vals = append(vals, *u.Step)
	}
	if u.Status != nil {
		cols = append(cols, "status")
		vals = append(vals, string(*u.Status))
	}
	if u.AgentTakeover != nil {
		cols = append(cols, "agent_takeover")
		vals = append(vals, *u.AgentTakeover)
	}

	return cols, vals
}
