// Package phone canonicalizes phone numbers for lead lookup and storage.
//
// Every number is written and looked up in one canonical E.164-like form
// with a leading "+". Normalize is total: malformed input still yields a
// best-effort canonical string rather than an error, because inbound
// webhook senders arrive in whatever format the provider supplies.
package phone

import "strings"

// Normalize maps any textual phone representation to the canonical form.
// Rules, applied in order: strip whitespace; 10 digits get a "+1" prefix;
// 11 digits starting with "1" get a "+" prefix; anything else without a
// leading "+" gets one prepended.
func Normalize(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")

	switch {
	case len(normalized) == 10:
		normalized = "+1" + normalized
	case len(normalized) == 11 && strings.HasPrefix(normalized, "1"):
		normalized = "+" + normalized
	case !strings.HasPrefix(normalized, "+"):
		normalized = "+" + normalized
	}

	return normalized
}
