// Package util holds small helpers shared by the executable entry point.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// BoolEnv reads a boolean switch from the environment. Truthy tokens are
// true/1/yes/on, falsy tokens false/0/no/off, case-insensitive. Unset
// returns the fallback; an unrecognized token also returns the fallback
// after a warning, so a typo in DEMO_MODE can never silently flip
// outbound delivery into production.
func BoolEnv(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	slog.Warn("BoolEnv: unrecognized boolean token, using fallback", "key", key, "value", raw, "fallback", fallback)
	return fallback
}
