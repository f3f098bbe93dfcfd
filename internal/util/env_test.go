package util

import "testing"

func TestBoolEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback bool
		want     bool
	}{
		{name: "true", value: "true", fallback: false, want: true},
		{name: "one", value: "1", fallback: false, want: true},
		{name: "yes upper", value: "YES", fallback: false, want: true},
		{name: "on padded", value: " on ", fallback: false, want: true},
		{name: "false", value: "false", fallback: true, want: false},
		{name: "zero", value: "0", fallback: true, want: false},
		{name: "off", value: "off", fallback: true, want: false},
		{name: "garbage keeps fallback", value: "maybe", fallback: false, want: false},
		{name: "garbage keeps true fallback", value: "maybe", fallback: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LEADLINE_TEST_BOOL", tt.value)
			if got := BoolEnv("LEADLINE_TEST_BOOL", tt.fallback); got != tt.want {
				t.Errorf("BoolEnv(%q, %v) = %v, want %v", tt.value, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestBoolEnvUnset(t *testing.T) {
	if got := BoolEnv("LEADLINE_TEST_BOOL_UNSET", true); !got {
		t.Error("BoolEnv for unset key = false, want the fallback")
	}
	if got := BoolEnv("LEADLINE_TEST_BOOL_UNSET", false); got {
		t.Error("BoolEnv for unset key = true, want the fallback")
	}
}
