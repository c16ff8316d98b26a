package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"plain address", "reach me at jane.doe@example.org please", "jane.doe@example.org", true},
		{"embedded in sentence", "it's ade+shop@mail.co, thanks", "ade+shop@mail.co", true},
		{"placeholder skipped", "my email is user@example.com", "", false},
		{"placeholder then real", "user@example.com or tunde@real.ng", "tunde@real.ng", true},
		{"no address", "call me instead", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Email(tt.text)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPhoneNormalization(t *testing.T) {
	got, ok := Phone("you can call +234-801-234-5678 anytime")
	require.True(t, ok)
	require.Equal(t, "+2348012345678", got)
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"spaces and parens", "office: (080) 123 4567", "0801234567", true},
		{"dots", "080.1234.5678", "08012345678", true},
		{"too few digits", "room 12345", "", false},
		{"no number", "email only please", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Phone(tt.text)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	for _, v := range []string{"", "  ", "null", "None", "N/A", "Not Provided", "unknown", "string", "USER@EXAMPLE.COM"} {
		require.True(t, IsPlaceholder(v), "expected placeholder: %q", v)
	}
	for _, v := range []string{"jane@real.org", "+2348012345678", "Tunde"} {
		require.False(t, IsPlaceholder(v), "unexpected placeholder: %q", v)
	}
}

func TestSanitize(t *testing.T) {
	require.Equal(t, "", Sanitize("null"))
	require.Equal(t, "", Sanitize("user@example.com"))
	require.Equal(t, "jane@real.org", Sanitize("  jane@real.org  "))
}
