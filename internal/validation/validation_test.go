package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reindeer-games/backend/internal/validation"
)

func TestValidateEventName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"single char", "a", true},
		{"normal", "Ski Trip", true},
		{"exactly 255", strings.Repeat("x", 255), true},
		{"256", strings.Repeat("x", 256), false},
		{"255 after trim", "  " + strings.Repeat("x", 255) + "  ", true},
		{"255 multibyte runes", strings.Repeat("é", 255), true},
		{"256 multibyte runes", strings.Repeat("é", 256), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validation.ValidateEventName(tt.input)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				assert.NotEmpty(t, res.Error)
			}
		})
	}
}

func TestValidateEventDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"empty", "", false},
		{"whitespace only", "\t \n", false},
		{"normal", "Weekend in the mountains", true},
		{"exactly 5000", strings.Repeat("d", 5000), true},
		{"5001", strings.Repeat("d", 5001), false},
		{"5000 multibyte runes", strings.Repeat("ü", 5000), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validation.ValidateEventDescription(tt.input)
			assert.Equal(t, tt.valid, res.Valid)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"empty", "", false},
		{"seven chars", "1234567", false},
		{"exactly eight", "12345678", true},
		{"exactly 72", strings.Repeat("p", 72), true},
		{"73", strings.Repeat("p", 73), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validation.ValidatePassword(tt.input)
			assert.Equal(t, tt.valid, res.Valid)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"empty", "", false},
		{"no at", "foo.bar.com", false},
		{"no dot after at", "foo@barcom", false},
		{"two ats", "a@b@c.com", false},
		{"empty local", "@example.com", false},
		{"trailing dot", "foo@example.", false},
		{"space in local", "fo o@example.com", false},
		{"valid", "foo@example.com", true},
		{"valid subdomain", "foo@mail.example.co.uk", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validation.ValidateEmail(tt.input)
			assert.Equal(t, tt.valid, res.Valid, "input %q", tt.input)
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "bHi/b", validation.SanitizeString("  <b>Hi</b>  "))
	assert.Equal(t, "plain", validation.SanitizeString("plain"))
	assert.Equal(t, "scriptalert(1)/script", validation.SanitizeString("<script>alert(1)</script>"))
	assert.Equal(t, "", validation.SanitizeString("  <>  "))
}
