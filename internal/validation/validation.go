// Package validation holds pure input checks for form fields. Validators
// return a result with a human-readable message and never panic.
package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	maxEventNameLen        = 255
	maxEventDescriptionLen = 5000
	minPasswordLen         = 8
	maxPasswordLen         = 72 // bcrypt input limit
)

// Result is the outcome of a validation check.
type Result struct {
	Valid bool
	Error string
}

func ok() Result             { return Result{Valid: true} }
func fail(msg string) Result { return Result{Valid: false, Error: msg} }

// ValidateEventName checks an event name: required, at most 255 chars after trim.
func ValidateEventName(name string) Result {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fail("Event name is required")
	}
	if utf8.RuneCountInString(trimmed) > maxEventNameLen {
		return fail("Event name must be 255 characters or less")
	}
	return ok()
}

// ValidateEventDescription checks an event description: required, at most 5000
// chars after trim.
func ValidateEventDescription(description string) Result {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return fail("Event description is required")
	}
	if utf8.RuneCountInString(trimmed) > maxEventDescriptionLen {
		return fail("Event description must be 5000 characters or less")
	}
	return ok()
}

// ValidatePassword checks password length bounds (8..72).
func ValidatePassword(password string) Result {
	if password == "" {
		return fail("Password is required")
	}
	if len(password) < minPasswordLen {
		return fail("Password must be at least 8 characters long")
	}
	if len(password) > maxPasswordLen {
		return fail("Password must be 72 characters or less")
	}
	return ok()
}

// ValidateEmail checks a basic local@domain.tld shape: non-whitespace parts,
// exactly one @, and a dot somewhere after it.
func ValidateEmail(email string) Result {
	if email == "" {
		return fail("Email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return fail("Please enter a valid email address")
	}
	local, domain := email[:at], email[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return fail("Please enter a valid email address")
	}
	if strings.ContainsAny(local, " \t") || strings.ContainsAny(domain, " \t") {
		return fail("Please enter a valid email address")
	}
	return ok()
}

// SanitizeString trims the input and strips all angle brackets. Applied to
// name and description before persistence.
func SanitizeString(input string) string {
	trimmed := strings.TrimSpace(input)
	return strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, trimmed)
}
