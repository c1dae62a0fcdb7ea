package models

import "strings"

// User represents an authenticated user as reported by the identity provider.
// The provider owns the record; this system only reads it.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// DisplayName returns the user's display name from metadata ("name", falling
// back to "full_name"), or "" when the profile is incomplete.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	for _, key := range []string{"name", "full_name"} {
		if v, ok := u.Metadata[key].(string); ok {
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// ProfileComplete reports whether the user has set a display name.
func (u *User) ProfileComplete() bool {
	return u.DisplayName() != ""
}

// Session is an active authenticated session issued by the identity provider.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	User         *User  `json:"user"`
}

// UserID returns the session user's id, or "" for a nil session.
func (s *Session) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}
