// Package identity abstracts the identity/session collaborator: sign-up,
// password and magic-link sign-in, callback verification, user metadata.
// Controllers depend only on the Provider interface so tests can swap in fakes.
package identity

import (
	"context"

	"github.com/reindeer-games/backend/internal/models"
)

// Provider is the identity collaborator contract. Every call returns either a
// user/session or an error carrying the provider's message (*ProviderError).
type Provider interface {
	// SignUp creates an account. No session is issued; the caller awaits
	// email confirmation.
	SignUp(ctx context.Context, email, password string) (*models.User, error)

	// SignInWithPassword exchanges credentials for an active session.
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)

	// SignInWithMagicLink requests a one-time sign-in link mailed to the
	// user, bound to callbackURL. Repeatable.
	SignInWithMagicLink(ctx context.Context, email, callbackURL string) error

	// VerifyCode exchanges a one-time code from the callback for a session.
	VerifyCode(ctx context.Context, code string) (*models.Session, error)

	// VerifyTokenHash verifies a token-hash/type pair from the callback.
	VerifyTokenHash(ctx context.Context, tokenHash, otpType string) (*models.Session, error)

	// GetUser returns the user behind an access token.
	GetUser(ctx context.Context, accessToken string) (*models.User, error)

	// UpdateUserMetadata merges fields into the token user's metadata and
	// returns the updated user.
	UpdateUserMetadata(ctx context.Context, accessToken string, meta map[string]any) (*models.User, error)

	// SignOut revokes the session behind the access token.
	SignOut(ctx context.Context, accessToken string) error
}

// ProviderError is an error reported by the identity provider. Message is the
// provider's human-readable text and is safe to show to the caller.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string { return e.Message }
