package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reindeer-games/backend/internal/identity"
	"github.com/reindeer-games/backend/internal/models"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	verifier := identity.NewTokenVerifier("test-secret", 24)
	user := &models.User{
		ID:       "9f2c7a40-1111-4222-8333-444455556666",
		Email:    "a@example.com",
		Metadata: map[string]any{"name": "Alice"},
	}

	token, err := verifier.Issue(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := verifier.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, "Alice", got.DisplayName())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := identity.NewTokenVerifier("secret-a", 24)
	verifier := identity.NewTokenVerifier("secret-b", 24)

	token, err := issuer.Issue(&models.User{ID: "u1", Email: "a@example.com"})
	assert.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	verifier := identity.NewTokenVerifier("test-secret", 24)

	_, err := verifier.Verify("not.a.token")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = verifier.Verify("")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestExpireSeconds(t *testing.T) {
	verifier := identity.NewTokenVerifier("test-secret", 2)
	assert.Equal(t, 7200, verifier.ExpireSeconds())
}
