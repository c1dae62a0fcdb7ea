// Package auth orchestrates the authentication flows: sign-up, password and
// magic-link sign-in, callback verification, profile completion, sign-out.
package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/reindeer-games/backend/internal/errs"
	"github.com/reindeer-games/backend/internal/identity"
	"github.com/reindeer-games/backend/internal/models"
	"github.com/reindeer-games/backend/internal/validation"
)

// Notifier delivers post-auth notification emails. Optional.
type Notifier interface {
	EnqueueWelcome(ctx context.Context, email, displayName string) error
}

// Service is the auth flow controller. Session state lives entirely with the
// identity provider; every method takes its inputs explicitly.
type Service struct {
	provider    identity.Provider
	notifier    Notifier
	callbackURL string
	logger      *zap.Logger
}

// NewService creates the auth service. callbackURL is the absolute address of
// the magic-link callback endpoint. notifier may be nil.
func NewService(provider identity.Provider, notifier Notifier, callbackURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, notifier: notifier, callbackURL: callbackURL, logger: logger}
}

// SignUp validates the credentials and requests account creation. On success
// the submitted email is returned for the confirmation surface; no session is
// issued yet.
func (s *Service) SignUp(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if res := validation.ValidateEmail(email); !res.Valid {
		return "", errs.InvalidInput(res.Error)
	}
	if res := validation.ValidatePassword(password); !res.Valid {
		return "", errs.InvalidInput(res.Error)
	}

	if _, err := s.provider.SignUp(ctx, email, password); err != nil {
		return "", s.providerFailure("sign up", email, err)
	}
	return email, nil
}

// SignInWithPassword delegates to the identity provider. The provider's error
// message is surfaced unmodified on failure.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		var pe *identity.ProviderError
		if errors.As(err, &pe) {
			return nil, errs.Unauthenticated(pe.Message)
		}
		return nil, s.providerFailure("password sign-in", email, err)
	}
	return session, nil
}

// RequestMagicLink validates the email and asks the provider for a one-time
// link bound to the callback endpoint. Repeatable.
func (s *Service) RequestMagicLink(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if res := validation.ValidateEmail(email); !res.Valid {
		return errs.InvalidInput(res.Error)
	}
	if err := s.provider.SignInWithMagicLink(ctx, email, s.callbackURL); err != nil {
		return s.providerFailure("magic link request", email, err)
	}
	return nil
}

// CompleteProfile stores the display name in the user's metadata. When the
// user already has a name the call is an idempotent no-op (skipped=true). The
// current user is re-fetched so a name set elsewhere is honored.
func (s *Service) CompleteProfile(ctx context.Context, session *models.Session, name string) (user *models.User, skipped bool, err error) {
	if session == nil {
		return nil, false, errs.Unauthenticated("You must be signed in to complete your profile")
	}

	current, err := s.provider.GetUser(ctx, session.AccessToken)
	if err != nil {
		var pe *identity.ProviderError
		if errors.As(err, &pe) && pe.StatusCode == 401 {
			return nil, false, errs.Unauthenticated("You must be signed in to complete your profile")
		}
		return nil, false, s.providerFailure("complete profile", session.UserID(), err)
	}
	if current.ProfileComplete() {
		return current, true, nil
	}

	// Generic non-empty / length check, same bounds as an event name.
	if res := validation.ValidateEventName(name); !res.Valid {
		return nil, false, errs.InvalidInput(res.Error)
	}

	updated, err := s.provider.UpdateUserMetadata(ctx, session.AccessToken, map[string]any{
		"name": strings.TrimSpace(name),
	})
	if err != nil {
		var pe *identity.ProviderError
		if errors.As(err, &pe) {
			return nil, false, errs.New(errs.KindUpstream, pe.Message)
		}
		return nil, false, s.providerFailure("complete profile", current.ID, err)
	}

	if s.notifier != nil {
		if err := s.notifier.EnqueueWelcome(ctx, updated.Email, updated.DisplayName()); err != nil {
			s.logger.Warn("welcome email enqueue failed",
				zap.String("user_id", updated.ID), zap.Error(err))
		}
	}
	return updated, false, nil
}

// SignOut delegates to the provider. The caller ends up unauthenticated
// regardless of the provider's result.
func (s *Service) SignOut(ctx context.Context, session *models.Session) {
	if session == nil {
		return
	}
	if err := s.provider.SignOut(ctx, session.AccessToken); err != nil {
		s.logger.Warn("sign out failed",
			zap.String("operation", "sign out"),
			zap.String("user_id", session.UserID()),
			zap.Error(err))
	}
}

// providerFailure logs the underlying collaborator error with context and
// returns it translated: provider messages pass through, everything else goes
// generic.
func (s *Service) providerFailure(op, subject string, err error) error {
	s.logger.Error("identity provider call failed",
		zap.String("operation", op),
		zap.String("subject", subject),
		zap.Error(err))
	var pe *identity.ProviderError
	if errors.As(err, &pe) {
		return errs.New(errs.KindUpstream, pe.Message)
	}
	return errs.Upstream(errs.GenericRetryMessage, err)
}
