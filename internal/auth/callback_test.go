package auth_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/reindeer-games/backend/internal/auth"
	"github.com/reindeer-games/backend/internal/identity"
	"github.com/reindeer-games/backend/internal/models"
)

func TestParseCallbackCodeFlow(t *testing.T) {
	req := auth.ParseCallback(url.Values{"code": {"abc"}, "next": {"/events"}})

	assert.Equal(t, auth.FlowCode, req.Flow)
	assert.Equal(t, "abc", req.Code)
	assert.Equal(t, "/events", req.Next)
}

func TestParseCallbackCodeTakesPrecedenceOverTokenHash(t *testing.T) {
	req := auth.ParseCallback(url.Values{
		"code":       {"abc"},
		"token_hash": {"deadbeef"},
		"type":       {"magiclink"},
	})

	assert.Equal(t, auth.FlowCode, req.Flow)
}

func TestParseCallbackTokenHashFlow(t *testing.T) {
	req := auth.ParseCallback(url.Values{"token_hash": {"deadbeef"}, "type": {"magiclink"}})

	assert.Equal(t, auth.FlowTokenHash, req.Flow)
	assert.Equal(t, "deadbeef", req.TokenHash)
	assert.Equal(t, "magiclink", req.Type)
}

func TestParseCallbackTokenHashWithoutTypeIsEmpty(t *testing.T) {
	req := auth.ParseCallback(url.Values{"token_hash": {"deadbeef"}})

	assert.Equal(t, auth.FlowEmpty, req.Flow)
}

func TestParseCallbackProviderError(t *testing.T) {
	req := auth.ParseCallback(url.Values{
		"error":             {"access_denied"},
		"error_description": {"Email link is invalid or has expired"},
	})

	assert.Equal(t, auth.FlowProviderError, req.Flow)
	assert.Equal(t, "Email link is invalid or has expired", req.ErrorMessage)
}

func TestParseCallbackDefaultsNextToHome(t *testing.T) {
	req := auth.ParseCallback(url.Values{"code": {"abc"}})

	assert.Equal(t, "/", req.Next)
}

func TestCallbackRejectedCodeRedirectsToLoginWithMessage(t *testing.T) {
	provider := new(MockProvider)
	provider.On("VerifyCode", mock.Anything, "bad").
		Return(nil, &identity.ProviderError{StatusCode: 401, Message: "Email link is invalid or has expired"})

	result := newService(provider).HandleCallback(context.Background(),
		auth.ParseCallback(url.Values{"code": {"bad"}}))

	assert.Nil(t, result.Session)
	assert.Equal(t,
		"/login?error=invalid_token&message="+url.QueryEscape("Email link is invalid or has expired"),
		result.Location)
}

func TestCallbackFailureWithoutProviderMessageUsesFallback(t *testing.T) {
	provider := new(MockProvider)
	provider.On("VerifyCode", mock.Anything, "bad").
		Return(nil, errors.New("dial tcp: connection refused"))

	result := newService(provider).HandleCallback(context.Background(),
		auth.ParseCallback(url.Values{"code": {"bad"}}))

	assert.Equal(t,
		"/login?error=invalid_token&message="+url.QueryEscape("Invalid or expired link"),
		result.Location)
}

func TestCallbackIncompleteProfileRedirectsToCompleteProfile(t *testing.T) {
	provider := new(MockProvider)
	session := &models.Session{AccessToken: "tok", User: &models.User{ID: "u1", Email: "a@example.com"}}
	provider.On("VerifyCode", mock.Anything, "good").Return(session, nil)

	result := newService(provider).HandleCallback(context.Background(),
		auth.ParseCallback(url.Values{"code": {"good"}, "next": {"/events"}}))

	assert.Equal(t, "/complete-profile", result.Location)
	assert.Equal(t, session, result.Session)
}

func TestCallbackCompleteProfileRedirectsToNext(t *testing.T) {
	provider := new(MockProvider)
	session := &models.Session{
		AccessToken: "tok",
		User:        &models.User{ID: "u1", Metadata: map[string]any{"name": "Alice"}},
	}
	provider.On("VerifyCode", mock.Anything, "good").Return(session, nil)

	result := newService(provider).HandleCallback(context.Background(),
		auth.ParseCallback(url.Values{"code": {"good"}, "next": {"/events"}}))

	assert.Equal(t, "/events", result.Location)
	assert.Equal(t, session, result.Session)
}

func TestCallbackTokenHashFlowVerifies(t *testing.T) {
	provider := new(MockProvider)
	session := &models.Session{
		AccessToken: "tok",
		User:        &models.User{ID: "u1", Metadata: map[string]any{"full_name": "Alice"}},
	}
	provider.On("VerifyTokenHash", mock.Anything, "deadbeef", "magiclink").Return(session, nil)

	result := newService(provider).HandleCallback(context.Background(),
		auth.ParseCallback(url.Values{"token_hash": {"deadbeef"}, "type": {"magiclink"}}))

	assert.Equal(t, "/", result.Location)
	assert.NotNil(t, result.Session)
}

func TestCallbackProviderErrorFlowNeverVerifies(t *testing.T) {
	provider := new(MockProvider)

	result := newService(provider).HandleCallback(context.Background(),
		auth.ParseCallback(url.Values{"error": {"access_denied"}}))

	assert.Nil(t, result.Session)
	assert.Equal(t, "/login?error=invalid_token&message=access_denied", result.Location)
	provider.AssertNotCalled(t, "VerifyCode", mock.Anything, mock.Anything)
	provider.AssertNotCalled(t, "VerifyTokenHash", mock.Anything, mock.Anything, mock.Anything)
}

func TestCallbackEmptyFlowRedirectsToLogin(t *testing.T) {
	provider := new(MockProvider)

	result := newService(provider).HandleCallback(context.Background(),
		auth.ParseCallback(url.Values{}))

	assert.Nil(t, result.Session)
	assert.Equal(t, "/login?error=invalid_token", result.Location)
}
