package auth

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/reindeer-games/backend/internal/identity"
	"github.com/reindeer-games/backend/internal/models"
)

// Redirect targets for the callback endpoint.
const (
	redirectHome            = "/"
	redirectLogin           = "/login"
	redirectCompleteProfile = "/complete-profile"
)

const fallbackVerifyMessage = "Invalid or expired link"

// CallbackFlow tags the verification mechanism carried by the callback URL.
type CallbackFlow int

const (
	// FlowEmpty means no verification parameter was supplied.
	FlowEmpty CallbackFlow = iota
	// FlowCode is the one-time code exchange.
	FlowCode
	// FlowTokenHash is the token-hash + type verification.
	FlowTokenHash
	// FlowProviderError means the provider redirected here with an error.
	FlowProviderError
)

// CallbackRequest is the parsed callback query. Exactly one flow is attempted.
type CallbackRequest struct {
	Flow         CallbackFlow
	Code         string
	TokenHash    string
	Type         string
	ErrorMessage string
	Next         string
}

// ParseCallback classifies the callback query parameters into a single flow.
// A code takes precedence over a token hash when both are present.
func ParseCallback(q url.Values) CallbackRequest {
	req := CallbackRequest{Next: q.Get("next")}
	if req.Next == "" {
		req.Next = redirectHome
	}

	switch {
	case q.Get("code") != "":
		req.Flow = FlowCode
		req.Code = q.Get("code")
	case q.Get("token_hash") != "" && q.Get("type") != "":
		req.Flow = FlowTokenHash
		req.TokenHash = q.Get("token_hash")
		req.Type = q.Get("type")
	case q.Get("error") != "":
		req.Flow = FlowProviderError
		req.ErrorMessage = q.Get("error_description")
		if req.ErrorMessage == "" {
			req.ErrorMessage = q.Get("error")
		}
	default:
		req.Flow = FlowEmpty
	}
	return req
}

// CallbackResult is always a redirect, never a body. Session is non-nil only
// when verification succeeded, so the handler can establish the cookie.
type CallbackResult struct {
	Location string
	Session  *models.Session
}

// HandleCallback verifies a magic-link / confirmation callback and decides
// where to send the user: profile completion for first-time users, the
// requested destination for complete profiles, or login with an error flag.
func (s *Service) HandleCallback(ctx context.Context, req CallbackRequest) CallbackResult {
	var (
		session *models.Session
		err     error
	)

	switch req.Flow {
	case FlowCode:
		session, err = s.provider.VerifyCode(ctx, req.Code)
	case FlowTokenHash:
		session, err = s.provider.VerifyTokenHash(ctx, req.TokenHash, req.Type)
	case FlowProviderError:
		return CallbackResult{Location: loginErrorURL(req.ErrorMessage)}
	default:
		return CallbackResult{Location: redirectLogin + "?error=invalid_token"}
	}

	if err != nil || session == nil || session.User == nil {
		msg := fallbackVerifyMessage
		var pe *identity.ProviderError
		if errors.As(err, &pe) && pe.Message != "" {
			msg = pe.Message
		}
		s.logger.Warn("callback verification failed", zap.Error(err))
		return CallbackResult{Location: loginErrorURL(msg)}
	}

	if !session.User.ProfileComplete() {
		return CallbackResult{Location: redirectCompleteProfile, Session: session}
	}
	return CallbackResult{Location: req.Next, Session: session}
}

func loginErrorURL(message string) string {
	loc := redirectLogin + "?error=invalid_token"
	if message != "" {
		loc += "&message=" + url.QueryEscape(message)
	}
	return loc
}
