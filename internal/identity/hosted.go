package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/reindeer-games/backend/internal/models"
)

// Hosted is a Provider backed by a hosted GoTrue-style identity API. The
// provider verifies credentials, issues session tokens, and delivers the
// magic-link emails itself.
type Hosted struct {
	baseURL string
	anonKey string
	client  *http.Client
	logger  *zap.Logger
}

// NewHosted creates a hosted identity adapter.
func NewHosted(baseURL, anonKey string, logger *zap.Logger) *Hosted {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hosted{
		baseURL: baseURL,
		anonKey: anonKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// SignUp creates an account; the provider sends the confirmation email.
func (h *Hosted) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	var out struct {
		models.User
		// some deployments return the user nested under "user"
		Nested *models.User `json:"user"`
	}
	body := map[string]any{"email": email, "password": password}
	if err := h.do(ctx, http.MethodPost, "/signup", "", body, &out); err != nil {
		return nil, err
	}
	if out.Nested != nil {
		return out.Nested, nil
	}
	return &out.User, nil
}

// SignInWithPassword exchanges credentials for a session.
func (h *Hosted) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	var session models.Session
	body := map[string]any{"email": email, "password": password}
	if err := h.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignInWithMagicLink asks the provider to email a one-time link that lands on
// callbackURL.
func (h *Hosted) SignInWithMagicLink(ctx context.Context, email, callbackURL string) error {
	path := "/otp?redirect_to=" + url.QueryEscape(callbackURL)
	body := map[string]any{"email": email, "create_user": true}
	return h.do(ctx, http.MethodPost, path, "", body, nil)
}

// VerifyCode exchanges a one-time callback code for a session.
func (h *Hosted) VerifyCode(ctx context.Context, code string) (*models.Session, error) {
	var session models.Session
	body := map[string]any{"auth_code": code}
	if err := h.do(ctx, http.MethodPost, "/token?grant_type=pkce", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// VerifyTokenHash verifies a token-hash/type pair from the emailed link.
func (h *Hosted) VerifyTokenHash(ctx context.Context, tokenHash, otpType string) (*models.Session, error) {
	var session models.Session
	body := map[string]any{"token_hash": tokenHash, "type": otpType}
	if err := h.do(ctx, http.MethodPost, "/verify", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetUser returns the user behind an access token.
func (h *Hosted) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	var user models.User
	if err := h.do(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserMetadata merges fields into the token user's metadata.
func (h *Hosted) UpdateUserMetadata(ctx context.Context, accessToken string, meta map[string]any) (*models.User, error) {
	var user models.User
	body := map[string]any{"data": meta}
	if err := h.do(ctx, http.MethodPut, "/user", accessToken, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut revokes the session behind the access token.
func (h *Hosted) SignOut(ctx context.Context, accessToken string) error {
	return h.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

// do performs one JSON round trip against the identity API. Non-2xx responses
// are decoded into a ProviderError carrying the provider's message.
func (h *Hosted) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", h.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+h.anonKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := decodeProviderMessage(resp.Body)
		h.logger.Warn("identity provider error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &ProviderError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeProviderMessage extracts a human-readable message from an identity API
// error body, which differs across provider versions.
func decodeProviderMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "Identity provider request failed"
	}
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "Identity provider request failed"
	}
	for _, s := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
		if s != "" {
			return s
		}
	}
	return "Identity provider request failed"
}
