package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/reindeer-games/backend/internal/models"
)

const magicLinkTTL = time.Hour

// MagicLinkSender delivers a magic-link email out of band (the job queue in
// production).
type MagicLinkSender interface {
	EnqueueMagicLink(ctx context.Context, email, link string) error
}

// Local is a self-contained Provider: users live in our Postgres, access
// tokens are issued with the shared secret, and magic-link emails go through
// the job queue. Used for self-hosted deployments and tests.
type Local struct {
	pool     *pgxpool.Pool
	verifier *TokenVerifier
	sender   MagicLinkSender
	logger   *zap.Logger
}

// NewLocal creates the local identity backend.
func NewLocal(pool *pgxpool.Pool, verifier *TokenVerifier, sender MagicLinkSender, logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{pool: pool, verifier: verifier, sender: sender, logger: logger}
}

// SignUp creates an account with a bcrypt-hashed password.
func (l *Local) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := l.getByEmail(ctx, email); err == nil {
		return nil, &ProviderError{StatusCode: http.StatusUnprocessableEntity, Message: "User already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	const q = `INSERT INTO identity_users (id, email, password_hash, metadata)
		VALUES (gen_random_uuid(), $1, $2, '{}'::jsonb)
		RETURNING id`
	var id string
	if err := l.pool.QueryRow(ctx, q, email, string(hash)).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &models.User{ID: id, Email: email, Metadata: map[string]any{}}, nil
}

// SignInWithPassword verifies credentials and issues a session.
func (l *Local) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, hash, err := l.getWithHash(ctx, email)
	if err != nil {
		return nil, &ProviderError{StatusCode: http.StatusBadRequest, Message: "Invalid login credentials"}
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, &ProviderError{StatusCode: http.StatusBadRequest, Message: "Invalid login credentials"}
	}
	return l.newSession(user)
}

// SignInWithMagicLink stores a one-time token (hash at rest) and enqueues the
// email carrying a link to callbackURL. Unknown emails get an account created,
// so the link doubles as passwordless sign-up.
func (l *Local) SignInWithMagicLink(ctx context.Context, email, callbackURL string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := l.getByEmail(ctx, email)
	if err != nil {
		const q = `INSERT INTO identity_users (id, email, password_hash, metadata)
			VALUES (gen_random_uuid(), $1, '', '{}'::jsonb)
			RETURNING id`
		var id string
		if err := l.pool.QueryRow(ctx, q, email).Scan(&id); err != nil {
			return fmt.Errorf("create user for magic link: %w", err)
		}
		user = &models.User{ID: id, Email: email, Metadata: map[string]any{}}
	}

	token := uuid.NewString()
	const q = `INSERT INTO identity_tokens (token_hash, user_id, otp_type, expires_at)
		VALUES ($1, $2, 'magiclink', $3)`
	if _, err := l.pool.Exec(ctx, q, hashToken(token), user.ID, time.Now().Add(magicLinkTTL)); err != nil {
		return fmt.Errorf("store magic link token: %w", err)
	}

	link := appendQuery(callbackURL, "code", token)
	if err := l.sender.EnqueueMagicLink(ctx, email, link); err != nil {
		return fmt.Errorf("enqueue magic link email: %w", err)
	}
	l.logger.Info("magic link issued", zap.String("email", email))
	return nil
}

// VerifyCode consumes the one-time code carried by the emailed link.
func (l *Local) VerifyCode(ctx context.Context, code string) (*models.Session, error) {
	return l.consume(ctx, hashToken(code), "")
}

// VerifyTokenHash consumes a token by its stored hash and type.
func (l *Local) VerifyTokenHash(ctx context.Context, tokenHash, otpType string) (*models.Session, error) {
	return l.consume(ctx, tokenHash, otpType)
}

// GetUser validates the token and returns the current user row, so metadata
// updates made after token issuance are visible.
func (l *Local) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	tokenUser, err := l.verifier.Verify(accessToken)
	if err != nil {
		return nil, &ProviderError{StatusCode: http.StatusUnauthorized, Message: "Invalid or expired session"}
	}
	return l.getByID(ctx, tokenUser.ID)
}

// UpdateUserMetadata merges fields into the token user's metadata.
func (l *Local) UpdateUserMetadata(ctx context.Context, accessToken string, meta map[string]any) (*models.User, error) {
	tokenUser, err := l.verifier.Verify(accessToken)
	if err != nil {
		return nil, &ProviderError{StatusCode: http.StatusUnauthorized, Message: "Invalid or expired session"}
	}
	user, err := l.getByID(ctx, tokenUser.ID)
	if err != nil {
		return nil, err
	}

	if user.Metadata == nil {
		user.Metadata = map[string]any{}
	}
	for k, v := range meta {
		user.Metadata[k] = v
	}
	raw, err := json.Marshal(user.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	const q = `UPDATE identity_users SET metadata = $1, updated_at = NOW() WHERE id = $2`
	if _, err := l.pool.Exec(ctx, q, raw, user.ID); err != nil {
		return nil, fmt.Errorf("update metadata: %w", err)
	}
	return user, nil
}

// SignOut is a no-op for the local backend: tokens are stateless and expire on
// their own.
func (l *Local) SignOut(ctx context.Context, accessToken string) error {
	return nil
}

func (l *Local) consume(ctx context.Context, tokenHash, otpType string) (*models.Session, error) {
	q := `UPDATE identity_tokens SET consumed_at = NOW()
		WHERE token_hash = $1 AND consumed_at IS NULL AND expires_at > NOW()`
	args := []any{tokenHash}
	if otpType != "" {
		q += ` AND otp_type = $2`
		args = append(args, otpType)
	}
	q += ` RETURNING user_id`

	var userID string
	if err := l.pool.QueryRow(ctx, q, args...).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ProviderError{StatusCode: http.StatusUnauthorized, Message: "Email link is invalid or has expired"}
		}
		return nil, fmt.Errorf("consume token: %w", err)
	}
	user, err := l.getByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return l.newSession(user)
}

func (l *Local) newSession(user *models.User) (*models.Session, error) {
	token, err := l.verifier.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &models.Session{
		AccessToken: token,
		ExpiresIn:   l.verifier.ExpireSeconds(),
		User:        user,
	}, nil
}

func (l *Local) getByEmail(ctx context.Context, email string) (*models.User, error) {
	user, _, err := l.getWithHash(ctx, email)
	return user, err
}

func (l *Local) getWithHash(ctx context.Context, email string) (*models.User, string, error) {
	const q = `SELECT id, email, password_hash, metadata FROM identity_users WHERE email = $1`
	var (
		user models.User
		hash string
		raw  []byte
	)
	if err := l.pool.QueryRow(ctx, q, email).Scan(&user.ID, &user.Email, &hash, &raw); err != nil {
		return nil, "", err
	}
	if err := json.Unmarshal(raw, &user.Metadata); err != nil {
		user.Metadata = map[string]any{}
	}
	return &user, hash, nil
}

func (l *Local) getByID(ctx context.Context, id string) (*models.User, error) {
	const q = `SELECT id, email, metadata FROM identity_users WHERE id = $1`
	var (
		user models.User
		raw  []byte
	)
	if err := l.pool.QueryRow(ctx, q, id).Scan(&user.ID, &user.Email, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ProviderError{StatusCode: http.StatusNotFound, Message: "User not found"}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := json.Unmarshal(raw, &user.Metadata); err != nil {
		user.Metadata = map[string]any{}
	}
	return &user, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func appendQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL + "?" + key + "=" + url.QueryEscape(value)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
