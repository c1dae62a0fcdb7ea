package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/reindeer-games/backend/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the access-token claims shared with the identity provider. The
// provider issues HS256 tokens signed with the shared secret; we validate them
// locally instead of a network round trip per request.
type Claims struct {
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier validates access tokens and extracts the session user.
type TokenVerifier struct {
	secret      []byte
	expireHours int
}

// NewTokenVerifier creates a verifier for HS256 tokens signed with secret.
func NewTokenVerifier(secret string, expireHours int) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), expireHours: expireHours}
}

// Verify parses and validates an access token and returns its user.
func (v *TokenVerifier) Verify(tokenString string) (*models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &models.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		Metadata: claims.Metadata,
	}, nil
}

// Issue signs a new access token for the user. Used by the local backend; the
// hosted provider issues its own tokens.
func (v *TokenVerifier) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:    user.Email,
		Metadata: user.Metadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(v.expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// ExpireSeconds returns the configured token lifetime in seconds.
func (v *TokenVerifier) ExpireSeconds() int { return v.expireHours * 3600 }
