package utils

import (
	"time"

	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// JWTClaims carries the principal. Subject is the principal id and ID the
// token id used for logout.
type JWTClaims struct {
	Role      models.Role `json:"role"`
	Username  string      `json:"username"`
	StudentID string      `json:"studentId,omitempty"`
	jwt.RegisteredClaims
}

func (c JWTClaims) Principal() models.Principal {
	return models.Principal{
		ID:        c.Subject,
		Role:      c.Role,
		Username:  c.Username,
		StudentID: c.StudentID,
		TokenID:   c.ID,
	}
}

// ExpiresIn is the remaining lifetime of the token.
func (c JWTClaims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if secret == "" {
		secret = "your_secret_key" // fallback for development
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateJWT signs an access token for p with a fresh token id.
func (t *TokenIssuer) GenerateJWT(p models.Principal) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := JWTClaims{
		Role:      p.Role,
		Username:  p.Username,
		StudentID: p.StudentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return signed, expires, nil
}

func (t *TokenIssuer) ParseJWT(tokenStr string) (*JWTClaims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenStr, &JWTClaims{}, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || token == nil {
		return nil, errors.Wrap(ErrInvalidToken, errString(err))
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func errString(err error) string {
	if err == nil {
		return "empty token"
	}
	return err.Error()
}
