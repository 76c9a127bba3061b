// Package auth signs principals in and out.
package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTeacherLoginUnavailable means no teacher credentials are stored, or
	// they have not been loaded yet.
	ErrTeacherLoginUnavailable = errors.New("teacher login not available yet")
)

// principalNamespace scopes principal ids derived from role and username.
var principalNamespace = uuid.MustParse("6f1f3c52-9d2b-4c1e-8d0a-5a6c3e7b9f10")

// TeacherSource returns the current shared teacher login. state.State
// satisfies it.
type TeacherSource interface {
	TeacherCredentials() *models.TeacherCredentials
}

type LoginRequest struct {
	Role     models.Role `json:"role" validate:"required,oneof=student teacher admin"`
	Username string      `json:"username" validate:"required"`
	Password string      `json:"password"`
}

type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Principal models.Principal `json:"-"`
}

type Service struct {
	adminUsername string
	adminPassword string
	teachers      TeacherSource
	tokens        *utils.TokenIssuer
	cache         *utils.RedisCache
	now           func() time.Time
}

func NewService(adminUsername, adminPassword string, teachers TeacherSource, tokens *utils.TokenIssuer, cache *utils.RedisCache) *Service {
	return &Service{
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		teachers:      teachers,
		tokens:        tokens,
		cache:         cache,
		now:           time.Now,
	}
}

// PrincipalID is stable for a role and username, so a profile survives
// logging out and in again.
func PrincipalID(role models.Role, username string) string {
	return uuid.NewSHA1(principalNamespace, []byte(string(role)+":"+username)).String()
}

// Login checks req against the credentials of its role and issues a token.
// Students sign in with their student ID alone.
func (s *Service) Login(req LoginRequest) (*Session, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	switch req.Role {
	case models.RoleStudent:
	case models.RoleAdmin:
		if !constantEqual(username, s.adminUsername) || !constantEqual(req.Password, s.adminPassword) {
			return nil, ErrInvalidCredentials
		}
	case models.RoleTeacher:
		creds := s.teachers.TeacherCredentials()
		if creds == nil {
			return nil, ErrTeacherLoginUnavailable
		}
		if !constantEqual(username, creds.Username) || !CheckPassword(creds.Password, req.Password) {
			return nil, ErrInvalidCredentials
		}
	default:
		return nil, ErrInvalidCredentials
	}

	p := models.Principal{
		ID:       PrincipalID(req.Role, username),
		Role:     req.Role,
		Username: username,
	}
	if req.Role == models.RoleStudent {
		p.StudentID = username
	}

	token, expires, err := s.tokens.GenerateJWT(p)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, Principal: p}, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *utils.JWTClaims) error {
	return s.cache.BlacklistToken(ctx, claims.ID, claims.ExpiresIn(s.now()))
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(b), nil
}

// CheckPassword compares against a bcrypt hash, or against plaintext for
// credentials stored before hashing was introduced.
func CheckPassword(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return constantEqual(stored, given)
}

func constantEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
