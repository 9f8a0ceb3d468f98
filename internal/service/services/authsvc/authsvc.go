package authsvc

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Buggy1111/tlacenka/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every login failure. Callers must not
// learn whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService checks the operator credentials configured in the environment
// and issues signed admin tokens.
type AuthService struct {
	username     string
	password     string
	passwordHash string
	tokens       *token.Service
}

// MustNewAuthService creates a new AuthService. Credentials come from
// ADMIN_USERNAME plus either ADMIN_PASSWORD_HASH (bcrypt, preferred) or
// ADMIN_PASSWORD.
func MustNewAuthService(tokens *token.Service) *AuthService {
	s := &AuthService{
		username:     os.Getenv("ADMIN_USERNAME"),
		password:     os.Getenv("ADMIN_PASSWORD"),
		passwordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		tokens:       tokens,
	}
	if s.username == "" || (s.password == "" && s.passwordHash == "") {
		panic("authsvc: ADMIN_USERNAME and ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}
	if s.passwordHash == "" {
		slog.Warn("ADMIN_PASSWORD_HASH is not set, comparing plaintext passwords")
	}

	return s
}

// Login verifies the credentials and returns a signed admin token.
func (s *AuthService) Login(username, password string) (string, error) {
	if !s.credentialsMatch(username, password) {
		return "", ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(username)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks a previously issued token and returns its claims.
func (s *AuthService) Verify(tokenStr string) (*token.AdminClaims, error) {
	return s.tokens.Verify(tokenStr)
}

// TokenTTL returns how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AuthService) credentialsMatch(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1

	if s.passwordHash != "" {
		err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password))

		return userOK && err == nil
	}

	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1

	return userOK && passOK
}
