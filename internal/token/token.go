package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every verification failure. Callers must
// not learn whether a token was expired, forged or malformed.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTTL is the validity window of an admin credential.
const DefaultTTL = 8 * time.Hour

// AdminClaims is the payload of a signed admin credential.
type AdminClaims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Service issues and verifies signed admin credentials.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the credential validity window.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue produces a signed credential binding username and an isAdmin claim,
// expiring exactly ttl after issuance.
func (s *Service) Issue(username string) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Username: username,
		IsAdmin:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and expiration and returns the decoded claims.
// Any failure comes back as ErrInvalidToken.
func (s *Service) Verify(tokenStr string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}

		return s.secret, nil
	})
	if err != nil || !parsed.Valid || !claims.IsAdmin {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
