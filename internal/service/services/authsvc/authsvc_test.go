package authsvc

import (
	"testing"
	"time"

	"github.com/Buggy1111/tlacenka/internal/token"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T, username, password, passwordHash string) *AuthService {
	t.Helper()
	t.Setenv("ADMIN_USERNAME", username)
	t.Setenv("ADMIN_PASSWORD", password)
	t.Setenv("ADMIN_PASSWORD_HASH", passwordHash)

	return MustNewAuthService(token.NewService("test-secret", time.Hour))
}

func TestAuthService_Login(t *testing.T) {
	svc := newService(t, "admin", "letmein", "")

	t.Run("valid credentials issue a verifiable token", func(t *testing.T) {
		signed, err := svc.Login("admin", "letmein")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		claims, err := svc.Verify(signed)
		if err != nil {
			t.Fatalf("expected token to verify, got %v", err)
		}
		if claims.Username != "admin" {
			t.Fatalf("expected username claim admin, got %q", claims.Username)
		}
		if !claims.IsAdmin {
			t.Fatal("expected isAdmin claim")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Login("admin", "wrong"); err != ErrInvalidCredentials {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("wrong username", func(t *testing.T) {
		if _, err := svc.Login("root", "letmein"); err != ErrInvalidCredentials {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("empty credentials", func(t *testing.T) {
		if _, err := svc.Login("", ""); err != ErrInvalidCredentials {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_LoginWithHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// Plaintext stays unset when a hash is configured.
	svc := newService(t, "admin", "", string(hash))

	if _, err := svc.Login("admin", "letmein"); err != nil {
		t.Fatalf("expected hash comparison to succeed, got %v", err)
	}
	if _, err := svc.Login("admin", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_VerifyRejectsGarbage(t *testing.T) {
	svc := newService(t, "admin", "letmein", "")

	for _, tokenStr := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.Verify(tokenStr); err != token.ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", tokenStr, err)
		}
	}
}
