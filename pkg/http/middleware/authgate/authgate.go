package authgate

import (
	"context"
	"net/http"
	"strings"

	"github.com/Buggy1111/tlacenka/internal/token"
)

// CookieName is the admin credential cookie checked by both gates.
const CookieName = "admin-auth"

type claimsKey struct{}

// verifier checks a signed admin credential.
type verifier interface {
	Verify(tokenStr string) (*token.AdminClaims, error)
}

// ClaimsFromContext returns the verified admin claims, if any.
func ClaimsFromContext(ctx context.Context) (*token.AdminClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*token.AdminClaims)

	return claims, ok
}

// RequireAdmin rejects API requests without a valid admin credential. The
// response never reveals why the credential was refused.
func RequireAdmin(v verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verifyCookie(r, v)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"admin credential required"}}`))

				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

// RedirectUnauthenticated sends browsers without a valid credential to the
// login page instead of serving admin pages. The login page itself stays
// reachable so the redirect cannot loop.
func RedirectUnauthenticated(v verifier, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, loginPath) {
				next.ServeHTTP(w, r)

				return
			}

			if _, ok := verifyCookie(r, v); !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func verifyCookie(r *http.Request, v verifier) (*token.AdminClaims, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	claims, err := v.Verify(cookie.Value)
	if err != nil {
		return nil, false
	}

	return claims, true
}
