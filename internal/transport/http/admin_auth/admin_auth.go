package adminauth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Buggy1111/tlacenka/internal/config"
	"github.com/Buggy1111/tlacenka/internal/service/services/authsvc"
	"github.com/Buggy1111/tlacenka/internal/transport/http/resp"
	"github.com/Buggy1111/tlacenka/internal/validation"
	"github.com/Buggy1111/tlacenka/pkg/http/middleware/authgate"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	Login(username, password string) (string, error)
	TokenTTL() time.Duration
}

// loginRequest represents an admin login request.
type loginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=100"`
}

// Validate validates the login request.
func (r *loginRequest) Validate() error {
	return validator.New().Struct(r)
}

// Login handles the admin login and sets the credential cookie.
func Login(w http.ResponseWriter, r *http.Request, service service) {
	req := loginRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, "invalid request body")
		slog.Error("Error decoding request body for admin login", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeValidationFailed, "username and password are required")

		return
	}

	result := validation.ValidateAuthInput(validation.AuthPayload{
		Username: req.Username,
		Password: req.Password,
	})
	if !result.Valid {
		resp.ValidationErrors(w, result.Errors)

		return
	}

	signed, err := service.Login(result.Sanitized.Username, result.Sanitized.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			resp.Error(w, http.StatusUnauthorized, resp.CodeInvalidCredentials, "invalid credentials")

			return
		}
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternal, "login failed")
		slog.Error("Error during admin login", "error", err)

		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authgate.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(service.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})

	resp.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout clears the credential cookie.
func Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authgate.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})

	resp.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
