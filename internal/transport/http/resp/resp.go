package resp

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Buggy1111/tlacenka/internal/validation"
)

// Error codes returned in the body of non-2xx responses.
const (
	CodeValidationFailed    = "validation_failed"
	CodeNotFound            = "not_found"
	CodeAlreadyCancelled    = "already_cancelled"
	CodeCancelWindowExpired = "cancel_window_expired"
	CodeInvalidTransition   = "invalid_transition"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeUnauthorized        = "unauthorized"
	CodePINRequired         = "pin_required"
	CodeBadRequest          = "bad_request"
	CodeInternal            = "internal_error"
)

type errorBody struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// Error writes a machine-readable error body.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// ValidationErrors writes a 400 with the per-field violations.
func ValidationErrors(w http.ResponseWriter, fields []validation.FieldError) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
		Code:    CodeValidationFailed,
		Message: "validation failed",
		Fields:  fields,
	}})
}
