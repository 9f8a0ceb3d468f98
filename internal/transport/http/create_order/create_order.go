package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/Buggy1111/tlacenka/internal/transport/http/resp"
	"github.com/Buggy1111/tlacenka/internal/validation"
)

// service is an interface for the service layer.
type service interface {
	Create(ctx context.Context, in order.CreateInput) (order.Order, error)
}

// CreateOrder handles a customer order submission.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	var payload validation.OrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, "invalid request body")
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	result := validation.ValidateOrderInput(payload)
	if !result.Valid {
		resp.ValidationErrors(w, result.Errors)

		return
	}

	created, err := service.Create(r.Context(), *result.Sanitized)
	if err != nil {
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternal, "failed to create order")
		slog.Error("Error creating order", "error", err)

		return
	}

	resp.JSON(w, http.StatusCreated, created)
}
