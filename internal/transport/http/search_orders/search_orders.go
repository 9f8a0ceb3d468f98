package searchorders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/Buggy1111/tlacenka/internal/service/services/ordersvc"
	"github.com/Buggy1111/tlacenka/internal/transport/http/resp"
	"github.com/Buggy1111/tlacenka/internal/validation"
)

type service interface {
	Search(ctx context.Context, q order.SearchQuery) ([]order.Order, error)
}

// SearchOrders handles a customer looking up their own orders by name.
func SearchOrders(w http.ResponseWriter, r *http.Request, service service) {
	var payload validation.SearchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, "invalid request body")
		slog.Error("Error decoding request body for order search", "error", err)

		return
	}

	result := validation.ValidateSearchInput(payload)
	if !result.Valid {
		resp.ValidationErrors(w, result.Errors)

		return
	}

	orders, err := service.Search(r.Context(), *result.Sanitized)
	if err != nil {
		if errors.Is(err, ordersvc.ErrPINRequired) {
			resp.Error(w, http.StatusBadRequest, resp.CodePINRequired, "pin is required for order lookup")

			return
		}
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternal, "failed to search orders")
		slog.Error("Error searching orders", "error", err)

		return
	}

	if orders == nil {
		orders = []order.Order{}
	}
	resp.JSON(w, http.StatusOK, orders)
}
