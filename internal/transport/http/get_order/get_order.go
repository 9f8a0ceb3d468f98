package getorder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/Buggy1111/tlacenka/internal/transport/http/resp"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type service interface {
	Get(ctx context.Context, id uuid.UUID) (order.Order, error)
}

// GetOrder handles a single order lookup by id.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, "invalid order id")

		return
	}

	o, err := service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "order not found")

			return
		}
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternal, "failed to get order")
		slog.Error("Error getting order", "order_id", id, "error", err)

		return
	}

	resp.JSON(w, http.StatusOK, o)
}
