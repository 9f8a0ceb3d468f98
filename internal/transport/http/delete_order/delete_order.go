package deleteorder

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
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeleteOrder handles an admin order removal. The remaining orders are
// renumbered by the service so customer-facing numbers stay contiguous.
func DeleteOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, "invalid order id")

		return
	}

	if err := service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "order not found")

			return
		}
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternal, "failed to delete order")
		slog.Error("Error deleting order", "order_id", id, "error", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
