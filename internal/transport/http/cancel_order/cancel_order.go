package cancelorder

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
	Cancel(ctx context.Context, id uuid.UUID) (order.Order, error)
}

// CancelOrder handles a customer-initiated cancellation. The two refusal
// reasons map to distinct error codes so the storefront can explain itself.
func CancelOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, "invalid order id")

		return
	}

	cancelled, err := service.Cancel(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "order not found")
		case errors.Is(err, order.ErrAlreadyCancelled):
			resp.Error(w, http.StatusBadRequest, resp.CodeAlreadyCancelled, "order is already cancelled")
		case errors.Is(err, order.ErrCancelWindowExpired):
			resp.Error(w, http.StatusBadRequest, resp.CodeCancelWindowExpired, "cancellation window has expired")
		case errors.Is(err, order.ErrInvalidTransition):
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidTransition, "order can no longer be cancelled")
		default:
			resp.Error(w, http.StatusInternalServerError, resp.CodeInternal, "failed to cancel order")
			slog.Error("Error cancelling order", "order_id", id, "error", err)
		}

		return
	}

	resp.JSON(w, http.StatusOK, cancelled)
}
