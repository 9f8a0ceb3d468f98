package updateorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/Buggy1111/tlacenka/internal/transport/http/resp"
	"github.com/Buggy1111/tlacenka/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service interface {
	Update(ctx context.Context, id uuid.UUID, upd order.Update) (order.Order, error)
}

// updateOrderRequest is a partial admin edit; absent fields stay untouched.
type updateOrderRequest struct {
	CustomerName    *string  `json:"customerName"`
	CustomerSurname *string  `json:"customerSurname"`
	PackageSize     *string  `json:"packageSize"`
	Quantity        *int     `json:"quantity"`
	UnitPrice       *float64 `json:"unitPrice"`
	TotalPrice      *float64 `json:"totalPrice"`
	Status          *string  `json:"status"`
	Notes           *string  `json:"notes"`
}

func (req *updateOrderRequest) toModel() (order.Update, error) {
	upd := order.Update{
		Quantity: req.Quantity,
	}

	if req.CustomerName != nil {
		name := validation.SanitizeText(*req.CustomerName, 50)
		upd.CustomerName = &name
	}
	if req.CustomerSurname != nil {
		surname := validation.SanitizeText(*req.CustomerSurname, 50)
		upd.CustomerSurname = &surname
	}
	if req.Notes != nil {
		notes := validation.SanitizeText(*req.Notes, 500)
		upd.Notes = &notes
	}
	if req.PackageSize != nil {
		size, err := order.ParsePackageSize(*req.PackageSize)
		if err != nil {
			return order.Update{}, err
		}
		upd.PackageSize = &size
	}
	if req.Status != nil {
		status, err := order.ParseStatus(*req.Status)
		if err != nil {
			return order.Update{}, err
		}
		upd.Status = &status
	}
	if req.UnitPrice != nil {
		price := decimal.NewFromFloat(*req.UnitPrice)
		upd.UnitPrice = &price
	}
	if req.TotalPrice != nil {
		price := decimal.NewFromFloat(*req.TotalPrice)
		upd.TotalPrice = &price
	}

	return upd, nil
}

// UpdateOrder handles a partial admin edit of an order.
func UpdateOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, "invalid order id")

		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, "invalid request body")
		slog.Error("Error decoding request body for update order", "error", err)

		return
	}

	upd, err := req.toModel()
	if err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, err.Error())

		return
	}

	updated, err := service.Update(r.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "order not found")
		case errors.Is(err, order.ErrInvalidTransition):
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidTransition, "status transition not allowed")
		default:
			resp.Error(w, http.StatusInternalServerError, resp.CodeInternal, "failed to update order")
			slog.Error("Error updating order", "order_id", id, "error", err)
		}

		return
	}

	resp.JSON(w, http.StatusOK, updated)
}
