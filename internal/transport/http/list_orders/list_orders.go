package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/Buggy1111/tlacenka/internal/service/services/ordersvc"
	"github.com/Buggy1111/tlacenka/internal/transport/http/resp"
	"github.com/gorilla/schema"
)

type service interface {
	List(ctx context.Context, filter ordersvc.ListFilter) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Status      string `schema:"status,omitempty"`
	PackageSize string `schema:"packageSize,omitempty"`
	Period      string `schema:"period,omitempty"`
}

func (q *queryOrdersRequest) toFilter() (ordersvc.ListFilter, error) {
	filter := ordersvc.ListFilter{Period: order.ParsePeriod(q.Period)}

	if q.Status != "" {
		status, err := order.ParseStatus(q.Status)
		if err != nil {
			return ordersvc.ListFilter{}, err
		}
		filter.Status = &status
	}
	if q.PackageSize != "" {
		size, err := order.ParsePackageSize(q.PackageSize)
		if err != nil {
			return ordersvc.ListFilter{}, err
		}
		filter.PackageSize = &size
	}

	return filter, nil
}

// ListOrders handles the admin order listing with optional filters.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, "invalid query parameters")
		slog.Error("Error decoding list orders query", "error", err)

		return
	}

	filter, err := query.toFilter()
	if err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, err.Error())

		return
	}

	orders, err := service.List(r.Context(), filter)
	if err != nil {
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternal, "failed to list orders")
		slog.Error("Error listing orders", "error", err)

		return
	}

	if orders == nil {
		orders = []order.Order{}
	}
	resp.JSON(w, http.StatusOK, orders)
}
