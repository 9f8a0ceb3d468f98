package getstats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/Buggy1111/tlacenka/internal/transport/http/resp"
	"github.com/gorilla/schema"
)

type service interface {
	Stats(ctx context.Context, period order.Period) (order.Stats, error)
}

type statsRequest struct {
	Period string `schema:"period,omitempty"`
}

// GetStats handles the admin dashboard aggregation. Unknown period values
// fall back to the all-time window.
func GetStats(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	query := &statsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		resp.Error(w, http.StatusBadRequest, resp.CodeBadRequest, "invalid query parameters")
		slog.Error("Error decoding stats query", "error", err)

		return
	}

	stats, err := service.Stats(r.Context(), order.ParsePeriod(query.Period))
	if err != nil {
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternal, "failed to compute stats")
		slog.Error("Error computing stats", "error", err)

		return
	}

	resp.JSON(w, http.StatusOK, stats)
}
