package ordersvc

import (
	"context"

	"github.com/Buggy1111/tlacenka/internal/service/models/order"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// packageCost returns the production cost of a single package, used for the
// margin figure on the dashboard.
func packageCost(size order.PackageSize) decimal.Decimal {
	key := "stats.cost_1kg"
	fallback := 35.0
	if size == order.PackageSize2Kg {
		key = "stats.cost_2kg"
		fallback = 90.0
	}

	cost := viper.GetFloat64(key)
	if cost == 0 {
		cost = fallback
	}

	return decimal.NewFromFloat(cost)
}

// Stats aggregates counts, weights, revenue and margin over the orders of the
// given period, grouped by package size and status. The whole filtered
// collection is scanned; order volume is small by design.
func (s *OrderService) Stats(ctx context.Context, period order.Period) (order.Stats, error) {
	filter := order.Filter{}
	if from, ok := period.Start(s.clock.Now()); ok {
		filter.CreatedFrom = &from
	}

	orders, err := s.newUOW().OrderRepository().Query(ctx, filter)
	if err != nil {
		return order.Stats{}, err
	}

	stats := order.Stats{Period: period}
	costs := decimal.Zero

	bySize := map[order.PackageSize]*order.PackageSizeStat{}
	byStatus := map[order.Status]*order.StatusStat{}

	for _, o := range orders {
		stats.Summary.TotalOrders++
		stats.Summary.TotalQuantity += o.Quantity
		stats.Summary.TotalWeightKg += o.Quantity * o.PackageSize.WeightKg()
		stats.Summary.TotalRevenue = stats.Summary.TotalRevenue.Add(o.TotalPrice)
		costs = costs.Add(packageCost(o.PackageSize).Mul(decimal.NewFromInt(int64(o.Quantity))))

		sizeStat, ok := bySize[o.PackageSize]
		if !ok {
			sizeStat = &order.PackageSizeStat{PackageSize: o.PackageSize}
			bySize[o.PackageSize] = sizeStat
		}
		sizeStat.Orders++
		sizeStat.Quantity += o.Quantity
		sizeStat.Revenue = sizeStat.Revenue.Add(o.TotalPrice)

		statusStat, ok := byStatus[o.Status]
		if !ok {
			statusStat = &order.StatusStat{Status: o.Status}
			byStatus[o.Status] = statusStat
		}
		statusStat.Count++
		statusStat.Revenue = statusStat.Revenue.Add(o.TotalPrice)
	}

	stats.Summary.TotalMargin = stats.Summary.TotalRevenue.Sub(costs)
	if stats.Summary.TotalOrders > 0 {
		stats.Summary.AverageOrderValue = stats.Summary.TotalRevenue.
			Div(decimal.NewFromInt(int64(stats.Summary.TotalOrders))).
			Round(2)
	}

	for _, size := range []order.PackageSize{order.PackageSize1Kg, order.PackageSize2Kg} {
		if stat, ok := bySize[size]; ok {
			stats.ByPackageSize = append(stats.ByPackageSize, *stat)
		}
	}
	for _, status := range []order.Status{
		order.StatusPending,
		order.StatusConfirmed,
		order.StatusProcessing,
		order.StatusCompleted,
		order.StatusCancelled,
	} {
		if stat, ok := byStatus[status]; ok {
			stats.ByStatus = append(stats.ByStatus, *stat)
		}
	}

	return stats, nil
}
