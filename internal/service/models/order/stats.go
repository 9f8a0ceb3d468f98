package order

import "github.com/shopspring/decimal"

// Stats aggregates the order collection for the admin dashboard.
type Stats struct {
	Summary       StatsSummary      `json:"summary"`
	ByPackageSize []PackageSizeStat `json:"byPackageSize"`
	ByStatus      []StatusStat      `json:"byStatus"`
	Period        Period            `json:"period"`
}

type StatsSummary struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalQuantity     int             `json:"totalQuantity"`
	TotalWeightKg     int             `json:"totalWeightKg"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalMargin       decimal.Decimal `json:"totalMargin"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type PackageSizeStat struct {
	PackageSize PackageSize     `json:"packageSize"`
	Orders      int             `json:"orders"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type StatusStat struct {
	Status  Status          `json:"status"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}
