package listproducts

import (
	"net/http"

	"github.com/Buggy1111/tlacenka/internal/transport/http/resp"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type product struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Size     string          `json:"size"`
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"is_active"`
}

type productsResponse struct {
	Products []product `json:"products"`
}

func price(key string, fallback float64) decimal.Decimal {
	p := viper.GetFloat64(key)
	if p == 0 {
		p = fallback
	}

	return decimal.NewFromFloat(p)
}

// ListProducts serves the storefront catalog. Prices can be overridden in the
// config without redeploying.
func ListProducts(w http.ResponseWriter, _ *http.Request) {
	resp.JSON(w, http.StatusOK, productsResponse{Products: []product{
		{ID: 1, Name: "Tlačenka 1kg", Size: "1kg", Price: price("products.price_1kg", 90), IsActive: true},
		{ID: 2, Name: "Tlačenka 2kg", Size: "2kg", Price: price("products.price_2kg", 175), IsActive: true},
	}})
}
