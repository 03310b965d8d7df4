package checkout

import (
	"strings"

	"github.com/mateovidal/spinmart-backend/pkg/config"
	"github.com/shopspring/decimal"
)

// CityDhaka gets the reduced in-city delivery rate.
const CityDhaka = "dhaka"

// RateLookup resolves the delivery charge for a destination city.
type RateLookup interface {
	ChargeFor(cityID string) decimal.Decimal
}

type configRates struct {
	cfg config.ShippingConfig
}

// NewRateLookup returns the flat two-tier rate table driven by config.
func NewRateLookup(cfg config.ShippingConfig) RateLookup {
	return &configRates{cfg: cfg}
}

func (r *configRates) ChargeFor(cityID string) decimal.Decimal {
	cents := r.cfg.DefaultChargeCents
	if strings.EqualFold(strings.TrimSpace(cityID), CityDhaka) {
		cents = r.cfg.InsideDhakaCents
	}
	if cents < 0 {
		cents = 0
	}
	return decimal.New(int64(cents), -2)
}
