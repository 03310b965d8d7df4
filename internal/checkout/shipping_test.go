package checkout

import (
	"testing"

	"github.com/mateovidal/spinmart-backend/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testShippingConfig() config.ShippingConfig {
	return config.ShippingConfig{
		DefaultChargeCents: 12000,
		InsideDhakaCents:   6000,
	}
}

func TestChargeForCityMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	rates := NewRateLookup(testShippingConfig())

	assert.True(t, rates.ChargeFor("Dhaka").Equal(decimal.NewFromInt(60)))
	assert.True(t, rates.ChargeFor(" dhaka ").Equal(decimal.NewFromInt(60)))
	assert.True(t, rates.ChargeFor("sylhet").Equal(decimal.NewFromInt(120)))
	assert.True(t, rates.ChargeFor("").Equal(decimal.NewFromInt(120)))
}
