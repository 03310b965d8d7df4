package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPromoMetrics(reg)

	pm.IncSpin()
	pm.IncSpin()
	pm.IncWin(30)
	pm.IncWin(30)
	pm.IncWin(50)
	pm.IncClaim()
	pm.IncForfeit()
	pm.IncOrderPlaced()

	assert.Equal(t, float64(2), testutil.ToFloat64(pm.spins))
	assert.Equal(t, float64(2), testutil.ToFloat64(pm.wins.WithLabelValues("30")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.wins.WithLabelValues("50")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.claims))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.forfeits))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.orders))
}

func TestNilRegistererIsNoOp(t *testing.T) {
	pm := NewPromoMetrics(nil)

	// Must not panic.
	pm.IncSpin()
	pm.IncWin(10)
	pm.IncClaim()
	pm.IncForfeit()
	pm.IncOrderPlaced()
}

func TestNilReceiverIsNoOp(t *testing.T) {
	var pm *PromoMetrics

	pm.IncSpin()
	pm.IncWin(10)
	pm.IncClaim()
	pm.IncForfeit()
	pm.IncOrderPlaced()
}

func TestMetricNamesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPromoMetrics(reg)
	pm.IncSpin()
	pm.IncOrderPlaced()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["promo_spins_total"])
	assert.True(t, names["orders_placed_total"])
}
