package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PromoMetrics records activity in the discount game and checkout funnel.
type PromoMetrics struct {
	spins    prometheus.Counter
	wins     *prometheus.CounterVec
	claims   prometheus.Counter
	forfeits prometheus.Counter
	orders   prometheus.Counter
}

// NewPromoMetrics registers the promo engine metrics on the provided registerer.
func NewPromoMetrics(reg prometheus.Registerer) *PromoMetrics {
	if reg == nil {
		return &PromoMetrics{}
	}
	spins := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promo_spins_total",
		Help: "Total wheel spins started.",
	})
	wins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_wins_total",
		Help: "Discounts won, labelled by value.",
	}, []string{"value"})
	claims := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promo_claims_total",
		Help: "Discounts claimed.",
	})
	forfeits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promo_forfeits_total",
		Help: "Unclaimed wins discarded by a repeat spin.",
	})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed through checkout.",
	})
	reg.MustRegister(spins, wins, claims, forfeits, orders)
	return &PromoMetrics{
		spins:    spins,
		wins:     wins,
		claims:   claims,
		forfeits: forfeits,
		orders:   orders,
	}
}

// IncSpin counts a started spin.
func (p *PromoMetrics) IncSpin() {
	if p == nil || p.spins == nil {
		return
	}
	p.spins.Inc()
}

// IncWin counts a resolved winning draw for the given discount value.
func (p *PromoMetrics) IncWin(value int64) {
	if p == nil || p.wins == nil {
		return
	}
	p.wins.WithLabelValues(strconv.FormatInt(value, 10)).Inc()
}

// IncClaim counts a successful claim.
func (p *PromoMetrics) IncClaim() {
	if p == nil || p.claims == nil {
		return
	}
	p.claims.Inc()
}

// IncForfeit counts an unclaimed win discarded by spinning again.
func (p *PromoMetrics) IncForfeit() {
	if p == nil || p.forfeits == nil {
		return
	}
	p.forfeits.Inc()
}

// IncOrderPlaced counts a completed order.
func (p *PromoMetrics) IncOrderPlaced() {
	if p == nil || p.orders == nil {
		return
	}
	p.orders.Inc()
}
