package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mateovidal/spinmart-backend/api/controllers"
	"github.com/mateovidal/spinmart-backend/api/middleware"
	cartsvc "github.com/mateovidal/spinmart-backend/internal/cart"
	checkoutsvc "github.com/mateovidal/spinmart-backend/internal/checkout"
	spinsvc "github.com/mateovidal/spinmart-backend/internal/spin"
	"github.com/mateovidal/spinmart-backend/pkg/config"
	"github.com/mateovidal/spinmart-backend/pkg/db"
	"github.com/mateovidal/spinmart-backend/pkg/logger"
	"github.com/mateovidal/spinmart-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	spinService spinsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	metricsRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg, logg))

		r.Route("/spin", func(r chi.Router) {
			r.Get("/", controllers.SpinState(spinService, logg))
			r.Get("/attempts", controllers.SpinAttempts(spinService, logg))
			r.Post("/", controllers.SpinStart(spinService, logg))
			r.Post("/claim", controllers.SpinClaim(spinService, logg))
			r.Post("/dismiss", controllers.SpinDismiss(spinService, logg))
			r.Post("/reset", controllers.SpinReset(spinService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Post("/items/{productId}/increase", controllers.CartIncreaseQty(cartService, logg))
			r.Post("/items/{productId}/decrease", controllers.CartDecreaseQty(cartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/quote", controllers.CheckoutQuote(checkoutService, logg))
			r.Post("/", controllers.CheckoutPlaceOrder(checkoutService, logg))
			r.Get("/orders", controllers.CheckoutOrderHistory(checkoutService, logg))
		})
	})

	if !cfg.App.IsProd() {
		r.Route("/api/dev/v1", func(r chi.Router) {
			r.Use(middleware.Session(cfg, logg))
			r.Post("/token", controllers.DevMintToken(cfg, logg))
			r.Post("/spin/hard-reset", controllers.SpinHardReset(spinService, logg))
		})
	}

	return r
}
