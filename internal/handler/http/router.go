package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/BackofficeGo/internal/domain"
	"github.com/utafrali/BackofficeGo/pkg/health"
	"github.com/utafrali/BackofficeGo/pkg/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Auth      *AuthHandler
	Customers *CustomerHandler
	Products  *ProductHandler
	Orders    *OrderHandler
	Health    *health.Handler
	Validate  middleware.TokenValidator
	Service   string
	Logger    *slog.Logger
}

// NewRouter assembles the HTTP routing tree. Authentication endpoints
// and health probes are public; everything else requires a valid bearer
// token, and mutations on the catalog require the admin role.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics(deps.Service))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(CORS)
	r.Use(RequireJSON)

	r.Get("/healthz", deps.Health.LivenessHandler())
	r.Get("/readyz", deps.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Validate))

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", deps.Customers.List)
				r.Post("/", deps.Customers.Create)
				r.Get("/{id}", deps.Customers.Get)
				r.Put("/{id}", deps.Customers.Update)
				r.Delete("/{id}", deps.Customers.Delete)
				r.Get("/{customerID}/orders", deps.Orders.ListByCustomer)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", deps.Products.List)
				r.Get("/{id}", deps.Products.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(string(domain.RoleAdmin)))
					r.Post("/", deps.Products.Create)
					r.Put("/{id}", deps.Products.Update)
					r.Delete("/{id}", deps.Products.Delete)
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", deps.Orders.Create)
				r.Get("/{id}", deps.Orders.Get)
				r.Patch("/{id}/status", deps.Orders.UpdateStatus)
			})
		})
	})

	return r
}
