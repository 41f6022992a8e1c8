package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spendlog/spendlog/internal/config"
	"github.com/spendlog/spendlog/internal/handler"
	"github.com/spendlog/spendlog/internal/middleware"
)

// routes groups the HTTP handlers mounted by setupRouter.
type routes struct {
	root     *handler.Handler
	health   *handler.HealthHandler
	metrics  *handler.MetricsHandler
	accounts *handler.AuthHandler
	expenses *handler.ExpenseHandler
	reports  *handler.ReportHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	rt routes,
	authCfg middleware.AuthConfig,
	rateLimitCfg middleware.RateLimitConfig,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.GetCORSAllowedOrigins())))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", rt.health.Healthz)
	r.Get("/readyz", rt.health.Readyz)
	r.Get("/metrics", rt.metrics.Metrics)
	r.Get("/", rt.root.Hello)

	r.Route("/api", func(r chi.Router) {
		// Identity endpoints are public but limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitIP(rateLimitCfg))
			r.Post("/register", rt.accounts.Register)
			r.Post("/login", rt.accounts.Login)
			r.Post("/token/refresh", rt.accounts.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitUser(rateLimitCfg))

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/list", rt.expenses.List)
				r.Post("/create", rt.expenses.Create)
				r.Get("/recent", rt.expenses.Recent)
				r.Method(http.MethodPut, "/{id}/update", http.HandlerFunc(rt.expenses.Update))
				r.Method(http.MethodPatch, "/{id}/update", http.HandlerFunc(rt.expenses.Update))
				r.Delete("/{id}/delete", rt.expenses.Delete)
			})

			r.Route("/report", func(r chi.Router) {
				r.Get("/monthly", rt.reports.Monthly)
				r.Get("/download/{format}", rt.reports.Download)
			})

			r.With(middleware.RequireStaff).Get("/users", rt.accounts.ListUsers)
		})
	})

	// 404 and 405 handlers
	r.NotFound(rt.root.NotFound)
	r.MethodNotAllowed(rt.root.MethodNotAllowed)

	return r
}
