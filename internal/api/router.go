package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"loan-engine/internal/api/handler"
	mw "loan-engine/internal/api/middleware"
	"loan-engine/internal/config"
	"loan-engine/internal/domain/amortization"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/payment"
	"loan-engine/internal/domain/product"
	"loan-engine/internal/domain/user"

	_ "loan-engine/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Dependencies are the services the HTTP layer dispatches to.
type Dependencies struct {
	Loans    loan.Service
	Payments payment.Service
	Products product.Service
	Users    user.Repository
	// Ping reports database reachability for /health; nil skips the check.
	Ping func(ctx context.Context) error
}

// SetupRouter builds the HTTP surface. ctx bounds background work such as the
// rate limiter's cleanup sweep.
func SetupRouter(ctx context.Context, deps Dependencies, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(ctx, router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupHealthEndpoint(router, deps.Ping)
	setupSwaggerEndpoint(router, logger)

	authMiddleware := mw.AuthMiddleware(cfg.Server.Auth, logger)
	setupAuthRoutes(router, deps.Users, cfg.Server.Auth, logger)
	setupLoanRoutes(router, deps, amortization.Frequency(cfg.Loan.DefaultPaymentFrequency), authMiddleware, logger)
	setupPaymentRoutes(router, deps.Payments, authMiddleware, logger)
	setupProductRoutes(router, deps.Products, authMiddleware, logger)

	return router
}

func setupMiddleware(ctx context.Context, router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(ctx, cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupHealthEndpoint(router *chi.Mux, ping func(ctx context.Context) error) {
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable","database":"down"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, users user.Repository, cfg config.AuthConfig, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(cfg, users, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupLoanRoutes(router *chi.Mux, deps Dependencies, defaultFrequency amortization.Frequency, authMiddleware func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewLoanHandler(deps.Loans, deps.Payments, defaultFrequency, logger)

	router.Route("/loans", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListLoans)
		r.Post("/", h.CreateLoan)
		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/", h.GetLoan)
			r.Put("/", h.UpdateLoan)
			r.Delete("/", h.DeleteLoan)
			r.Post("/approve", h.ApproveLoan)
			r.Post("/disburse", h.DisburseLoan)
			r.Post("/recalculate", h.RecalculateSchedule)
			r.Get("/schedule", h.GetSchedule)
			r.Get("/payments", h.ListLoanPayments)
		})
	})
}

func setupPaymentRoutes(router *chi.Mux, svc payment.Service, authMiddleware func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewPaymentHandler(svc, logger)

	router.Route("/payments", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListPayments)
		r.Post("/", h.CreatePayment)
		r.Delete("/{paymentID}", h.DeletePayment)
	})
}

func setupProductRoutes(router *chi.Mux, svc product.Service, authMiddleware func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewProductHandler(svc, logger)

	router.Route("/loan-products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Route("/{productID}", func(r chi.Router) {
			r.Get("/", h.GetProduct)
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeactivateProduct)
		})
	})
}
