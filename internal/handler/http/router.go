package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yashpagade-yp/user-login/internal/auth"
	"github.com/yashpagade-yp/user-login/internal/service"
	"github.com/yashpagade-yp/user-login/pkg/health"
	"github.com/yashpagade-yp/user-login/pkg/middleware"
)

// NewRouter creates a chi router with all service routes registered.
func NewRouter(
	accountService *service.AccountService,
	orderService *service.OrderService,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("user-login"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to the internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.Validate(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			AccountID: claims.AccountID,
			Status:    claims.Status,
		}, nil
	}

	authHandler := NewAuthHandler(accountService, logger)

	// Auth endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/verify-otp", authHandler.VerifyOtp)
		r.Post("/reset-password", authHandler.ResetPassword)

		// Change password requires an authenticated session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Post("/change-password", authHandler.ChangePassword)
		})
	})

	// Profile endpoints (auth required)
	accountHandler := NewAccountHandler(accountService, logger)
	r.Route("/api/v1/accounts", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/me", accountHandler.GetProfile)
		r.Patch("/me", accountHandler.UpdateProfile)
		r.Delete("/me", accountHandler.DeleteAccount)
	})

	// Order endpoints (auth required)
	orderHandler := NewOrderHandler(orderService, logger)
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Post("/", orderHandler.Create)
		r.Get("/", orderHandler.List)
		r.Get("/{id}", orderHandler.Get)
		r.Patch("/{id}/status", orderHandler.UpdateStatus)
		r.Post("/{id}/cancel", orderHandler.Cancel)
		r.Delete("/{id}", orderHandler.Delete)
	})

	return r
}
