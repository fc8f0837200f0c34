package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/hirel/referral-network/internal/auth"
	"github.com/hirel/referral-network/internal/config"
	"github.com/hirel/referral-network/internal/httputil"
	"github.com/hirel/referral-network/internal/job"
	"github.com/hirel/referral-network/internal/logging"
	"github.com/hirel/referral-network/internal/user"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	authMiddleware *auth.Middleware,
	userHandler *user.Handler,
	jobHandler *job.Handler,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Passwordless login (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/request-otp", authHandler.RequestOTP)
			r.Post("/verify-otp", authHandler.VerifyOTP)
		})

		// Profile (active user)
		r.Route("/users", func(r chi.Router) {
			r.Use(authMiddleware.RequireActiveUser)
			r.Get("/me", userHandler.Me)
			r.Put("/me", userHandler.UpdateMe)
		})

		// Job postings (active user; delete needs admin)
		r.Route("/jobs", func(r chi.Router) {
			r.Use(authMiddleware.RequireActiveUser)

			r.Post("/", jobHandler.Create)
			r.Get("/", jobHandler.List)

			r.Get("/suggestions/role-names", jobHandler.RoleNameSuggestions)
			r.Get("/suggestions/company-names", jobHandler.CompanyNameSuggestions)
			r.Get("/suggestions/locations", jobHandler.LocationSuggestions)
			r.Get("/suggestions/department-names", jobHandler.DepartmentNameSuggestions)

			r.Get("/{id}", jobHandler.Get)
			r.Put("/{id}", jobHandler.Update)
			r.With(authMiddleware.AdminOnly).Delete("/{id}", jobHandler.Delete)
		})
	})

	return r
}

// handleHealth is a simple health check endpoint.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
