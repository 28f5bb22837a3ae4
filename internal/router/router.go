package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appMiddleware "github.com/rastrodeliberdade/rider-platform/app/middleware"
	"github.com/rastrodeliberdade/rider-platform/internal/api/auth"
	"github.com/rastrodeliberdade/rider-platform/internal/api/rider"
)

// RiderConfig contains the dependencies the rider-service router needs.
type RiderConfig struct {
	RiderHandler   *rider.HandlerImpl
	MetricsHandler http.Handler
}

// AuthConfig contains the dependencies the auth-service router needs.
type AuthConfig struct {
	AuthHandler    *auth.HandlerImpl
	TokenVerifier  appMiddleware.TokenVerifier
	MetricsHandler http.Handler
}

func corsMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// SetupRiderRouter wires the rider-service routes. Server-wide middleware
// (request ID, logger, recoverer) is applied in main before mounting.
func SetupRiderRouter(cfg *RiderConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(corsMiddleware())

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/riders", func(r chi.Router) {
		r.Post("/", cfg.RiderHandler.Insert)
		r.Get("/", cfg.RiderHandler.FindAll)
		r.Get("/{id}", cfg.RiderHandler.FindByID)
		r.Put("/{id}", cfg.RiderHandler.Update)
		r.Delete("/{id}", cfg.RiderHandler.Delete)
		r.Get("/search/by-email", cfg.RiderHandler.FindByEmail)
		r.Get("/search/by-state", cfg.RiderHandler.FindByState)

		// Cross-service credential lookup consumed by the auth service.
		r.Get("/internal/by-email", cfg.RiderHandler.FindAuthByEmail)
	})

	return r
}

// SetupAuthRouter wires the auth-service routes.
func SetupAuthRouter(cfg *AuthConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(corsMiddleware())

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/login", func(r chi.Router) {
		r.Post("/", cfg.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.Authenticate(cfg.TokenVerifier))
			r.Get("/validate", cfg.AuthHandler.Validate)
		})
	})

	return r
}
