package server

import (
	"net/http"

	"conditions-backend/internal/handlers"
	"conditions-backend/internal/metrics"
	customMiddleware "conditions-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Accounts       handlers.AccountService
	Logger         *zap.Logger
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	CORSOrigins    []string
}

// NewRouter builds the HTTP API.
func NewRouter(d Deps) http.Handler {
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	authHandler := handlers.NewAuthHandler(d.Accounts, d.Logger)
	conditionsHandler := handlers.NewConditionsHandler(d.Accounts)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.RequestLogger(d.Logger))
	r.Use(customMiddleware.Metrics(d.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handlers.Health)

	r.Post("/signup", authHandler.Signup)
	r.Post("/login", authHandler.Login)
	r.Get("/conditions", conditionsHandler.List)

	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	return r
}
