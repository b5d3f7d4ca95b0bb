package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/item"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/moderation"
	"github.com/erazemk/najdeno/internal/search"
	"github.com/erazemk/najdeno/internal/store"
)

// Options configures the router. Zero values fall back to the defaults below.
type Options struct {
	Version       string
	TokenTTL      time.Duration
	CORSOrigins   []string
	AuthPerMinute int
	MaxUpload     int64
	// Registry receives the metrics served on /metrics. A fresh registry is
	// used when nil.
	Registry *prometheus.Registry
}

func (o *Options) setDefaults() {
	if o.Version == "" {
		o.Version = "dev"
	}
	if o.TokenTTL <= 0 {
		o.TokenTTL = 24 * time.Hour
	}
	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = []string{"*"}
	}
	if o.AuthPerMinute <= 0 {
		o.AuthPerMinute = 20
	}
	if o.MaxUpload <= 0 {
		o.MaxUpload = 5 << 20
	}
	if o.Registry == nil {
		o.Registry = prometheus.NewRegistry()
	}
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, opts Options) http.Handler {
	opts.setDefaults()

	s := store.New(db)
	collector := metrics.NewCollector(opts.Registry)
	accounts := auth.NewAccounts(s, auth.NewTokens(jwtSecret), opts.TokenTTL)

	authHandler := &AuthHandler{Accounts: accounts, Metrics: collector}
	itemsHandler := &ItemsHandler{Items: item.NewManager(s, opts.MaxUpload), Metrics: collector, MaxUpload: opts.MaxUpload}
	searchHandler := &SearchHandler{Engine: search.NewEngine(s)}
	adminHandler := &AdminHandler{Moderation: moderation.New(s), Metrics: collector}

	authMW := AuthMiddleware(accounts)
	authLimit := NewRateLimiter(opts.AuthPerMinute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(collector))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler(opts.Registry))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", home(opts.Version))
		r.Get("/version", versionHandler(opts.Version))

		r.Route("/auth", func(r chi.Router) {
			r.With(authLimit.Middleware).Post("/signup", authHandler.Signup)
			r.With(authLimit.Middleware).Post("/signin", authHandler.Signin)
			r.With(authMW).Post("/signout", authHandler.Signout)
		})

		for _, kind := range model.Kinds {
			r.Route("/"+string(kind)+"-items", func(r chi.Router) {
				r.With(authMW).Post("/", itemsHandler.Create(kind))
				r.Get("/{id}", itemsHandler.Get(kind))
				r.With(authMW).Patch("/{id}", itemsHandler.Update(kind))
				r.With(authMW).Delete("/{id}", itemsHandler.Delete(kind))
				r.With(authMW).Put("/{id}/image", itemsHandler.UploadImage(kind))
				r.Get("/{id}/image", itemsHandler.GetImage(kind))
			})
		}

		r.Get("/items", itemsHandler.List)
		r.Get("/items/stats", itemsHandler.Stats)
		r.Get("/search", searchHandler.Search)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW, RequireAdmin)
			r.Patch("/users/{id}", adminHandler.SetUserBan)
			r.Patch("/items/{id}", adminHandler.SetItemStatus)
			r.Get("/reports", adminHandler.Reports)
		})
	})

	return r
}
