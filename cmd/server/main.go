package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Simplici0/costline/internal/config"
	"github.com/Simplici0/costline/internal/db"
	"github.com/Simplici0/costline/internal/metrics"
	"github.com/Simplici0/costline/internal/migrations"
	"github.com/Simplici0/costline/internal/seed"
	"github.com/Simplici0/costline/internal/store"
)

type server struct {
	auth    *authService
	store   *store.Store
	metrics *metrics.Collector
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		CatalogFile:   cfg.SeedFile,
	})
	if err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seed inserted %d rows", stats.Inserts)
	}

	secret := cfg.SessionSecret
	if secret == "" {
		if !cfg.IsDev() {
			log.Fatal("SESSION_SECRET is required outside development")
		}
		secret = rand.Text()
		log.Print("warning: using a random session secret; sessions end on restart")
	}

	st := store.New(database)
	srv := &server{
		auth:    newAuthService(st, secret, cfg.SessionTTL),
		store:   st,
		metrics: metrics.New(),
	}

	handler, err := newRouter(srv, cfg.LoginRateLimit)
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// peerAddr keys rate limits on the connection's address. Forwarding headers are
// client controlled and ignored.
func peerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func newRouter(srv *server, loginRate string) (http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(loginRate)
	if err != nil {
		return nil, fmt.Errorf("parse login rate limit %q: %w", loginRate, err)
	}
	loginLimiter := stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate), stdlib.WithKeyGetter(peerAddr))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(srv.metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", srv.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", srv.handleRegister)
		r.With(loginLimiter.Handler).Post("/auth/login", srv.handleLogin)
		r.Post("/auth/logout", srv.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(srv.auth.requireAuth)

			r.Get("/auth/me", srv.handleMe)

			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", srv.handleSuppliersList)
				r.Post("/", srv.handleSupplierCreate)
				r.Put("/{id}", srv.handleSupplierUpdate)
				r.Delete("/{id}", srv.handleSupplierDelete)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", srv.handleInventoryList)
				r.Post("/", srv.handleInventoryCreate)
				r.Get("/export.csv", srv.handleInventoryExport)
				r.Get("/{id}", srv.handleInventoryGet)
				r.Put("/{id}", srv.handleInventoryUpdate)
				r.Delete("/{id}", srv.handleInventoryDelete)
			})

			r.Route("/recipes", func(r chi.Router) {
				r.Get("/", srv.handleRecipesList)
				r.Post("/", srv.handleRecipeCreate)
				r.Post("/preview", srv.handleRecipePreview)
				r.Get("/{id}", srv.handleRecipeGet)
				r.Put("/{id}", srv.handleRecipeUpdate)
				r.Delete("/{id}", srv.handleRecipeDelete)
			})

			r.Route("/dishes", func(r chi.Router) {
				r.Get("/", srv.handleDishesList)
				r.Post("/", srv.handleDishCreate)
				r.Post("/preview", srv.handleDishPreview)
				r.Get("/{id}", srv.handleDishGet)
				r.Put("/{id}", srv.handleDishUpdate)
				r.Delete("/{id}", srv.handleDishDelete)
			})

			r.Route("/drafts", func(r chi.Router) {
				r.Get("/{key}", srv.handleDraftGet)
				r.Put("/{key}", srv.handleDraftSave)
				r.Patch("/{key}", srv.handleDraftEdit)
				r.Delete("/{key}", srv.handleDraftClear)
			})
		})
	})

	return r, nil
}
