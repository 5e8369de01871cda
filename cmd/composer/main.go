package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/quizforge/composer/internal/api/http"
	"github.com/quizforge/composer/internal/auth"
	"github.com/quizforge/composer/internal/backend"
	"github.com/quizforge/composer/internal/busy"
	"github.com/quizforge/composer/internal/config"
	"github.com/quizforge/composer/internal/devbackend"
	"github.com/quizforge/composer/internal/workspace"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	authSvc := auth.NewService(cfg.AuthSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	backendURL := cfg.BackendURL
	var authMW func(http.Handler) http.Handler

	if cfg.Mode == config.ModeOffline {
		// Built-in backend plus a local login so the composer runs without
		// the real service.
		hash, err := auth.HashPassword(cfg.DevPass)
		if err != nil {
			log.Fatalf("hash dev password: %v", err)
		}
		r.Post("/auth/login", auth.LoginHandler(authSvc, map[string]string{cfg.DevUser: hash}))

		dev := devbackend.New()
		r.Route("/_backend", func(br chi.Router) {
			br.Use(auth.JWTMiddleware(authSvc))
			br.Mount("/", dev.Router())
		})
		backendURL = "http://127.0.0.1" + guessPort(cfg.HTTPAddr) + "/_backend"
		authMW = auth.JWTMiddleware(authSvc)
	} else {
		authMW = auth.RequireBearer
	}

	client := backend.New(backendURL, auth.ContextTokens{}, &http.Client{Timeout: 30 * time.Second})
	ws := workspace.New(client, busy.New())

	r.Group(func(pr chi.Router) {
		pr.Use(authMW)
		api.Mount(pr, ws)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, backend=%s)", cfg.HTTPAddr, cfg.Mode, backendURL)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// guessPort turns a listen address into the :port suffix for self-calls in
// offline mode.
func guessPort(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ":8080"
}
