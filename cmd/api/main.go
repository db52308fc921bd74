package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/safestudy/safestudy-go/internal/breach"
	"github.com/safestudy/safestudy-go/internal/config"
	"github.com/safestudy/safestudy-go/internal/crypto"
	"github.com/safestudy/safestudy-go/internal/handler"
	"github.com/safestudy/safestudy-go/internal/middleware"
	"github.com/safestudy/safestudy-go/internal/repository"
	"github.com/safestudy/safestudy-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger(os.Stdout))

	checker := breach.NewChecker(cfg.BreachAPIURL,
		breach.WithTimeout(cfg.BreachTimeout),
		breach.WithRateLimit(cfg.BreachRPS, int(cfg.BreachRPS)+1),
	)

	genHandler := handler.NewGeneratorHandler(service.NewGeneratorService())
	checkHandler := handler.NewCheckHandler(service.NewSecurityService(checker))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/api/v1/generate", genHandler.HandleGenerate)
	r.Post("/api/v1/analyze", checkHandler.HandleAnalyze)

	r.Group(func(r chi.Router) {
		r.Use(checkRateLimit(cfg))
		r.Post("/api/v1/check", checkHandler.HandleCheck)
	})

	// Initialize DB, auth and vault routes if database is available.
	db, err := repository.NewDB(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		slog.Warn("database connection failed, auth and vault routes disabled", "error", err)
	} else {
		defer db.Close()

		sealer, err := crypto.NewSealer(cfg.VaultKey)
		if err != nil {
			slog.Error("invalid vault key", "error", err)
			os.Exit(1)
		}

		authService := service.NewAuthService(repository.NewUserRepository(db), cfg.JWTSecret, cfg.JWTExpiry)
		authHandler := handler.NewAuthHandler(authService)

		vaultService := service.NewVaultService(repository.NewVaultRepository(db), authService, sealer, checker)
		vaultHandler := handler.NewVaultHandler(vaultService)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(5, 10))
			r.Post("/api/v1/auth/register", authHandler.HandleRegister)
			r.Post("/api/v1/auth/login", authHandler.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret))
			r.Get("/api/v1/auth/me", authHandler.HandleMe)

			r.Get("/api/v1/vault", vaultHandler.HandleList)
			r.Post("/api/v1/vault", vaultHandler.HandleCreate)
			r.Get("/api/v1/vault/summary", vaultHandler.HandleSummary)
			r.Post("/api/v1/vault/audit", vaultHandler.HandleAudit)
			r.Delete("/api/v1/vault/{id}", vaultHandler.HandleDelete)
			r.Post("/api/v1/vault/{id}/reveal", vaultHandler.HandleReveal)
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// checkRateLimit shares the /check budget through Redis when REDIS_URL is
// set and reachable, and falls back to a per-process limiter otherwise.
func checkRateLimit(cfg config.Config) func(http.Handler) http.Handler {
	const perMinute = 30

	if cfg.RedisURL == "" {
		return middleware.RateLimit(perMinute/60.0, 5)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Warn("invalid REDIS_URL, using in-process rate limit", "error", err)
		return middleware.RateLimit(perMinute/60.0, 5)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, using in-process rate limit", "error", err)
		rdb.Close()
		return middleware.RateLimit(perMinute/60.0, 5)
	}

	slog.Info("using shared rate limit", "addr", opts.Addr)
	return middleware.RedisRateLimit(rdb, "check", perMinute, time.Minute)
}
