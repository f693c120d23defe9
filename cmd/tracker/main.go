package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis "github.com/redis/go-redis/v9"

	"tracker/internal/auth"
	"tracker/internal/config"
	"tracker/internal/logger"
	"tracker/internal/server"
	"tracker/internal/storage/sqlite"
	"tracker/internal/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to sqlite database file")
	flag.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug, info, warn, error")
	flag.Parse()

	log, err := logger.New(cfg.Log)
	if err != nil {
		slog.Error("unable to configure logging", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.DBPath, log)
	if err != nil {
		log.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Error("unable to configure tokens", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := server.New(
		tracker.New(store, log),
		auth.NewService(store, issuer, log, 0),
		store,
		log,
		server.Options{
			Mode:           cfg.GinMode,
			Redis:          connectRedis(cfg, log),
			AuthRateLimit:  cfg.AuthRateLimit,
			AuthRateWindow: cfg.AuthRateWindow,
		},
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

// connectRedis returns nil when Redis is not configured or not reachable,
// which leaves the auth endpoints unthrottled.
func connectRedis(cfg *config.Config, log *slog.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set; auth rate limiting disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable; auth rate limiting disabled", slog.String("error", err.Error()))
		client.Close()
		return nil
	}
	return client
}
