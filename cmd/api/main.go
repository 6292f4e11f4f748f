package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"creditflow/auth"
	"creditflow/config"
	"creditflow/db"
	"creditflow/db/migrations"
	"creditflow/dispute"
	"creditflow/httpapi"
	"creditflow/logging"
	"creditflow/selection"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	if err := migrations.Up(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("bootstrap database pool", zap.Error(err))
	}
	defer pool.Close()

	var mirror *selection.Mirror
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis ping", zap.Error(err))
		}
		defer client.Close()
		mirror = selection.NewMirror(client, 0)
	} else {
		logger.Warn("REDIS_ADDR not set; selection persistence disabled")
	}

	authService := auth.NewService(auth.NewRepository(pool), cfg.JWTSecret)
	disputeService := dispute.NewService(pool, dispute.NewRepository(pool))

	server := httpapi.NewServer(authService, disputeService, mirror, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}
