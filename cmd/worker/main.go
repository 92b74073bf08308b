package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/worker"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

const opsAddr = ":8081"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zl := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if !cfg.Redis.Enabled() {
		zl.Fatal().Msg("redis.url is required; without it the API consumes notifications in-process")
	}
	if cfg.Database.Driver != config.DriverPostgres {
		zl.Fatal().Str("driver", cfg.Database.Driver).Msg("worker requires the postgres driver")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(ctx, redis.Config{URL: cfg.Redis.URL, PoolSize: cfg.Redis.PoolSize}, zl)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to create Redis broker")
	}
	defer broker.Close()

	m := metrics.New("hospital")
	store := postgres.NewStore(db)

	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", m.Handler())
	ops := &http.Server{Addr: opsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error().Err(err).Msg("ops server failed")
			os.Exit(1)
		}
	}()

	w := worker.NewNotificationWorker(store.Notifications, broker, m, zl)
	if err := w.Run(ctx); err != nil {
		zl.Error().Err(err).Msg("worker failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := ops.Shutdown(shutdownCtx); err != nil {
		zl.Warn().Err(err).Msg("ops server forced to shutdown")
	}
	zl.Info().Msg("worker exited properly")
}
