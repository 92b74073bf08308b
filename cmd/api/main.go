package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hospital-api/internal/app"
	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/email"
	authhandler "github.com/jwalitptl/hospital-api/internal/handler/auth"
	"github.com/jwalitptl/hospital-api/internal/handler/health"
	"github.com/jwalitptl/hospital-api/internal/handler/prometheus"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/router"
	"github.com/jwalitptl/hospital-api/internal/service/notification"
	"github.com/jwalitptl/hospital-api/internal/worker"
	jwtauth "github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/security"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

var configDir string

func main() {
	rootCmd := &cobra.Command{
		Use:           "hospital-api",
		Short:         "Hospital website backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory containing config.yml")

	rootCmd.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, log, nil
}

// openStore returns the configured store. The returned db is nil for the
// memory driver.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repository.Store, *sqlx.DB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memory.NewStore(), nil, nil
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		n, err := postgres.NewMigrator(db, log).Up(ctx)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info().Int("applied", n).Msg("migrations applied")
	}
	return postgres.NewStore(db), db, nil
}

type stack struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *repository.Store
	db       *sqlx.DB
	broker   messaging.Broker
	metrics  *metrics.Metrics
	services *app.Services
}

func (r *stack) Close() {
	if r.broker != nil {
		if err := r.broker.Close(); err != nil {
			r.log.Warn().Err(err).Msg("failed to close broker")
		}
	}
	if r.db != nil {
		r.db.Close()
	}
}

func bootstrap(ctx context.Context) (*stack, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, db, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	rt := &stack{cfg: cfg, log: log, store: store, db: db, metrics: metrics.New("hospital")}

	if cfg.Redis.Enabled() {
		b, err := redis.NewRedisBroker(ctx, redis.Config{URL: cfg.Redis.URL, PoolSize: cfg.Redis.PoolSize}, log)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.broker = b
	} else {
		rt.broker = messaging.NewMemoryBroker()
	}

	var sender email.Sender
	if cfg.Mail.Enabled() {
		sender = email.NewSMTPSender(cfg.Mail)
	} else {
		log.Warn().Msg("mail host not set; outgoing mail is kept in memory")
		sender = email.NewOutbox()
	}

	rt.services = app.NewServices(app.Deps{
		Store:    store,
		Sender:   sender,
		Renderer: email.MustRenderer(),
		Broker:   rt.broker,
		Metrics:  rt.metrics,
		Hasher:   security.NewBcryptHasher(bcrypt.DefaultCost),
		JWT:      jwtauth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL),
		Notification: notification.Config{
			From:     cfg.Mail.From,
			SiteName: cfg.Mail.SiteName,
			Admins:   cfg.Mail.Admins,
		},
	})
	return rt, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()
			return serve(ctx, rt)
		},
	}
}

func serve(ctx context.Context, rt *stack) error {
	cfg, log := rt.cfg, rt.log
	validator.RegisterBinding()

	// Without Redis nothing outside this process can see the memory
	// broker, so its events are consumed here.
	if !cfg.Redis.Enabled() {
		w := worker.NewNotificationWorker(rt.store.Notifications, rt.broker, rt.metrics, log)
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Error().Err(err).Msg("notification worker failed")
			}
		}()
	}

	var pinger health.Pinger
	if rt.db != nil {
		pinger = rt.db
	}

	r := router.NewRouter(
		log,
		middleware.NewAuthMiddleware(rt.services.Auth, cfg.JWT.CookieName),
		prometheus.New(rt.metrics),
		health.NewHandler(pinger),
		router.Config{
			Mode: cfg.Server.Mode,
			RateLimit: router.RateLimit{
				Enabled: cfg.RateLimit.Enabled,
				PerSec:  cfg.RateLimit.RequestsPerSecond,
				Burst:   cfg.RateLimit.Burst,
			},
			CORS:        corsConfig(cfg.CORS),
			Security:    middleware.DefaultSecurityConfig(),
			MaxBodySize: middleware.DefaultMaxBodySize,
		},
		router.SiteHandlers(
			rt.services,
			authhandler.CookieConfig{Name: cfg.JWT.CookieName, Secure: cfg.JWT.CookieSecure},
			log,
		)...,
	)
	r.Setup()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", gin.Mode()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited properly")
	return nil
}

func corsConfig(c config.CORSConfig) middleware.CORSConfig {
	out := middleware.DefaultCORSConfig()
	if len(c.AllowedOrigins) > 0 {
		out.AllowOrigins = c.AllowedOrigins
	}
	if len(c.AllowedMethods) > 0 {
		out.AllowMethods = c.AllowedMethods
	}
	if len(c.AllowedHeaders) > 0 {
		out.AllowHeaders = c.AllowedHeaders
	}
	return out
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate requires the %s driver", config.DriverPostgres)
			}
			db, err := postgres.NewDB(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := postgres.NewMigrator(db, log).Up(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Int("applied", n).Msg("migrations complete")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample doctors, services and a lab sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			report, err := app.Seed(cmd.Context(), rt.store, rt.services, rt.log)
			if err != nil {
				return err
			}
			rt.log.Info().
				Int("doctors", report.Doctors).
				Int("services", report.Services).
				Int("lab_samples", report.LabSamples).
				Msg("seed complete")
			return nil
		},
	}
}
