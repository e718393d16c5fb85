package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/compare/internal/adapters/http/api"
	"github.com/okian/compare/internal/adapters/repository"
	service "github.com/okian/compare/internal/app"
	"github.com/okian/compare/internal/config"
	"github.com/okian/compare/internal/domain/matchmaking"
	"github.com/okian/compare/internal/domain/rating"
	"github.com/okian/compare/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "compare exited", logger.Error(err))
		os.Exit(1)
	}
}

// run serves the API until ctx is cancelled or the listener fails.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	store, err := repository.New(ctx, storeConfig(cfg), repository.WithLogger(logger.Named("store")))
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	svc := service.New(
		service.WithLogger(logger.Named("service")),
		service.WithStore(store),
		service.WithEngineOptions(engineOptions(cfg)...),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithMusicFolder(cfg.MusicFolder),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	apiServer := api.NewServer(svc, svc,
		api.WithLogger(logger.Named("api")),
		api.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		api.WithAllowedOrigins(cfg.AllowedOrigins...),
	)
	srv := newHTTPServer(cfg.Addr, apiServer.Routes())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		startMetricsUpdater(gctx, svc, systemMetricsInterval)
		return nil
	})

	err = g.Wait()
	log.Info(context.Background(), "server stopped")
	return err
}

func storeConfig(cfg *config.Config) repository.Config {
	return repository.Config{
		Backend:        cfg.Store,
		PostgresURL:    cfg.PostgresURL,
		RedisAddr:      cfg.RedisAddr,
		RedisPassword:  cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		RedisKeyPrefix: cfg.RedisKeyPrefix,
	}
}

func engineOptions(cfg *config.Config) []matchmaking.Option {
	opts := []matchmaking.Option{
		matchmaking.WithModel(rating.NewPlackettLuce(
			rating.WithMu(cfg.RatingMu),
			rating.WithSigma(cfg.RatingSigma),
			rating.WithZ(cfg.RatingZ),
			rating.WithTau(cfg.RatingTau),
			rating.WithBeta(cfg.RatingBeta),
		)),
		matchmaking.WithRelativeMatchupEpsilon(cfg.RelativeMatchupEpsilon),
	}
	if cfg.RNGSeed != nil {
		opts = append(opts, matchmaking.WithSeed(*cfg.RNGSeed))
	}
	return opts
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startMetricsUpdater refreshes runtime gauges until ctx is done.
// GetStats records memory and goroutine usage as a side effect.
func startMetricsUpdater(ctx context.Context, svc api.StatsProvider, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.GetStats()
		}
	}
}
