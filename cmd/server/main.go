package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Kurama07a/buyer-lead-app/internal/auth"
	"github.com/Kurama07a/buyer-lead-app/internal/config"
	"github.com/Kurama07a/buyer-lead-app/internal/core"
	"github.com/Kurama07a/buyer-lead-app/internal/database"
	"github.com/Kurama07a/buyer-lead-app/internal/logging"
	"github.com/Kurama07a/buyer-lead-app/internal/memstore"
	"github.com/Kurama07a/buyer-lead-app/internal/metrics"
	"github.com/Kurama07a/buyer-lead-app/internal/web"
)

// store is what both the lead and auth services need from persistence.
type store interface {
	core.LeadStore
	auth.UserStore
}

func main() {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"timezone", cfg.Search.Timezone,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var revoker auth.Revoker
	if cfg.Redis.URL != "" {
		rdb, err := auth.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		revoker = auth.NewTokenBlacklist(rdb)
		slog.Info("token revocation enabled")
	} else {
		slog.Warn("REDIS_URL not set, logout will not revoke tokens")
	}

	authSvc := auth.NewService(st, auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), revoker, cfg.Auth.BcryptCost)

	limiter := core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil, limiter.ActiveCount)
	}

	opts := []core.Option{
		core.WithLocation(cfg.Search.Location()),
		core.WithImportLimiter(limiter),
		core.WithMaxPageSize(cfg.Search.MaxPageSize),
	}
	if m != nil {
		opts = append(opts, core.WithObserver(m))
	}
	leads := core.NewService(st, opts...)

	var serverOpts []web.Option
	if m != nil {
		serverOpts = append(serverOpts, web.WithMetrics(m, nil))
	}
	server := web.NewServer(cfg, leads, authSvc, serverOpts...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	// Imports may still be writing rows after their request returned.
	if status := limiter.Status(); status.Active > 0 {
		slog.Info("waiting for imports to complete", "active", status.Active)
		if err := limiter.WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		} else {
			slog.Info("all imports completed")
		}
	}

	slog.Info("server stopped")
}

// openStore builds the configured lead and user store. The returned func
// releases it.
func openStore(ctx context.Context, cfg *config.Config) (store, func(), error) {
	if cfg.Store.Driver == config.DriverMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	if cfg.Store.Migrate {
		if err := database.Migrate(cfg.Database.URL); err != nil {
			return nil, nil, err
		}
		slog.Info("database migrations applied")
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return database.New(pool), pool.Close, nil
}
