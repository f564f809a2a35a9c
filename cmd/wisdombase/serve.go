package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/wisdombase/wisdombase-api/internal/api"
	"github.com/wisdombase/wisdombase-api/internal/api/handler"
	"github.com/wisdombase/wisdombase-api/internal/core/auth"
	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/service"
	"github.com/wisdombase/wisdombase-api/internal/infrastructure/db/redis"
	"github.com/wisdombase/wisdombase-api/internal/infrastructure/queue"
	"github.com/wisdombase/wisdombase-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var initDB bool
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), initDB)
		},
	}
	cmd.Flags().BoolVar(&initDB, "init-db", false, "seed the default accounts before serving")
	return cmd
}

func runServe(ctx context.Context, initDB bool) error {
	cfg, log, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	table := domain.DefaultRolePermissions()
	if initDB {
		seeder := service.NewSeeder(store.identities, table, logger.Component(log, "seed"))
		if _, err := seeder.InitDefaultIdentities(ctx); err != nil {
			return err
		}
	}

	readiness := map[string]handler.Pinger{"mongo": store.pinger}

	var throttle service.LoginThrottle
	if cfg.ThrottleEnabled() {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		throttle = redis.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.LockoutWindow)
		readiness["redis"] = redis.NewPinger(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Int("max_attempts", cfg.Login.MaxAttempts).Msg("login throttle enabled")
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Algorithm:  cfg.JWT.Algorithm,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	if err != nil {
		return err
	}

	dispatcher := queue.NewAuditDispatcher(cfg.AuditWorkers, store.logs, logger.Component(log, "audit"))
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	e := api.NewRouter(api.RouterConfig{
		AppName:     cfg.AppName,
		AppVersion:  cfg.AppVersion,
		APIPrefix:   cfg.APIPrefix,
		CORSOrigins: cfg.CORSOrigins,
	}, api.Dependencies{
		Guard:     auth.NewGuard(tokens, store.identities),
		Auth:      service.NewAuthService(store.identities, tokens, dispatcher, throttle, logger.Component(log, "auth")),
		Users:     service.NewUserService(store.identities, store.documents, table, dispatcher, logger.Component(log, "users")),
		Logs:      service.NewOperationLogService(store.logs, store.identities),
		Documents: service.NewDocumentService(store.documents, dispatcher, logger.Component(log, "documents")),
		Readiness: readiness,
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	// Deferred calls stop the dispatcher before storage closes.
	return nil
}
