package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wisdombase/wisdombase-api/internal/infrastructure/config"
	"github.com/wisdombase/wisdombase-api/internal/infrastructure/db/mongo"
	"github.com/wisdombase/wisdombase-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "wisdombase",
	Short: "WisdomBase API server",
	Long: `WisdomBase API server.
Serves authentication, user administration, operation logs and documents over HTTP.`,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(initDBCmd())
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
		Fields: map[string]string{"service": cfg.AppName, "version": cfg.AppVersion},
	})
	return cfg, log, nil
}

// storage bundles the Mongo handles shared by both subcommands.
type storage struct {
	pinger     *mongo.Pinger
	identities *mongo.IdentityRepository
	logs       *mongo.OperationLogRepository
	documents  *mongo.DocumentRepository
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	seq := mongo.NewSequence(db)
	s := &storage{
		pinger:     mongo.NewPinger(client),
		identities: mongo.NewIdentityRepository(db, seq),
		logs:       mongo.NewOperationLogRepository(db, seq),
		documents:  mongo.NewDocumentRepository(db, seq),
		close: func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		},
	}
	if err := mongo.EnsureIndexes(ctx, s.identities, s.logs, s.documents); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}
