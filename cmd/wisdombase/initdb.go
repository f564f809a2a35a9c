package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/service"
	"github.com/wisdombase/wisdombase-api/pkg/logger"
)

func initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "init-db",
		Short:        "Create indexes and the default admin, editor and viewer accounts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInitDB(cmd.Context())
		},
	}
}

func runInitDB(ctx context.Context) error {
	cfg, log, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	seeder := service.NewSeeder(store.identities, domain.DefaultRolePermissions(), logger.Component(log, "seed"))
	_, err = seeder.InitDefaultIdentities(ctx)
	return err
}
