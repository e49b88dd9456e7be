package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"baias/internal/catalog/gateway"
	"baias/internal/catalog/seed"
	"baias/internal/catalog/store"
	"baias/internal/platform/config"
	"baias/internal/platform/logger"
	redisclient "baias/internal/platform/redis"
)

func newSeedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the starter catalog to the configured store",
		Long:  "Write the starter catalog when the store is empty. --force overwrites an existing document.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromEnv()
			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)

			rdb, err := redisclient.New(ctx, cfg.Redis)
			if err != nil {
				return err
			}
			if rdb != nil {
				defer rdb.Close()
			}
			backend, err := openStore(ctx, cfg, rdb)
			if err != nil {
				return err
			}
			defer store.Close(backend)

			wrote, err := seed.Apply(ctx, gateway.New(backend, gateway.WithLogger(log)), force)
			if err != nil {
				return err
			}
			if wrote {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote starter catalog to %s store\n", backend.Driver())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s store already holds a catalog; use --force to overwrite\n", backend.Driver())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing catalog")
	return cmd
}
