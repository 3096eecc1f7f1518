package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/yanqian/ai-tripplanner/internal/infra/config"
	"github.com/yanqian/ai-tripplanner/internal/infra/triprepo"
)

const migrateTimeout = 30 * time.Second

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the trips table in Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(dsn) == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				dsn = cfg.Postgres.DSN
			}
			if strings.TrimSpace(dsn) == "" {
				return errors.New("no postgres dsn: pass --dsn or set POSTGRES_DSN")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			pool, err := pgxpool.New(ctx, dsn)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := triprepo.Migrate(ctx, pool); err != nil {
				return err
			}
			flags.logger(cmd).Info("trip schema applied")
			cmd.Println("trip schema is up to date")
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "postgres connection string (defaults to postgres.dsn)")
	return cmd
}
