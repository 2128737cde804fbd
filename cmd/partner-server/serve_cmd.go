package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/acacia-erp/acacia-sdk/internal/server"
	"github.com/acacia-erp/acacia-sdk/pkg/configuration"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			defer conf.Unload()
			logger := conf.Logger()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			pool, err := pgxpool.New(ctx, conf.Database.Opts)
			if err != nil {
				return err
			}
			defer pool.Close()

			srv, err := server.Default(&server.Options{
				Logger:        logger,
				Configuration: conf,
				Pool:          pool,
			})
			if err != nil {
				return err
			}
			logger.WithField("address", conf.SocketAddress).Info("listening")
			return srv.ListenAndServe()
		},
	}
}
