package main

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/acacia-erp/acacia-sdk/modules/partner/infrastructure/persistence"
	"github.com/acacia-erp/acacia-sdk/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			defer conf.Unload()

			db, err := sql.Open("pgx", conf.Database.Opts)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			goose.SetBaseFS(persistence.SchemaFS)
			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}
			if down {
				return goose.Down(db, "schema")
			}
			return goose.Up(db, "schema")
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back the most recent migration")
	return cmd
}
