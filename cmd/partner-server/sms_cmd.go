package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/acacia-erp/acacia-sdk/internal/server"
	"github.com/acacia-erp/acacia-sdk/pkg/composables"
	"github.com/acacia-erp/acacia-sdk/pkg/configuration"
)

// sms-new-agents runs the onboarding campaign once and prints the
// per-partner results. Scheduled from cron; the default window matches
// a daily 11:00 run.
func newSmsNewAgentsCmd() *cobra.Command {
	var fromFlag, toFlag, message string
	cmd := &cobra.Command{
		Use:   "sms-new-agents",
		Short: "Send the onboarding SMS to agents created in the window",
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

			var from, to time.Time
			if fromFlag != "" {
				if from, err = time.Parse(time.RFC3339, fromFlag); err != nil {
					return err
				}
			}
			if toFlag != "" {
				if to, err = time.Parse(time.RFC3339, toFlag); err != nil {
					return err
				}
			}

			svcs := server.BuildServices(conf, logger)
			runCtx := composables.WithPool(cmd.Context(), pool)
			results, err := svcs.Partners.SmsNewAgents(runCtx, from, to, message)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "window start (RFC 3339, default yesterday 11:00)")
	cmd.Flags().StringVar(&toFlag, "to", "", "window end (RFC 3339, default today 10:59:59)")
	cmd.Flags().StringVar(&message, "message", "", "override the campaign text")
	return cmd
}
