package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *cli) pruneHistoryCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune-history",
		Short: "Delete prompt history older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("older-than") {
				olderThan = cfg.HistoryRetention
			}

			ctx, cancel := c.context(cmd)
			defer cancel()

			svc, cleanup, err := c.catalog(ctx, cfg, c.logger(cmd, cfg))
			if err != nil {
				return err
			}
			defer cleanup()

			r := svc.History.PruneHistory(ctx, olderThan)
			if r.IsFailed() {
				return r.Err()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d prompt history records older than %s\n", r.Value().Deleted, olderThan)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Retention window (default HISTORY_RETENTION)")
	return cmd
}
