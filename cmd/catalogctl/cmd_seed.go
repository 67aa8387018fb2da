package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mvaleed/mjcatalog/internal/event"
	"github.com/mvaleed/mjcatalog/internal/seed"
	"github.com/mvaleed/mjcatalog/internal/service"
	"github.com/mvaleed/mjcatalog/internal/storage/memory"
)

func (c *cli) seedCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load versions, styles, properties and links from a YAML file",
		Long: `Applies a YAML catalog through the same validation as the API.
Records that already exist are skipped. With --dry-run the file is applied to
an empty in-memory catalog, which reports validation errors without a database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := seed.ParseFile(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := c.context(cmd)
			defer cancel()

			var svc *service.Services
			if dryRun {
				logger := slog.New(slog.NewTextHandler(io.Discard, nil))
				svc = service.New(memory.NewStore().Repositories(), event.NewNoopPublisher(), logger)
			} else {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				s, cleanup, err := c.catalog(ctx, cfg, c.logger(cmd, cfg))
				if err != nil {
					return err
				}
				defer cleanup()
				svc = s
			}

			report, applyErr := seed.Apply(ctx, svc, catalog)
			printReport(cmd.OutOrStdout(), report)
			return applyErr
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate against an in-memory catalog")
	return cmd
}

func printReport(w io.Writer, r seed.Report) {
	rows := []struct {
		kind   string
		counts seed.Counts
	}{
		{"versions", r.Versions},
		{"styles", r.Styles},
		{"properties", r.Properties},
		{"links", r.Links},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%-10s created=%d skipped=%d failed=%d\n",
			row.kind, row.counts.Created, row.counts.Skipped, row.counts.Failed)
	}
}
