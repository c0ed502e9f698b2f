package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openfroyo/inventory/pkg/stores"
)

func newRunsCommand() *cobra.Command {
	var (
		limit    int
		deleteID string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Long: `List the runs recorded in the run database (output.sqlite_path), newest
first.`,
		Example: `  # The five most recent runs
  inventory runs --limit 5

  # Forget a run and its stored resources
  inventory runs --delete 7f9c2a4e-4b1d-4d8e-9d55-0c3b1f2e6a10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			db, err := requireSQLite(ctx, env)
			if err != nil {
				return err
			}
			defer db.Close()

			out := newPrinter(cmd.OutOrStdout(), jsonOutput)

			if deleteID != "" {
				if err := db.DeleteRun(ctx, deleteID); err != nil {
					return err
				}
				runLog := env.log.WithRunID(deleteID).Zerolog()
				runLog.Info().Msg("Run deleted")
				out.line("// run %s deleted", deleteID)
				return out.document(map[string]string{"deleted": deleteID})
			}

			runs, err := db.ListRuns(ctx, limit, 0)
			if err != nil {
				return err
			}

			for _, run := range runs {
				out.line("%s", formatRun(run))
			}
			if len(runs) == 0 {
				out.line("// no runs recorded")
			}
			return out.document(runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&deleteID, "delete", "", "delete the run with this ID instead of listing")

	return cmd
}

// formatRun renders one run as a single line.
func formatRun(run *stores.Run) string {
	line := fmt.Sprintf("%s  %-9s  %s", run.ID, run.Status, run.StartedAt.UTC().Format(timestampLayout))

	summary, err := run.DecodeSummary()
	if err != nil {
		return line + "  (unreadable summary)"
	}
	return line + fmt.Sprintf("  %s  enumerated=%d disabled=%d skipped=%d failed=%d instances=%d",
		(time.Duration(run.DurationMS) * time.Millisecond).String(),
		summary.Enumerated, summary.Disabled, summary.Skipped, summary.Failed, summary.Instances)
}
