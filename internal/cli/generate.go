package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonechelon/matchfly-pseo/internal/constants"
	"github.com/jonechelon/matchfly-pseo/internal/models"
	"github.com/jonechelon/matchfly-pseo/internal/providers"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	Scheduled time.Duration
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Merge live captures into the store and regenerate the site",
		Long: `Reads the scraper capture files, merges them into the canonical
store and regenerates every eligible flight page, the homepage and the
sitemap. With --every the run repeats on that interval until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := NewRuntime(ctx)
			if err != nil {
				return err
			}

			live := providers.NewLiveFeedProvider(rt.Cfg.CaptureDir)

			if opts.Scheduled > 0 {
				rt.Pipeline.RunScheduled(ctx, constants.RunEventScheduled, opts.Scheduled, live.FetchRows)
				return nil
			}

			rows, err := live.FetchRows(ctx)
			if err != nil {
				return err
			}
			result, err := rt.Pipeline.Run(ctx, constants.RunEventGenerate, rows)
			if err != nil {
				return err
			}
			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.Scheduled, "every", 0, "re-run on this interval (e.g. 30m); 0 runs once")

	return cmd
}

func printResult(cmd *cobra.Command, result *models.RunResult) {
	fmt.Fprintf(cmd.OutOrStdout(),
		"run %s: %d rows in, %d imported, %d upgraded, %d duplicates, %d rendered, %d skipped, %d failed, %d orphans (%dms)\n",
		result.RunID,
		result.TotalInputRows,
		result.Imported,
		result.Upgraded,
		result.Duplicates,
		result.Rendered,
		result.Skipped,
		result.Failed,
		result.Reconciliation.Orphans,
		result.DurationMillis)
}
