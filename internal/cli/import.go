package cli

import (
	"github.com/spf13/cobra"

	"github.com/jonechelon/matchfly-pseo/internal/constants"
	"github.com/jonechelon/matchfly-pseo/internal/providers"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	Days int
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Backfill the store from the regulator's daily exports",
		Long: `Downloads the regulator's daily CSV exports for the last N days,
merges the Guarulhos departures into the canonical store and regenerates the
site. Days already covered by live captures are not overwritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := NewRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Cache.Close()

			days := opts.Days
			if days == 0 {
				days = rt.Cfg.HistoricalDays
			}

			hist := providers.NewHistoricalProvider(rt.Cfg.HistoricalBaseURL, days, rt.Cache)
			rows, err := hist.FetchRows(ctx)
			if err != nil {
				return err
			}

			result, err := rt.Pipeline.Run(ctx, constants.RunEventImport, rows)
			if err != nil {
				return err
			}
			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 0, "how many days to backfill (default HISTORICAL_DAYS)")

	return cmd
}
