package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the matchfly CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchfly",
		Short: "Flight disruption site generator",
		Long: `matchfly aggregates flight disruption reports from live departure
captures and regulator history exports, deduplicates them into one canonical
store and regenerates the static site from it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewGenerateCommand())
	cmd.AddCommand(NewImportCommand())
	cmd.AddCommand(NewPreviewCommand())
	cmd.AddCommand(NewPingIndexCommand())

	return cmd
}
