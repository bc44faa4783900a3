package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonechelon/matchfly-pseo/internal/config"
	"github.com/jonechelon/matchfly-pseo/internal/indexer"
)

// NewPingIndexCommand creates the ping-index command.
func NewPingIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping-index",
		Short: "Submit every generated page URL to the search indexing API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			client, err := indexer.NewClient(cfg.IndexCredentialsFile)
			if err != nil {
				return err
			}
			if !client.Enabled() {
				return fmt.Errorf("INDEX_CREDENTIALS_FILE is not set")
			}

			entries, err := os.ReadDir(cfg.FlightDir)
			if err != nil {
				return fmt.Errorf("cannot read artifact directory: %w", err)
			}

			urls := []string{cfg.BaseURL + "/"}
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() || !strings.HasPrefix(name, "voo-") || filepath.Ext(name) != ".html" {
					continue
				}
				urls = append(urls, cfg.BaseURL+"/voo/"+name)
			}
			sort.Strings(urls)

			ok, failed := client.NotifyBatch(cmd.Context(), urls, indexer.NotifyUpdated)
			fmt.Fprintf(cmd.OutOrStdout(), "submitted %d URLs, %d failed\n", ok, failed)
			if failed > 0 && ok == 0 {
				return fmt.Errorf("all submissions failed")
			}
			return nil
		},
	}

	return cmd
}
