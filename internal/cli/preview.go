package cli

import (
	"github.com/spf13/cobra"

	"github.com/jonechelon/matchfly-pseo/internal/config"
	"github.com/jonechelon/matchfly-pseo/internal/preview"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	Addr string
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	opts := &PreviewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Serve the generated site locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			addr := opts.Addr
			if addr == "" {
				addr = cfg.PreviewAddr
			}

			srv := preview.NewServer(addr, cfg.OutputDir)
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default PREVIEW_ADDR)")

	return cmd
}
