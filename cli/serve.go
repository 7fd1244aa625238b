package cli

import (
	"github.com/spf13/cobra"

	"github.com/TFMV/tenlab/server"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API",
		Long: `Serve the JSON and SVG dashboard API until interrupted.

Graphs and simulation sessions live in memory only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			override(cmd, "addr", &cfg.Server.Addr, addr)

			s, err := server.New(cfg, a.presets, a.logger)
			if err != nil {
				return err
			}

			// Execute cancels the context on SIGINT/SIGTERM for a graceful shutdown
			return s.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}
