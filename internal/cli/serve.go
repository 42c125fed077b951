package cli

import (
	"github.com/spf13/cobra"

	"github.com/mkessler/repolens/internal/server"
)

// serveCommand creates the "serve" command running the dashboard API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.ServerAddr
			}

			client, err := c.newClient(cmd.Context(), false)
			if err != nil {
				return err
			}

			srv := server.New(server.Options{
				Addr:   addr,
				Client: client,
				Logger: c.Logger,
			})
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, localhost:8080)")
	return cmd
}
