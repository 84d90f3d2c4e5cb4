package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/math-2025/protected-geo/internal/server"
	"github.com/math-2025/protected-geo/store"
)

func (c *CLI) serveCommand() *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" {
				address = c.config.Server.Address
			}
			return c.withStore(cmd.Context(), func(s store.Store) error {
				srv := server.New(s, c.Logger, c.config.Verify.Tolerance)
				err := srv.ListenAndServe(cmd.Context(), address, c.config.Server.ShutdownTimeout.Duration)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "the address to listen on (defaults to server.address)")
	return cmd
}
