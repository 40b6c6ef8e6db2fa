// File: cmd/serve.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/formsite"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/observability"
)

func newServeCmd(_ *cli) *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the embedded replica of the practice form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			srv, err := formsite.Start(addr, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "serving %s\n", srv.FormURL())

			select {
			case <-cmd.Context().Done():
				logger.Info("Stopping replica server.")
				shutdownReplica(srv, logger)
				return nil
			case err, ok := <-srv.Err():
				if ok && err != nil {
					logger.Error("Replica server failed.", zap.Error(err))
					return err
				}
				return nil
			}
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	return serveCmd
}
