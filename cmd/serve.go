package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color" //nolint:misspell
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(osSignal <-chan os.Signal) *cobra.Command {
	return &cobra.Command{
		Use:                   "serve",
		Short:                 "Serve the JSON API",
		Long:                  ``,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			di, adminContext, shutdown, err := setup(cmd)
			if err != nil {
				return err
			}

			if err := di.Start(cmd.Context()); err != nil {
				_ = shutdown(cmd.Context())

				return fmt.Errorf("could not start: %w", err)
			}

			green := color.New(color.FgGreen, color.Bold).FprintfFunc()
			green(cmd.OutOrStdout(), "serving %v on port %d\n", adminContext.Sections(), di.Config.HTTP.Port)

			stopped := make(chan error, 1)
			go func() { stopped <- di.Wait() }()

			select {
			case sig := <-osSignal:
				fmt.Fprintf(cmd.OutOrStdout(), "received %s, shutting down\n", sig)
			case err := <-stopped:
				if err != nil {
					_ = shutdown(cmd.Context())

					return err //nolint:wrapcheck // errors are wrapped by the container
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return shutdown(ctx)
		},
	}
}
