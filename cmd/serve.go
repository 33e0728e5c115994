package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ambulance-dispatch/core/dispatch"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation, then serve metrics and the read API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := newService(opts)
			if err != nil {
				return err
			}
			defer closeService(svc)
			rep, err := svc.Run(ctx)
			if err != nil && !errors.Is(err, dispatch.ErrTickLimit) {
				return err
			}
			printSummary(cmd.OutOrStdout(), rep)
			return svc.Serve(ctx)
		},
	}
}
