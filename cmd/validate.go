package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check configuration and scenario without running",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(opts)
			if err != nil {
				return err
			}
			defer closeService(svc)
			st := svc.Engine.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "scenario valid: %d vehicles available\n", st.Available)
			return nil
		},
	}
}
