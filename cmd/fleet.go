package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newFleetCmd(opts *options) *cobra.Command {
	fleetCmd := &cobra.Command{
		Use:   "fleet",
		Short: "Fleet related commands",
	}
	fleetCmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List the vehicles of the scenario",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(opts)
			if err != nil {
				return err
			}
			defer closeService(svc)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tLOCATION\tSTATION")
			for _, v := range svc.Engine.Fleet() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", v.ID, v.Status, v.Location, v.Station)
			}
			return w.Flush()
		},
	})
	return fleetCmd
}
