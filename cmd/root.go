package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ambulance-dispatch/app"
	"github.com/kilianp07/ambulance-dispatch/config"
	"github.com/kilianp07/ambulance-dispatch/core/dispatch"
	"github.com/kilianp07/ambulance-dispatch/infra/logger"
	"github.com/kilianp07/ambulance-dispatch/pkg/export"
)

// ErrIncomplete is returned by run when calls are still waiting in the
// backlog at the end of the run.
var ErrIncomplete = errors.New("run incomplete")

type options struct {
	cfgPath  string
	scenario string
	out      string
	report   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "ambulance-dispatch",
		Short:         "Ambulance dispatch simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "", "configuration file")
	root.PersistentFlags().StringVar(&opts.scenario, "scenario", "", "scenario file, overrides simulation.scenario")
	addRunFlags(root, opts)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation and print a summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}
	addRunFlags(runCmd, opts)
	root.AddCommand(runCmd, newValidateCmd(opts), newServeCmd(opts), newFleetCmd(opts))
	return root
}

func addRunFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.out, "out", "", "write the dispatch log to this file (.csv or .json)")
	cmd.Flags().StringVar(&opts.report, "report", "", "write the end-of-run report to this JSON file")
}

// Execute runs the CLI.
func Execute() error { return newRootCmd().Execute() }

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.scenario != "" {
		cfg.Simulation.Scenario = opts.scenario
	}
	return cfg, nil
}

func newService(opts *options) (*app.Service, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}

func run(cmd *cobra.Command, opts *options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(opts)
	if err != nil {
		return err
	}
	defer closeService(svc)

	rep, runErr := svc.Run(ctx)
	if err := writeOutputs(rep, opts); err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), rep)
	if runErr != nil {
		return runErr
	}
	if !rep.Complete() {
		return fmt.Errorf("%w: %d calls left in backlog", ErrIncomplete, len(rep.Backlog))
	}
	return nil
}

func writeOutputs(rep dispatch.Report, opts *options) error {
	if opts.out != "" {
		if err := export.WriteLogFile(opts.out, rep.Log); err != nil {
			return fmt.Errorf("write log: %w", err)
		}
	}
	if opts.report != "" {
		if err := export.WriteReportFile(opts.report, rep); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

func printSummary(w io.Writer, rep dispatch.Report) {
	fmt.Fprintf(w, "run %s: %d ticks, %d calls ingested, %d dispatched, %d in backlog, %d rejected\n",
		rep.RunID, rep.Ticks, rep.Ingested, rep.Dispatched, len(rep.Backlog), len(rep.Rejected))
	for _, r := range rep.Rejected {
		fmt.Fprintf(w, "  rejected call %d: %s\n", r.Call.ID, r.Reason)
	}
	for _, c := range rep.Backlog {
		fmt.Fprintf(w, "  waiting call %d since tick %d\n", c.ID, c.ArrivalTick)
	}
}
