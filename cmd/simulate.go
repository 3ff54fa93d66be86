package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powersplit/app"
	"github.com/kilianp07/powersplit/config"
	"github.com/kilianp07/powersplit/core/simulation"
	"github.com/kilianp07/powersplit/infra/logger"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run every configured policy over the trips",
	RunE:  runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	results, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	return printSummary(cmd, results)
}

func printSummary(cmd *cobra.Command, results []*simulation.Results) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POLICY\tTRIPS\tABORTED\tI²·s SUM\tMEAN I²·s\tPEAK A")
	for _, r := range results {
		s := r.Summary()
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%.1f\t%.1f\n",
			s.Policy, s.Trips, s.Aborted, s.CurrentSquaredSum, s.MeanCurrentSquared, s.MaxPeakCurrent)
	}
	return tw.Flush()
}
