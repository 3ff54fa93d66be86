package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powersplit/app"
	"github.com/kilianp07/powersplit/config"
	"github.com/kilianp07/powersplit/core/policy"
)

var (
	sweepKs      []int
	sweepHorizon int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare battery stress of the neighbour policy across k",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().IntSliceVar(&sweepKs, "k", []int{1, 3, 5, 7, 9, 11, 13, 15}, "neighbour counts")
	sweepCmd.Flags().IntVar(&sweepHorizon, "horizon", 30, "prediction horizon in samples")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.History.Path == "" {
		return errors.New("history.path is required")
	}
	cfg.Policies = nil
	svc, err := app.New(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer svc.Close()

	trips, err := svc.Trips()
	if err != nil {
		return err
	}
	points, err := svc.Simulator().SweepK(ctx, svc.Tree(), svc.Series(), sweepKs, policy.KnnConfig{Horizon: sweepHorizon}, trips)
	if err != nil {
		return err
	}
	for _, p := range points {
		fmt.Fprintf(cmd.OutOrStdout(), "k=%-3d %.1f A²s (%d aborted)\n", p.K, p.CurrentSquaredSum, p.Aborted)
	}
	return nil
}
