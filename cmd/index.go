package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powersplit/app"
	"github.com/kilianp07/powersplit/config"
	"github.com/kilianp07/powersplit/infra/tripio"
)

var indexK int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the history index and report its shape",
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().IntVarP(&indexK, "k", "k", 7, "neighbours per sample query")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.History.Path == "" {
		return errors.New("history.path is required")
	}
	// the index command never needs the configured policies
	cfg.Policies = nil
	svc, err := app.New(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer svc.Close()

	tree := svc.Tree()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "samples: %d\ndepth:   %d\n", tree.Len(), tree.Depth())

	trips, err := tripio.ReadFile(cfg.History.Path, cfg.Vehicle)
	if err != nil || len(trips) == 0 || trips[0].Len() == 0 {
		return err
	}
	query := trips[0].Samples[0]
	start := time.Now()
	neighbors := tree.KNearest(query, indexK)
	fmt.Fprintf(out, "query:   %d neighbours in %s\n", len(neighbors), time.Since(start))
	return nil
}
