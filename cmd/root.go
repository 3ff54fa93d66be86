package cmd

import (
	"github.com/spf13/cobra"

	// register the prometheus and influx sinks
	_ "github.com/kilianp07/powersplit/infra/metrics"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "powersplit",
	Short:        "Battery and capacitor power-split simulator",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
