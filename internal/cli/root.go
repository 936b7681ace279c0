// Package cli defines the dispatchd command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "dispatchd",
		Short: "Curtailment management and dispatch assistant for solar plants",
		Long: `dispatchd answers operator questions about solar curtailment by combining
a generation forecast, retrieval over ingested knowledge notes and a battery
dispatch optimization into one grounded recommendation.`,
		SilenceUsage: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "dispatchd.yaml", "path to the YAML config file")
}
