// Command strokepipe trains and serves the stroke-prediction model from the
// command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/healthml/strokepipe/pkg/log"
)

var rootCmd = &cobra.Command{
	Use:   "strokepipe",
	Short: "Stroke-prediction training and inference pipeline",
	Long: "Strokepipe trains a random forest on tabular patient records and " +
		"serves ad-hoc stroke predictions.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		console, _ := cmd.Flags().GetBool("log-console")
		return log.Setup(os.Stderr, level, console)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-console", true, "human-readable log output instead of JSON")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
