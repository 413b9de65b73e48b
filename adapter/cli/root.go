// Package cli implements the studyflow command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/studyflowhq/studyflow/pkg/observability"
)

var logger *slog.Logger

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "studyflow",
	Short: "StudyFlow - personal study planner",
	Long: `StudyFlow turns your tasks, habits and weekly free slots into a
versioned study plan with focus sessions and breaks.

Plans regenerate from scratch on every rebuild; past plan versions are
kept for history and metrics.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = observability.LoggerFromEnv()
		}
		slog.SetDefault(logger)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(seedCmd)
}
