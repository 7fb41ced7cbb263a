package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/checkatron/checkatron/cmd/batch"
	"github.com/checkatron/checkatron/cmd/generate"
	"github.com/checkatron/checkatron/cmd/run"
	"github.com/checkatron/checkatron/internal/logger"
	"github.com/checkatron/checkatron/internal/version"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "checkatron",
	Short: "SQL diff-script generator for table comparisons",
	Long: fmt.Sprintf(`checkatron generates a brute-force SQL diff script for two tables from
their column catalogs and a business-key column set. The script runs
inside the database engine, so no data ever leaves it.

Version: %s@%s %s %s

Commands:
  generate  Generate a diff script for one table pair
  batch     Generate diff scripts for a job list and stack them
  run       Run a validation plan with a step ledger

Use "checkatron [command] --help" for more information about a command.`,
		version.App(), version.GetGitCommit(), version.Platform(), version.GetBuildDate()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(generate.GenerateCmd)
	RootCmd.AddCommand(batch.BatchCmd)
	RootCmd.AddCommand(run.RunCmd)
	RootCmd.AddCommand(VersionCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger.SetGlobal(slog.New(handler), Debug)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
