package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/hobnob/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "hobnob",
	Short: "Hobnob runs declarative LLM workflows",
	Long: `Hobnob compiles a JSON or YAML flow definition (steps, guarded
transitions, initial step) into an executable graph and drives a state map
through it until a terminal step is reached.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	levelName, _ := cmd.Flags().GetString("log-level")
	jsonMode, _ := cmd.Flags().GetBool("log-json")

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = slog.LevelWarn
	}
	return logging.New(level, jsonMode)
}
