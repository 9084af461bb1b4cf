package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes reported to the shell.
const (
	ExitSuccess      = 0
	ExitFailures     = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "mend",
	Short: "Batch AI code analysis CLI",
	Long:  "Mend runs C# source files through an LLM provider and writes per-file improvement reports.",
}

var flagVerbose bool

// newLogger returns a stderr logger when --verbose is set, nil otherwise.
// The analysis packages treat a nil logger as silent.
func newLogger() *slog.Logger {
	if !flagVerbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable diagnostic logging to stderr")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print mend version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "mend version %s\n", version)
	},
}
