// Command scryo statically analyzes Cypress test suites.
//
// scryo extracts the structural facts of a suite without executing it:
// which custom commands are defined via Cypress.Commands.add, where and
// how cy.* commands are invoked (including chained invocations), which
// tests and describe blocks exist, which hooks are registered, and —
// with --scenarios — which calls follow the scenario-factory
// convention.
//
// Usage:
//
//	scryo parse cypress/integration
//	scryo parse --json --pretty cypress/support/commands.js
//	scryo parse --scenarios --strict cypress/
package main

import (
	"fmt"
	"os"
	"strings"

	"log/slog"

	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "scryo",
	Short: "Static analyzer for Cypress test suites",
	Long: "scryo extracts custom command definitions and usages, tests, suites,\n" +
		"hooks, and scenario-factory calls from Cypress spec files without\n" +
		"executing them.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return setupLogging(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"log verbosity: debug, info, warn, error")
	rootCmd.AddCommand(newParseCommand())
}

// setupLogging installs the process-wide slog handler.
func setupLogging(level string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scryo: %v\n", err)
		os.Exit(1)
	}
}
