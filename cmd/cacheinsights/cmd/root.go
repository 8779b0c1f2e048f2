// Package cmd provides the command-line interface for the cache-insights
// simulator.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "cacheinsights",
	Short: "Cache-insights simulates configurable cache hierarchies " +
		"against memory-access traces.",
	Long: `Cache-insights simulates one or two cache levels in front of a ` +
		`main-memory model, replays access traces through them, and reports ` +
		`hit rates, AMAT, and bandwidth figures. It can also generate ` +
		`calibrated traces, sweep configuration spaces, and compare named ` +
		`configurations.`,
}

// .env is loaded during package variable initialization, which runs before
// the init functions that read environment defaults into flag values. A
// missing .env file is fine; it only supplies defaults.
var _ = godotenv.Load()

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// envDefault returns the environment value for key, or fallback when unset.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
