package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lsr",
	Short: "Link state routing simulator",
	Long: `lsr runs a network of link state routers and hosts in-process.
Routers flood link state advertisements, build a shortest path forwarding table, and forward data packets between hosts.`,
}

// Execute runs the command line, exiting with status 1 on failure
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// logLevel is debug with --verbose, and def otherwise
func logLevel(def slog.Level) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return def
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "scenario",
		Title: "Scenario Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation Commands",
	})
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}
