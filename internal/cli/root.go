// Package cli implements the Ember command-line interface using Cobra.
// Each subcommand maps to an engine capability (checkin, progress, lives,
// league, challenges, etc.). Commands operate directly on the local store;
// `ember serve` exposes the same engine over HTTP.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ember",
	Short: "Ember — habit-building progression engine",
	Long: `Ember turns daily actions into progression: XP and levels, streaks
with freeze protection, a lives pool, weekly leagues, daily challenges,
and badges. Everything is stored locally; actions performed offline are
queued and synced later.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var userFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User ID (defaults to the configured local profile)")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
