package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued offline actions now",
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	before := s.Engine.PendingCount()
	if before == 0 {
		fmt.Println("Nothing to sync.")
		return nil
	}

	if err := s.Engine.SyncPendingActions(); err != nil {
		return err
	}
	after := s.Engine.PendingCount()
	fmt.Printf("Synced %d action(s), %d still pending.\n", before-after, after)
	return nil
}
