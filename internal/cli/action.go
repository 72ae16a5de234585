package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/emberlab/ember/internal/domain"
)

func init() {
	rootCmd.AddCommand(actionCmd)
}

var actionCmd = &cobra.Command{
	Use:   "action <kind>",
	Short: "Perform a gamification action",
	Long:  `Perform one XP-earning action (e.g. habit_completed, exercise_complete). Run without arguments to list valid kinds.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAction,
}

func runAction(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		kinds := domain.AllActionKinds()
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		fmt.Println("Available actions:")
		for _, k := range kinds {
			xp, _ := domain.XPForAction(k)
			fmt.Printf("  %-20s %d XP\n", k, xp)
		}
		return nil
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Engine.PerformAction(domain.ActionKind(args[0]), s.UserID, nil)
	if err != nil {
		return err
	}

	switch {
	case res.Deferred:
		fmt.Println("Offline — action queued for sync.")
	case res.Success:
		xp, _ := domain.XPForAction(domain.ActionKind(args[0]))
		fmt.Printf("+%d XP\n", xp)
	default:
		fmt.Println("Duplicate action ignored (performed moments ago).")
	}
	return nil
}
