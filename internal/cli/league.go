package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(leagueCmd)
}

var leagueCmd = &cobra.Command{
	Use:   "league",
	Short: "Show this week's league standings",
	RunE:  runLeague,
}

func runLeague(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	view, err := s.Engine.Leagues.GetUserLeague(s.UserID, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("%s League (tier %d) — top %d promote, ", view.League.Name, view.League.Tier, view.League.PromotionThreshold)
	if view.League.Tier > 1 {
		fmt.Printf("bottom %d demote\n", view.League.DemotionThreshold)
	} else {
		fmt.Println("no demotion")
	}

	for _, m := range view.Members {
		marker := "  "
		if m.UserID == s.UserID {
			marker = "→ "
		}
		fmt.Printf("%s%3d. %-20s %6d XP\n", marker, m.Rank, m.DisplayName, m.WeekXP)
	}
	return nil
}
