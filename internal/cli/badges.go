package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberlab/ember/internal/app/badge"
)

func init() {
	rootCmd.AddCommand(badgesCmd)
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Show earned badges",
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	earned, err := s.Engine.Badges.List(s.UserID)
	if err != nil {
		return err
	}
	if len(earned) == 0 {
		fmt.Println("No badges yet — keep going.")
		return nil
	}

	for _, b := range earned {
		name, rarity := b.BadgeID, ""
		if def, ok := badge.Lookup(b.BadgeID); ok {
			name = def.Name
			rarity = string(def.Rarity)
		}
		fmt.Printf("  %-20s %-10s earned %s\n", name, rarity, b.EarnedAt.Format("2006-01-02"))
	}
	return nil
}
