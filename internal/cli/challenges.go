package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	challengesCmd.AddCommand(challengesClaimCmd)
	rootCmd.AddCommand(challengesCmd)
}

var challengesCmd = &cobra.Command{
	Use:   "challenges",
	Short: "Show today's challenges and their progress",
	RunE:  runChallenges,
}

var challengesClaimCmd = &cobra.Command{
	Use:   "claim <challenge-id>",
	Short: "Claim the XP reward for a completed challenge",
	Args:  cobra.ExactArgs(1),
	RunE:  runChallengesClaim,
}

func runChallenges(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.Engine.Challenges.GetDailyChallenges(s.UserID, time.Now())
	if err != nil {
		return err
	}

	for _, c := range list {
		state := fmt.Sprintf("%d/%d", c.Progress, c.RequirementValue)
		switch {
		case c.RewardClaimed:
			state = "claimed"
		case c.IsCompleted:
			state = "done — claim for +" + fmt.Sprint(c.XPReward) + " XP"
		}
		fmt.Printf("  %-24s %-40s [%s]\n", c.Title, c.Description, state)
		fmt.Printf("    id: %s\n", c.ID)
	}
	return nil
}

func runChallengesClaim(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Engine.ClaimChallengeReward(s.UserID, args[0])
	if err != nil {
		return err
	}
	if !res.Success {
		fmt.Println("Nothing to claim — challenge incomplete or already claimed.")
		return nil
	}
	fmt.Printf("+%d XP claimed!\n", res.XPAwarded)
	return nil
}
