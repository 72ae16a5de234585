package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emberlab/ember/internal/infra/metrics"
)

func init() {
	streakCmd.AddCommand(streakFreezeCmd)
	rootCmd.AddCommand(streakCmd)
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show streak status and freeze inventory",
	RunE:  runStreak,
}

var streakFreezeCmd = &cobra.Command{
	Use:   "freeze",
	Short: "Spend a freeze to protect today's streak",
	RunE:  runStreakFreeze,
}

func runStreak(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	now := time.Now()
	p, err := s.Engine.GetProgress(s.UserID)
	if err != nil {
		return err
	}
	status, err := s.Engine.Streaks.CheckStatus(s.UserID, now)
	if err != nil {
		return err
	}
	protection, err := s.Engine.Streaks.Protection(s.UserID)
	if err != nil {
		return err
	}

	fmt.Printf("Streak: %d day(s) (best %d)\n", p.CurrentStreak, p.LongestStreak)
	fmt.Printf("Freezes: %d available, %d used\n", protection.FreezesAvailable, protection.FreezesUsed)
	if status.NeedsProtection {
		fmt.Printf("At risk! Streak lost in %d day(s) without activity.\n", status.DaysUntilLoss)
		if status.CanAutoProtect {
			fmt.Println("Run `ember streak freeze` to protect it.")
		}
	}
	return nil
}

func runStreakFreeze(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	used, err := s.Engine.Streaks.UseFreeze(s.UserID, time.Now())
	if err != nil {
		return err
	}
	if !used {
		fmt.Println("No freeze applied — none in stock, or today is already covered.")
		return nil
	}
	metrics.FreezesSpent.Inc()
	fmt.Println("Freeze applied. Today counts as active.")
	return nil
}
