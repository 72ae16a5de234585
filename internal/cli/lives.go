package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emberlab/ember/internal/domain"
)

func init() {
	livesCmd.AddCommand(livesUseCmd)
	livesCmd.AddCommand(livesRefillCmd)
	rootCmd.AddCommand(livesCmd)
}

var livesCmd = &cobra.Command{
	Use:   "lives",
	Short: "Show the lives pool",
	RunE:  runLives,
}

var livesUseCmd = &cobra.Command{
	Use:   "use",
	Short: "Spend one life (exercise attempt)",
	RunE:  runLivesUse,
}

var livesRefillCmd = &cobra.Command{
	Use:   "refill",
	Short: "Refill lives to the maximum",
	RunE:  runLivesRefill,
}

func runLives(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	l, err := s.Engine.Lives.Get(s.UserID, time.Now())
	if err != nil {
		return err
	}

	hearts := strings.Repeat("♥", l.CurrentLives) + strings.Repeat("♡", l.MaxLives-l.CurrentLives)
	fmt.Printf("%s  %d/%d\n", hearts, l.CurrentLives, l.MaxLives)
	if l.CurrentLives < l.MaxLives {
		fmt.Printf("Next life in %s\n", domain.FormatTimeUntilNextLife(l.TimeUntilNextLife))
	}
	return nil
}

func runLivesUse(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	now := time.Now()
	used, err := s.Engine.Lives.Use(s.UserID, now)
	if err != nil {
		return err
	}
	if !used {
		l, err := s.Engine.Lives.Get(s.UserID, now)
		if err != nil {
			return err
		}
		fmt.Printf("No lives left. Next life in %s\n", domain.FormatTimeUntilNextLife(l.TimeUntilNextLife))
		return nil
	}

	l, err := s.Engine.Lives.Get(s.UserID, now)
	if err != nil {
		return err
	}
	fmt.Printf("Life spent. %d/%d remaining\n", l.CurrentLives, l.MaxLives)
	return nil
}

func runLivesRefill(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Engine.Lives.Refill(s.UserID, time.Now()); err != nil {
		return err
	}
	fmt.Println("Lives refilled.")
	return nil
}
