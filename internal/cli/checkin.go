package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkinCmd)
}

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Record today's check-in",
	Long:  `Record the daily check-in: advances the streak and awards check-in XP. At most once per calendar day.`,
	RunE:  runCheckin,
}

func runCheckin(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Engine.PerformDailyCheckin(s.UserID)
	if err != nil {
		return err
	}

	if !res.Success {
		fmt.Printf("Already checked in today. Streak: %d day(s)\n", res.Streak)
		return nil
	}

	fmt.Printf("Checked in! Streak: %d day(s)\n", res.Streak)
	if res.IsNewRecord {
		fmt.Println("New personal record!")
	}
	return nil
}
