package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emberlab/ember/internal/app/leveling"
)

func init() {
	rootCmd.AddCommand(progressCmd)
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show level, XP, streak, and pending sync state",
	RunE:  runProgress,
}

const barWidth = 30 // Characters for the level progress bar

func runProgress(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.Engine.GetProgress(s.UserID)
	if err != nil {
		return err
	}
	lp := leveling.Progress(p.XP)

	fmt.Printf("%s — Level %d (%d XP)\n", p.DisplayName, p.Level, p.XP)
	fmt.Printf("  %s %3.0f%% | %d / %d XP to level %d\n",
		renderBar(lp.Percentage), lp.Percentage, lp.XPInLevel, lp.XPNeeded, p.Level+1)
	fmt.Printf("  Streak: %d day(s) (best %d)\n", p.CurrentStreak, p.LongestStreak)
	fmt.Printf("  This week: %d XP\n", p.WeekXP)
	if p.PendingActions > 0 {
		fmt.Printf("  Pending sync: %d action(s)\n", p.PendingActions)
	}
	return nil
}

// renderBar draws [=======>......] for a percentage in [0,100].
func renderBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	switch {
	case filled == barWidth:
		return "[" + strings.Repeat("=", barWidth) + "]"
	case filled > 0:
		return "[" + strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", barWidth-filled) + "]"
	default:
		return "[" + strings.Repeat(".", barWidth) + "]"
	}
}
