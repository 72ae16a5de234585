package domain

import (
	"fmt"
	"time"
)

// DefaultMaxLives is the lives cap for new profiles.
const DefaultMaxLives = 5

// LifeRegenInterval is how long one life takes to regenerate.
// Regeneration is computed lazily on read — there is no background timer.
const LifeRegenInterval = 30 * time.Minute

// Lives is the current energy state for one user.
type Lives struct {
	CurrentLives      int           `json:"current_lives"`
	MaxLives          int           `json:"max_lives"`
	LastRegenerated   time.Time     `json:"last_regenerated"`
	TimeUntilNextLife time.Duration `json:"time_until_next_life"` // 0 at cap
}

// FormatTimeUntilNextLife renders a countdown as "M:SS" for display.
func FormatTimeUntilNextLife(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
