// Package leveling implements the XP→level curve.
// Quadratic curve: completing level L takes cumulative L²·100 XP, so
// level = floor(sqrt(xp/100)) + 1 and level 1 starts at 0 XP.
// Pure functions only — no state, no I/O, total over all int64 inputs
// (negative XP is treated as 0).
package leveling

import (
	"math"

	"github.com/emberlab/ember/internal/domain"
)

// Level returns the level for a given XP amount. Monotonic non-decreasing.
func Level(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(math.Sqrt(float64(xp)/100)) + 1
}

// ThresholdFor returns the cumulative XP required to complete the given
// level, i.e. the threshold at which level+1 begins.
func ThresholdFor(level int) int64 {
	if level < 0 {
		level = 0
	}
	return int64(level) * int64(level) * 100
}

// Progress returns position within the current level. Percentage is
// clamped to [0,100] even for malformed inputs.
func Progress(xp int64) domain.LevelProgress {
	if xp < 0 {
		xp = 0
	}
	level := Level(xp)
	floor := ThresholdFor(level - 1)
	ceiling := ThresholdFor(level)

	inLevel := xp - floor
	needed := ceiling - floor

	pct := 0.0
	if needed > 0 {
		pct = float64(inLevel) / float64(needed) * 100
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return domain.LevelProgress{
		XPInLevel:  inLevel,
		XPNeeded:   needed,
		Percentage: pct,
	}
}

// XPToNextLevel returns XP remaining until the next level.
func XPToNextLevel(xp int64) int64 {
	if xp < 0 {
		xp = 0
	}
	remaining := ThresholdFor(Level(xp)) - xp
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
