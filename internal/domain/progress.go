// Package domain holds the core gamification types shared by every service.
// The engine drives habit-building through XP, streaks, lives, leagues,
// daily challenges, and badges.
package domain

import "time"

// DateLayout is the calendar-date format used everywhere a day matters
// (streaks, checkins, challenge completions, league weeks).
const DateLayout = "2006-01-02"

// DateOf formats a time as a calendar date in its own location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ─── Action Kinds ───────────────────────────────────────────────────────────

// ActionKind is a closed enumeration of XP-earning user actions.
// Unknown kinds are rejected at the award boundary — there is no
// fall-through default.
type ActionKind string

const (
	ActionDailyCheckin     ActionKind = "daily_checkin"
	ActionExerciseComplete ActionKind = "exercise_complete"
	ActionHabitCreated     ActionKind = "habit_created"
	ActionHabitCompleted   ActionKind = "habit_completed"
	ActionGoalCompleted    ActionKind = "goal_completed"
	ActionMoodLogged       ActionKind = "mood_logged"
	ActionPillarComplete   ActionKind = "pillar_complete"
	ActionPathComplete     ActionKind = "path_complete"
)

// xpTable maps each action kind to its XP award.
var xpTable = map[ActionKind]int64{
	ActionDailyCheckin:     10,
	ActionExerciseComplete: 50,
	ActionHabitCreated:     15,
	ActionHabitCompleted:   20,
	ActionGoalCompleted:    100,
	ActionMoodLogged:       10,
	ActionPillarComplete:   150,
	ActionPathComplete:     300,
}

// XPForAction returns the XP award for a kind, or false for unknown kinds.
func XPForAction(kind ActionKind) (int64, bool) {
	xp, ok := xpTable[kind]
	return xp, ok
}

// AllActionKinds returns every valid action kind (for display and validation).
func AllActionKinds() []ActionKind {
	kinds := make([]ActionKind, 0, len(xpTable))
	for k := range xpTable {
		kinds = append(kinds, k)
	}
	return kinds
}

// ─── User Progress ──────────────────────────────────────────────────────────

// UserProgress is the consolidated progression record for one user.
// Level is always derived from XP — it is persisted only as a read
// optimization and recomputed on every award.
type UserProgress struct {
	UserID           string    `json:"user_id"`
	DisplayName      string    `json:"display_name"`
	XP               int64     `json:"xp"`
	Level            int       `json:"level"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	LastActivityDate string    `json:"last_activity_date"` // "" = never active
	WeekXP           int64     `json:"week_xp"`
	CurrentLives     int       `json:"current_lives"`
	MaxLives         int       `json:"max_lives"`
	LivesRegenAt     time.Time `json:"lives_regenerated_at"`
	CurrentLeagueID  string    `json:"current_league_id"` // "" = unassigned

	// PendingActions counts queued offline actions not yet synced.
	// Only meaningful on cached copies; the store never holds it.
	PendingActions int `json:"pending_actions,omitempty"`
}

// LevelProgress describes position within the current level.
type LevelProgress struct {
	XPInLevel  int64   `json:"xp_in_level"`
	XPNeeded   int64   `json:"xp_needed"`
	Percentage float64 `json:"percentage"` // always within [0,100]
}

// ─── Offline Queue & Dedup Log ──────────────────────────────────────────────

// PendingAction is a queued, not-yet-synced gamification action.
// Owned exclusively by the sync queue: created when an action is performed
// offline, removed once successfully replayed.
type PendingAction struct {
	ID        string            `json:"id"`
	Kind      ActionKind        `json:"kind"`
	UserID    string            `json:"user_id"`
	Timestamp int64             `json:"timestamp"` // Unix millis, replay order
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ActionLogEntry is a debounce record. Used only for existence and
// time-window queries, never for replay.
type ActionLogEntry struct {
	Action    string            `json:"action"`
	UserID    string            `json:"user_id"`
	Timestamp int64             `json:"timestamp"` // Unix millis
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ActionResult is the outcome of PerformAction.
type ActionResult struct {
	Success  bool `json:"success"`
	Deferred bool `json:"deferred"` // true when queued for later sync
}

// CheckinResult is the outcome of PerformDailyCheckin.
type CheckinResult struct {
	Success     bool `json:"success"`
	Streak      int  `json:"streak"`
	IsNewRecord bool `json:"is_new_record"`
}
