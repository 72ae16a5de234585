package domain

import "time"

// League is one tier of the weekly competitive ladder.
// Tier 1 is the entry league; tier 1 never demotes further.
type League struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Tier               int    `json:"tier"`
	IconName           string `json:"icon_name"`
	MinMembers         int    `json:"min_members"`
	MaxMembers         int    `json:"max_members"`
	PromotionThreshold int    `json:"promotion_threshold"`
	DemotionThreshold  int    `json:"demotion_threshold"`
}

// LeagueMember is one row of a weekly standing, rank computed at read time.
type LeagueMember struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	WeekXP      int64  `json:"week_xp"`
	Rank        int    `json:"rank"` // 1-based position by WeekXP descending
	Promoted    bool   `json:"promoted"`
	Demoted     bool   `json:"demoted"`
}

// UserLeague is the consolidated league view for one user.
type UserLeague struct {
	League  League         `json:"league"`
	Rank    int            `json:"rank"` // 0 when outside the fetched top
	WeekXP  int64          `json:"week_xp"`
	Members []LeagueMember `json:"members"`
}

// WeekStartOf returns the most recent Monday at 00:00 in t's location,
// formatted as a calendar date. League weeks roll over Monday midnight.
func WeekStartOf(t time.Time) string {
	back := (int(t.Weekday()) + 6) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return DateOf(monday.AddDate(0, 0, -back))
}

// EligibleForPromotion reports whether a rank earns promotion out of l.
// Promotion still requires a tier above l to exist.
func (l League) EligibleForPromotion(rank int) bool {
	return rank > 0 && rank <= l.PromotionThreshold
}

// EligibleForDemotion reports whether a rank falls in the demotion zone.
func (l League) EligibleForDemotion(rank int) bool {
	return l.Tier > 1 && rank > l.MaxMembers-l.DemotionThreshold
}
