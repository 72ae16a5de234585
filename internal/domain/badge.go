package domain

import "time"

// BadgeRarity groups badges by how hard they are to earn.
type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

// BadgeDef defines a single badge and the progress condition that earns it.
type BadgeDef struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Rarity    BadgeRarity             `json:"rarity"`
	Icon      string                  `json:"icon"`
	Predicate func(UserProgress) bool `json:"-"`
}

// EarnedBadge records when a user earned a badge.
type EarnedBadge struct {
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}
