// Package badge awards milestone badges from progression state. The catalog
// is declarative: each badge is a predicate over UserProgress, checked after
// every change that could newly satisfy one. Awards are idempotent.
package badge

import (
	"time"

	"github.com/emberlab/ember/internal/domain"
	"github.com/emberlab/ember/internal/infra/sqlite"
)

// Catalog is the full badge set, checked in order.
var Catalog = []domain.BadgeDef{
	{ID: "first_steps", Name: "First Steps", Rarity: domain.RarityCommon, Icon: "Footprints",
		Predicate: func(p domain.UserProgress) bool { return p.XP > 0 }},
	{ID: "streak_7", Name: "One Week Strong", Rarity: domain.RarityCommon, Icon: "Flame",
		Predicate: func(p domain.UserProgress) bool { return p.LongestStreak >= 7 }},
	{ID: "streak_30", Name: "Monthly Devotion", Rarity: domain.RarityRare, Icon: "Flame",
		Predicate: func(p domain.UserProgress) bool { return p.LongestStreak >= 30 }},
	{ID: "streak_100", Name: "Centurion", Rarity: domain.RarityEpic, Icon: "Flame",
		Predicate: func(p domain.UserProgress) bool { return p.LongestStreak >= 100 }},
	{ID: "level_5", Name: "Rising Star", Rarity: domain.RarityCommon, Icon: "Star",
		Predicate: func(p domain.UserProgress) bool { return p.Level >= 5 }},
	{ID: "level_10", Name: "Dedicated", Rarity: domain.RarityRare, Icon: "Star",
		Predicate: func(p domain.UserProgress) bool { return p.Level >= 10 }},
	{ID: "level_25", Name: "Unstoppable", Rarity: domain.RarityEpic, Icon: "Star",
		Predicate: func(p domain.UserProgress) bool { return p.Level >= 25 }},
	{ID: "xp_1000", Name: "Thousand Club", Rarity: domain.RarityCommon, Icon: "Zap",
		Predicate: func(p domain.UserProgress) bool { return p.XP >= 1000 }},
	{ID: "xp_10000", Name: "XP Hoarder", Rarity: domain.RarityRare, Icon: "Zap",
		Predicate: func(p domain.UserProgress) bool { return p.XP >= 10000 }},
	{ID: "xp_100000", Name: "Living Legend", Rarity: domain.RarityLegendary, Icon: "Crown",
		Predicate: func(p domain.UserProgress) bool { return p.XP >= 100000 }},
}

// Service checks and awards badges.
type Service struct {
	db *sqlite.DB
}

// NewService creates a badge service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// CheckAndAward evaluates the catalog against current progress and awards
// anything newly earned. Returns only the badges that were new this call.
func (s *Service) CheckAndAward(progress domain.UserProgress, now time.Time) ([]domain.BadgeDef, error) {
	var earned []domain.BadgeDef
	for _, def := range Catalog {
		if !def.Predicate(progress) {
			continue
		}
		isNew, err := s.db.AwardBadge(progress.UserID, def.ID, now)
		if err != nil {
			return earned, err
		}
		if isNew {
			earned = append(earned, def)
		}
	}
	return earned, nil
}

// List returns a user's earned badges, newest first.
func (s *Service) List(userID string) ([]domain.EarnedBadge, error) {
	return s.db.ListBadges(userID)
}

// Lookup resolves a badge id to its definition.
func Lookup(id string) (domain.BadgeDef, bool) {
	for _, def := range Catalog {
		if def.ID == id {
			return def, true
		}
	}
	return domain.BadgeDef{}, false
}
