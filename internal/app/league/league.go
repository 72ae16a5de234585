// Package league implements the weekly competitive ladder. Users accumulate
// week XP inside a league tier; at week rollover the top ranks promote one
// tier up and the bottom ranks demote one tier down. Weeks start Monday
// midnight local time, and each week's standings are kept as their own rows.
package league

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emberlab/ember/internal/domain"
	"github.com/emberlab/ember/internal/infra/sqlite"
)

// Standings fetched per league view. Matches the ladder's max league size.
const standingsLimit = 50

// Service manages league assignment, weekly standings, and tier movement.
type Service struct {
	db *sqlite.DB
}

// NewService creates a league service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// defaultLadder is the seven-tier ladder seeded on first run.
var defaultLadder = []domain.League{
	{Name: "Bronze", Tier: 1, IconName: "Medal"},
	{Name: "Silver", Tier: 2, IconName: "Medal"},
	{Name: "Gold", Tier: 3, IconName: "Trophy"},
	{Name: "Sapphire", Tier: 4, IconName: "Gem"},
	{Name: "Ruby", Tier: 5, IconName: "Gem"},
	{Name: "Diamond", Tier: 6, IconName: "Diamond"},
	{Name: "Legendary", Tier: 7, IconName: "Crown"},
}

// SeedDefaultLeagues creates the standard ladder if no leagues exist yet.
func (s *Service) SeedDefaultLeagues() error {
	existing, err := s.db.ListLeagues()
	if err != nil {
		return fmt.Errorf("list leagues: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, l := range defaultLadder {
		l.ID = uuid.NewString()
		l.MaxMembers = 50
		l.PromotionThreshold = 10
		l.DemotionThreshold = 5
		if err := s.db.InsertLeague(l); err != nil {
			return fmt.Errorf("seed league %s: %w", l.Name, err)
		}
	}
	return nil
}

// GetUserLeague returns the user's league with current-week standings.
// Unassigned users join the entry tier on first access.
func (s *Service) GetUserLeague(userID string, now time.Time) (domain.UserLeague, error) {
	p, err := s.db.GetProfile(userID)
	if err != nil {
		return domain.UserLeague{}, err
	}
	if p == nil {
		return domain.UserLeague{}, domain.ErrProfileNotFound
	}

	var league *domain.League
	if p.CurrentLeagueID != "" {
		league, err = s.db.GetLeague(p.CurrentLeagueID)
		if err != nil {
			return domain.UserLeague{}, err
		}
	}
	if league == nil {
		league, err = s.assignEntryLeague(userID)
		if err != nil {
			return domain.UserLeague{}, err
		}
	}

	weekStart := domain.WeekStartOf(now)
	if err := s.db.UpsertLeagueMember(league.ID, userID, weekStart, p.WeekXP); err != nil {
		return domain.UserLeague{}, err
	}

	members, err := s.db.ListLeagueMembers(league.ID, weekStart, standingsLimit)
	if err != nil {
		return domain.UserLeague{}, err
	}

	view := domain.UserLeague{League: *league, WeekXP: p.WeekXP, Members: members}
	for i := range view.Members {
		view.Members[i].Rank = i + 1
		if view.Members[i].UserID == userID {
			view.Rank = i + 1
		}
	}
	return view, nil
}

// assignEntryLeague puts the user into tier 1, seeding the ladder if needed.
func (s *Service) assignEntryLeague(userID string) (*domain.League, error) {
	league, err := s.db.GetLeagueByTier(1)
	if err != nil {
		return nil, err
	}
	if league == nil {
		if err := s.SeedDefaultLeagues(); err != nil {
			return nil, err
		}
		league, err = s.db.GetLeagueByTier(1)
		if err != nil {
			return nil, err
		}
		if league == nil {
			return nil, domain.ErrNoLeagues
		}
	}
	if err := s.db.UpdateLeague(userID, league.ID); err != nil {
		return nil, err
	}
	return league, nil
}

// AddWeekXP credits XP to the user's weekly total and mirrors it into the
// current week's standings.
func (s *Service) AddWeekXP(userID string, amount int64, now time.Time) error {
	if amount <= 0 {
		return nil
	}
	p, err := s.db.GetProfile(userID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrProfileNotFound
	}

	weekXP := p.WeekXP + amount
	if err := s.db.UpdateWeekXP(userID, weekXP); err != nil {
		return err
	}

	if p.CurrentLeagueID == "" {
		// Not in a league yet — standings row appears on first league view
		return nil
	}
	return s.db.UpsertLeagueMember(p.CurrentLeagueID, userID, domain.WeekStartOf(now), weekXP)
}

// Promote moves a user one tier up. No-op at the top of the ladder.
func (s *Service) Promote(userID string, now time.Time) (bool, error) {
	return s.move(userID, now, +1)
}

// Demote moves a user one tier down. No-op at the entry tier.
func (s *Service) Demote(userID string, now time.Time) (bool, error) {
	return s.move(userID, now, -1)
}

func (s *Service) move(userID string, now time.Time, delta int) (bool, error) {
	p, err := s.db.GetProfile(userID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, domain.ErrProfileNotFound
	}
	if p.CurrentLeagueID == "" {
		return false, nil
	}

	current, err := s.db.GetLeague(p.CurrentLeagueID)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, domain.ErrLeagueNotFound
	}

	target, err := s.db.GetLeagueByTier(current.Tier + delta)
	if err != nil {
		return false, err
	}
	if target == nil {
		// Ladder edge
		return false, nil
	}

	if err := s.db.UpdateLeague(userID, target.ID); err != nil {
		return false, err
	}

	weekStart := domain.WeekStartOf(now)
	promoted := delta > 0
	if err := s.db.MarkMemberMovement(current.ID, userID, weekStart, promoted, !promoted); err != nil {
		return false, err
	}
	return true, nil
}

// WeeklyMovements is the outcome of one week's rollover.
type WeeklyMovements struct {
	Promoted int
	Demoted  int
}

// ApplyWeeklyMovements resolves the just-finished week: ranks every league's
// standings and moves promotion-zone users one tier up and demotion-zone
// users one tier down. Call once at Monday rollover with a time inside the
// finished week.
func (s *Service) ApplyWeeklyMovements(endedWeek time.Time) (WeeklyMovements, error) {
	leagues, err := s.db.ListLeagues()
	if err != nil {
		return WeeklyMovements{}, err
	}

	var moves WeeklyMovements
	weekStart := domain.WeekStartOf(endedWeek)

	for _, l := range leagues {
		members, err := s.db.ListLeagueMembers(l.ID, weekStart, l.MaxMembers)
		if err != nil {
			return moves, fmt.Errorf("standings for %s: %w", l.Name, err)
		}
		for i, m := range members {
			rank := i + 1
			switch {
			case l.EligibleForPromotion(rank):
				moved, err := s.moveFromStanding(l, m.UserID, weekStart, +1)
				if err != nil {
					return moves, err
				}
				if moved {
					moves.Promoted++
				}
			case l.EligibleForDemotion(rank):
				moved, err := s.moveFromStanding(l, m.UserID, weekStart, -1)
				if err != nil {
					return moves, err
				}
				if moved {
					moves.Demoted++
				}
			}
		}
	}
	return moves, nil
}

// moveFromStanding reassigns a user relative to the league their standing
// row belongs to, not their possibly-already-moved profile assignment.
func (s *Service) moveFromStanding(from domain.League, userID, weekStart string, delta int) (bool, error) {
	target, err := s.db.GetLeagueByTier(from.Tier + delta)
	if err != nil {
		return false, err
	}
	if target == nil {
		return false, nil
	}
	if err := s.db.UpdateLeague(userID, target.ID); err != nil {
		return false, err
	}
	promoted := delta > 0
	if err := s.db.MarkMemberMovement(from.ID, userID, weekStart, promoted, !promoted); err != nil {
		return false, err
	}
	return true, nil
}
