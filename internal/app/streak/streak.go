// Package streak implements consecutive-day activity tracking with
// break/freeze semantics. A streak continues when activity lands exactly one
// calendar day after the last, and breaks on a gap of two or more days —
// unless a protection freeze bridges the miss.
package streak

import (
	"time"

	"github.com/emberlab/ember/internal/domain"
	"github.com/emberlab/ember/internal/infra/sqlite"
)

// Service manages streak state and the freeze inventory.
type Service struct {
	db *sqlite.DB

	// FreezeCap bounds EarnFreeze accumulation. 0 means no cap — product
	// has not defined an upper bound, so unlimited is the default.
	FreezeCap int
}

// NewService creates a streak service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// RecordActivity applies one day of activity to the streak state machine.
// Same calendar day: no change. Exactly one day later: streak extends.
// Gap of 2+ days: streak resets to 1 — today counts as day one of a new run.
func (s *Service) RecordActivity(userID string, now time.Time) (domain.StreakUpdate, error) {
	p, err := s.db.GetProfile(userID)
	if err != nil {
		return domain.StreakUpdate{}, err
	}
	if p == nil {
		return domain.StreakUpdate{}, domain.ErrProfileNotFound
	}

	today := domain.DateOf(now)
	if p.LastActivityDate == today {
		// Already counted today
		return domain.StreakUpdate{CurrentStreak: p.CurrentStreak}, nil
	}

	newStreak := 1
	if p.LastActivityDate != "" && daysBetween(p.LastActivityDate, now) == 1 {
		newStreak = p.CurrentStreak + 1
	}

	longest := p.LongestStreak
	isNewRecord := false
	if newStreak > longest {
		longest = newStreak
		isNewRecord = true
	}

	if err := s.db.UpdateStreak(userID, newStreak, longest, today); err != nil {
		return domain.StreakUpdate{}, err
	}

	return domain.StreakUpdate{CurrentStreak: newStreak, IsNewRecord: isNewRecord}, nil
}

// Protection returns the freeze inventory, creating an empty row on first
// access.
func (s *Service) Protection(userID string) (domain.StreakProtection, error) {
	p, err := s.db.GetStreakProtection(userID)
	if err != nil {
		return domain.StreakProtection{}, err
	}
	if p == nil {
		if err := s.db.InitStreakProtection(userID); err != nil {
			return domain.StreakProtection{}, err
		}
		return domain.StreakProtection{UserID: userID}, nil
	}
	return *p, nil
}

// UseFreeze spends one freeze to mark today as active without touching the
// streak counters. Fails when no freeze is in stock or today is already
// covered — a day cannot be frozen twice.
func (s *Service) UseFreeze(userID string, now time.Time) (bool, error) {
	protection, err := s.Protection(userID)
	if err != nil {
		return false, err
	}
	if !protection.CanUseFreeze() {
		return false, nil
	}

	p, err := s.db.GetProfile(userID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, domain.ErrProfileNotFound
	}

	today := domain.DateOf(now)
	if p.LastActivityDate == today {
		return false, nil
	}

	spent, err := s.db.SpendFreeze(userID)
	if err != nil || !spent {
		return false, err
	}

	if err := s.db.UpdateLastActivityDate(userID, today); err != nil {
		return false, err
	}
	return true, nil
}

// EarnFreeze credits freezes. Accumulation is unbounded unless FreezeCap
// is set.
func (s *Service) EarnFreeze(userID string, amount int) (bool, error) {
	if amount <= 0 {
		return false, nil
	}
	protection, err := s.Protection(userID)
	if err != nil {
		return false, err
	}

	if s.FreezeCap > 0 && protection.FreezesAvailable+amount > s.FreezeCap {
		amount = s.FreezeCap - protection.FreezesAvailable
		if amount <= 0 {
			return false, nil
		}
	}

	if err := s.db.AddFreezes(userID, amount); err != nil {
		return false, err
	}
	return true, nil
}

// CheckStatus answers "is this streak at risk". A streak is lost once two
// full days pass with no activity and no freeze.
func (s *Service) CheckStatus(userID string, now time.Time) (domain.StreakStatus, error) {
	p, err := s.db.GetProfile(userID)
	if err != nil {
		return domain.StreakStatus{}, err
	}
	if p == nil {
		return domain.StreakStatus{}, nil
	}

	daysSince := 0
	if p.LastActivityDate == "" {
		daysSince = int(now.Sub(time.Unix(0, 0)).Hours() / 24)
	} else {
		daysSince = daysBetween(p.LastActivityDate, now)
	}

	daysUntilLoss := 2 - daysSince
	if daysUntilLoss < 0 {
		daysUntilLoss = 0
	}

	protection, err := s.Protection(userID)
	if err != nil {
		return domain.StreakStatus{}, err
	}

	return domain.StreakStatus{
		NeedsProtection: daysSince >= 1 && p.CurrentStreak > 0,
		DaysUntilLoss:   daysUntilLoss,
		CanAutoProtect:  protection.CanUseFreeze(),
	}, nil
}

// AutoProtect applies a freeze when the streak is at risk and a freeze is
// available.
func (s *Service) AutoProtect(userID string, now time.Time) (bool, error) {
	status, err := s.CheckStatus(userID, now)
	if err != nil {
		return false, err
	}
	if !status.NeedsProtection || !status.CanAutoProtect {
		return false, nil
	}
	return s.UseFreeze(userID, now)
}

// daysBetween returns whole calendar days from a stored date to now,
// comparing midnights in now's location.
func daysBetween(date string, now time.Time) int {
	last, err := time.ParseInLocation(domain.DateLayout, date, now.Location())
	if err != nil {
		return 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(today.Sub(last).Hours() / 24)
}
