// Package lives implements the energy system: a small pool of lives spent on
// exercise attempts and regenerated lazily at a fixed interval. There is no
// background timer — elapsed time is settled whenever the pool is read.
package lives

import (
	"time"

	"github.com/emberlab/ember/internal/domain"
	"github.com/emberlab/ember/internal/infra/sqlite"
)

// Service manages a user's life pool.
type Service struct {
	db *sqlite.DB
}

// NewService creates a lives service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Get settles regeneration up to now and returns the current pool.
// Each full interval since the regen timestamp restores one life, up to max.
// When at least one life is gained the timestamp moves to now; the countdown
// to the next life runs from there.
func (s *Service) Get(userID string, now time.Time) (domain.Lives, error) {
	p, err := s.db.GetProfile(userID)
	if err != nil {
		return domain.Lives{}, err
	}
	if p == nil {
		return domain.Lives{}, domain.ErrProfileNotFound
	}

	lives := p.CurrentLives
	regenAt := p.LivesRegenAt

	if lives < p.MaxLives {
		gained := int(now.Sub(regenAt) / domain.LifeRegenInterval)
		if gained > 0 {
			lives += gained
			if lives > p.MaxLives {
				lives = p.MaxLives
			}
			regenAt = now
			if err := s.db.UpdateLives(userID, lives, regenAt); err != nil {
				return domain.Lives{}, err
			}
		}
	}

	l := domain.Lives{
		CurrentLives:    lives,
		MaxLives:        p.MaxLives,
		LastRegenerated: regenAt,
	}
	if lives < p.MaxLives {
		l.TimeUntilNextLife = domain.LifeRegenInterval - now.Sub(regenAt)%domain.LifeRegenInterval
	}
	return l, nil
}

// Use spends one life. Returns false when the pool is empty.
// Only the count changes; the regen timestamp belongs to regeneration alone.
func (s *Service) Use(userID string, now time.Time) (bool, error) {
	current, err := s.Get(userID, now)
	if err != nil {
		return false, err
	}
	if current.CurrentLives <= 0 {
		return false, nil
	}

	if err := s.db.UpdateLivesCount(userID, current.CurrentLives-1); err != nil {
		return false, err
	}
	return true, nil
}

// Refill restores the pool to max immediately.
func (s *Service) Refill(userID string, now time.Time) error {
	p, err := s.db.GetProfile(userID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrProfileNotFound
	}
	return s.db.UpdateLives(userID, p.MaxLives, now)
}

// EarnExtra grants lives beyond regeneration (rewards, purchases), clamped
// to max.
func (s *Service) EarnExtra(userID string, amount int, now time.Time) (domain.Lives, error) {
	current, err := s.Get(userID, now)
	if err != nil {
		return domain.Lives{}, err
	}
	if amount <= 0 {
		return current, nil
	}

	lives := current.CurrentLives + amount
	if lives > current.MaxLives {
		lives = current.MaxLives
	}
	if err := s.db.UpdateLivesCount(userID, lives); err != nil {
		return domain.Lives{}, err
	}
	current.CurrentLives = lives
	if lives >= current.MaxLives {
		current.TimeUntilNextLife = 0
	}
	return current, nil
}
