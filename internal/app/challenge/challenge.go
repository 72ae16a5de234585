// Package challenge implements daily challenges: a rotating set of tasks
// with per-day progress rows and a claim-once XP reward. Progress rows are
// keyed by calendar date, so every challenge resets naturally at midnight.
package challenge

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emberlab/ember/internal/domain"
	"github.com/emberlab/ember/internal/infra/sqlite"
)

// Challenges surfaced to a user per day.
const dailyCount = 5

// Service manages daily challenge progress and reward claims.
type Service struct {
	db *sqlite.DB
}

// NewService creates a challenge service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// defaultCatalog is seeded on first run.
var defaultCatalog = []domain.Challenge{
	{Title: "Morning Check-in", Description: "Start your day with a check-in",
		ChallengeType: domain.ActionDailyCheckin, RequirementValue: 1, XPReward: 20,
		IconName: "Sunrise", Difficulty: domain.DifficultyEasy},
	{Title: "Exercise Session", Description: "Complete one exercise",
		ChallengeType: domain.ActionExerciseComplete, RequirementValue: 1, XPReward: 30,
		IconName: "Dumbbell", Difficulty: domain.DifficultyEasy},
	{Title: "Habit Hat-trick", Description: "Complete three habits today",
		ChallengeType: domain.ActionHabitCompleted, RequirementValue: 3, XPReward: 50,
		IconName: "Repeat", Difficulty: domain.DifficultyMedium},
	{Title: "Mood Journal", Description: "Log how you feel",
		ChallengeType: domain.ActionMoodLogged, RequirementValue: 1, XPReward: 20,
		IconName: "Smile", Difficulty: domain.DifficultyEasy},
	{Title: "Goal Getter", Description: "Finish a goal",
		ChallengeType: domain.ActionGoalCompleted, RequirementValue: 1, XPReward: 80,
		IconName: "Target", Difficulty: domain.DifficultyHard},
}

// SeedDefaultChallenges creates the standard catalog if it is empty.
func (s *Service) SeedDefaultChallenges() error {
	existing, err := s.db.ListActiveChallenges(1)
	if err != nil {
		return fmt.Errorf("list challenges: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, c := range defaultCatalog {
		c.ID = uuid.NewString()
		c.Active = true
		if err := s.db.InsertChallenge(c); err != nil {
			return fmt.Errorf("seed challenge %s: %w", c.Title, err)
		}
	}
	return nil
}

// GetDailyChallenges returns today's challenge set with the user's progress
// joined in. Untouched challenges show zero progress.
func (s *Service) GetDailyChallenges(userID string, now time.Time) ([]domain.ChallengeWithProgress, error) {
	challenges, err := s.db.ListActiveChallenges(dailyCount)
	if err != nil {
		return nil, err
	}

	today := domain.DateOf(now)
	out := make([]domain.ChallengeWithProgress, 0, len(challenges))
	for _, c := range challenges {
		cp := domain.ChallengeWithProgress{Challenge: c}
		completion, err := s.db.GetCompletion(userID, c.ID, today)
		if err != nil {
			return nil, err
		}
		if completion != nil {
			cp.Progress = completion.Progress
			cp.IsCompleted = completion.IsCompleted
			cp.RewardClaimed = completion.RewardClaimed
		}
		out = append(out, cp)
	}
	return out, nil
}

// UpdateProgress advances today's progress on one challenge by amount,
// clamped to the requirement. Progress never decreases.
func (s *Service) UpdateProgress(userID, challengeID string, amount int, now time.Time) (*domain.ChallengeCompletion, error) {
	if amount <= 0 {
		return nil, nil
	}
	c, err := s.db.GetChallenge(challengeID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrChallengeNotFound
	}

	today := domain.DateOf(now)
	completion, err := s.db.GetCompletion(userID, challengeID, today)
	if err != nil {
		return nil, err
	}
	if completion == nil {
		completion = &domain.ChallengeCompletion{
			UserID:      userID,
			ChallengeID: challengeID,
			CompletedAt: today,
		}
	}
	if completion.IsCompleted {
		// Done for today — extra progress is ignored
		return completion, nil
	}

	completion.Progress += amount
	if completion.Progress >= c.RequirementValue {
		completion.Progress = c.RequirementValue
		completion.IsCompleted = true
	}
	if err := s.db.UpsertCompletion(*completion); err != nil {
		return nil, err
	}
	return completion, nil
}

// RecordAction advances every active challenge whose type matches the
// action by amount steps. The engine calls this with amount 1 after each
// executed action; batched callers pass the step count directly.
func (s *Service) RecordAction(userID string, kind domain.ActionKind, amount int, now time.Time) error {
	challenges, err := s.db.ListActiveChallengesByType(kind)
	if err != nil {
		return err
	}
	for _, c := range challenges {
		if _, err := s.UpdateProgress(userID, c.ID, amount, now); err != nil {
			return fmt.Errorf("challenge %s: %w", c.ID, err)
		}
	}
	return nil
}

// ClaimReward claims the XP for a completed challenge. The claim flag flips
// at most once per user+challenge+day; a second claim returns Success false
// with no XP. The caller awards the returned XP through the engine.
func (s *Service) ClaimReward(userID, challengeID string, now time.Time) (domain.ClaimResult, error) {
	c, err := s.db.GetChallenge(challengeID)
	if err != nil {
		return domain.ClaimResult{}, err
	}
	if c == nil {
		return domain.ClaimResult{}, domain.ErrChallengeNotFound
	}

	claimed, err := s.db.ClaimReward(userID, challengeID, domain.DateOf(now))
	if err != nil {
		return domain.ClaimResult{}, err
	}
	if !claimed {
		return domain.ClaimResult{}, nil
	}
	return domain.ClaimResult{Success: true, XPAwarded: c.XPReward}, nil
}
