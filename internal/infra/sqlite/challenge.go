package sqlite

import (
	"database/sql"

	"github.com/emberlab/ember/internal/domain"
)

// ─── Daily Challenges ───────────────────────────────────────────────────────

// InsertChallenge creates a challenge definition. No-op on duplicate id.
func (d *DB) InsertChallenge(c domain.Challenge) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO daily_challenges
		   (id, title, description, challenge_type, requirement_value, xp_reward, icon_name, difficulty, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, string(c.ChallengeType), c.RequirementValue,
		c.XPReward, c.IconName, string(c.Difficulty), c.Active,
	)
	return err
}

// GetChallenge retrieves a challenge by id. Returns (nil, nil) when absent.
func (d *DB) GetChallenge(id string) (*domain.Challenge, error) {
	row := d.db.QueryRow(
		`SELECT id, title, description, challenge_type, requirement_value,
		        xp_reward, icon_name, difficulty, is_active
		 FROM daily_challenges WHERE id = ?`, id,
	)
	return scanChallenge(row)
}

// ListActiveChallenges returns up to limit active challenges.
func (d *DB) ListActiveChallenges(limit int) ([]domain.Challenge, error) {
	rows, err := d.db.Query(
		`SELECT id, title, description, challenge_type, requirement_value,
		        xp_reward, icon_name, difficulty, is_active
		 FROM daily_challenges WHERE is_active = 1 ORDER BY id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []domain.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

// ListActiveChallengesByType returns active challenges matching a type.
func (d *DB) ListActiveChallengesByType(kind domain.ActionKind) ([]domain.Challenge, error) {
	rows, err := d.db.Query(
		`SELECT id, title, description, challenge_type, requirement_value,
		        xp_reward, icon_name, difficulty, is_active
		 FROM daily_challenges WHERE is_active = 1 AND challenge_type = ?`, string(kind),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []domain.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

// ─── Challenge Completions ──────────────────────────────────────────────────

// GetCompletion retrieves one user's completion row for a challenge and day.
// Returns (nil, nil) when the challenge has not been touched that day.
func (d *DB) GetCompletion(userID, challengeID, day string) (*domain.ChallengeCompletion, error) {
	row := d.db.QueryRow(
		`SELECT user_id, challenge_id, completed_at, progress, is_completed, reward_claimed
		 FROM challenge_completions
		 WHERE user_id = ? AND challenge_id = ? AND completed_at = ?`,
		userID, challengeID, day,
	)
	var c domain.ChallengeCompletion
	err := row.Scan(&c.UserID, &c.ChallengeID, &c.CompletedAt,
		&c.Progress, &c.IsCompleted, &c.RewardClaimed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertCompletion creates or updates the day's progress row. A claimed
// reward flag is never cleared by an upsert.
func (d *DB) UpsertCompletion(c domain.ChallengeCompletion) error {
	_, err := d.db.Exec(
		`INSERT INTO challenge_completions
		   (user_id, challenge_id, completed_at, progress, is_completed, reward_claimed)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, challenge_id, completed_at) DO UPDATE SET
		   progress=excluded.progress,
		   is_completed=excluded.is_completed`,
		c.UserID, c.ChallengeID, c.CompletedAt, c.Progress, c.IsCompleted, c.RewardClaimed,
	)
	return err
}

// ClaimReward flips reward_claimed for a completed, unclaimed row.
// Returns false when the row is missing, incomplete, or already claimed —
// the flag flips at most once per user+challenge+day.
func (d *DB) ClaimReward(userID, challengeID, day string) (bool, error) {
	result, err := d.db.Exec(
		`UPDATE challenge_completions SET reward_claimed = 1
		 WHERE user_id = ? AND challenge_id = ? AND completed_at = ?
		   AND is_completed = 1 AND reward_claimed = 0`,
		userID, challengeID, day,
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

func scanChallenge(s scanner) (*domain.Challenge, error) {
	var c domain.Challenge
	var kind, difficulty string
	err := s.Scan(&c.ID, &c.Title, &c.Description, &kind, &c.RequirementValue,
		&c.XPReward, &c.IconName, &difficulty, &c.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.ChallengeType = domain.ActionKind(kind)
	c.Difficulty = domain.ChallengeDifficulty(difficulty)
	return &c, nil
}
