package sqlite

import (
	"database/sql"
	"time"

	"github.com/emberlab/ember/internal/domain"
)

// ─── Streak Protection ──────────────────────────────────────────────────────

// GetStreakProtection retrieves a user's freeze inventory.
// Returns (nil, nil) when no row exists yet.
func (d *DB) GetStreakProtection(userID string) (*domain.StreakProtection, error) {
	row := d.db.QueryRow(
		`SELECT user_id, freezes_available, freezes_used
		 FROM streak_protection WHERE user_id = ?`, userID,
	)
	var p domain.StreakProtection
	err := row.Scan(&p.UserID, &p.FreezesAvailable, &p.FreezesUsed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InitStreakProtection creates an empty freeze inventory. No-op if present.
func (d *DB) InitStreakProtection(userID string) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO streak_protection (user_id, freezes_available, freezes_used)
		 VALUES (?, 0, 0)`, userID,
	)
	return err
}

// SpendFreeze decrements freezes_available and increments freezes_used in a
// single statement — both change or neither does. Returns false when no
// freeze was available.
func (d *DB) SpendFreeze(userID string) (bool, error) {
	result, err := d.db.Exec(
		`UPDATE streak_protection
		 SET freezes_available = freezes_available - 1, freezes_used = freezes_used + 1
		 WHERE user_id = ? AND freezes_available > 0`, userID,
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// AddFreezes credits freezes to a user's inventory.
func (d *DB) AddFreezes(userID string, amount int) error {
	_, err := d.db.Exec(
		`UPDATE streak_protection SET freezes_available = freezes_available + ?
		 WHERE user_id = ?`, amount, userID,
	)
	return err
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// AwardBadge records a badge as earned. Returns false if already earned
// (idempotent).
func (d *DB) AwardBadge(userID, badgeID string, at time.Time) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO badges (user_id, badge_id, earned_at) VALUES (?, ?, ?)`,
		userID, badgeID, at.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly earned
}

// ListBadges returns all badges a user has earned, newest first.
func (d *DB) ListBadges(userID string) ([]domain.EarnedBadge, error) {
	rows, err := d.db.Query(
		`SELECT user_id, badge_id, earned_at FROM badges
		 WHERE user_id = ? ORDER BY earned_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.EarnedBadge
	for rows.Next() {
		var b domain.EarnedBadge
		var earnedAt int64
		if err := rows.Scan(&b.UserID, &b.BadgeID, &earnedAt); err != nil {
			return nil, err
		}
		b.EarnedAt = time.Unix(earnedAt, 0)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
