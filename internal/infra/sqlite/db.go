// Package sqlite provides SQLite-based persistent storage for Ember.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/emberlab/ember/internal/domain"
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/ember.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "ember.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// User progression. Level is derived from xp — the stored column is
		// a read optimization only and is recomputed on every award.
		`CREATE TABLE IF NOT EXISTS profiles (
			id                 TEXT PRIMARY KEY,
			display_name       TEXT NOT NULL DEFAULT '',
			xp                 INTEGER NOT NULL DEFAULT 0,
			level              INTEGER NOT NULL DEFAULT 1,
			current_streak     INTEGER NOT NULL DEFAULT 0,
			longest_streak     INTEGER NOT NULL DEFAULT 0,
			last_activity_date TEXT,
			week_xp            INTEGER NOT NULL DEFAULT 0,
			current_lives      INTEGER NOT NULL DEFAULT 5,
			max_lives          INTEGER NOT NULL DEFAULT 5,
			lives_regen_at     INTEGER NOT NULL DEFAULT 0,
			current_league_id  TEXT,
			created_at         INTEGER NOT NULL
		)`,

		// League tiers
		`CREATE TABLE IF NOT EXISTS leagues (
			id                  TEXT PRIMARY KEY,
			name                TEXT NOT NULL,
			tier                INTEGER NOT NULL UNIQUE,
			icon_name           TEXT NOT NULL DEFAULT 'Award',
			min_members         INTEGER NOT NULL DEFAULT 0,
			max_members         INTEGER NOT NULL DEFAULT 50,
			promotion_threshold INTEGER NOT NULL DEFAULT 10,
			demotion_threshold  INTEGER NOT NULL DEFAULT 5
		)`,

		// Weekly league standings. A new row per league+user+week; history is
		// never overwritten when the week rolls over.
		`CREATE TABLE IF NOT EXISTS league_members (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			league_id  TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			week_start TEXT NOT NULL,
			week_xp    INTEGER NOT NULL DEFAULT 0,
			promoted   BOOLEAN NOT NULL DEFAULT 0,
			demoted    BOOLEAN NOT NULL DEFAULT 0,
			UNIQUE(league_id, user_id, week_start)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_members_week ON league_members(league_id, week_start, week_xp)`,

		// Daily challenge catalog
		`CREATE TABLE IF NOT EXISTS daily_challenges (
			id                TEXT PRIMARY KEY,
			title             TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			challenge_type    TEXT NOT NULL,
			requirement_value INTEGER NOT NULL,
			xp_reward         INTEGER NOT NULL,
			icon_name         TEXT NOT NULL DEFAULT 'Target',
			difficulty        TEXT NOT NULL DEFAULT 'easy',
			is_active         BOOLEAN NOT NULL DEFAULT 1
		)`,

		// Per-user per-challenge per-day completion state
		`CREATE TABLE IF NOT EXISTS challenge_completions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id        TEXT NOT NULL,
			challenge_id   TEXT NOT NULL,
			completed_at   TEXT NOT NULL,
			progress       INTEGER NOT NULL DEFAULT 0,
			is_completed   BOOLEAN NOT NULL DEFAULT 0,
			reward_claimed BOOLEAN NOT NULL DEFAULT 0,
			UNIQUE(user_id, challenge_id, completed_at)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_completions_day ON challenge_completions(user_id, completed_at)`,

		// Streak freeze inventory
		`CREATE TABLE IF NOT EXISTS streak_protection (
			user_id           TEXT PRIMARY KEY,
			freezes_available INTEGER NOT NULL DEFAULT 0,
			freezes_used      INTEGER NOT NULL DEFAULT 0
		)`,

		// Earned badges
		`CREATE TABLE IF NOT EXISTS badges (
			user_id   TEXT NOT NULL,
			badge_id  TEXT NOT NULL,
			earned_at INTEGER NOT NULL,
			PRIMARY KEY(user_id, badge_id)
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Profiles ───────────────────────────────────────────────────────────────

// CreateProfile inserts a fresh profile with full lives and zero progress.
// No-op if the profile already exists.
func (d *DB) CreateProfile(userID, displayName string, now time.Time) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO profiles (id, display_name, lives_regen_at, created_at)
		 VALUES (?, ?, ?, ?)`,
		userID, displayName, now.Unix(), now.Unix(),
	)
	return err
}

// GetProfile retrieves a user's progression record. Returns (nil, nil) when
// the profile does not exist.
func (d *DB) GetProfile(userID string) (*domain.UserProgress, error) {
	row := d.db.QueryRow(
		`SELECT id, display_name, xp, level, current_streak, longest_streak,
		        last_activity_date, week_xp, current_lives, max_lives,
		        lives_regen_at, current_league_id
		 FROM profiles WHERE id = ?`, userID,
	)
	return scanProfile(row)
}

// UpdateXP stores a new XP total and its derived level.
func (d *DB) UpdateXP(userID string, xp int64, level int) error {
	_, err := d.db.Exec(
		`UPDATE profiles SET xp = ?, level = ? WHERE id = ?`,
		xp, level, userID,
	)
	return err
}

// UpdateStreak stores the streak counters and last activity date together.
func (d *DB) UpdateStreak(userID string, current, longest int, lastActivityDate string) error {
	_, err := d.db.Exec(
		`UPDATE profiles SET current_streak = ?, longest_streak = ?, last_activity_date = ?
		 WHERE id = ?`,
		current, longest, lastActivityDate, userID,
	)
	return err
}

// UpdateLastActivityDate advances the activity date without touching the
// streak counters. Only the freeze path uses this.
func (d *DB) UpdateLastActivityDate(userID, date string) error {
	_, err := d.db.Exec(
		`UPDATE profiles SET last_activity_date = ? WHERE id = ?`,
		date, userID,
	)
	return err
}

// UpdateLives stores the life count and advances the regeneration timestamp.
func (d *DB) UpdateLives(userID string, lives int, regenAt time.Time) error {
	_, err := d.db.Exec(
		`UPDATE profiles SET current_lives = ?, lives_regen_at = ? WHERE id = ?`,
		lives, regenAt.Unix(), userID,
	)
	return err
}

// UpdateLivesCount stores the life count without touching the regeneration
// timestamp; spends and extra-life grants go through here.
func (d *DB) UpdateLivesCount(userID string, lives int) error {
	_, err := d.db.Exec(
		`UPDATE profiles SET current_lives = ? WHERE id = ?`,
		lives, userID,
	)
	return err
}

// UpdateWeekXP stores the weekly XP accumulator.
func (d *DB) UpdateWeekXP(userID string, weekXP int64) error {
	_, err := d.db.Exec(
		`UPDATE profiles SET week_xp = ? WHERE id = ?`,
		weekXP, userID,
	)
	return err
}

// ResetAllWeekXP zeroes every profile's weekly XP. Run at week rollover.
func (d *DB) ResetAllWeekXP() (int64, error) {
	result, err := d.db.Exec(`UPDATE profiles SET week_xp = 0 WHERE week_xp <> 0`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// UpdateLeague reassigns a user's current league.
func (d *DB) UpdateLeague(userID, leagueID string) error {
	_, err := d.db.Exec(
		`UPDATE profiles SET current_league_id = ? WHERE id = ?`,
		leagueID, userID,
	)
	return err
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*domain.UserProgress, error) {
	var p domain.UserProgress
	var lastActivity, leagueID sql.NullString
	var regenAt int64

	err := s.Scan(&p.UserID, &p.DisplayName, &p.XP, &p.Level,
		&p.CurrentStreak, &p.LongestStreak, &lastActivity,
		&p.WeekXP, &p.CurrentLives, &p.MaxLives, &regenAt, &leagueID)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}

	p.LastActivityDate = lastActivity.String
	p.CurrentLeagueID = leagueID.String
	p.LivesRegenAt = time.Unix(regenAt, 0)
	return &p, nil
}
