package sqlite

import (
	"database/sql"

	"github.com/emberlab/ember/internal/domain"
)

// ─── Leagues ────────────────────────────────────────────────────────────────

// InsertLeague creates a league tier. No-op if the id already exists.
func (d *DB) InsertLeague(l domain.League) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO leagues
		   (id, name, tier, icon_name, min_members, max_members, promotion_threshold, demotion_threshold)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.Tier, l.IconName, l.MinMembers, l.MaxMembers,
		l.PromotionThreshold, l.DemotionThreshold,
	)
	return err
}

// GetLeague retrieves a league by id. Returns (nil, nil) when absent.
func (d *DB) GetLeague(id string) (*domain.League, error) {
	row := d.db.QueryRow(
		`SELECT id, name, tier, icon_name, min_members, max_members,
		        promotion_threshold, demotion_threshold
		 FROM leagues WHERE id = ?`, id,
	)
	return scanLeague(row)
}

// GetLeagueByTier retrieves the league at a tier. Returns (nil, nil) when
// no such tier exists (top of the ladder, or below tier 1).
func (d *DB) GetLeagueByTier(tier int) (*domain.League, error) {
	row := d.db.QueryRow(
		`SELECT id, name, tier, icon_name, min_members, max_members,
		        promotion_threshold, demotion_threshold
		 FROM leagues WHERE tier = ?`, tier,
	)
	return scanLeague(row)
}

// ListLeagues returns all leagues ordered by tier ascending.
func (d *DB) ListLeagues() ([]domain.League, error) {
	rows, err := d.db.Query(
		`SELECT id, name, tier, icon_name, min_members, max_members,
		        promotion_threshold, demotion_threshold
		 FROM leagues ORDER BY tier ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leagues []domain.League
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, err
		}
		leagues = append(leagues, *l)
	}
	return leagues, rows.Err()
}

// ─── League Members ─────────────────────────────────────────────────────────

// UpsertLeagueMember inserts or updates one user's standing for a week.
func (d *DB) UpsertLeagueMember(leagueID, userID, weekStart string, weekXP int64) error {
	_, err := d.db.Exec(
		`INSERT INTO league_members (league_id, user_id, week_start, week_xp)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(league_id, user_id, week_start) DO UPDATE SET week_xp=excluded.week_xp`,
		leagueID, userID, weekStart, weekXP,
	)
	return err
}

// ListLeagueMembers returns the top standings for a league week ordered by
// week XP descending, with display names joined in. Rank is filled by the
// caller from position.
func (d *DB) ListLeagueMembers(leagueID, weekStart string, limit int) ([]domain.LeagueMember, error) {
	rows, err := d.db.Query(
		`SELECT m.user_id, COALESCE(p.display_name, ''), m.week_xp, m.promoted, m.demoted
		 FROM league_members m
		 LEFT JOIN profiles p ON p.id = m.user_id
		 WHERE m.league_id = ? AND m.week_start = ?
		 ORDER BY m.week_xp DESC
		 LIMIT ?`,
		leagueID, weekStart, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.LeagueMember
	for rows.Next() {
		var m domain.LeagueMember
		if err := rows.Scan(&m.UserID, &m.DisplayName, &m.WeekXP, &m.Promoted, &m.Demoted); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// MarkMemberMovement flags a weekly standing row as promoted or demoted.
func (d *DB) MarkMemberMovement(leagueID, userID, weekStart string, promoted, demoted bool) error {
	_, err := d.db.Exec(
		`UPDATE league_members SET promoted = ?, demoted = ?
		 WHERE league_id = ? AND user_id = ? AND week_start = ?`,
		promoted, demoted, leagueID, userID, weekStart,
	)
	return err
}

func scanLeague(s scanner) (*domain.League, error) {
	var l domain.League
	err := s.Scan(&l.ID, &l.Name, &l.Tier, &l.IconName, &l.MinMembers,
		&l.MaxMembers, &l.PromotionThreshold, &l.DemotionThreshold)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
