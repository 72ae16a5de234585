package sqlite

import (
	"testing"
	"time"

	"github.com/emberlab/ember/internal/domain"
)

var now = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Profiles ───────────────────────────────────────────────────────────────

func TestGetProfileMissing(t *testing.T) {
	db := testDB(t)

	p, err := db.GetProfile("ghost")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p != nil {
		t.Errorf("profile = %+v, want nil", p)
	}
}

func TestCreateProfileDefaults(t *testing.T) {
	db := testDB(t)

	if err := db.CreateProfile("u1", "Alice", now); err != nil {
		t.Fatalf("create: %v", err)
	}
	p, err := db.GetProfile("u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.DisplayName != "Alice" {
		t.Errorf("name = %q, want Alice", p.DisplayName)
	}
	if p.XP != 0 || p.Level != 1 {
		t.Errorf("xp/level = %d/%d, want 0/1", p.XP, p.Level)
	}
	if p.CurrentLives != 5 || p.MaxLives != 5 {
		t.Errorf("lives = %d/%d, want 5/5", p.CurrentLives, p.MaxLives)
	}
	if p.LastActivityDate != "" {
		t.Errorf("last activity = %q, want empty", p.LastActivityDate)
	}
	if !p.LivesRegenAt.Equal(now) {
		t.Errorf("regen at = %v, want %v", p.LivesRegenAt, now)
	}
}

func TestCreateProfileIsIdempotent(t *testing.T) {
	db := testDB(t)

	db.CreateProfile("u1", "Alice", now)
	db.UpdateXP("u1", 500, 3)

	// Re-create must not wipe progress
	if err := db.CreateProfile("u1", "Alice Again", now.Add(time.Hour)); err != nil {
		t.Fatalf("re-create: %v", err)
	}
	p, _ := db.GetProfile("u1")
	if p.XP != 500 || p.DisplayName != "Alice" {
		t.Errorf("profile = %+v, want original kept", p)
	}
}

func TestStreakRoundTrip(t *testing.T) {
	db := testDB(t)
	db.CreateProfile("u1", "Alice", now)

	if err := db.UpdateStreak("u1", 4, 9, "2026-03-04"); err != nil {
		t.Fatalf("update: %v", err)
	}
	p, _ := db.GetProfile("u1")
	if p.CurrentStreak != 4 || p.LongestStreak != 9 || p.LastActivityDate != "2026-03-04" {
		t.Errorf("streak = %+v", p)
	}

	// Freeze path: date moves, counters stay
	if err := db.UpdateLastActivityDate("u1", "2026-03-05"); err != nil {
		t.Fatalf("update date: %v", err)
	}
	p, _ = db.GetProfile("u1")
	if p.CurrentStreak != 4 || p.LastActivityDate != "2026-03-05" {
		t.Errorf("after date-only update = %+v", p)
	}
}

func TestLivesCountKeepsRegenTimestamp(t *testing.T) {
	db := testDB(t)
	db.CreateProfile("u1", "Alice", now)

	later := now.Add(10 * time.Minute)
	db.UpdateLives("u1", 3, later)
	db.UpdateLivesCount("u1", 2)

	p, _ := db.GetProfile("u1")
	if p.CurrentLives != 2 {
		t.Errorf("lives = %d, want 2", p.CurrentLives)
	}
	if !p.LivesRegenAt.Equal(later) {
		t.Errorf("regen at = %v, want %v (untouched)", p.LivesRegenAt, later)
	}
}

func TestResetAllWeekXP(t *testing.T) {
	db := testDB(t)
	db.CreateProfile("u1", "Alice", now)
	db.CreateProfile("u2", "Bob", now)
	db.UpdateWeekXP("u1", 120)
	db.UpdateWeekXP("u2", 80)

	n, err := db.ResetAllWeekXP()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n != 2 {
		t.Errorf("reset rows = %d, want 2", n)
	}
	p, _ := db.GetProfile("u1")
	if p.WeekXP != 0 {
		t.Errorf("week xp = %d, want 0", p.WeekXP)
	}
}

// ─── Leagues ────────────────────────────────────────────────────────────────

func TestLeagueMembersOrderAndUpsert(t *testing.T) {
	db := testDB(t)
	db.CreateProfile("u1", "Alice", now)
	db.CreateProfile("u2", "Bob", now)

	l := domain.League{ID: "l1", Name: "Bronze", Tier: 1, IconName: "Medal", MaxMembers: 50, PromotionThreshold: 10, DemotionThreshold: 5}
	if err := db.InsertLeague(l); err != nil {
		t.Fatalf("insert league: %v", err)
	}

	db.UpsertLeagueMember("l1", "u1", "2026-03-02", 50)
	db.UpsertLeagueMember("l1", "u2", "2026-03-02", 200)
	db.UpsertLeagueMember("l1", "u1", "2026-03-02", 300) // update, not duplicate

	members, err := db.ListLeagueMembers("l1", "2026-03-02", 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}
	if members[0].UserID != "u1" || members[0].WeekXP != 300 {
		t.Errorf("top = %+v, want u1 at 300", members[0])
	}
	if members[0].DisplayName != "Alice" {
		t.Errorf("display name = %q, want joined", members[0].DisplayName)
	}
}

func TestGetLeagueByTierMissing(t *testing.T) {
	db := testDB(t)

	l, err := db.GetLeagueByTier(8)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if l != nil {
		t.Errorf("league = %+v, want nil at ladder edge", l)
	}
}

func TestWeeklyStandingsAreSeparateRows(t *testing.T) {
	db := testDB(t)
	db.CreateProfile("u1", "Alice", now)
	db.InsertLeague(domain.League{ID: "l1", Name: "Bronze", Tier: 1})

	db.UpsertLeagueMember("l1", "u1", "2026-03-02", 100)
	db.UpsertLeagueMember("l1", "u1", "2026-03-09", 40)

	prev, _ := db.ListLeagueMembers("l1", "2026-03-02", 50)
	cur, _ := db.ListLeagueMembers("l1", "2026-03-09", 50)
	if len(prev) != 1 || prev[0].WeekXP != 100 {
		t.Errorf("previous week = %+v, want preserved at 100", prev)
	}
	if len(cur) != 1 || cur[0].WeekXP != 40 {
		t.Errorf("current week = %+v, want 40", cur)
	}
}

// ─── Challenges ─────────────────────────────────────────────────────────────

func TestClaimRewardFlipsOnce(t *testing.T) {
	db := testDB(t)
	db.UpsertCompletion(domain.ChallengeCompletion{
		UserID: "u1", ChallengeID: "c1", CompletedAt: "2026-03-04",
		Progress: 1, IsCompleted: true,
	})

	ok, err := db.ClaimReward("u1", "c1", "2026-03-04")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !ok {
		t.Fatal("first claim should succeed")
	}
	ok, _ = db.ClaimReward("u1", "c1", "2026-03-04")
	if ok {
		t.Error("second claim should fail")
	}
}

func TestClaimRewardRequiresCompletion(t *testing.T) {
	db := testDB(t)
	db.UpsertCompletion(domain.ChallengeCompletion{
		UserID: "u1", ChallengeID: "c1", CompletedAt: "2026-03-04",
		Progress: 1, IsCompleted: false,
	})

	ok, err := db.ClaimReward("u1", "c1", "2026-03-04")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if ok {
		t.Error("claim on incomplete row should fail")
	}
}

func TestUpsertCompletionNeverClearsClaim(t *testing.T) {
	db := testDB(t)
	c := domain.ChallengeCompletion{
		UserID: "u1", ChallengeID: "c1", CompletedAt: "2026-03-04",
		Progress: 1, IsCompleted: true,
	}
	db.UpsertCompletion(c)
	db.ClaimReward("u1", "c1", "2026-03-04")

	// A later progress write must not reset the claim flag
	db.UpsertCompletion(c)
	got, _ := db.GetCompletion("u1", "c1", "2026-03-04")
	if !got.RewardClaimed {
		t.Error("upsert cleared reward_claimed")
	}
}

// ─── Streak Protection & Badges ─────────────────────────────────────────────

func TestSpendFreezeRequiresStock(t *testing.T) {
	db := testDB(t)
	db.InitStreakProtection("u1")

	ok, err := db.SpendFreeze("u1")
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if ok {
		t.Error("spend with zero stock should fail")
	}

	db.AddFreezes("u1", 2)
	ok, _ = db.SpendFreeze("u1")
	if !ok {
		t.Error("spend with stock should succeed")
	}
	p, _ := db.GetStreakProtection("u1")
	if p.FreezesAvailable != 1 || p.FreezesUsed != 1 {
		t.Errorf("inventory = %+v, want 1/1", p)
	}
}

func TestAwardBadgeIdempotent(t *testing.T) {
	db := testDB(t)

	isNew, err := db.AwardBadge("u1", "streak_7", now)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if !isNew {
		t.Error("first award should be new")
	}
	isNew, _ = db.AwardBadge("u1", "streak_7", now.Add(time.Hour))
	if isNew {
		t.Error("second award should not be new")
	}

	badges, _ := db.ListBadges("u1")
	if len(badges) != 1 {
		t.Errorf("badges = %d, want 1", len(badges))
	}
}
