package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/emberlab/ember/internal/domain"
	"github.com/emberlab/ember/internal/infra/cache"
	"github.com/emberlab/ember/internal/infra/sqlite"
)

type fixture struct {
	engine *Engine
	db     *sqlite.DB
	cache  *cache.Cache
	clock  time.Time
	online bool
}

type recorder struct {
	contexts []string
	errors   []error
}

func (r *recorder) ReportError(context string, err error) {
	r.contexts = append(r.contexts, context)
	r.errors = append(r.errors, err)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	c, err := cache.Open(dir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	f := &fixture{
		db:     db,
		cache:  c,
		clock:  time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
		online: true,
	}
	f.engine = New(db, c, Options{
		Now:    func() time.Time { return f.clock },
		Online: func() bool { return f.online },
	})

	if err := db.CreateProfile("u1", "Test User", f.clock); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return f
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

func TestPerformActionAwardsXP(t *testing.T) {
	f := newFixture(t)

	res, err := f.engine.PerformAction(domain.ActionExerciseComplete, "u1", nil)
	if err != nil {
		t.Fatalf("perform: %v", err)
	}
	if !res.Success || res.Deferred {
		t.Errorf("result = %+v, want immediate success", res)
	}

	p, _ := f.db.GetProfile("u1")
	if p.XP != 50 {
		t.Errorf("xp = %d, want 50", p.XP)
	}
	if p.WeekXP != 50 {
		t.Errorf("week xp = %d, want 50", p.WeekXP)
	}
}

func TestUnknownActionRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.PerformAction("teleport", "u1", nil)
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Errorf("err = %v, want unknown action", err)
	}
}

func TestDebounceSuppressesRapidDuplicates(t *testing.T) {
	f := newFixture(t)

	f.engine.PerformAction(domain.ActionHabitCompleted, "u1", nil)
	f.advance(2 * time.Second)
	res, err := f.engine.PerformAction(domain.ActionHabitCompleted, "u1", nil)
	if err != nil {
		t.Fatalf("perform: %v", err)
	}
	if res.Success {
		t.Error("duplicate inside window should be suppressed")
	}

	p, _ := f.db.GetProfile("u1")
	if p.XP != 20 {
		t.Errorf("xp = %d, want 20 (single award)", p.XP)
	}

	// Past the window the same action counts again
	f.advance(4 * time.Second)
	res, _ = f.engine.PerformAction(domain.ActionHabitCompleted, "u1", nil)
	if !res.Success {
		t.Error("action past the window should succeed")
	}
	p, _ = f.db.GetProfile("u1")
	if p.XP != 40 {
		t.Errorf("xp = %d, want 40", p.XP)
	}
}

func TestDebounceIsPerUserPerKind(t *testing.T) {
	f := newFixture(t)
	f.db.CreateProfile("u2", "Other", f.clock)

	f.engine.PerformAction(domain.ActionMoodLogged, "u1", nil)
	res, _ := f.engine.PerformAction(domain.ActionMoodLogged, "u2", nil)
	if !res.Success {
		t.Error("same kind for another user should not be debounced")
	}
	res, _ = f.engine.PerformAction(domain.ActionHabitCreated, "u1", nil)
	if !res.Success {
		t.Error("different kind for same user should not be debounced")
	}
}

func TestLevelUpOnThreshold(t *testing.T) {
	f := newFixture(t)

	// 300 XP crosses the 100 XP boundary into level 2
	if _, err := f.engine.PerformAction(domain.ActionPathComplete, "u1", nil); err != nil {
		t.Fatalf("perform: %v", err)
	}
	p, _ := f.db.GetProfile("u1")
	if p.Level != 2 {
		t.Errorf("level = %d, want 2", p.Level)
	}
}

func TestOfflineActionIsQueued(t *testing.T) {
	f := newFixture(t)
	f.online = false

	res, err := f.engine.PerformAction(domain.ActionGoalCompleted, "u1", nil)
	if err != nil {
		t.Fatalf("perform: %v", err)
	}
	if !res.Deferred {
		t.Fatal("offline action should be deferred")
	}
	if f.engine.PendingCount() != 1 {
		t.Errorf("pending = %d, want 1", f.engine.PendingCount())
	}

	p, _ := f.db.GetProfile("u1")
	if p.XP != 0 {
		t.Errorf("xp = %d, want 0 before sync", p.XP)
	}
}

func TestSyncReplaysQueuedActions(t *testing.T) {
	f := newFixture(t)
	f.online = false

	f.engine.PerformAction(domain.ActionGoalCompleted, "u1", nil)
	f.advance(10 * time.Second)
	f.engine.PerformAction(domain.ActionMoodLogged, "u1", nil)

	f.online = true
	if err := f.engine.SyncPendingActions(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if f.engine.PendingCount() != 0 {
		t.Errorf("pending = %d, want 0 after sync", f.engine.PendingCount())
	}

	p, _ := f.db.GetProfile("u1")
	if p.XP != 110 {
		t.Errorf("xp = %d, want 110", p.XP)
	}
}

func TestSyncSkipsWhileOffline(t *testing.T) {
	f := newFixture(t)
	f.online = false

	f.engine.PerformAction(domain.ActionMoodLogged, "u1", nil)
	if err := f.engine.SyncPendingActions(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if f.engine.PendingCount() != 1 {
		t.Errorf("pending = %d, want 1 (still offline)", f.engine.PendingCount())
	}
}

func TestSyncReplaysOldestFirst(t *testing.T) {
	f := newFixture(t)
	f.online = false
	rec := &recorder{}
	f.engine.reporter = rec

	// Two actions for a user with no profile; both replays fail, and the
	// failure order exposes the replay order. Enqueue them with the clock
	// running backwards so queue order differs from timestamp order.
	f.engine.PerformAction(domain.ActionHabitCreated, "ghost", nil)
	f.clock = f.clock.Add(-time.Hour)
	f.engine.PerformAction(domain.ActionMoodLogged, "ghost", nil)

	f.online = true
	if err := f.engine.SyncPendingActions(); err == nil {
		t.Fatal("sync over missing profile should report an error")
	}

	var replays []string
	for i, ctx := range rec.contexts {
		if ctx == "sync_replay" {
			replays = append(replays, rec.errors[i].Error())
		}
	}
	if len(replays) != 2 {
		t.Fatalf("replay errors = %d, want 2", len(replays))
	}
	if !strings.Contains(replays[0], string(domain.ActionMoodLogged)) {
		t.Errorf("first replay = %q, want the older action first", replays[0])
	}
}

func TestFailedReplaysStayQueued(t *testing.T) {
	f := newFixture(t)
	f.online = false

	f.engine.PerformAction(domain.ActionMoodLogged, "ghost", nil) // no profile
	f.advance(10 * time.Second)
	f.engine.PerformAction(domain.ActionMoodLogged, "u1", nil)

	f.online = true
	f.engine.SyncPendingActions()

	if f.engine.PendingCount() != 1 {
		t.Errorf("pending = %d, want 1 (failed replay kept)", f.engine.PendingCount())
	}
	p, _ := f.db.GetProfile("u1")
	if p.XP != 10 {
		t.Errorf("u1 xp = %d, want 10 (good action replayed)", p.XP)
	}
}

func TestQueueSurvivesRestart(t *testing.T) {
	f := newFixture(t)
	f.online = false

	f.engine.PerformAction(domain.ActionGoalCompleted, "u1", nil)

	restarted := New(f.db, f.cache, Options{
		Now:    func() time.Time { return f.clock },
		Online: func() bool { return true },
	})
	if restarted.PendingCount() != 1 {
		t.Fatalf("pending after restart = %d, want 1", restarted.PendingCount())
	}
	if err := restarted.SyncPendingActions(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	p, _ := f.db.GetProfile("u1")
	if p.XP != 100 {
		t.Errorf("xp = %d, want 100", p.XP)
	}
}

func TestDailyCheckinOncePerDay(t *testing.T) {
	f := newFixture(t)

	first, err := f.engine.PerformDailyCheckin("u1")
	if err != nil {
		t.Fatalf("checkin: %v", err)
	}
	if !first.Success || first.Streak != 1 {
		t.Errorf("first = %+v, want success streak 1", first)
	}

	f.advance(3 * time.Hour)
	second, err := f.engine.PerformDailyCheckin("u1")
	if err != nil {
		t.Fatalf("second checkin: %v", err)
	}
	if second.Success {
		t.Error("second checkin same day should not succeed")
	}
	if second.Streak != 1 {
		t.Errorf("streak = %d, want 1", second.Streak)
	}

	p, _ := f.db.GetProfile("u1")
	if p.XP != 10 {
		t.Errorf("xp = %d, want 10 (single checkin award)", p.XP)
	}
}

func TestCheckinStreakGrowsDaily(t *testing.T) {
	f := newFixture(t)

	f.engine.PerformDailyCheckin("u1")
	f.advance(24 * time.Hour)
	res, err := f.engine.PerformDailyCheckin("u1")
	if err != nil {
		t.Fatalf("checkin: %v", err)
	}
	if res.Streak != 2 || !res.IsNewRecord {
		t.Errorf("res = %+v, want streak 2 new record", res)
	}
}

func TestCheckinGuardSurvivesRestart(t *testing.T) {
	f := newFixture(t)

	f.engine.PerformDailyCheckin("u1")

	restarted := New(f.db, f.cache, Options{
		Now: func() time.Time { return f.clock },
	})
	res, err := restarted.PerformDailyCheckin("u1")
	if err != nil {
		t.Fatalf("checkin: %v", err)
	}
	if res.Success {
		t.Error("checkin guard should survive restart")
	}
}

func TestClaimChallengeRewardAwardsXP(t *testing.T) {
	f := newFixture(t)

	if err := f.db.InsertChallenge(domain.Challenge{
		ID: "c1", Title: "Mood", ChallengeType: domain.ActionMoodLogged,
		RequirementValue: 1, XPReward: 40, Difficulty: domain.DifficultyEasy, Active: true,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	f.engine.PerformAction(domain.ActionMoodLogged, "u1", nil)

	res, err := f.engine.ClaimChallengeReward("u1", "c1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !res.Success || res.XPAwarded != 40 {
		t.Fatalf("claim = %+v, want success 40", res)
	}

	// The claim and the XP land together
	p, _ := f.db.GetProfile("u1")
	if p.XP != 10+40 {
		t.Errorf("xp = %d, want 50 (mood + reward)", p.XP)
	}
	view, _ := f.engine.GetProgress("u1")
	if view.XP != 50 {
		t.Errorf("cached xp = %d, want 50 (view refreshed by claim)", view.XP)
	}

	// Second claim awards nothing
	res, _ = f.engine.ClaimChallengeReward("u1", "c1")
	if res.Success {
		t.Error("second claim should fail")
	}
	p, _ = f.db.GetProfile("u1")
	if p.XP != 50 {
		t.Errorf("xp after double claim = %d, want 50", p.XP)
	}
}

func TestProgressViewCachesAndRefreshes(t *testing.T) {
	f := newFixture(t)

	f.engine.PerformAction(domain.ActionExerciseComplete, "u1", nil)

	p, err := f.engine.GetProgress("u1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if p.XP != 50 {
		t.Errorf("xp = %d, want 50", p.XP)
	}

	// Write behind the cache's back; the cached view still serves
	f.db.UpdateXP("u1", 999, 4)
	p, _ = f.engine.GetProgress("u1")
	if p.XP != 50 {
		t.Errorf("cached xp = %d, want 50", p.XP)
	}

	p, err = f.engine.RefreshProgress("u1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if p.XP != 999 {
		t.Errorf("refreshed xp = %d, want 999", p.XP)
	}
}

func TestFirstActionEarnsStarterBadge(t *testing.T) {
	f := newFixture(t)

	f.engine.PerformAction(domain.ActionHabitCreated, "u1", nil)

	badges, err := f.engine.Badges.List("u1")
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	if len(badges) != 1 || badges[0].BadgeID != "first_steps" {
		t.Errorf("badges = %+v, want first_steps", badges)
	}
}

func TestDeferredActionBumpsPendingOnProgressView(t *testing.T) {
	f := newFixture(t)
	f.online = false

	f.engine.PerformAction(domain.ActionMoodLogged, "u1", nil)

	p, err := f.engine.GetProgress("u1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if p.PendingActions != 1 {
		t.Errorf("pending on view = %d, want 1", p.PendingActions)
	}
}
