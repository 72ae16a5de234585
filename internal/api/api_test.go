package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emberlab/ember/internal/app/engine"
	"github.com/emberlab/ember/internal/domain"
	"github.com/emberlab/ember/internal/infra/cache"
	"github.com/emberlab/ember/internal/infra/sqlite"
)

func testServer(t *testing.T) (*Server, *sqlite.DB) {
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

	eng := engine.New(db, c, engine.Options{})
	if err := eng.Leagues.SeedDefaultLeagues(); err != nil {
		t.Fatalf("seed leagues: %v", err)
	}
	if err := eng.Challenges.SeedDefaultChallenges(); err != nil {
		t.Fatalf("seed challenges: %v", err)
	}
	if err := db.CreateProfile("u1", "Test User", time.Now()); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	return NewServer(eng, db), db
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(t, s.Handler(), "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCreateUser(t *testing.T) {
	s, db := testServer(t)

	rec := doJSON(t, s.Handler(), "POST", "/api/v1/users",
		map[string]string{"id": "u2", "display_name": "Bea"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	p, _ := db.GetProfile("u2")
	if p == nil || p.DisplayName != "Bea" {
		t.Errorf("profile = %+v, want Bea", p)
	}
}

func TestCreateUserRequiresID(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(t, s.Handler(), "POST", "/api/v1/users", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPerformActionEndpoint(t *testing.T) {
	s, db := testServer(t)

	rec := doJSON(t, s.Handler(), "POST", "/api/v1/users/u1/actions",
		map[string]string{"kind": "exercise_complete"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var res domain.ActionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success {
		t.Errorf("result = %+v, want success", res)
	}

	p, _ := db.GetProfile("u1")
	if p.XP != 50 {
		t.Errorf("xp = %d, want 50", p.XP)
	}
}

func TestUnknownActionRejected(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(t, s.Handler(), "POST", "/api/v1/users/u1/actions",
		map[string]string{"kind": "levitate"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body)
	}
}

func TestCheckinEndpoint(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s.Handler(), "POST", "/api/v1/users/u1/checkin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var res domain.CheckinResult
	json.Unmarshal(rec.Body.Bytes(), &res)
	if !res.Success || res.Streak != 1 {
		t.Errorf("res = %+v, want success streak 1", res)
	}

	// Second checkin the same day is a no-op
	rec = doJSON(t, s.Handler(), "POST", "/api/v1/users/u1/checkin", nil)
	json.Unmarshal(rec.Body.Bytes(), &res)
	if res.Success {
		t.Error("second same-day checkin should not succeed")
	}
}

func TestProgressNotFound(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(t, s.Handler(), "GET", "/api/v1/users/ghost/progress", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestLivesEndpoints(t *testing.T) {
	s, _ := testServer(t)
	h := s.Handler()

	rec := doJSON(t, h, "POST", "/api/v1/users/u1/lives/use", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("use status = %d: %s", rec.Code, rec.Body)
	}
	var used map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &used)
	if !used["used"] {
		t.Error("life should be spent")
	}

	rec = doJSON(t, h, "GET", "/api/v1/users/u1/lives", nil)
	var view struct {
		Lives domain.Lives `json:"lives"`
	}
	json.Unmarshal(rec.Body.Bytes(), &view)
	if view.Lives.CurrentLives != domain.DefaultMaxLives-1 {
		t.Errorf("lives = %d, want %d", view.Lives.CurrentLives, domain.DefaultMaxLives-1)
	}

	rec = doJSON(t, h, "POST", "/api/v1/users/u1/lives/refill", nil)
	var refilled domain.Lives
	json.Unmarshal(rec.Body.Bytes(), &refilled)
	if refilled.CurrentLives != domain.DefaultMaxLives {
		t.Errorf("refilled = %d, want %d", refilled.CurrentLives, domain.DefaultMaxLives)
	}
}

func TestEarnLivesEndpoint(t *testing.T) {
	s, _ := testServer(t)
	h := s.Handler()

	doJSON(t, h, "POST", "/api/v1/users/u1/lives/use", nil)
	doJSON(t, h, "POST", "/api/v1/users/u1/lives/use", nil)

	rec := doJSON(t, h, "POST", "/api/v1/users/u1/lives/earn", map[string]int{"amount": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("earn status = %d: %s", rec.Code, rec.Body)
	}
	var l domain.Lives
	json.Unmarshal(rec.Body.Bytes(), &l)
	if l.CurrentLives != domain.DefaultMaxLives-1 {
		t.Errorf("lives = %d, want %d", l.CurrentLives, domain.DefaultMaxLives-1)
	}

	rec = doJSON(t, h, "POST", "/api/v1/users/u1/lives/earn", map[string]int{"amount": 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero amount status = %d, want 400", rec.Code)
	}
}

func TestLeagueEndpoint(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s.Handler(), "GET", "/api/v1/users/u1/league", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var view domain.UserLeague
	json.Unmarshal(rec.Body.Bytes(), &view)
	if view.League.Tier != 1 {
		t.Errorf("tier = %d, want 1 (auto-assigned)", view.League.Tier)
	}
}

func TestPromoteEndpoint(t *testing.T) {
	s, db := testServer(t)
	h := s.Handler()

	// Join the entry league first
	doJSON(t, h, "GET", "/api/v1/users/u1/league", nil)

	rec := doJSON(t, h, "POST", "/api/v1/users/u1/league/promote", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("promote status = %d: %s", rec.Code, rec.Body)
	}
	var res map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &res)
	if !res["moved"] {
		t.Error("promotion from tier 1 should move")
	}

	l, _ := db.GetLeagueByTier(2)
	p, _ := db.GetProfile("u1")
	if p.CurrentLeagueID != l.ID {
		t.Errorf("league = %s, want tier 2 (%s)", p.CurrentLeagueID, l.ID)
	}

	rec = doJSON(t, h, "POST", "/api/v1/users/u1/league/demote", nil)
	json.Unmarshal(rec.Body.Bytes(), &res)
	if !res["moved"] {
		t.Error("demotion from tier 2 should move")
	}
}

func TestChallengeProgressEndpoint(t *testing.T) {
	s, db := testServer(t)
	h := s.Handler()

	if err := db.InsertChallenge(domain.Challenge{
		ID: "c-habit", Title: "Habits", ChallengeType: domain.ActionHabitCompleted,
		RequirementValue: 3, XPReward: 50, Difficulty: domain.DifficultyMedium, Active: true,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rec := doJSON(t, h, "POST", "/api/v1/users/u1/challenges/c-habit/progress",
		map[string]int{"amount": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d: %s", rec.Code, rec.Body)
	}
	var c domain.ChallengeCompletion
	json.Unmarshal(rec.Body.Bytes(), &c)
	if c.Progress != 2 || c.IsCompleted {
		t.Errorf("completion = %+v, want 2/3 incomplete", c)
	}

	rec = doJSON(t, h, "POST", "/api/v1/users/u1/challenges/c-habit/progress",
		map[string]int{"amount": 5})
	json.Unmarshal(rec.Body.Bytes(), &c)
	if c.Progress != 3 || !c.IsCompleted {
		t.Errorf("completion = %+v, want clamped 3/3 complete", c)
	}
}

func TestChallengeProgressByTypeEndpoint(t *testing.T) {
	s, db := testServer(t)
	h := s.Handler()

	if err := db.InsertChallenge(domain.Challenge{
		ID: "c-habit", Title: "Habits", ChallengeType: domain.ActionHabitCompleted,
		RequirementValue: 3, XPReward: 50, Difficulty: domain.DifficultyMedium, Active: true,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rec := doJSON(t, h, "POST", "/api/v1/users/u1/challenges/progress",
		map[string]interface{}{"type": "habit_completed", "amount": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d: %s", rec.Code, rec.Body)
	}

	c, _ := db.GetCompletion("u1", "c-habit", domain.DateOf(time.Now()))
	if c == nil || c.Progress != 2 {
		t.Errorf("completion = %+v, want progress 2", c)
	}

	rec = doJSON(t, h, "POST", "/api/v1/users/u1/challenges/progress",
		map[string]interface{}{"type": "", "amount": 1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing type status = %d, want 400", rec.Code)
	}
}

func TestChallengeClaimFlow(t *testing.T) {
	s, db := testServer(t)
	h := s.Handler()

	// A one-step challenge completed by a mood log
	if err := db.InsertChallenge(domain.Challenge{
		ID: "c-mood", Title: "Mood", ChallengeType: domain.ActionMoodLogged,
		RequirementValue: 1, XPReward: 40, Difficulty: domain.DifficultyEasy, Active: true,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	doJSON(t, h, "POST", "/api/v1/users/u1/actions", map[string]string{"kind": "mood_logged"})

	rec := doJSON(t, h, "POST", "/api/v1/users/u1/challenges/c-mood/claim", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("claim status = %d: %s", rec.Code, rec.Body)
	}
	var res domain.ClaimResult
	json.Unmarshal(rec.Body.Bytes(), &res)
	if !res.Success || res.XPAwarded != 40 {
		t.Fatalf("claim = %+v, want success 40", res)
	}

	p, _ := db.GetProfile("u1")
	if p.XP != 10+40 { // mood XP + reward
		t.Errorf("xp = %d, want 50", p.XP)
	}

	// Double claim is rejected without XP
	rec = doJSON(t, h, "POST", "/api/v1/users/u1/challenges/c-mood/claim", nil)
	json.Unmarshal(rec.Body.Bytes(), &res)
	if res.Success {
		t.Error("second claim should fail")
	}
	p, _ = db.GetProfile("u1")
	if p.XP != 50 {
		t.Errorf("xp after double claim = %d, want 50", p.XP)
	}
}

func TestBadgesEndpoint(t *testing.T) {
	s, _ := testServer(t)
	h := s.Handler()

	doJSON(t, h, "POST", "/api/v1/users/u1/actions", map[string]string{"kind": "habit_created"})

	rec := doJSON(t, h, "GET", "/api/v1/users/u1/badges", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var badges []struct {
		BadgeID string `json:"badge_id"`
		Name    string `json:"name"`
	}
	json.Unmarshal(rec.Body.Bytes(), &badges)
	if len(badges) != 1 || badges[0].BadgeID != "first_steps" || badges[0].Name == "" {
		t.Errorf("badges = %+v, want named first_steps", badges)
	}
}
