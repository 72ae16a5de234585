package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emberlab/ember/internal/app/badge"
	"github.com/emberlab/ember/internal/app/leveling"
	"github.com/emberlab/ember/internal/domain"
	"github.com/emberlab/ember/internal/infra/metrics"
)

// handleDomainError maps domain sentinels onto HTTP statuses.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrLeagueNotFound),
		errors.Is(err, domain.ErrChallengeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// ─── Users & Progress ───────────────────────────────────────────────────────

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.db.CreateProfile(req.ID, req.DisplayName, time.Now()); err != nil {
		handleDomainError(w, err)
		return
	}
	p, err := s.engine.RefreshProgress(req.ID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var p *domain.UserProgress
	var err error
	if r.URL.Query().Get("refresh") == "true" {
		p, err = s.engine.RefreshProgress(userID)
	} else {
		p, err = s.engine.GetProgress(userID)
	}
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	p, err := s.engine.GetProgress(chi.URLParam(r, "userID"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"level":            p.Level,
		"xp":               p.XP,
		"progress":         leveling.Progress(p.XP),
		"xp_to_next_level": leveling.XPToNextLevel(p.XP),
	})
}

// ─── Actions & Checkin ──────────────────────────────────────────────────────

func (s *Server) handlePerformAction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		Kind     string            `json:"kind"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Kind == "" {
		writeError(w, http.StatusBadRequest, "kind is required")
		return
	}

	res, err := s.engine.PerformAction(domain.ActionKind(req.Kind), userID, req.Metadata)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCheckin(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.PerformDailyCheckin(chi.URLParam(r, "userID"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.SyncPendingActions(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"pending": s.engine.PendingCount(),
	})
}

// ─── Streaks ────────────────────────────────────────────────────────────────

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	now := time.Now()

	p, err := s.engine.GetProgress(userID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	status, err := s.engine.Streaks.CheckStatus(userID, now)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	protection, err := s.engine.Streaks.Protection(userID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current_streak": p.CurrentStreak,
		"longest_streak": p.LongestStreak,
		"status":         status,
		"protection":     protection,
	})
}

func (s *Server) handleUseFreeze(w http.ResponseWriter, r *http.Request) {
	used, err := s.engine.Streaks.UseFreeze(chi.URLParam(r, "userID"), time.Now())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if used {
		metrics.FreezesSpent.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"used": used})
}

func (s *Server) handleEarnFreeze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	earned, err := s.engine.Streaks.EarnFreeze(chi.URLParam(r, "userID"), req.Amount)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"earned": earned})
}

// ─── Lives ──────────────────────────────────────────────────────────────────

func (s *Server) handleLives(w http.ResponseWriter, r *http.Request) {
	l, err := s.engine.Lives.Get(chi.URLParam(r, "userID"), time.Now())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lives":     l,
		"countdown": domain.FormatTimeUntilNextLife(l.TimeUntilNextLife),
	})
}

func (s *Server) handleUseLife(w http.ResponseWriter, r *http.Request) {
	used, err := s.engine.Lives.Use(chi.URLParam(r, "userID"), time.Now())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if used {
		metrics.LivesUsed.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"used": used})
}

func (s *Server) handleRefillLives(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	now := time.Now()

	if err := s.engine.Lives.Refill(userID, now); err != nil {
		handleDomainError(w, err)
		return
	}
	l, err := s.engine.Lives.Get(userID, now)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleEarnLives(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	l, err := s.engine.Lives.EarnExtra(chi.URLParam(r, "userID"), req.Amount, time.Now())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// ─── League, Challenges, Badges ─────────────────────────────────────────────

func (s *Server) handleLeague(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.Leagues.GetUserLeague(chi.URLParam(r, "userID"), time.Now())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	moved, err := s.engine.Leagues.Promote(chi.URLParam(r, "userID"), time.Now())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"moved": moved})
}

func (s *Server) handleDemote(w http.ResponseWriter, r *http.Request) {
	moved, err := s.engine.Leagues.Demote(chi.URLParam(r, "userID"), time.Now())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"moved": moved})
}

func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.Challenges.GetDailyChallenges(chi.URLParam(r, "userID"), time.Now())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleChallengeProgressByType(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		Type   string `json:"type"`
		Amount int    `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "type and a positive amount are required")
		return
	}

	now := time.Now()
	if err := s.engine.Challenges.RecordAction(userID, domain.ActionKind(req.Type), req.Amount, now); err != nil {
		handleDomainError(w, err)
		return
	}
	list, err := s.engine.Challenges.GetDailyChallenges(userID, now)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleChallengeProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	completion, err := s.engine.Challenges.UpdateProgress(
		chi.URLParam(r, "userID"), chi.URLParam(r, "challengeID"), req.Amount, time.Now())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, completion)
}

func (s *Server) handleClaimChallenge(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	challengeID := chi.URLParam(r, "challengeID")

	res, err := s.engine.ClaimChallengeReward(userID, challengeID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	earned, err := s.engine.Badges.List(chi.URLParam(r, "userID"))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	type badgeView struct {
		domain.EarnedBadge
		Name   string             `json:"name"`
		Rarity domain.BadgeRarity `json:"rarity"`
		Icon   string             `json:"icon"`
	}
	out := make([]badgeView, 0, len(earned))
	for _, b := range earned {
		v := badgeView{EarnedBadge: b}
		if def, ok := badge.Lookup(b.BadgeID); ok {
			v.Name = def.Name
			v.Rarity = def.Rarity
			v.Icon = def.Icon
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}
