// Package api provides the HTTP server for Ember.
// It exposes the gamification engine as a small REST surface: actions,
// checkins, progress, streaks, lives, leagues, challenges, and badges.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emberlab/ember/internal/app/engine"
	"github.com/emberlab/ember/internal/health"
	"github.com/emberlab/ember/internal/infra/sqlite"
)

// Server is the Ember HTTP API server.
type Server struct {
	engine         *engine.Engine
	db             *sqlite.DB
	health         *health.Checker
	metricsEnabled bool
}

// NewServer creates a new API server over the engine and store.
func NewServer(e *engine.Engine, db *sqlite.DB) *Server {
	return &Server{engine: e, db: db}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth attaches a health checker; /health then reports its statuses.
func (s *Server) SetHealth(h *health.Checker) { s.health = h }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.health == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		status := http.StatusOK
		if !s.health.IsHealthy() {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]interface{}{
			"healthy": s.health.IsHealthy(),
			"checks":  s.health.Statuses(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", s.handleCreateUser)
		r.Post("/sync", s.handleSync)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/actions", s.handlePerformAction)
			r.Post("/checkin", s.handleCheckin)
			r.Get("/progress", s.handleProgress)
			r.Get("/level", s.handleLevel)

			r.Get("/streak", s.handleStreak)
			r.Post("/streak/freeze", s.handleUseFreeze)
			r.Post("/streak/freeze/earn", s.handleEarnFreeze)

			r.Get("/lives", s.handleLives)
			r.Post("/lives/use", s.handleUseLife)
			r.Post("/lives/refill", s.handleRefillLives)
			r.Post("/lives/earn", s.handleEarnLives)

			r.Get("/league", s.handleLeague)
			r.Post("/league/promote", s.handlePromote)
			r.Post("/league/demote", s.handleDemote)
			r.Get("/challenges", s.handleChallenges)
			r.Post("/challenges/progress", s.handleChallengeProgressByType)
			r.Post("/challenges/{challengeID}/progress", s.handleChallengeProgress)
			r.Post("/challenges/{challengeID}/claim", s.handleClaimChallenge)
			r.Get("/badges", s.handleBadges)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
