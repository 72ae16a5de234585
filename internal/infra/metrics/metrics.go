// Package metrics provides Prometheus metrics for the gamification engine:
// actions, XP, sync, lives, streaks, challenges, and errors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Actions ────────────────────────────────────────────────────────────────

// ActionsPerformed tracks executed gamification actions by kind.
var ActionsPerformed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "actions_performed_total",
	Help:      "Total gamification actions executed.",
}, []string{"kind"})

// ActionsDeferred tracks actions queued while offline.
var ActionsDeferred = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "actions_deferred_total",
	Help:      "Total actions queued for later sync.",
}, []string{"kind"})

// ActionsSuppressed tracks duplicate triggers collapsed by the debounce window.
var ActionsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "actions_suppressed_total",
	Help:      "Total duplicate actions rejected within the debounce window.",
}, []string{"kind"})

// ─── XP & Levels ────────────────────────────────────────────────────────────

// XPAwarded tracks XP granted by source.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded.",
}, []string{"source"})

// LevelUps tracks level-up events.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "level_ups_total",
	Help:      "Total level-up events.",
})

// ─── Sync ───────────────────────────────────────────────────────────────────

// SyncPasses tracks background sync passes that actually ran.
var SyncPasses = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "sync_passes_total",
	Help:      "Total pending-action sync passes executed.",
})

// SyncReplayed tracks queued actions successfully replayed.
var SyncReplayed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "sync_actions_replayed_total",
	Help:      "Total queued actions replayed successfully.",
})

// SyncQueueDepth tracks the current pending-action queue length.
var SyncQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "ember",
	Name:      "sync_queue_depth",
	Help:      "Number of pending actions awaiting sync.",
})

// ─── Streaks, Lives, Challenges ─────────────────────────────────────────────

// Checkins tracks daily checkins.
var Checkins = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "daily_checkins_total",
	Help:      "Total daily checkins performed.",
})

// FreezesSpent tracks streak freezes consumed.
var FreezesSpent = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "streak_freezes_spent_total",
	Help:      "Total streak freezes spent.",
})

// LivesUsed tracks lives consumed by exercise attempts.
var LivesUsed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "lives_used_total",
	Help:      "Total lives consumed.",
})

// ChallengeClaims tracks successfully claimed challenge rewards.
var ChallengeClaims = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "challenge_rewards_claimed_total",
	Help:      "Total challenge rewards claimed.",
})

// BadgesAwarded tracks newly earned badges.
var BadgesAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "badges_awarded_total",
	Help:      "Total badges awarded.",
})

// ─── Errors ─────────────────────────────────────────────────────────────────

// EngineErrors tracks errors reported through the engine's error reporter.
var EngineErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "engine_errors_total",
	Help:      "Total errors captured by the gamification engine.",
}, []string{"context"})
