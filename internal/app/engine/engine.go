// Package engine orchestrates the gamification pipeline: validate an
// action, debounce duplicates, award XP (or queue the action while
// offline), then fan out to streaks, leagues, challenges, and badges.
// All engine writes flow through here so each action is counted once.
package engine

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emberlab/ember/internal/app/badge"
	"github.com/emberlab/ember/internal/app/challenge"
	"github.com/emberlab/ember/internal/app/league"
	"github.com/emberlab/ember/internal/app/leveling"
	"github.com/emberlab/ember/internal/app/lives"
	"github.com/emberlab/ember/internal/app/streak"
	"github.com/emberlab/ember/internal/domain"
	"github.com/emberlab/ember/internal/infra/actionlog"
	"github.com/emberlab/ember/internal/infra/cache"
	"github.com/emberlab/ember/internal/infra/metrics"
	"github.com/emberlab/ember/internal/infra/sqlite"
)

const (
	// DefaultDebounceWindow collapses duplicate triggers of the same
	// action for the same user.
	DefaultDebounceWindow = 5 * time.Second

	syncQueueKey      = "gamification_sync_queue"
	progressKeyPrefix = "progress_"
	checkinKeyPrefix  = "last_checkin_"
)

// Reporter receives non-fatal engine errors. The engine never fails a user
// action because a side effect (cache write, badge check) misbehaved; those
// errors land here instead.
type Reporter interface {
	ReportError(context string, err error)
}

type logReporter struct{}

func (logReporter) ReportError(context string, err error) {
	metrics.EngineErrors.WithLabelValues(context).Inc()
	log.Printf("[engine] %s: %v", context, err)
}

// Engine is the gamification orchestrator.
type Engine struct {
	db         *sqlite.DB
	cache      *cache.Cache
	actions    *actionlog.Log
	Streaks    *streak.Service
	Lives      *lives.Service
	Leagues    *league.Service
	Challenges *challenge.Service
	Badges     *badge.Service

	// DebounceWindow is how long duplicate triggers are suppressed.
	DebounceWindow time.Duration

	now      func() time.Time
	online   func() bool
	reporter Reporter

	mu      sync.Mutex
	pending []domain.PendingAction
	syncing bool
}

// Options tune engine construction. Zero values fall back to defaults.
type Options struct {
	Now      func() time.Time // injected clock for tests
	Online   func() bool      // connectivity probe; nil means always online
	Reporter Reporter
	Debounce time.Duration
}

// New wires an engine over the store and cache, restoring any pending
// offline queue persisted by a previous run.
func New(db *sqlite.DB, c *cache.Cache, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Online == nil {
		opts.Online = func() bool { return true }
	}
	if opts.Reporter == nil {
		opts.Reporter = logReporter{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounceWindow
	}

	e := &Engine{
		db:             db,
		cache:          c,
		actions:        actionlog.NewWithClock(c, opts.Now),
		Streaks:        streak.NewService(db),
		Lives:          lives.NewService(db),
		Leagues:        league.NewService(db),
		Challenges:     challenge.NewService(db),
		Badges:         badge.NewService(db),
		DebounceWindow: opts.Debounce,
		now:            opts.Now,
		online:         opts.Online,
		reporter:       opts.Reporter,
	}

	if _, err := c.Get(syncQueueKey, &e.pending); err != nil {
		e.reporter.ReportError("restore_queue", err)
	}
	metrics.SyncQueueDepth.Set(float64(len(e.pending)))
	return e
}

// ─── Actions ────────────────────────────────────────────────────────────────

// PerformAction runs one gamification action end to end. Duplicate triggers
// inside the debounce window are suppressed. While offline the action is
// queued durably and replayed by the next sync pass.
func (e *Engine) PerformAction(kind domain.ActionKind, userID string, metadata map[string]string) (domain.ActionResult, error) {
	if _, ok := domain.XPForAction(kind); !ok {
		return domain.ActionResult{}, fmt.Errorf("%w: %s", domain.ErrUnknownAction, kind)
	}

	if e.actions.HasActionInWindow(string(kind), userID, e.DebounceWindow) {
		metrics.ActionsSuppressed.WithLabelValues(string(kind)).Inc()
		return domain.ActionResult{}, nil
	}
	e.actions.Record(string(kind), userID, metadata)

	if !e.online() {
		e.enqueue(domain.PendingAction{
			ID:        uuid.NewString(),
			Kind:      kind,
			UserID:    userID,
			Timestamp: e.now().UnixMilli(),
			Metadata:  metadata,
		})
		metrics.ActionsDeferred.WithLabelValues(string(kind)).Inc()
		if err := e.bumpPendingCount(userID); err != nil {
			e.reporter.ReportError("pending_count", err)
		}
		return domain.ActionResult{Success: true, Deferred: true}, nil
	}

	if err := e.executeAction(kind, userID); err != nil {
		return domain.ActionResult{}, err
	}
	metrics.ActionsPerformed.WithLabelValues(string(kind)).Inc()
	return domain.ActionResult{Success: true}, nil
}

// executeAction applies one action's effects: XP and level, weekly league
// XP, challenge progress, badges, and the cached progress view.
func (e *Engine) executeAction(kind domain.ActionKind, userID string) error {
	xp, ok := domain.XPForAction(kind)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownAction, kind)
	}
	if err := e.AwardXP(userID, xp, string(kind)); err != nil {
		return err
	}

	now := e.now()
	if err := e.Challenges.RecordAction(userID, kind, 1, now); err != nil {
		e.reporter.ReportError("challenge_progress", err)
	}
	if err := e.refreshProgressCache(userID); err != nil {
		e.reporter.ReportError("progress_cache", err)
	}
	return nil
}

// AwardXP credits XP from any source, recomputes the level, advances the
// weekly league total, and checks badges. source labels the award for
// metrics only.
func (e *Engine) AwardXP(userID string, amount int64, source string) error {
	if amount <= 0 {
		return nil
	}
	p, err := e.db.GetProfile(userID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrProfileNotFound
	}

	newXP := p.XP + amount
	newLevel := leveling.Level(newXP)
	if err := e.db.UpdateXP(userID, newXP, newLevel); err != nil {
		return err
	}
	metrics.XPAwarded.WithLabelValues(source).Add(float64(amount))
	if newLevel > p.Level {
		metrics.LevelUps.Inc()
		log.Printf("[engine] %s reached level %d", userID, newLevel)
	}

	now := e.now()
	if err := e.Leagues.AddWeekXP(userID, amount, now); err != nil {
		e.reporter.ReportError("week_xp", err)
	}

	p.XP = newXP
	p.Level = newLevel
	earned, err := e.Badges.CheckAndAward(*p, now)
	if err != nil {
		e.reporter.ReportError("badges", err)
	}
	for _, b := range earned {
		metrics.BadgesAwarded.Inc()
		log.Printf("[engine] %s earned badge %s", userID, b.ID)
	}
	return nil
}

// ClaimChallengeReward claims a completed challenge's reward and awards its
// XP in one step, so the claim flag can never flip without the XP landing.
func (e *Engine) ClaimChallengeReward(userID, challengeID string) (domain.ClaimResult, error) {
	res, err := e.Challenges.ClaimReward(userID, challengeID, e.now())
	if err != nil {
		return domain.ClaimResult{}, err
	}
	if !res.Success {
		return res, nil
	}

	if err := e.AwardXP(userID, res.XPAwarded, "challenge_reward"); err != nil {
		return domain.ClaimResult{}, err
	}
	metrics.ChallengeClaims.Inc()
	if err := e.refreshProgressCache(userID); err != nil {
		e.reporter.ReportError("progress_cache", err)
	}
	return res, nil
}

// ─── Daily Checkin ──────────────────────────────────────────────────────────

// PerformDailyCheckin records today's checkin: at most once per calendar
// day per user, guarded by a durable marker so restarts cannot double-count.
// A successful checkin advances the streak and awards checkin XP.
func (e *Engine) PerformDailyCheckin(userID string) (domain.CheckinResult, error) {
	now := e.now()
	today := domain.DateOf(now)
	guard := checkinKeyPrefix + userID

	var lastCheckin string
	if _, err := e.cache.Get(guard, &lastCheckin); err != nil {
		e.reporter.ReportError("checkin_guard", err)
	}
	if lastCheckin == today {
		p, err := e.db.GetProfile(userID)
		if err != nil {
			return domain.CheckinResult{}, err
		}
		if p == nil {
			return domain.CheckinResult{}, domain.ErrProfileNotFound
		}
		return domain.CheckinResult{Streak: p.CurrentStreak}, nil
	}

	up, err := e.Streaks.RecordActivity(userID, now)
	if err != nil {
		return domain.CheckinResult{}, err
	}

	if _, err := e.PerformAction(domain.ActionDailyCheckin, userID, nil); err != nil {
		return domain.CheckinResult{}, err
	}

	if err := e.cache.Set(guard, today); err != nil {
		e.reporter.ReportError("checkin_guard", err)
	}
	metrics.Checkins.Inc()

	return domain.CheckinResult{
		Success:     true,
		Streak:      up.CurrentStreak,
		IsNewRecord: up.IsNewRecord,
	}, nil
}

// ─── Offline Queue ──────────────────────────────────────────────────────────

func (e *Engine) enqueue(a domain.PendingAction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = append(e.pending, a)
	e.persistQueueLocked()
}

// persistQueueLocked writes the queue through the cache. Callers hold e.mu.
func (e *Engine) persistQueueLocked() {
	if err := e.cache.Set(syncQueueKey, e.pending); err != nil {
		e.reporter.ReportError("persist_queue", err)
	}
	metrics.SyncQueueDepth.Set(float64(len(e.pending)))
}

// PendingCount returns the current offline queue depth.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// SyncPendingActions replays the offline queue in timestamp order.
// Single-flight: overlapping calls return immediately. Actions that fail to
// replay stay queued for the next pass; the queue is persisted after every
// pass so a crash never drops or duplicates work.
func (e *Engine) SyncPendingActions() error {
	e.mu.Lock()
	if e.syncing || len(e.pending) == 0 || !e.online() {
		e.mu.Unlock()
		return nil
	}
	e.syncing = true
	batch := make([]domain.PendingAction, len(e.pending))
	copy(batch, e.pending)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
	}()

	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Timestamp < batch[j].Timestamp
	})
	metrics.SyncPasses.Inc()

	done := make(map[string]bool, len(batch))
	var firstErr error
	for _, a := range batch {
		if err := e.executeAction(a.Kind, a.UserID); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("replay %s: %w", a.Kind, err)
			}
			e.reporter.ReportError("sync_replay", err)
			continue
		}
		done[a.ID] = true
		metrics.SyncReplayed.Inc()
	}

	e.mu.Lock()
	kept := e.pending[:0]
	for _, a := range e.pending {
		if !done[a.ID] {
			kept = append(kept, a)
		}
	}
	e.pending = kept
	e.persistQueueLocked()
	e.mu.Unlock()

	return firstErr
}

// ─── Cached Progress ────────────────────────────────────────────────────────

// GetProgress returns the cached progress view, falling back to the store
// when the cache is cold or stale.
func (e *Engine) GetProgress(userID string) (*domain.UserProgress, error) {
	var p domain.UserProgress
	ok, err := e.cache.Get(progressKeyPrefix+userID, &p)
	if err != nil {
		e.reporter.ReportError("progress_cache", err)
	}
	if ok {
		return &p, nil
	}
	return e.RefreshProgress(userID)
}

// RefreshProgress reloads progress from the store and rewrites the cached
// view, stamping the current pending-queue depth.
func (e *Engine) RefreshProgress(userID string) (*domain.UserProgress, error) {
	p, err := e.db.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProfileNotFound
	}
	p.PendingActions = e.pendingCountFor(userID)
	if err := e.cache.Set(progressKeyPrefix+userID, p); err != nil {
		e.reporter.ReportError("progress_cache", err)
	}
	return p, nil
}

func (e *Engine) refreshProgressCache(userID string) error {
	_, err := e.RefreshProgress(userID)
	return err
}

func (e *Engine) pendingCountFor(userID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, a := range e.pending {
		if a.UserID == userID {
			n++
		}
	}
	return n
}

// bumpPendingCount rewrites the cached view so UIs can show queued work.
func (e *Engine) bumpPendingCount(userID string) error {
	return e.refreshProgressCache(userID)
}
