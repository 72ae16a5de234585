// Package actionlog is the debounce/dedup log for gamification actions.
// Every performed action is appended here (online or offline) so the engine
// can collapse duplicate rapid-fire triggers into a single award. Entries
// live in a bounded ring persisted through the durable cache — oldest
// evicted first. The log is consulted for existence and time-window queries
// only, never for replay.
package actionlog

import (
	"log"
	"time"

	"github.com/emberlab/ember/internal/domain"
	"github.com/emberlab/ember/internal/infra/cache"
)

const (
	storageKey = "action_logs"
	maxEntries = 1000
)

// Log records recent gamification-triggering actions per user.
// Storage failures are swallowed and logged: the log degrades to
// "always allow" rather than blocking user actions.
type Log struct {
	cache *cache.Cache
	now   func() time.Time
}

// New creates an action log persisted through the given cache.
func New(c *cache.Cache) *Log {
	return NewWithClock(c, time.Now)
}

// NewWithClock creates an action log with an injected clock for tests.
func NewWithClock(c *cache.Cache, now func() time.Time) *Log {
	return &Log{cache: c, now: now}
}

// Record appends an entry, evicting the oldest beyond the ring cap.
func (l *Log) Record(action, userID string, metadata map[string]string) {
	entries := l.load()
	entries = append(entries, domain.ActionLogEntry{
		Action:    action,
		UserID:    userID,
		Timestamp: l.now().UnixMilli(),
		Metadata:  metadata,
	})
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	l.save(entries)
}

// HasActionInWindow reports whether a matching entry exists within the
// trailing window. This is the debounce check.
func (l *Log) HasActionInWindow(action, userID string, window time.Duration) bool {
	now := l.now().UnixMilli()
	for _, e := range l.load() {
		if e.Action == action && e.UserID == userID && now-e.Timestamp < window.Milliseconds() {
			return true
		}
	}
	return false
}

// CountSince counts matching entries at or after a timestamp.
func (l *Log) CountSince(action, userID string, since time.Time) int {
	cutoff := since.UnixMilli()
	count := 0
	for _, e := range l.load() {
		if e.Action == action && e.UserID == userID && e.Timestamp >= cutoff {
			count++
		}
	}
	return count
}

// Clear drops entries for one user, or everything when userID is empty.
func (l *Log) Clear(userID string) {
	if userID == "" {
		if err := l.cache.Remove(storageKey); err != nil {
			log.Printf("[actionlog] clear: %v", err)
		}
		return
	}
	var kept []domain.ActionLogEntry
	for _, e := range l.load() {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	l.save(kept)
}

func (l *Log) load() []domain.ActionLogEntry {
	var entries []domain.ActionLogEntry
	if _, err := l.cache.Get(storageKey, &entries); err != nil {
		// Degrade to "always allow" — never block a user action on the log
		log.Printf("[actionlog] load: %v", err)
		return nil
	}
	return entries
}

func (l *Log) save(entries []domain.ActionLogEntry) {
	if err := l.cache.Set(storageKey, entries); err != nil {
		log.Printf("[actionlog] save: %v", err)
	}
}
