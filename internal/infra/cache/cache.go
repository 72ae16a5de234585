// Package cache is Ember's local durable key-value store.
// It backs the offline sync queue, the cached progress view, and the
// last-checkin marker: small JSON values in their own SQLite file, each
// stamped with a schema version. A version mismatch means the entry is
// stale — it is discarded rather than trusted.
//
// Single-writer-per-key: the cache is a per-process client cache, so there
// is no cross-process locking.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru"
	_ "modernc.org/sqlite"
)

// SchemaVersion stamps every entry. Bumping it invalidates all cached data.
const SchemaVersion = "1.0.0"

const (
	keyPrefix   = "ember_"
	hotSetSize  = 256 // In-memory LRU front for hot reads
)

// Cache is a namespaced, versioned durable KV store.
type Cache struct {
	db  *sql.DB
	hot *lru.Cache // key → raw JSON, bypasses SQLite on repeat reads
}

// Open creates or opens the cache database at dir/cache.db.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	dsn := filepath.Join(dir, "cache.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		version    TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache: %w", err)
	}

	hot, err := lru.New(hotSetSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init lru: %w", err)
	}

	return &Cache{db: db, hot: hot}, nil
}

// Close shuts down the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Set stores a JSON-encoded value under the namespaced key.
func (c *Cache) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	k := keyPrefix + key
	_, err = c.db.Exec(
		`INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, version=excluded.version, updated_at=excluded.updated_at`,
		k, string(raw), SchemaVersion, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	c.hot.Add(k, raw)
	return nil
}

// Get decodes the value under key into out. Returns false when the key is
// absent or was written under a different schema version (the stale entry
// is removed).
func (c *Cache) Get(key string, out any) (bool, error) {
	k := keyPrefix + key

	if raw, ok := c.hot.Get(k); ok {
		if err := json.Unmarshal(raw.([]byte), out); err != nil {
			return false, fmt.Errorf("decode %s: %w", key, err)
		}
		return true, nil
	}

	var raw, version string
	err := c.db.QueryRow(`SELECT value, version FROM kv WHERE key = ?`, k).Scan(&raw, &version)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}

	if version != SchemaVersion {
		// Stale schema — discard rather than trust
		_ = c.Remove(key)
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	c.hot.Add(k, []byte(raw))
	return true, nil
}

// Has reports whether a current-version value exists for key.
func (c *Cache) Has(key string) bool {
	var raw json.RawMessage
	ok, err := c.Get(key, &raw)
	return err == nil && ok
}

// Remove deletes the value under key.
func (c *Cache) Remove(key string) error {
	k := keyPrefix + key
	c.hot.Remove(k)
	if _, err := c.db.Exec(`DELETE FROM kv WHERE key = ?`, k); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Clear deletes every namespaced entry.
func (c *Cache) Clear() error {
	c.hot.Purge()
	if _, err := c.db.Exec(`DELETE FROM kv WHERE key LIKE ?`, keyPrefix+"%"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
