package cli

import (
	"fmt"
	"time"

	"github.com/emberlab/ember/internal/app/engine"
	"github.com/emberlab/ember/internal/daemon"
	"github.com/emberlab/ember/internal/infra/cache"
	"github.com/emberlab/ember/internal/infra/sqlite"
)

// session is an engine opened over the local data directory, shared by the
// non-serve subcommands.
type session struct {
	Config daemon.Config
	Engine *engine.Engine
	DB     *sqlite.DB
	UserID string

	cache *cache.Cache
}

// openSession wires an engine over ~/.ember, ensuring the local profile,
// ladder, and challenge catalog exist.
func openSession() (*session, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, err
	}

	home := daemon.EmberHome()
	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	c, err := cache.Open(home)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	eng := engine.New(db, c, engine.Options{
		Debounce: time.Duration(cfg.Engine.DebounceSeconds) * time.Second,
	})
	eng.Streaks.FreezeCap = cfg.Engine.FreezeCap

	if err := eng.Leagues.SeedDefaultLeagues(); err != nil {
		db.Close()
		c.Close()
		return nil, err
	}
	if err := eng.Challenges.SeedDefaultChallenges(); err != nil {
		db.Close()
		c.Close()
		return nil, err
	}

	userID := userFlag
	if userID == "" {
		userID = cfg.User.ID
	}
	if err := db.CreateProfile(userID, cfg.User.DisplayName, time.Now()); err != nil {
		db.Close()
		c.Close()
		return nil, err
	}

	return &session{Config: cfg, Engine: eng, DB: db, UserID: userID, cache: c}, nil
}

// Close releases the session's store handles.
func (s *session) Close() {
	_ = s.cache.Close()
	_ = s.DB.Close()
}
