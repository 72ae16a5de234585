package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/emberlab/ember/internal/api"
	"github.com/emberlab/ember/internal/app/engine"
	"github.com/emberlab/ember/internal/health"
	"github.com/emberlab/ember/internal/infra/cache"
	_ "github.com/emberlab/ember/internal/infra/metrics" // Register Prometheus metrics
	"github.com/emberlab/ember/internal/infra/sqlite"
)

// Daemon is the core Ember runtime. It wires together the store, the
// durable cache, the gamification engine, the API server, and the
// background jobs (offline-queue sync, weekly league rollover).
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Cache  *cache.Cache
	Engine *engine.Engine
	Server *api.Server
	Health *health.Checker

	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	home := emberHome()

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

	// First-run setup: ladder, challenge catalog, local profile
	if err := eng.Leagues.SeedDefaultLeagues(); err != nil {
		log.Printf("[daemon] seed leagues: %v", err)
	}
	if err := eng.Challenges.SeedDefaultChallenges(); err != nil {
		log.Printf("[daemon] seed challenges: %v", err)
	}
	if cfg.User.ID != "" {
		if err := db.CreateProfile(cfg.User.ID, cfg.User.DisplayName, time.Now()); err != nil {
			log.Printf("[daemon] create local profile: %v", err)
		}
	}

	checker := health.NewChecker(db, home, eng)

	srv := api.NewServer(eng, db)
	srv.SetHealth(checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config: cfg,
		DB:     db,
		Cache:  c,
		Engine: eng,
		Server: srv,
		Health: checker,
	}, nil
}

// Serve starts the background jobs and the HTTP server, blocking until
// shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.startJobs()
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if d.scheduler != nil {
			d.scheduler.Stop()
		}
		// Final sync pass so queued work survives in the store, not just the queue
		if err := d.Engine.SyncPendingActions(); err != nil {
			log.Printf("[daemon] final sync: %v", err)
		}
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.Cache.Close()
		_ = d.DB.Close()
	}()

	fmt.Printf("Ember serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// startJobs schedules the recurring engine work: the offline-queue sync
// pass and the Monday-midnight league rollover.
func (d *Daemon) startJobs() {
	s := gocron.NewScheduler(time.Local)

	_, err := s.Every(d.Config.Engine.SyncIntervalSeconds).Seconds().Do(func() {
		if err := d.Engine.SyncPendingActions(); err != nil {
			log.Printf("[daemon] sync: %v", err)
		}
	})
	if err != nil {
		log.Printf("[daemon] schedule sync: %v", err)
	}

	// Week rollover: resolve the week that just ended, then zero the
	// weekly accumulators. Runs shortly after Monday midnight; the ended
	// week is addressed by looking one day back.
	_, err = s.Every(1).Monday().At("00:05").Do(func() {
		endedWeek := time.Now().AddDate(0, 0, -1)
		moves, err := d.Engine.Leagues.ApplyWeeklyMovements(endedWeek)
		if err != nil {
			log.Printf("[daemon] league rollover: %v", err)
			return
		}
		reset, err := d.DB.ResetAllWeekXP()
		if err != nil {
			log.Printf("[daemon] week xp reset: %v", err)
			return
		}
		log.Printf("[daemon] week rollover: %d promoted, %d demoted, %d profiles reset",
			moves.Promoted, moves.Demoted, reset)
	})
	if err != nil {
		log.Printf("[daemon] schedule rollover: %v", err)
	}

	s.StartAsync()
	d.scheduler = s
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.scheduler != nil {
		d.scheduler.Stop()
	}
	if d.Cache != nil {
		_ = d.Cache.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
