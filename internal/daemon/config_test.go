package daemon

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Port != 7979 {
		t.Errorf("port = %d, want 7979", cfg.API.Port)
	}
	if cfg.Engine.DebounceSeconds != 5 {
		t.Errorf("debounce = %d, want 5", cfg.Engine.DebounceSeconds)
	}
	if cfg.Engine.SyncIntervalSeconds != 30 {
		t.Errorf("sync interval = %d, want 30", cfg.Engine.SyncIntervalSeconds)
	}
	if cfg.Engine.FreezeCap != 0 {
		t.Errorf("freeze cap = %d, want 0 (unlimited)", cfg.Engine.FreezeCap)
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("EMBER_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("host = %s, want default", cfg.API.Host)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	t.Setenv("EMBER_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 8111
	cfg.User.DisplayName = "Rosa"
	cfg.Engine.FreezeCap = 3

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.API.Port != 8111 {
		t.Errorf("port = %d, want 8111", loaded.API.Port)
	}
	if loaded.User.DisplayName != "Rosa" {
		t.Errorf("display name = %q, want Rosa", loaded.User.DisplayName)
	}
	if loaded.Engine.FreezeCap != 3 {
		t.Errorf("freeze cap = %d, want 3", loaded.Engine.FreezeCap)
	}
}

func TestLoadConfigRepairsBadValues(t *testing.T) {
	t.Setenv("EMBER_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Engine.DebounceSeconds = -1
	cfg.Engine.SyncIntervalSeconds = 0
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Engine.DebounceSeconds != 5 || loaded.Engine.SyncIntervalSeconds != 30 {
		t.Errorf("repaired = %d/%d, want 5/30",
			loaded.Engine.DebounceSeconds, loaded.Engine.SyncIntervalSeconds)
	}
}
