package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
state_path = "/tmp/rhodes/state.db"
backend = "sqlite"
gacha_cost = 300
today = "2025-03-10"
log_level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Backend != "sqlite" || cfg.GachaCost != 300 || cfg.StatePath != "/tmp/rhodes/state.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.GachaWeight != DefaultGachaWeight {
		t.Fatalf("unset key must keep default, got %g", cfg.GachaWeight)
	}
	if cfg.TodayDate() != "2025-03-10" {
		t.Fatalf("unexpected today %q", cfg.TodayDate())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	bodies := []string{
		`backend = "redis"`,
		`gacha_cost = 0`,
		`gacha_weight = -1.0`,
		`today = "10/03/2025"`,
		`log_level = "loud"`,
		`colour = "blue"`,
	}
	for _, body := range bodies {
		if _, err := Load(writeConfig(t, body)); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", body, err)
		}
	}
	if _, err := Load(writeConfig(t, `gacha_cost = "lots"`)); err == nil {
		t.Fatalf("expected a decode error")
	}
}

func TestDefaultPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("default path failed: %v", err)
	}
	if path != filepath.Join("/xdg", "rhodes", "config.toml") {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/doctor")
	got, err := ExpandHome("~/.rhodes/state.json")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if got != "/home/doctor/.rhodes/state.json" {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got, _ := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path changed: %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("WARN"); err != nil || lvl != slog.LevelWarn {
		t.Fatalf("unexpected level %v %v", lvl, err)
	}
}
