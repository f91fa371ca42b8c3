// Package config loads the rhodes TOML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"rhodes-todo/model"
	"rhodes-todo/store"
)

const (
	DefaultGachaCost   = 600
	DefaultGachaWeight = 1000.0
	DefaultStatePath   = "~/.rhodes/state.json"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	StatePath   string  `toml:"state_path"`
	Backend     string  `toml:"backend"`
	GachaCost   int     `toml:"gacha_cost"`
	GachaWeight float64 `toml:"gacha_weight"`
	Today       string  `toml:"today"`
	LogLevel    string  `toml:"log_level"`
	LogFile     string  `toml:"log_file"`
}

func Default() Config {
	return Config{
		StatePath:   DefaultStatePath,
		Backend:     string(store.KindFile),
		GachaCost:   DefaultGachaCost,
		GachaWeight: DefaultGachaWeight,
		LogLevel:    "info",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/rhodes/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "rhodes", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "rhodes", "config.toml"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	path, err := ExpandHome(path)
	if err != nil {
		return Config{}, err
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if _, err := store.ParseKind(c.Backend); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.GachaCost <= 0 {
		return fmt.Errorf("%w: gacha_cost must be positive, got %d", ErrInvalid, c.GachaCost)
	}
	if c.GachaWeight <= 0 {
		return fmt.Errorf("%w: gacha_weight must be positive, got %g", ErrInvalid, c.GachaWeight)
	}
	if _, err := model.ParseDate(c.Today); err != nil {
		return fmt.Errorf("%w: today: %v", ErrInvalid, err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if strings.TrimSpace(c.StatePath) == "" && c.Backend != string(store.KindMemory) {
		return fmt.Errorf("%w: state_path is empty", ErrInvalid)
	}
	return nil
}

// ResolvedStatePath returns StatePath with ~ expanded.
func (c Config) ResolvedStatePath() (string, error) {
	return ExpandHome(c.StatePath)
}

// TodayDate returns the configured date override, zero when unset.
func (c Config) TodayDate() model.Date {
	d, _ := model.ParseDate(c.Today)
	return d
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
