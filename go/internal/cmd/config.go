package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lettershow/wordclash/go/internal/game"
)

// Config holds the full server configuration. Values come from the optional
// YAML file first, then environment overrides.
type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Game struct {
		DictionaryPath string         `yaml:"dictionary_path"`
		TeamA          string         `yaml:"team_a"`
		TeamB          string         `yaml:"team_b"`
		Pairings       []PairingEntry `yaml:"pairings"`
		Timing         TimingConfig   `yaml:"timing"`
	} `yaml:"game"`

	NATS struct {
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`

	Vision struct {
		Model string `yaml:"model"`
	} `yaml:"vision"`
}

// PairingEntry is one display pairing for the admin reveal
type PairingEntry struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// TimingConfig overrides the production timer delays, in seconds. Zero values
// keep the defaults.
type TimingConfig struct {
	CountdownSec     int `yaml:"countdown_sec"`
	RoundLimitSec    int `yaml:"round_limit_sec"`
	BonusLimitSec    int `yaml:"bonus_limit_sec"`
	ScanWatchdogSec  int `yaml:"scan_watchdog_sec"`
	ResultClearSec   int `yaml:"result_clear_sec"`
	GameOverDelaySec int `yaml:"game_over_delay_sec"`
	DebounceSec      int `yaml:"debounce_sec"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8000"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Game.DictionaryPath = "data/words.txt"
	cfg.Game.TeamA = "Team A"
	cfg.Game.TeamB = "Team B"
	cfg.Game.Pairings = []PairingEntry{
		{A: "FESTIVAL", B: "PASSPORT"},
		{A: "PLAYTIME", B: "CAMPFIRE"},
	}
	cfg.NATS.SubjectPrefix = "wordclash.events"
	return cfg
}

// loadConfig reads the YAML file when path is non-empty, then applies
// environment overrides.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Game.DictionaryPath = getEnv("DICTIONARY_PATH", cfg.Game.DictionaryPath)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	cfg.Vision.Model = getEnv("VISION_MODEL", cfg.Vision.Model)

	return cfg, nil
}

// timing converts the per-second overrides into a game.Timing
func (c *Config) timing() game.Timing {
	t := game.DefaultTiming()
	override := func(dst *time.Duration, sec int) {
		if sec > 0 {
			*dst = time.Duration(sec) * time.Second
		}
	}
	override(&t.Countdown, c.Game.Timing.CountdownSec)
	override(&t.RoundLimit, c.Game.Timing.RoundLimitSec)
	override(&t.BonusLimit, c.Game.Timing.BonusLimitSec)
	override(&t.ScanWatchdog, c.Game.Timing.ScanWatchdogSec)
	override(&t.ResultClear, c.Game.Timing.ResultClearSec)
	override(&t.GameOverDelay, c.Game.Timing.GameOverDelaySec)
	override(&t.TriggerDebounce, c.Game.Timing.DebounceSec)
	return t
}

// pairings converts config entries into the game's secret pairs
func (c *Config) pairings() []game.SecretPair {
	pairs := make([]game.SecretPair, 0, len(c.Game.Pairings))
	for _, p := range c.Game.Pairings {
		pairs = append(pairs, game.SecretPair{A: p.A, B: p.B})
	}
	return pairs
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
