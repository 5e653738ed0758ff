package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// EngineConfig holds the tunable deadlines of the game engine.
type EngineConfig struct {
	// TurnDurationSeconds is the per-turn clock for active games.
	TurnDurationSeconds int `json:"turn_duration_seconds"`
	// SetupDurationSeconds is how long both players have to place pieces
	// once the second seat is filled.
	SetupDurationSeconds int `json:"setup_duration_seconds"`
	// SweepIntervalSeconds is how often the deadline sweep runs.
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`
}

var (
	cfg      *EngineConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadEngineConfig loads the engine configuration from the given path.
func LoadEngineConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read engine config: %w", err)
			return
		}

		var c EngineConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal engine config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetTurnDuration returns the per-turn clock, defaulting to 30 seconds.
func GetTurnDuration() time.Duration {
	if cfg == nil || cfg.TurnDurationSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(cfg.TurnDurationSeconds) * time.Second
}

// GetSetupDuration returns the placement clock, defaulting to 60 seconds.
func GetSetupDuration() time.Duration {
	if cfg == nil || cfg.SetupDurationSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(cfg.SetupDurationSeconds) * time.Second
}

// GetSweepInterval returns the sweep cadence, defaulting to 5 seconds.
func GetSweepInterval() time.Duration {
	if cfg == nil || cfg.SweepIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(cfg.SweepIntervalSeconds) * time.Second
}
