// ────────────────────────────────────────────────────────────────────────────
// config.go — Scheduler configuration loading and validation
//
// Purpose:
//   - Defines the one enumerated tuning surface the scheduling core exposes
//     (backoff strategy) plus the runtime knobs around it: worker count,
//     core pinning base, activity cooldown, telemetry sink.
//   - Parses JSON with sonnet; absent fields inherit compiled defaults so a
//     partial file is always valid.
//
// Notes:
//   - Cold path only. Runs at startup and on watched-file reloads.
//   - The strategy enumeration is closed: unknown names are rejected at
//     load time, never silently defaulted, so a typo cannot demote an
//     aggressive deployment to polite.
// ────────────────────────────────────────────────────────────────────────────

package config

import (
	"errors"
	"os"
	"time"

	"github.com/sugawarayuuta/sonnet"

	"actorruntime/constants"
	"actorruntime/yield"
)

// Telemetry configures the SQLite sample recorder.
type Telemetry struct {
	Enabled    bool   `json:"enabled"`     // Recorder on/off
	Path       string `json:"path"`        // SQLite database file
	IntervalMS int64  `json:"interval_ms"` // Sampling period in milliseconds
}

// Config is the full scheduler configuration surface.
type Config struct {
	Workers    int       `json:"workers"`     // Worker threads; 0 = one per core
	Strategy   string    `json:"strategy"`    // polite | strong | aggressive
	CoreBase   int       `json:"core_base"`   // First CPU core workers pin to
	CooldownMS int64     `json:"cooldown_ms"` // Hot-flag auto-clear period
	Telemetry  Telemetry `json:"telemetry"`
}

// Default returns the compiled-in configuration used when no file exists.
func Default() Config {
	return Config{
		Workers:    constants.DefaultWorkers,
		Strategy:   yield.StrategyPolite.String(),
		CoreBase:   constants.DefaultCoreBase,
		CooldownMS: int64(constants.DefaultCooldown / time.Millisecond),
		Telemetry: Telemetry{
			Enabled:    false,
			Path:       constants.DefaultTelemetryPath,
			IntervalMS: int64(constants.DefaultTelemetryInterval / time.Millisecond),
		},
	}
}

var (
	errUnknownStrategy = errors.New("config: unknown strategy (want polite, strong or aggressive)")
	errNegativeWorkers = errors.New("config: workers must be >= 0")
	errNegativeCore    = errors.New("config: core_base must be >= 0")
)

// Load reads and validates the configuration at path. Fields the file omits
// keep their defaults; JSON zero values the file states explicitly are kept
// as stated. A missing file is an error — callers that tolerate absence
// check os.IsNotExist and fall back to Default themselves.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Default(), err
	}
	cfg := Default()
	if err := sonnet.Unmarshal(raw, &cfg); err != nil {
		return Default(), err
	}
	if err := cfg.validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, ok := parseStrategy(c.Strategy); !ok {
		return errUnknownStrategy
	}
	if c.Workers < 0 {
		return errNegativeWorkers
	}
	if c.CoreBase < 0 {
		return errNegativeCore
	}
	return nil
}

// YieldStrategy maps the validated strategy name onto the closed enum.
func (c *Config) YieldStrategy() yield.Strategy {
	s, _ := parseStrategy(c.Strategy)
	return s
}

func parseStrategy(name string) (yield.Strategy, bool) {
	switch name {
	case "", "polite", "gentle":
		return yield.StrategyPolite, true
	case "strong":
		return yield.StrategyStrong, true
	case "aggressive":
		return yield.StrategyAggressive, true
	}
	return yield.StrategyPolite, false
}

// Cooldown returns the hot-flag auto-clear period as a duration.
func (c *Config) Cooldown() time.Duration {
	if c.CooldownMS <= 0 {
		return constants.DefaultCooldown
	}
	return time.Duration(c.CooldownMS) * time.Millisecond
}

// TelemetryInterval returns the sampling period as a duration.
func (c *Config) TelemetryInterval() time.Duration {
	if c.Telemetry.IntervalMS <= 0 {
		return constants.DefaultTelemetryInterval
	}
	return time.Duration(c.Telemetry.IntervalMS) * time.Millisecond
}
