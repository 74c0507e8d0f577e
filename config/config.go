/*
Package config loads server configuration from the environment.

PURPOSE:
  One struct holds everything the binary needs: HTTP server settings,
  the database path, and every premium-policy knob. Parsed once at
  startup with caarlos0/env; the rest of the program receives plain
  values and never reads the environment itself.

USAGE:
  cfg, err := config.Load()
  if err != nil {
      log.Fatal(err)
  }
  policy, err := cfg.PremiumPolicy()
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"

	"github.com/staffhub/comp-engine/comp"
)

// Config is the full server configuration.
type Config struct {
	// HTTP server
	Addr            string        `env:"COMP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"COMP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"COMP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"COMP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSOrigins     []string      `env:"COMP_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`

	// Storage
	DatabasePath string `env:"COMP_DB_PATH" envDefault:"./data/comp.db"`

	// Premium policy
	WeekendMultiplier  float64 `env:"COMP_WEEKEND_MULTIPLIER" envDefault:"0.5"`
	EveningMultiplier  float64 `env:"COMP_EVENING_MULTIPLIER" envDefault:"0.25"`
	NightMultiplier    float64 `env:"COMP_NIGHT_MULTIPLIER" envDefault:"0.5"`
	OvertimeMultiplier float64 `env:"COMP_OVERTIME_MULTIPLIER" envDefault:"1"`

	EveningStartHour int `env:"COMP_EVENING_START_HOUR" envDefault:"18"`
	NightStartHour   int `env:"COMP_NIGHT_START_HOUR" envDefault:"22"`
	NightEndHour     int `env:"COMP_NIGHT_END_HOUR" envDefault:"6"`

	OvertimeThresholdHours float64 `env:"COMP_OVERTIME_THRESHOLD_HOURS" envDefault:"8"`
	MaxRequestHours        float64 `env:"COMP_MAX_REQUEST_HOURS" envDefault:"8"`

	// "hold_immediately" or "hold_on_approval"
	PendingHold string `env:"COMP_PENDING_HOLD" envDefault:"hold_immediately"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// PremiumPolicy builds the domain policy from the configured knobs.
func (c Config) PremiumPolicy() (comp.PremiumPolicy, error) {
	hold := comp.PendingHold(c.PendingHold)
	switch hold {
	case comp.HoldImmediately, comp.HoldOnApproval:
	default:
		return comp.PremiumPolicy{}, fmt.Errorf("invalid COMP_PENDING_HOLD %q", c.PendingHold)
	}

	if c.EveningStartHour < 0 || c.EveningStartHour > 23 ||
		c.NightStartHour < 0 || c.NightStartHour > 23 ||
		c.NightEndHour < 0 || c.NightEndHour > 23 {
		return comp.PremiumPolicy{}, fmt.Errorf("hour boundaries must be within 0..23")
	}

	return comp.PremiumPolicy{
		WeekendMultiplier:      decimal.NewFromFloat(c.WeekendMultiplier),
		EveningMultiplier:      decimal.NewFromFloat(c.EveningMultiplier),
		NightMultiplier:        decimal.NewFromFloat(c.NightMultiplier),
		OvertimeMultiplier:     decimal.NewFromFloat(c.OvertimeMultiplier),
		EveningStartHour:       c.EveningStartHour,
		NightStartHour:         c.NightStartHour,
		NightEndHour:           c.NightEndHour,
		DailyOvertimeThreshold: comp.Hours(c.OvertimeThresholdHours),
		MaxRequestHours:        comp.Hours(c.MaxRequestHours),
		PendingHold:            hold,
	}, nil
}
