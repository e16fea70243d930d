package warmer

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds the warmer's cron schedule: the one knob this job
// actually needs: how often to sweep idle sessions out of the pool
// manager. There is no CrawlTimeout or NotifyMaxConcurrent here since
// EvictIdle does no network I/O and sends no notifications.
type Config struct {
	// Schedule is the cron expression controlling the eviction sweep.
	Schedule string
	// Timezone is the IANA timezone the schedule is interpreted in.
	Timezone string
}

// DefaultConfig returns a Config that sweeps every fifteen minutes in
// UTC, a cadence comfortably inside the pool manager's default
// one-hour idle TTL.
func DefaultConfig() Config {
	return Config{Schedule: "*/15 * * * *", Timezone: "UTC"}
}

// Validate checks Schedule parses as a cron expression and Timezone
// resolves to a known location, failing fast on either.
func (c Config) Validate() error {
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("warmer: invalid cron schedule %q: %w", c.Schedule, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("warmer: invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// LoadConfigFromEnv reads SCROLL_WARMER_CRON_SCHEDULE and
// SCROLL_WARMER_TIMEZONE, falling back to DefaultConfig on unset or
// invalid values; it never errors, always returning something
// Validate accepts.
func LoadConfigFromEnv(getenv func(string) string) Config {
	cfg := DefaultConfig()

	if schedule := getenv("SCROLL_WARMER_CRON_SCHEDULE"); schedule != "" {
		if _, err := cron.ParseStandard(schedule); err == nil {
			cfg.Schedule = schedule
		}
	}
	if tz := getenv("SCROLL_WARMER_TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			cfg.Timezone = tz
		}
	}
	return cfg
}
