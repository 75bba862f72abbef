package config

import (
	"fmt"
	"runtime"
	"strings"
	"unicode"

	"github.com/breeze-rmm/sendinput/internal/logging"
)

var log = logging.L("config")

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

const windowsPipePrefix = `\\.\pipe\`

// ValidationResult separates problems that make the config unusable from
// problems that were corrected or can be ignored.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

func (r ValidationResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// Validate runs ValidateTiered and logs what it found. Call it after
// logging is configured so the warnings reach the configured output.
func (c *Config) Validate() ValidationResult {
	r := c.ValidateTiered()
	for _, err := range r.Fatals {
		log.Error("config validation", logging.KeyError, err)
	}
	for _, err := range r.Warnings {
		log.Warn("config validation", logging.KeyError, err)
	}
	return r
}

// ValidateTiered checks the config and clamps out-of-range values in place,
// splitting problems by severity.
func (c *Config) ValidateTiered() ValidationResult {
	var r ValidationResult

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}
	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	c.LogMaxSizeMB = clamp(&r, "log_max_size_mb", c.LogMaxSizeMB, 1, 1024)
	c.LogMaxBackups = clamp(&r, "log_max_backups", c.LogMaxBackups, 1, 50)
	c.MaxConnections = clamp(&r, "max_connections", c.MaxConnections, 1, 64)
	c.QueueSize = clamp(&r, "queue_size", c.QueueSize, 1, 10000)
	// 0 disables rate limiting.
	c.EventsPerSecond = clamp(&r, "events_per_second", c.EventsPerSecond, 0, 10000)

	if strings.TrimSpace(c.PipePath) == "" {
		c.PipePath = DefaultPipePath()
		r.Warnings = append(r.Warnings, fmt.Errorf("pipe_path is empty, using %s", c.PipePath))
	} else if strings.IndexFunc(c.PipePath, unicode.IsControl) >= 0 {
		r.Fatals = append(r.Fatals, fmt.Errorf("pipe_path contains control characters"))
	} else if runtime.GOOS == "windows" && !strings.HasPrefix(strings.ToLower(c.PipePath), windowsPipePrefix) {
		r.Fatals = append(r.Fatals, fmt.Errorf("pipe_path %q must start with %s", c.PipePath, windowsPipePrefix))
	}

	if c.ScreenWidth < 0 || c.ScreenHeight < 0 {
		r.Fatals = append(r.Fatals, fmt.Errorf("screen_width/screen_height must not be negative (got %dx%d)", c.ScreenWidth, c.ScreenHeight))
	} else if (c.ScreenWidth == 0) != (c.ScreenHeight == 0) {
		r.Fatals = append(r.Fatals, fmt.Errorf("screen_width and screen_height must be set together (got %dx%d)", c.ScreenWidth, c.ScreenHeight))
	}

	return r
}

func clamp(r *ValidationResult, key string, v, lo, hi int) int {
	if v < lo {
		r.Warnings = append(r.Warnings, fmt.Errorf("%s %d is below minimum %d, clamping", key, v, lo))
		return lo
	}
	if v > hi {
		r.Warnings = append(r.Warnings, fmt.Errorf("%s %d exceeds maximum %d, clamping", key, v, hi))
		return hi
	}
	return v
}
