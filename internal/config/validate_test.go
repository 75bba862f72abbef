package config

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"strings"
	"testing"

	"github.com/breeze-rmm/sendinput/internal/logging"
)

func TestValidateTieredDefaultsAreClean(t *testing.T) {
	cfg := Default()
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("default config has fatals: %v", result.Fatals)
	}
	if len(result.Warnings) > 0 {
		t.Fatalf("default config has warnings: %v", result.Warnings)
	}
}

func TestValidateTieredClampingIsWarning(t *testing.T) {
	cfg := Default()
	cfg.MaxConnections = 0
	cfg.QueueSize = 50000
	cfg.EventsPerSecond = -1
	cfg.LogMaxSizeMB = 0
	result := cfg.ValidateTiered()

	if result.HasFatals() {
		t.Fatalf("clamped values should be warnings, not fatal: %v", result.Fatals)
	}
	if len(result.Warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %d: %v", len(result.Warnings), result.Warnings)
	}
	if cfg.MaxConnections != 1 {
		t.Fatalf("MaxConnections = %d, want 1 (clamped)", cfg.MaxConnections)
	}
	if cfg.QueueSize != 10000 {
		t.Fatalf("QueueSize = %d, want 10000 (clamped)", cfg.QueueSize)
	}
	if cfg.EventsPerSecond != 0 {
		t.Fatalf("EventsPerSecond = %d, want 0 (clamped)", cfg.EventsPerSecond)
	}
	if cfg.LogMaxSizeMB != 1 {
		t.Fatalf("LogMaxSizeMB = %d, want 1 (clamped)", cfg.LogMaxSizeMB)
	}
}

func TestValidateTieredZeroRateIsUnlimited(t *testing.T) {
	cfg := Default()
	cfg.EventsPerSecond = 0
	result := cfg.ValidateTiered()
	if result.HasFatals() || len(result.Warnings) != 0 {
		t.Fatalf("events_per_second 0 should be accepted: %v %v", result.Fatals, result.Warnings)
	}
}

func TestValidateTieredUnknownLogLevelIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("unknown log level should not be fatal")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for unknown log level")
	}
}

func TestValidateTieredInvalidLogFormatIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("invalid log format should not be fatal")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for invalid log format")
	}
}

func TestValidateTieredEmptyPipePathFallsBack(t *testing.T) {
	cfg := Default()
	cfg.PipePath = "  "
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("empty pipe path should be a warning: %v", result.Fatals)
	}
	if cfg.PipePath != DefaultPipePath() {
		t.Fatalf("PipePath = %q, want %q", cfg.PipePath, DefaultPipePath())
	}
}

func TestValidateTieredPipePathControlCharsIsFatal(t *testing.T) {
	cfg := Default()
	cfg.PipePath = "sendinput\x00pipe"
	if !cfg.ValidateTiered().HasFatals() {
		t.Fatal("control chars in pipe_path should be fatal")
	}
}

func TestValidateTieredWindowsPipePrefix(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("named pipe paths only apply on Windows")
	}
	cfg := Default()
	cfg.PipePath = `C:\temp\sendinput`
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("non-pipe path should be fatal on Windows")
	}
	if !strings.Contains(result.Fatals[0].Error(), `\\.\pipe\`) {
		t.Fatalf("unexpected error: %v", result.Fatals[0])
	}
}

func TestValidateTieredScreenOverride(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		fatal         bool
	}{
		{"unset", 0, 0, false},
		{"both set", 1920, 1080, false},
		{"width only", 1920, 0, true},
		{"height only", 0, 1080, true},
		{"negative", -1, 1080, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ScreenWidth, cfg.ScreenHeight = tt.width, tt.height
			if got := cfg.ValidateTiered().HasFatals(); got != tt.fatal {
				t.Fatalf("HasFatals() = %v, want %v", got, tt.fatal)
			}
		})
	}
}

func TestHasFatals(t *testing.T) {
	r := ValidationResult{}
	if r.HasFatals() {
		t.Fatal("HasFatals() on empty result should be false")
	}
	r.Fatals = append(r.Fatals, fmt.Errorf("test error"))
	if !r.HasFatals() {
		t.Fatal("HasFatals() should be true with a fatal error")
	}
}

func TestValidateLogsThroughConfigLogger(t *testing.T) {
	var buf bytes.Buffer
	logging.Init("text", "warn", &buf)
	t.Cleanup(func() { logging.Init("text", "info", io.Discard) })

	cfg := Default()
	cfg.ScreenWidth = 100 // fatal
	cfg.QueueSize = 0     // warning

	result := cfg.Validate()
	if len(result.Fatals) != 1 || len(result.Warnings) != 1 {
		t.Fatalf("Validate() = %d fatals, %d warnings, want 1 and 1", len(result.Fatals), len(result.Warnings))
	}

	out := buf.String()
	for _, want := range []string{"component=config", "level=ERROR", "level=WARN", "error=", "screen_width", "queue_size"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}
