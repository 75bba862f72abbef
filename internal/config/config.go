package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/breeze-rmm/sendinput/internal/logging"
)

const fileName = "sendinput.yaml"

type Config struct {
	LogLevel      string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat     string `mapstructure:"log_format" yaml:"log_format"`
	LogFile       string `mapstructure:"log_file" yaml:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb" yaml:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups" yaml:"log_max_backups"`

	PipePath        string `mapstructure:"pipe_path" yaml:"pipe_path"`
	MaxConnections  int    `mapstructure:"max_connections" yaml:"max_connections"`
	QueueSize       int    `mapstructure:"queue_size" yaml:"queue_size"`
	EventsPerSecond int    `mapstructure:"events_per_second" yaml:"events_per_second"`

	// ScreenWidth and ScreenHeight replace GetSystemMetrics when both are set.
	ScreenWidth  int `mapstructure:"screen_width" yaml:"screen_width"`
	ScreenHeight int `mapstructure:"screen_height" yaml:"screen_height"`
}

func Default() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		LogMaxSizeMB:    10,
		LogMaxBackups:   3,
		PipePath:        DefaultPipePath(),
		MaxConnections:  8,
		QueueSize:       256,
		EventsPerSecond: 1000,
	}
}

// Load reads cfgFile, or sendinput.yaml from the platform config directory
// and the working directory when cfgFile is empty. A missing file is not an
// error. SENDINPUT_* environment variables override file values.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()
	v := viper.New()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("sendinput")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SENDINPUT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// SaveTo writes cfg as YAML. An empty path writes to the platform config
// directory.
func SaveTo(cfg *Config, path string) (string, error) {
	if path == "" {
		path = filepath.Join(Dir(), fileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("config: %w", err)
	}

	v := viper.New()
	setDefaults(v, cfg)
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_max_size_mb", cfg.LogMaxSizeMB)
	v.SetDefault("log_max_backups", cfg.LogMaxBackups)
	v.SetDefault("pipe_path", cfg.PipePath)
	v.SetDefault("max_connections", cfg.MaxConnections)
	v.SetDefault("queue_size", cfg.QueueSize)
	v.SetDefault("events_per_second", cfg.EventsPerSecond)
	v.SetDefault("screen_width", cfg.ScreenWidth)
	v.SetDefault("screen_height", cfg.ScreenHeight)
}

// ScreenOverride returns the configured screen size when both dimensions
// are set.
func (c *Config) ScreenOverride() (width, height int32, ok bool) {
	if c.ScreenWidth > 0 && c.ScreenHeight > 0 {
		return int32(c.ScreenWidth), int32(c.ScreenHeight), true
	}
	return 0, 0, false
}

// Logging returns the logging options described by c.
func (c *Config) Logging() logging.Options {
	return logging.Options{
		Format:     c.LogFormat,
		Level:      c.LogLevel,
		File:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
	}
}

// Dir is the platform configuration directory.
func Dir() string {
	switch runtime.GOOS {
	case "windows":
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "SendInput")
	case "darwin":
		return "/Library/Application Support/SendInput"
	default:
		return "/etc/sendinput"
	}
}

// DefaultPipePath is the listen address used when pipe_path is not set.
func DefaultPipePath() string {
	if runtime.GOOS == "windows" {
		return `\\.\pipe\sendinput`
	}
	return "/var/run/sendinput.sock"
}
