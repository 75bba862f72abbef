package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/breeze-rmm/sendinput/internal/config"
	"github.com/breeze-rmm/sendinput/internal/logging"
	"github.com/breeze-rmm/sendinput/internal/sendinput"
)

var (
	version   = "0.1.0"
	cfgFile   string
	logLevel  string
	logFormat string
)

var log = logging.L("main")

var rootCmd = &cobra.Command{
	Use:   "sendinput",
	Short: "Inject keyboard, mouse and hardware input described as JSON",
	Long: `sendinput translates a JSON description of one INPUT structure into a
call to the Win32 SendInput API. It can inject directly, or run as a local
pipe server that injects every newline-delimited payload it receives.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sendinput v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is "+config.Dir()+"/sendinput.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text or json)")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the logging flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	return cfg, nil
}

// validConfig loads and validates the config. Out-of-range values are
// clamped; anything fatal is returned as an error.
func validConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if result := cfg.Validate(); result.HasFatals() {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(result.Fatals...))
	}
	return cfg, nil
}

// setup configures logging to stderr and the optional log file, then
// validates the config so its warnings reach that output. The returned
// closer flushes the log file.
func setup(cmd *cobra.Command) (*config.Config, io.Closer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	opts := cfg.Logging()
	opts.Console = cmd.ErrOrStderr()
	closer, err := logging.Configure(opts)
	if err != nil {
		return nil, nil, err
	}

	if result := cfg.Validate(); result.HasFatals() {
		closer.Close()
		return nil, nil, fmt.Errorf("invalid config: %w", errors.Join(result.Fatals...))
	}
	return cfg, closer, nil
}

func newTranslator(cfg *config.Config) *sendinput.Translator {
	if w, h, ok := cfg.ScreenOverride(); ok {
		log.Debug("using configured screen size", "width", w, "height", h)
		return sendinput.NewSystem(sendinput.FixedScreen{Width: w, Height: h})
	}
	return sendinput.NewSystem(nil)
}
