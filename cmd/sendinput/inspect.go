package main

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"

	"github.com/breeze-rmm/sendinput/internal/config"
	"github.com/breeze-rmm/sendinput/internal/sendinput"
)

var (
	normWidth  int32
	normHeight int32
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <x> <y>",
	Short: "Print the absolute coordinates a pixel position maps to",
	Long: `Map a pixel position onto the 0..65535 range used by absolute mouse
events. The screen size comes from --width/--height, then the config file,
then the primary display.`,
	Args: cobra.ExactArgs(2),
	RunE: runNormalize,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show host, screen and configuration details",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	normalizeCmd.Flags().Int32Var(&normWidth, "width", 0, "screen width in pixels")
	normalizeCmd.Flags().Int32Var(&normHeight, "height", 0, "screen height in pixels")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid x %q: %w", args[0], err)
	}
	y, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid y %q: %w", args[1], err)
	}

	screen, err := screenFor(normWidth, normHeight)
	if err != nil {
		return err
	}
	width, height := screen.ScreenSize()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("screen size unavailable on %s, pass --width and --height", runtime.GOOS)
	}

	m := sendinput.NormalizeMouse(sendinput.MouseInput{Dx: int32(x), Dy: int32(y)}, screen)
	fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", m.Dx, m.Dy)
	return nil
}

func screenFor(width, height int32) (sendinput.ScreenMetrics, error) {
	if width > 0 && height > 0 {
		return sendinput.FixedScreen{Width: width, Height: height}, nil
	}
	cfg, err := validConfig()
	if err != nil {
		return nil, err
	}
	if w, h, ok := cfg.ScreenOverride(); ok {
		return sendinput.FixedScreen{Width: w, Height: h}, nil
	}
	return sendinput.NewSystemInjector(), nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := validConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if hi, err := host.InfoWithContext(cmd.Context()); err == nil {
		fmt.Fprintf(out, "Host:        %s\n", hi.Hostname)
		fmt.Fprintf(out, "OS:          %s %s (%s)\n", hi.Platform, hi.PlatformVersion, hi.KernelArch)
	} else {
		log.Debug("host info unavailable", "error", err)
		fmt.Fprintf(out, "OS:          %s/%s\n", runtime.GOOS, runtime.GOARCH)
	}

	supported := runtime.GOOS == "windows"
	fmt.Fprintf(out, "SendInput:   %s\n", yesNo(supported))

	width, height := sendinput.NewSystemInjector().ScreenSize()
	fmt.Fprintf(out, "Screen:      %dx%d\n", width, height)
	if w, h, ok := cfg.ScreenOverride(); ok {
		fmt.Fprintf(out, "Override:    %dx%d\n", w, h)
	}

	fmt.Fprintf(out, "Config dir:  %s\n", config.Dir())
	fmt.Fprintf(out, "Pipe:        %s\n", cfg.PipePath)
	fmt.Fprintf(out, "Version:     %s\n", version)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "available"
	}
	return "unavailable"
}
