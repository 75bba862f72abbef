// Command sendinput-dll builds the rundll32 entry point:
//
//	go build -buildmode=c-shared -o SendInput.dll ./cmd/sendinput-dll
//	rundll32.exe SendInput.dll,_SendInput {"type":1,"ki":{"wVk":65}}
//
// The export never reports failure. Diagnostics go to log_file when the
// config sets one.
package main

import (
	"io"
	"runtime/debug"
	"sync"

	"github.com/breeze-rmm/sendinput/internal/config"
	"github.com/breeze-rmm/sendinput/internal/logging"
	"github.com/breeze-rmm/sendinput/internal/sendinput"
)

var log = logging.L("dll")

var (
	initOnce   sync.Once
	translator *sendinput.Translator
	logCloser  io.Closer

	// loadTranslator is swapped in tests.
	loadTranslator = systemTranslator
)

func main() {}

// systemTranslator reads the shared config file and opens the log file.
// The log file stays open for the life of the host process.
func systemTranslator() *sendinput.Translator {
	cfg, err := config.Load("")
	if err != nil {
		cfg = config.Default()
	}

	if cfg.LogFile != "" {
		if closer, err := logging.Configure(cfg.Logging()); err == nil {
			logCloser = closer
		}
	}
	if err != nil {
		log.Warn("config unreadable, using defaults", logging.KeyError, err)
	}
	if cfg.Validate().HasFatals() {
		cfg = config.Default()
	}

	if w, h, ok := cfg.ScreenOverride(); ok {
		return sendinput.NewSystem(sendinput.FixedScreen{Width: w, Height: h})
	}
	return sendinput.NewSystem(nil)
}

// handle injects the event described by cmdLine. Nothing escapes: a panic
// here would take down the rundll32 host.
func handle(cmdLine string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("input export panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	initOnce.Do(func() {
		translator = loadOrFallback()
	})
	translator.Dispatch(cmdLine)
}

// loadOrFallback keeps the export usable when loading the configured
// translator panics: the default system translator is used instead.
func loadOrFallback() (tr *sendinput.Translator) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("translator setup panicked, using defaults", "panic", r, "stack", string(debug.Stack()))
			tr = sendinput.NewSystem(nil)
		}
	}()
	tr = loadTranslator()
	if tr == nil {
		tr = sendinput.NewSystem(nil)
	}
	return tr
}
