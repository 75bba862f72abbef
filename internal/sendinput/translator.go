package sendinput

import (
	"fmt"

	"github.com/breeze-rmm/sendinput/internal/logging"
)

var log = logging.L("sendinput")

// Injector submits one event to the OS input queue.
type Injector interface {
	Inject(ev Event) error
}

// Translator turns JSON payloads into injected events.
type Translator struct {
	injector Injector
	screen   ScreenMetrics
}

// New returns a Translator that normalizes pointer coordinates against
// screen and submits through injector.
func New(injector Injector, screen ScreenMetrics) *Translator {
	return &Translator{injector: injector, screen: screen}
}

// NewSystem returns a Translator bound to the host's SendInput. When
// override is non-nil it replaces the OS screen metrics.
func NewSystem(override ScreenMetrics) *Translator {
	injector := NewSystemInjector()
	if override != nil {
		return New(injector, override)
	}
	return New(injector, injector)
}

// Translate decodes payload and normalizes pointer coordinates. Nothing is
// submitted.
func (t *Translator) Translate(payload []byte) (Event, error) {
	ev, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	if m, ok := ev.(MouseInput); ok {
		ev = NormalizeMouse(m, t.screen)
	}
	return ev, nil
}

// Send translates payload and submits exactly one event.
func (t *Translator) Send(payload []byte) error {
	ev, err := t.Translate(payload)
	if err != nil {
		return err
	}
	if err := t.injector.Inject(ev); err != nil {
		return fmt.Errorf("inject %s event: %w", ev.Kind(), err)
	}
	log.Debug("input event submitted", logging.KeyKind, ev.Kind().String())
	return nil
}

// Dispatch is the fire-and-forget entry: malformed payloads, unknown types
// and injection failures are dropped with a debug log line only.
func (t *Translator) Dispatch(payload string) {
	if err := t.Send([]byte(payload)); err != nil {
		log.Debug("input event dropped", logging.KeyError, err, logging.KeyBytes, len(payload))
	}
}
