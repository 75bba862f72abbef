package sendinput

import (
	"errors"
	"runtime"
	"sync"
	"testing"
)

type recordingInjector struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingInjector) Inject(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingInjector) submitted() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

type countingScreen struct {
	FixedScreen
	calls int
}

func (s *countingScreen) ScreenSize() (int32, int32) {
	s.calls++
	return s.FixedScreen.ScreenSize()
}

func TestDispatchScenarios(t *testing.T) {
	screen := FixedScreen{Width: 1920, Height: 1080}

	tests := []struct {
		name    string
		payload string
		want    []Event
	}{
		{
			name:    "absolute origin",
			payload: `{"type":0,"mi":{"dx":0,"dy":0,"dwFlags":32769}}`,
			want:    []Event{MouseInput{Flags: 32769}},
		},
		{
			name:    "absolute center",
			payload: `{"type":0,"mi":{"dx":960,"dy":540,"dwFlags":32769}}`,
			want:    []Event{MouseInput{Dx: 32767, Dy: 32767, Flags: 32769}},
		},
		{
			name:    "key down A",
			payload: `{"type":1,"ki":{"wVk":65,"dwFlags":0}}`,
			want:    []Event{KeyboardInput{VirtualKey: 65}},
		},
		{
			name:    "hardware message",
			payload: `{"type":2,"hi":{"uMsg":512}}`,
			want:    []Event{HardwareInput{Msg: 512}},
		},
		{name: "not json", payload: `not json`},
		{name: "unterminated", payload: `{"type":1,"ki":{"wVk":65}`},
		{name: "missing type", payload: `{"ki":{"wVk":65}}`},
		{name: "unknown type", payload: `{"type":9,"ki":{"wVk":65}}`},
		{name: "pointer without mi", payload: `{"type":0}`},
		{name: "keyboard without ki", payload: `{"type":1}`},
		{name: "hardware without hi", payload: `{"type":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingInjector{}
			New(rec, screen).Dispatch(tt.payload)

			got := rec.submitted()
			if len(got) != len(tt.want) {
				t.Fatalf("submitted %d events, want %d: %#v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("event %d = %#v, want %#v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDispatchSwallowsInjectorError(t *testing.T) {
	rec := &recordingInjector{err: errors.New("access denied")}
	New(rec, FixedScreen{Width: 800, Height: 600}).Dispatch(`{"type":1,"ki":{"wVk":13}}`)

	if n := len(rec.submitted()); n != 1 {
		t.Fatalf("expected exactly one submission attempt, got %d", n)
	}
}

func TestSendReturnsErrors(t *testing.T) {
	rec := &recordingInjector{}
	tr := New(rec, FixedScreen{Width: 800, Height: 600})

	if err := tr.Send([]byte(`{"type":7}`)); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("Send unknown type: got %v", err)
	}
	if err := tr.Send([]byte(`{"type":1,"ki":{"wVk":65}}`)); err != nil {
		t.Fatalf("Send valid payload: %v", err)
	}

	injectErr := errors.New("blocked")
	rec.err = injectErr
	err := tr.Send([]byte(`{"type":2,"hi":{}}`))
	if !errors.Is(err, injectErr) {
		t.Fatalf("Send should wrap injector error, got %v", err)
	}
}

func TestTranslateQueriesScreenOnlyForPointerEvents(t *testing.T) {
	screen := &countingScreen{FixedScreen: FixedScreen{Width: 100, Height: 100}}
	tr := New(&recordingInjector{}, screen)

	if _, err := tr.Translate([]byte(`{"type":1,"ki":{"wVk":65}}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Translate([]byte(`{"type":2,"hi":{}}`)); err != nil {
		t.Fatal(err)
	}
	if screen.calls != 0 {
		t.Fatalf("screen queried %d times for non-pointer events", screen.calls)
	}

	ev, err := tr.Translate([]byte(`{"type":0,"mi":{"dx":50,"dy":25}}`))
	if err != nil {
		t.Fatal(err)
	}
	if screen.calls != 1 {
		t.Fatalf("screen queried %d times, want 1", screen.calls)
	}
	if ev != (MouseInput{Dx: 32767, Dy: 16383}) {
		t.Fatalf("Translate = %#v", ev)
	}
}

func TestTranslateDefaultsMissingLeavesToZero(t *testing.T) {
	tr := New(&recordingInjector{}, FixedScreen{Width: 1024, Height: 768})

	for _, payload := range []string{
		`{"type":0,"mi":{}}`,
		`{"type":1,"ki":{}}`,
		`{"type":2,"hi":{}}`,
	} {
		ev, err := tr.Translate([]byte(payload))
		if err != nil {
			t.Fatalf("Translate(%s): %v", payload, err)
		}
		var zero Event
		switch ev.Kind() {
		case KindMouse:
			zero = MouseInput{}
		case KindKeyboard:
			zero = KeyboardInput{}
		case KindHardware:
			zero = HardwareInput{}
		}
		if ev != zero {
			t.Fatalf("Translate(%s) = %#v, want zero value", payload, ev)
		}
	}
}

func TestConcurrentDispatchIsIndependent(t *testing.T) {
	rec := &recordingInjector{}
	tr := New(rec, FixedScreen{Width: 1920, Height: 1080})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Dispatch(`{"type":1,"ki":{"wVk":65}}`)
			tr.Dispatch(`garbage`)
		}()
	}
	wg.Wait()

	if n := len(rec.submitted()); n != 50 {
		t.Fatalf("submitted %d events, want 50", n)
	}
}

func TestSystemInjectorUnsupportedOffWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("SendInput is available")
	}
	err := NewSystem(nil).Send([]byte(`{"type":1,"ki":{"wVk":65}}`))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
