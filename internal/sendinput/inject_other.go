//go:build !windows

package sendinput

// SystemInjector is a stub on platforms without SendInput.
type SystemInjector struct{}

func NewSystemInjector() *SystemInjector {
	return &SystemInjector{}
}

func (s *SystemInjector) Inject(Event) error {
	return ErrUnsupported
}

// ScreenSize reports no screen; Normalize maps every coordinate to 0.
func (s *SystemInjector) ScreenSize() (int32, int32) {
	return 0, 0
}
