package sendinput

// absoluteRange is the upper bound of the normalized coordinate space used
// with MOUSEEVENTF_ABSOLUTE.
const absoluteRange = 65535

// Normalize maps a pixel coordinate onto 0..65535 for a screen dimension
// of the given size, truncating toward zero. A non-positive dimension means
// the metrics are unavailable and yields 0.
func Normalize(raw, dimension int32) int32 {
	if dimension <= 0 {
		return 0
	}
	return int32(int64(raw) * absoluteRange / int64(dimension))
}

// ScreenMetrics reports the primary screen size in pixels.
type ScreenMetrics interface {
	ScreenSize() (width, height int32)
}

// FixedScreen is a ScreenMetrics with a configured size.
type FixedScreen struct {
	Width  int32
	Height int32
}

func (s FixedScreen) ScreenSize() (int32, int32) { return s.Width, s.Height }

// NormalizeMouse rewrites Dx/Dy into normalized coordinates. The absolute
// flag is not consulted.
func NormalizeMouse(m MouseInput, screen ScreenMetrics) MouseInput {
	width, height := screen.ScreenSize()
	m.Dx = Normalize(m.Dx, width)
	m.Dy = Normalize(m.Dy, height)
	return m
}
