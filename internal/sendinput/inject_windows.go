//go:build windows

package sendinput

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

// input has the layout of INPUT. The union is typed as MOUSEINPUT, its
// largest member, which gives 40 bytes on 64-bit and 28 on 32-bit targets.
type input struct {
	typ   uint32
	union win.MOUSEINPUT
}

var procSendInput = windows.NewLazySystemDLL("user32.dll").NewProc("SendInput")

// errInputBlocked is reported when SendInput inserts nothing and sets no
// last error, which is how UIPI rejections surface.
var errInputBlocked = errors.New("sendinput: input blocked by UIPI or another thread")

// SystemInjector submits events with SendInput and reads the primary
// screen size with GetSystemMetrics.
type SystemInjector struct{}

func NewSystemInjector() *SystemInjector {
	return &SystemInjector{}
}

func (s *SystemInjector) Inject(ev Event) error {
	var in input

	switch e := ev.(type) {
	case MouseInput:
		in.typ = win.INPUT_MOUSE
		in.union = win.MOUSEINPUT{
			Dx:          e.Dx,
			Dy:          e.Dy,
			MouseData:   e.MouseData,
			DwFlags:     e.Flags,
			Time:        e.Time,
			DwExtraInfo: e.ExtraInfo,
		}
	case KeyboardInput:
		in.typ = win.INPUT_KEYBOARD
		ki := (*win.KEYBDINPUT)(unsafe.Pointer(&in.union))
		ki.WVk = e.VirtualKey
		ki.WScan = e.ScanCode
		ki.DwFlags = e.Flags
		ki.Time = e.Time
		ki.DwExtraInfo = e.ExtraInfo
	case HardwareInput:
		in.typ = win.INPUT_HARDWARE
		hi := (*win.HARDWAREINPUT)(unsafe.Pointer(&in.union))
		hi.UMsg = e.Msg
		hi.WParamL = e.ParamL
		hi.WParamH = e.ParamH
	default:
		return fmt.Errorf("%w: %T", ErrUnknownType, ev)
	}

	// Call captures the last error on the calling thread together with the
	// return value.
	n, _, callErr := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	return sendInputResult(n, callErr)
}

// sendInputResult maps the SendInput return value and the errno captured
// with it to an error. A zero errno means UIPI dropped the event.
func sendInputResult(inserted uintptr, callErr error) error {
	if inserted == 1 {
		return nil
	}
	var err error = errInputBlocked
	if errno, ok := callErr.(windows.Errno); ok && errno != 0 {
		err = errno
	}
	return fmt.Errorf("SendInput inserted %d of 1 events: %w", inserted, err)
}

func (s *SystemInjector) ScreenSize() (int32, int32) {
	return win.GetSystemMetrics(win.SM_CXSCREEN), win.GetSystemMetrics(win.SM_CYSCREEN)
}
