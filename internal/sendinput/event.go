// Package sendinput translates JSON event descriptions into single
// SendInput submissions.
package sendinput

import "fmt"

// Kind is the INPUT.type discriminant.
type Kind uint32

const (
	KindMouse    Kind = 0
	KindKeyboard Kind = 1
	KindHardware Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindMouse:
		return "mouse"
	case KindKeyboard:
		return "keyboard"
	case KindHardware:
		return "hardware"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// Event is one of MouseInput, KeyboardInput or HardwareInput.
type Event interface {
	Kind() Kind
	event()
}

// MouseInput mirrors MOUSEINPUT.
type MouseInput struct {
	Dx        int32
	Dy        int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// KeyboardInput mirrors KEYBDINPUT.
type KeyboardInput struct {
	VirtualKey uint16
	ScanCode   uint16
	Flags      uint32
	Time       uint32
	ExtraInfo  uintptr
}

// HardwareInput mirrors HARDWAREINPUT.
type HardwareInput struct {
	Msg    uint32
	ParamL uint16
	ParamH uint16
}

func (MouseInput) Kind() Kind    { return KindMouse }
func (KeyboardInput) Kind() Kind { return KindKeyboard }
func (HardwareInput) Kind() Kind { return KindHardware }

func (MouseInput) event()    {}
func (KeyboardInput) event() {}
func (HardwareInput) event() {}

// Flag values accepted by the OS. They are passed through untouched; the
// translator never checks them.
const (
	MouseEventMove       = 0x0001
	MouseEventLeftDown   = 0x0002
	MouseEventLeftUp     = 0x0004
	MouseEventRightDown  = 0x0008
	MouseEventRightUp    = 0x0010
	MouseEventMiddleDown = 0x0020
	MouseEventMiddleUp   = 0x0040
	MouseEventWheel      = 0x0800
	MouseEventAbsolute   = 0x8000

	KeyEventExtendedKey = 0x0001
	KeyEventKeyUp       = 0x0002
	KeyEventUnicode     = 0x0004
	KeyEventScanCode    = 0x0008
)
