package sendinput

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// object is one decoded JSON object. Values stay raw until a field is read,
// so a payload only fails on the fields it actually uses.
type object map[string]jsoniter.RawMessage

// Decode parses payload into an Event. Pointer coordinates are returned as
// given; Translator applies screen normalization.
//
// Leaf fields default to 0 when missing. A field that is present but not a
// JSON integer (string, real, bool, null) also reads as 0.
func Decode(payload []byte) (Event, error) {
	root, err := parseRoot(payload)
	if err != nil {
		return nil, err
	}

	rawType, ok := root["type"]
	if !ok {
		return nil, ErrMissingType
	}
	discriminant, err := intValue(rawType)
	if err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}

	var (
		key    string
		decode func(*fields) Event
	)
	switch discriminant {
	case int64(KindMouse):
		key, decode = "mi", decodeMouse
	case int64(KindKeyboard):
		key, decode = "ki", decodeKeyboard
	case int64(KindHardware):
		key, decode = "hi", decodeHardware
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, discriminant)
	}

	body, ok, err := root.child(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingPayload, key)
	}

	f := &fields{obj: body}
	ev := decode(f)
	if f.err != nil {
		return nil, fmt.Errorf("%s.%w", key, f.err)
	}
	return ev, nil
}

func decodeMouse(f *fields) Event {
	return MouseInput{
		Dx:        int32(f.int("dx")),
		Dy:        int32(f.int("dy")),
		MouseData: uint32(f.int("mouseData")),
		Flags:     uint32(f.int("dwFlags")),
		Time:      uint32(f.int("time")),
		ExtraInfo: uintptr(f.int("dwExtraInfo")),
	}
}

func decodeKeyboard(f *fields) Event {
	return KeyboardInput{
		VirtualKey: uint16(f.int("wVk")),
		ScanCode:   uint16(f.int("wScan")),
		Flags:      uint32(f.int("dwFlags")),
		Time:       uint32(f.int("time")),
		ExtraInfo:  uintptr(f.int("dwExtraInfo")),
	}
}

func decodeHardware(f *fields) Event {
	return HardwareInput{
		Msg:    uint32(f.int("uMsg")),
		ParamL: uint16(f.int("wParamL")),
		ParamH: uint16(f.int("wParamH")),
	}
}

// parseRoot accepts an object or an array at the top level. An array has no
// keys, so it decodes to an empty object and fails on the missing type.
// The whole document is checked first: invalid UTF-8, a NUL character in a
// string, or a number out of range anywhere rejects the payload.
func parseRoot(payload []byte) (object, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, ErrMalformedPayload
	}
	if !utf8.Valid(trimmed) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrMalformedPayload)
	}
	if err := checkLiterals(trimmed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch trimmed[0] {
	case '{':
		var root object
		if err := json.Unmarshal(trimmed, &root); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return root, nil
	case '[':
		var items []jsoniter.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return object{}, nil
	default:
		return nil, ErrMalformedPayload
	}
}

// child returns the nested object stored under key. A key holding null or
// a non-object value is still present; reads from it yield zeros.
func (o object) child(key string) (object, bool, error) {
	raw, ok := o[key]
	if !ok {
		return nil, false, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return object{}, true, nil
	}

	var child object
	if err := json.Unmarshal(trimmed, &child); err != nil {
		return nil, false, fmt.Errorf("%s: %w: %v", key, ErrMalformedPayload, err)
	}
	return child, true, nil
}

// fields reads integer leaves from one object and remembers the first error.
type fields struct {
	obj object
	err error
}

func (f *fields) int(key string) int64 {
	if f.err != nil {
		return 0
	}
	raw, ok := f.obj[key]
	if !ok {
		return 0
	}
	v, err := intValue(raw)
	if err != nil {
		f.err = fmt.Errorf("%s: %w", key, err)
		return 0
	}
	return v
}

// intValue returns the value of a JSON integer literal and 0 for anything
// else. Literals outside the int64 range are rejected.
func intValue(raw jsoniter.RawMessage) (int64, error) {
	s := bytes.TrimSpace(raw)
	if len(s) == 0 || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return 0, nil
	}
	if bytes.ContainsAny(s, ".eE") {
		return 0, nil
	}

	v, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: integer %s out of range", ErrMalformedPayload, s)
	}
	return v, nil
}

var errNulInString = errors.New("string contains NUL")

// checkLiterals walks every value in doc and reports the first string or
// number literal that cannot be represented.
func checkLiterals(doc []byte) error {
	iter := json.BorrowIterator(doc)
	defer json.ReturnIterator(iter)

	var bad error
	walkLiterals(iter, &bad)
	if bad != nil {
		return bad
	}
	// A number at the very end of the buffer leaves io.EOF behind.
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return iter.Error
	}
	return nil
}

func walkLiterals(iter *jsoniter.Iterator, bad *error) {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			if strings.IndexByte(key, 0) >= 0 {
				*bad = errNulInString
				return false
			}
			walkLiterals(it, bad)
			return *bad == nil && it.Error == nil
		})
	case jsoniter.ArrayValue:
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			walkLiterals(it, bad)
			return *bad == nil && it.Error == nil
		})
	case jsoniter.StringValue:
		if strings.IndexByte(iter.ReadString(), 0) >= 0 {
			*bad = errNulInString
		}
	case jsoniter.NumberValue:
		if err := checkNumber(string(iter.ReadNumber())); err != nil {
			*bad = err
		}
	default:
		iter.Skip()
	}
}

// checkNumber rejects integers outside int64 and reals that overflow a
// float64. Underflow to zero is accepted.
func checkNumber(lit string) error {
	if strings.ContainsAny(lit, ".eE") {
		if _, err := strconv.ParseFloat(lit, 64); err != nil {
			return fmt.Errorf("real %s out of range", lit)
		}
		return nil
	}
	if _, err := strconv.ParseInt(lit, 10, 64); err != nil {
		return fmt.Errorf("integer %s out of range", lit)
	}
	return nil
}
