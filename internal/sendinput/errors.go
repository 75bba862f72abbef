package sendinput

import "errors"

var (
	ErrMalformedPayload = errors.New("sendinput: malformed JSON payload")
	ErrMissingType      = errors.New("sendinput: missing type field")
	ErrUnknownType      = errors.New("sendinput: unrecognized type")
	ErrMissingPayload   = errors.New("sendinput: missing event payload")
	ErrUnsupported      = errors.New("sendinput: input injection not supported on this platform")
)
