package envelope

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the decode-time failure taxonomy from the
// dispatcher/worker protocol. Callers use errors.Is against these values;
// DecodeError carries the human-readable detail and unwraps to its Kind.
var (
	ErrMalformedEnvelope    = errors.New("malformed envelope")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrUnsupportedJobKind   = errors.New("unsupported job kind")
)

// DecodeError wraps one of the sentinel kinds above with the specific
// field or reason that triggered it.
type DecodeError struct {
	Kind   error
	Detail string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}

func newMalformed(detail string) *DecodeError {
	return &DecodeError{Kind: ErrMalformedEnvelope, Detail: detail}
}

func newMissingField(field string) *DecodeError {
	return &DecodeError{Kind: ErrMissingRequiredField, Detail: field}
}

func newUnsupportedKind(kind string) *DecodeError {
	return &DecodeError{Kind: ErrUnsupportedJobKind, Detail: kind}
}
