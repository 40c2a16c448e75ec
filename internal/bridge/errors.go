package bridge

import (
	"errors"
	"fmt"
)

// Kind classifies a bridge failure.
type Kind string

const (
	// KindConstruction means the request could not be built; nothing was sent.
	KindConstruction Kind = "construction"
	// KindTransport means the request was dispatched but no response arrived.
	KindTransport Kind = "transport"
	// KindDecode means a response arrived but its body is not valid JSON.
	KindDecode Kind = "decode"
)

// Sentinels for use with errors.Is.
var (
	ErrConstruction = errors.New("bridge: request construction failed")
	ErrTransport    = errors.New("bridge: transport failed")
	ErrDecode       = errors.New("bridge: response decode failed")
)

// Error is returned by Invoke for every failure. Err holds the underlying
// cause and is reachable through errors.Unwrap.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("bridge: %s failed", e.Kind)
	}
	return fmt.Sprintf("bridge: %s failed: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConstruction:
		return e.Kind == KindConstruction
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

// KindOf returns the Kind of a bridge error, or "" if err is not one.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}
