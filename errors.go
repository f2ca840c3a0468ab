package greetcount

import (
	"errors"
	"fmt"
)

var (
	ErrNoProvider        = errors.New("greetcount: provider is required")
	ErrAtomicUnsupported = errors.New("greetcount: provider has no atomic increment")
	ErrAtomicCodec       = errors.New("greetcount: atomic mode requires the decimal codec")
	ErrMalformed         = errors.New("greetcount: malformed counter value")
	ErrOverflow          = errors.New("greetcount: counter overflow")
	ErrClosed            = errors.New("greetcount: closed")
)

// KeyError reports which operation failed for which key.
type KeyError struct {
	Op  string // "get", "decode", "encode", "incr", "reset"
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("greetcount: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }
