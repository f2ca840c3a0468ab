package codec

import (
	"errors"
	"fmt"
)

// ErrTooLarge is returned by LimitCodec.Decode for oversized payloads.
var ErrTooLarge = errors.New("codec: payload too large")

// LimitCodec wraps another codec to enforce a maximum allowed payload size
// at Decode time. Encode is forwarded to Inner unchanged.
// If MaxDecode <= 0, size limiting is disabled.
//
// Typical use: protect against oversized values written into a shared cache
// by other clients.
type LimitCodec[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec[V]
	// MaxDecode is the maximum permitted length (in bytes) of the incoming
	// payload for Decode.
	MaxDecode int
}

func (c LimitCodec[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}

// MaxDecimalLen is the longest decimal int64: 19 digits plus a sign.
const MaxDecimalLen = 20

// Default is the codec used when none is configured: decimal strings capped
// at MaxDecimalLen bytes.
func Default() Codec[int64] {
	return LimitCodec[int64]{Inner: Decimal{}, MaxDecode: MaxDecimalLen}
}

// IsDecimal reports whether c stores plain decimal strings, possibly behind
// a LimitCodec. Atomic increments in the store require it.
func IsDecimal(c Codec[int64]) bool {
	switch cc := c.(type) {
	case Decimal:
		return true
	case LimitCodec[int64]:
		return IsDecimal(cc.Inner)
	}
	return false
}
