package codec

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNegative is returned when a decoded counter is below zero.
var ErrNegative = errors.New("codec: negative counter")

// Decimal stores an int64 as its base-10 string, the format redis INCR
// understands. The zero value is ready to use.
type Decimal struct{}

var _ Codec[int64] = Decimal{}

func (Decimal) Encode(n int64) ([]byte, error) {
	return strconv.AppendInt(nil, n, 10), nil
}

// Decode is strict: surrounding spaces, signs other than a leading '-',
// fractions and trailing garbage are all rejected.
func (Decimal) Decode(b []byte) (int64, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("codec: decimal %q: %w", b, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("codec: decimal %q: %w", b, ErrNegative)
	}
	return n, nil
}
