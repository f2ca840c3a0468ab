package codec

import (
	"errors"
	"strconv"
	"testing"
)

func TestDecimalIsPlainBase10(t *testing.T) {
	b, err := Decimal{}.Encode(1234)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "1234" {
		t.Fatalf("got=%q want 1234", b)
	}
}

func TestDecimalRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "12abc", " 1", "1.5", "NaN", "99999999999999999999"} {
		if _, err := (Decimal{}).Decode([]byte(in)); err == nil {
			t.Fatalf("Decode(%q) expected error", in)
		}
	}
	if _, err := (Decimal{}).Decode([]byte("-3")); !errors.Is(err, ErrNegative) {
		t.Fatalf("negative: err=%v want ErrNegative", err)
	}
	var ne *strconv.NumError
	if _, err := (Decimal{}).Decode([]byte("x")); !errors.As(err, &ne) {
		t.Fatalf("err=%v want wrapped *strconv.NumError", err)
	}
}

func TestLimitCodec(t *testing.T) {
	c := Default()
	if _, err := c.Decode([]byte("123456789012345678901")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err=%v want ErrTooLarge", err)
	}
	n, err := c.Decode([]byte("9223372036854775807"))
	if err != nil || n != 9223372036854775807 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestByNameRoundTripsCounters(t *testing.T) {
	for _, name := range []string{NameDecimal, NameJSON, NameMsgpack, NameCBOR, NameProtobuf} {
		c, err := ByName(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		for _, n := range []int64{0, 1, 1 << 40} {
			b, err := c.Encode(n)
			if err != nil {
				t.Fatalf("%s encode %d: %v", name, n, err)
			}
			got, err := c.Decode(b)
			if err != nil || got != n {
				t.Fatalf("%s: got=%d err=%v want=%d", name, got, err, n)
			}
		}
	}
	if _, err := ByName("yaml"); err == nil {
		t.Fatalf("expected unknown codec error")
	}
}

func TestIsDecimal(t *testing.T) {
	if !IsDecimal(Default()) || !IsDecimal(Decimal{}) {
		t.Fatalf("decimal codecs not recognised")
	}
	if IsDecimal(Msgpack[int64]{}) || IsDecimal(LimitCodec[int64]{Inner: JSON[int64]{}}) {
		t.Fatalf("non-decimal codec reported as decimal")
	}
}
