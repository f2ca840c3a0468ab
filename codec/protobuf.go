package codec

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Protobuf stores an int64 as a serialized google.protobuf.Int64Value.
// The zero value is ready to use. Note that proto3 encodes 0 as an empty
// message, so a stored zero is the empty byte string.
type Protobuf struct{}

var _ Codec[int64] = Protobuf{}

func (Protobuf) Encode(n int64) ([]byte, error) {
	return proto.Marshal(wrapperspb.Int64(n))
}

func (Protobuf) Decode(b []byte) (int64, error) {
	var m wrapperspb.Int64Value
	if err := proto.Unmarshal(b, &m); err != nil {
		return 0, err
	}
	return m.GetValue(), nil
}
