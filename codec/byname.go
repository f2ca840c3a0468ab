package codec

import "fmt"

// Names accepted by ByName.
const (
	NameDecimal  = "decimal"
	NameJSON     = "json"
	NameMsgpack  = "msgpack"
	NameCBOR     = "cbor"
	NameProtobuf = "protobuf"
)

// ByName returns the counter codec registered under name.
func ByName(name string) (Codec[int64], error) {
	switch name {
	case "", NameDecimal:
		return Default(), nil
	case NameJSON:
		return JSON[int64]{}, nil
	case NameMsgpack:
		return Msgpack[int64]{}, nil
	case NameCBOR:
		c, err := NewCBOR[int64]()
		if err != nil {
			return nil, err
		}
		return c, nil
	case NameProtobuf:
		return Protobuf{}, nil
	}
	return nil, fmt.Errorf("codec: unknown codec %q", name)
}
