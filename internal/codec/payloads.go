package codec

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"
	"google.golang.org/protobuf/encoding/protowire"
)

// IntValue is a minimal scalar payload usable with either codec in this
// package. Demo actors and tests that only need an integer in flight can
// use it instead of hand-rolling their own marshalers.
type IntValue int64

// MarshalProto implements ProtoMarshaler.
func (v IntValue) MarshalProto() ([]byte, error) {
	b := protowire.AppendTag(nil, FieldScalar, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(v))

	return b, nil
}

// UnmarshalProto implements ProtoUnmarshaler.
func (v *IntValue) UnmarshalProto(data []byte) error {
	num, typ, n := protowire.ConsumeTag(data)
	if n < 0 {
		return protowire.ParseError(n)
	}
	if num != FieldScalar || typ != protowire.VarintType {
		return fmt.Errorf("unexpected field %d/%d decoding IntValue", num, typ)
	}

	val, n := protowire.ConsumeVarint(data[n:])
	if n < 0 {
		return protowire.ParseError(n)
	}

	*v = IntValue(val)

	return nil
}

// MarshalMsg implements msgp.Marshaler.
func (v IntValue) MarshalMsg(b []byte) ([]byte, error) {
	return msgp.AppendInt64(b, int64(v)), nil
}

// UnmarshalMsg implements msgp.Unmarshaler.
func (v *IntValue) UnmarshalMsg(bts []byte) ([]byte, error) {
	val, rest, err := msgp.ReadInt64Bytes(bts)
	if err != nil {
		return bts, err
	}

	*v = IntValue(val)

	return rest, nil
}

// StringValue is a minimal string payload usable with either codec.
type StringValue string

// MarshalProto implements ProtoMarshaler.
func (v StringValue) MarshalProto() ([]byte, error) {
	b := protowire.AppendTag(nil, FieldScalar, protowire.BytesType)
	b = protowire.AppendString(b, string(v))

	return b, nil
}

// UnmarshalProto implements ProtoUnmarshaler.
func (v *StringValue) UnmarshalProto(data []byte) error {
	num, typ, n := protowire.ConsumeTag(data)
	if n < 0 {
		return protowire.ParseError(n)
	}
	if num != FieldScalar || typ != protowire.BytesType {
		return fmt.Errorf("unexpected field %d/%d decoding StringValue", num, typ)
	}

	val, n := protowire.ConsumeString(data[n:])
	if n < 0 {
		return protowire.ParseError(n)
	}

	*v = StringValue(val)

	return nil
}

// MarshalMsg implements msgp.Marshaler.
func (v StringValue) MarshalMsg(b []byte) ([]byte, error) {
	return msgp.AppendString(b, string(v)), nil
}

// UnmarshalMsg implements msgp.Unmarshaler.
func (v *StringValue) UnmarshalMsg(bts []byte) ([]byte, error) {
	val, rest, err := msgp.ReadStringBytes(bts)
	if err != nil {
		return bts, err
	}

	*v = StringValue(val)

	return rest, nil
}
