package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ProtoMarshaler is implemented by payload types that know how to encode
// themselves using raw protobuf wire primitives. This module ships no
// .proto files or generated bindings, so ProtoCodec talks to
// google.golang.org/protobuf at the protowire level instead of through the
// full proto.Message/ProtoReflect machinery generated code normally
// provides.
type ProtoMarshaler interface {
	MarshalProto() ([]byte, error)
}

// ProtoUnmarshaler is implemented by payload types that can decode
// themselves from raw protobuf wire bytes produced by MarshalProto.
type ProtoUnmarshaler interface {
	UnmarshalProto([]byte) error
}

// ProtoCodec is a Codec backed by google.golang.org/protobuf's low-level
// wire primitives.
type ProtoCodec struct{}

// NewProtoCodec constructs a ProtoCodec.
func NewProtoCodec() *ProtoCodec {
	return &ProtoCodec{}
}

// Name implements Codec.
func (c *ProtoCodec) Name() string {
	return "protobuf"
}

// Encode implements Codec. v must implement ProtoMarshaler.
func (c *ProtoCodec) Encode(v any) ([]byte, error) {
	m, ok := v.(ProtoMarshaler)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a ProtoMarshaler",
			ErrUnsupportedType, v)
	}

	return m.MarshalProto()
}

// Decode implements Codec. out must be a pointer implementing
// ProtoUnmarshaler.
func (c *ProtoCodec) Decode(data []byte, out any) error {
	m, ok := out.(ProtoUnmarshaler)
	if !ok {
		return fmt.Errorf("%w: %T is not a ProtoUnmarshaler",
			ErrUnsupportedType, out)
	}

	return m.UnmarshalProto(data)
}

// field numbers used by the hand-rolled payload wire formats in this
// package's consumers.
const (
	// FieldScalar is the single field number used by demo payload types
	// that carry exactly one scalar value.
	FieldScalar protowire.Number = 1
)
