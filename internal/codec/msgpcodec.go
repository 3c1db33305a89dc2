package codec

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// MsgpCodec is a Codec backed by github.com/tinylib/msgp. Unlike the
// protobuf codec, msgp's own Marshaler/Unmarshaler interfaces are used
// directly: they are already the minimal two-method shape this package
// needs, so no intermediate interface is introduced here.
type MsgpCodec struct{}

// NewMsgpCodec constructs a MsgpCodec.
func NewMsgpCodec() *MsgpCodec {
	return &MsgpCodec{}
}

// Name implements Codec.
func (c *MsgpCodec) Name() string {
	return "msgpack"
}

// Encode implements Codec. v must implement msgp.Marshaler.
func (c *MsgpCodec) Encode(v any) ([]byte, error) {
	m, ok := v.(msgp.Marshaler)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a msgp.Marshaler",
			ErrUnsupportedType, v)
	}

	return m.MarshalMsg(nil)
}

// Decode implements Codec. out must be a pointer implementing
// msgp.Unmarshaler.
func (c *MsgpCodec) Decode(data []byte, out any) error {
	m, ok := out.(msgp.Unmarshaler)
	if !ok {
		return fmt.Errorf("%w: %T is not a msgp.Unmarshaler",
			ErrUnsupportedType, out)
	}

	_, err := m.UnmarshalMsg(data)
	return err
}
