package wire

import (
	"testing"

	"github.com/quietlane/capwire/internal/codec"
)

// NewTestCodec returns the codec these tests exercise wire (de)serialization
// against. Any Codec implementation would do; protobuf is picked for no
// reason beyond being the first one in the package.
func NewTestCodec(_ *testing.T) codec.Codec {
	return codec.NewProtoCodec()
}
