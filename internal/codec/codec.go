// Package codec provides the symmetric encode/decode pair described by the
// codec abstraction: a bridge and the remote handle addressing it must
// agree on one implementation, but the rest of the stack is indifferent to
// which.
package codec

import "errors"

// ErrUnsupportedType is returned when a value passed to Encode, or a
// destination passed to Decode, does not implement the interface a given
// codec requires.
var ErrUnsupportedType = errors.New("codec: value does not support this codec's wire format")

// Codec is the pluggable symmetric serializer. Encode turns an arbitrary
// value into bytes; Decode turns bytes back into a value of the caller's
// choosing. Both directions may fail.
//
// Go cannot express a generic method on a plain interface, so the type
// parameter from the spec's encode<T>/decode<U> becomes a type assertion
// inside each concrete codec: every value that passes through a given
// Codec must implement that codec's own marshaling interface (see
// ProtoMarshaler and the tinylib/msgp Marshaler/Unmarshaler interfaces
// used by the two codecs in this package).
type Codec interface {
	// Name identifies the codec, primarily for logging.
	Name() string

	// Encode serializes v. Failure maps to MsgError::Serialize at the
	// bridge layer.
	Encode(v any) ([]byte, error)

	// Decode deserializes data into out, which must be a pointer.
	// Failure maps to MsgError::Serialize at the bridge layer.
	Decode(data []byte, out any) error
}
