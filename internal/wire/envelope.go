package wire

import (
	"fmt"

	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/codec"
)

// EncodeMessage serializes a capmsg.Message[I] as a one-byte kind tag
// followed by the codec-encoded payload, present only for Task/TaskMut.
func EncodeMessage[I any](c codec.Codec, msg capmsg.Message[I]) ([]byte, error) {
	out := []byte{byte(msg.Kind())}

	switch msg.Kind() {
	case capmsg.KindTask, capmsg.KindTaskMut:
		payload, err := c.Encode(msg.Payload())
		if err != nil {
			return nil, fmt.Errorf("encoding message payload: %w", err)
		}

		out = append(out, payload...)
	}

	return out, nil
}

// DecodeMessage is the inverse of EncodeMessage. The payload is decoded
// into a local I through its address, so I itself need not be a pointer
// type; *I must implement the codec's unmarshaling interface.
func DecodeMessage[I any](c codec.Codec, data []byte) (capmsg.Message[I], error) {
	if len(data) < 1 {
		return capmsg.Message[I]{}, fmt.Errorf("message frame too short")
	}

	kind := capmsg.Kind(data[0])

	switch kind {
	case capmsg.KindTask, capmsg.KindTaskMut:
		var payload I
		if err := c.Decode(data[1:], &payload); err != nil {
			return capmsg.Message[I]{}, fmt.Errorf(
				"decoding message payload: %w", err)
		}

		if kind == capmsg.KindTask {
			return capmsg.Task(payload), nil
		}

		return capmsg.TaskMut(payload), nil

	case capmsg.KindPing:
		return capmsg.Ping[I](), nil

	case capmsg.KindStop:
		return capmsg.Stop[I](), nil

	default:
		return capmsg.Message[I]{}, fmt.Errorf("unknown message kind %d", kind)
	}
}

// result wire tags, distinct from capmsg.Kind/ErrKind so the wire format
// does not have to track every internal enum value one-for-one.
const (
	tagReplyAccepted byte = iota
	tagReplyTask
	tagErrSpawn
	tagErrSend
	tagErrRecv
	tagErrTask
	tagErrNotAllowed
	tagErrConnect
	tagErrSerialize
	tagErrInit
	tagErrAddress
)

// FallbackSerializeError is a minimal, codec-independent encoding of a
// Serialize failure. A bridge falls back to it when the configured codec
// itself cannot encode a MsgResult, since that path cannot route through
// the very codec that just failed.
func FallbackSerializeError() []byte {
	return []byte{tagErrSerialize}
}

func errKindToTag(k capmsg.ErrKind) byte {
	switch k {
	case capmsg.ErrSpawn:
		return tagErrSpawn
	case capmsg.ErrSend:
		return tagErrSend
	case capmsg.ErrRecv:
		return tagErrRecv
	case capmsg.ErrTask:
		return tagErrTask
	case capmsg.ErrNotAllowed:
		return tagErrNotAllowed
	case capmsg.ErrConnect:
		return tagErrConnect
	case capmsg.ErrSerialize:
		return tagErrSerialize
	case capmsg.ErrInit:
		return tagErrInit
	case capmsg.ErrAddress:
		return tagErrAddress
	default:
		return tagErrSend
	}
}

// EncodeResult serializes a capmsg.MsgResult[O, E] for transport back to a
// RemoteHandle. Task(E) carries the codec-encoded user error; NotAllowed
// carries a one-byte reason; every other error variant carries no payload,
// per §7's "errors cross process boundaries as encoded payloads only when
// they are Task(E) or NotAllowed" rule.
func EncodeResult[O any, E any](c codec.Codec, res capmsg.MsgResult[O, E]) ([]byte, error) {
	if !res.IsErr() {
		reply := res.Reply()
		if !reply.HasValue() {
			return []byte{tagReplyAccepted}, nil
		}

		payload, err := c.Encode(reply.Value())
		if err != nil {
			return nil, fmt.Errorf("encoding reply value: %w", err)
		}

		return append([]byte{tagReplyTask}, payload...), nil
	}

	msgErr := res.Err()

	switch msgErr.Kind() {
	case capmsg.ErrTask:
		payload, err := c.Encode(msgErr.UserErr())
		if err != nil {
			return nil, fmt.Errorf("encoding task error: %w", err)
		}

		return append([]byte{tagErrTask}, payload...), nil

	case capmsg.ErrNotAllowed:
		return []byte{tagErrNotAllowed, byte(msgErr.Reason())}, nil

	default:
		return []byte{errKindToTag(msgErr.Kind())}, nil
	}
}

// DecodeResult is the inverse of EncodeResult.
func DecodeResult[O any, E any](c codec.Codec, data []byte) (capmsg.MsgResult[O, E], error) {
	if len(data) < 1 {
		return capmsg.MsgResult[O, E]{}, fmt.Errorf("result frame too short")
	}

	tag := data[0]
	rest := data[1:]

	switch tag {
	case tagReplyAccepted:
		return capmsg.Ok[O, E](capmsg.AcceptedReply[O]()), nil

	case tagReplyTask:
		var value O
		if err := c.Decode(rest, &value); err != nil {
			return capmsg.MsgResult[O, E]{}, fmt.Errorf(
				"decoding reply value: %w", err)
		}

		return capmsg.Ok[O, E](capmsg.TaskReply(value)), nil

	case tagErrTask:
		var userErr E
		if err := c.Decode(rest, &userErr); err != nil {
			return capmsg.MsgResult[O, E]{}, fmt.Errorf(
				"decoding task error: %w", err)
		}

		return capmsg.Err[O, E](capmsg.TaskErr[E](userErr)), nil

	case tagErrNotAllowed:
		if len(rest) < 1 {
			return capmsg.MsgResult[O, E]{}, fmt.Errorf(
				"not-allowed result missing reason byte")
		}

		reason := capmsg.NotAllowedReason(rest[0])

		return capmsg.Err[O, E](capmsg.NotAllowedErr[E](reason)), nil

	case tagErrSpawn:
		return capmsg.Err[O, E](capmsg.SpawnErr[E](errFromTag(tag))), nil
	case tagErrSend:
		return capmsg.Err[O, E](capmsg.SendErr[E](errFromTag(tag))), nil
	case tagErrRecv:
		return capmsg.Err[O, E](capmsg.RecvErr[E](errFromTag(tag))), nil
	case tagErrConnect:
		return capmsg.Err[O, E](capmsg.ConnectErr[E](errFromTag(tag))), nil
	case tagErrSerialize:
		return capmsg.Err[O, E](capmsg.SerializeErr[E](errFromTag(tag))), nil
	case tagErrInit:
		return capmsg.Err[O, E](capmsg.InitErr[E](errFromTag(tag))), nil
	case tagErrAddress:
		return capmsg.Err[O, E](capmsg.AddressErr[E](errFromTag(tag))), nil

	default:
		return capmsg.MsgResult[O, E]{}, fmt.Errorf("unknown result tag %d", tag)
	}
}

func errFromTag(tag byte) error {
	return fmt.Errorf("remote error, wire tag %d", tag)
}
