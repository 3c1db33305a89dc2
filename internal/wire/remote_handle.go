package wire

import (
	"context"
	"log/slog"

	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/codec"
	"github.com/quietlane/capwire/internal/transport"
)

// RemoteHandle lets a client message a remote actor through its
// ActorAddress: connect, write the framed request, read the framed reply,
// decode it. Every I/O failure during the connect/write/read sequence
// maps to Connect, Send, or Recv per §4.4; codec failures map to
// Serialize.
type RemoteHandle[I any, O any, E any] struct {
	Address    capmsg.ActorAddress
	Transport  transport.Transport
	Codec      codec.Codec
	MaxMsgSize uint32
	Log        *slog.Logger
}

// NewRemoteHandle constructs a RemoteHandle. MaxMsgSize of 0 selects
// DefaultMaxMsgSize.
func NewRemoteHandle[I any, O any, E any](
	addr capmsg.ActorAddress, tr transport.Transport, c codec.Codec,
	maxMsgSize uint32,
) *RemoteHandle[I, O, E] {

	if maxMsgSize == 0 {
		maxMsgSize = DefaultMaxMsgSize
	}

	return &RemoteHandle[I, O, E]{
		Address:    addr,
		Transport:  tr,
		Codec:      c,
		MaxMsgSize: maxMsgSize,
		Log:        slog.New(slog.DiscardHandler),
	}
}

// Send performs the full RemoteHandle operation described in §4.4: connect,
// write the framed request, flush, read the framed reply, decode it.
func (h *RemoteHandle[I, O, E]) Send(
	ctx context.Context, msg capmsg.Message[I],
) capmsg.MsgResult[O, E] {

	stream, err := h.Transport.Connect(ctx, h.Address.Host)
	if err != nil {
		return capmsg.Err[O, E](capmsg.ConnectErr[E](err))
	}
	defer stream.Close()

	msgBody, err := EncodeMessage(h.Codec, msg)
	if err != nil {
		return capmsg.Err[O, E](capmsg.SerializeErr[E](err))
	}

	if err := WriteRequest(stream, h.Address.PeerID, msgBody); err != nil {
		return capmsg.Err[O, E](capmsg.SendErr[E](err))
	}

	replyBody, err := ReadReply(stream, h.MaxMsgSize)
	if err != nil {
		return capmsg.Err[O, E](capmsg.RecvErr[E](err))
	}

	result, err := DecodeResult[O, E](h.Codec, replyBody)
	if err != nil {
		return capmsg.Err[O, E](capmsg.SerializeErr[E](err))
	}

	return result
}
