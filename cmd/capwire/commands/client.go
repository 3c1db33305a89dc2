package commands

import (
	"fmt"
	"time"

	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/codec"
	"github.com/quietlane/capwire/internal/transport"
	"github.com/quietlane/capwire/internal/wire"
)

// resolveCodec maps the --codec flag to a concrete codec.Codec.
func resolveCodec() (codec.Codec, error) {
	switch codecName {
	case "proto":
		return codec.NewProtoCodec(), nil
	case "msgp":
		return codec.NewMsgpCodec(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q (want proto or msgp)", codecName)
	}
}

// resolveTransport picks a client-side Transport for addr's tag. Only
// Connect is ever called on the returned value; Init is the daemon's job.
func resolveTransport(addr capmsg.ActorAddress) (transport.Transport, error) {
	switch addr.Tag {
	case "tcp":
		return transport.NewTCP(""), nil
	case "unix":
		return transport.NewUnix(""), nil
	default:
		return nil, fmt.Errorf("unknown transport tag %q in address", addr.Tag)
	}
}

// resolveTimeout parses the --timeout flag.
func resolveTimeout() (time.Duration, error) {
	return time.ParseDuration(timeout)
}

// intHandle builds a RemoteHandle for the int demo payload shape
// (codec.IntValue -> codec.IntValue, error codec.StringValue), matching
// internal/demo.Multiplier.
func intHandle(
	addr capmsg.ActorAddress, tr transport.Transport, c codec.Codec,
) *wire.RemoteHandle[codec.IntValue, codec.IntValue, codec.StringValue] {

	return wire.NewRemoteHandle[codec.IntValue, codec.IntValue, codec.StringValue](
		addr, tr, c, 0)
}

// stringHandle builds a RemoteHandle for the string demo payload shape,
// matching internal/demo.EchoMut.
func stringHandle(
	addr capmsg.ActorAddress, tr transport.Transport, c codec.Codec,
) *wire.RemoteHandle[codec.StringValue, codec.StringValue, codec.StringValue] {

	return wire.NewRemoteHandle[codec.StringValue, codec.StringValue, codec.StringValue](
		addr, tr, c, 0)
}
