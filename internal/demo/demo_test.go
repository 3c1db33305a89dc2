package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quietlane/capwire/internal/bridge"
	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/codec"
	"github.com/quietlane/capwire/internal/wire"
)

func TestMultiplierTask(t *testing.T) {
	t.Parallel()

	handle, err := NewMultiplierHandle("mult", 6)
	require.NoError(t, err)
	defer handle.Stop(context.Background())

	result := handle.SendBlocking(capmsg.Task[codec.IntValue](7))
	require.False(t, result.IsErr())
	require.Equal(t, codec.IntValue(42), result.Reply().Value())
}

func TestEchoMutTaskIsReadOnly(t *testing.T) {
	t.Parallel()

	handle, err := NewEchoMutHandle("echo")
	require.NoError(t, err)
	defer handle.Stop(context.Background())

	before := handle.SendBlocking(capmsg.Task[codec.StringValue](""))
	require.Equal(t, codec.StringValue(""), before.Reply().Value())

	mutResult := handle.SendBlocking(capmsg.TaskMut[codec.StringValue]("hello"))
	require.Equal(t, codec.StringValue("hello"), mutResult.Reply().Value())

	after := handle.SendBlocking(capmsg.Task[codec.StringValue](""))
	require.Equal(t, codec.StringValue("hello"), after.Reply().Value())
}

func TestEchoMutBehindBridgeDefaultDeniesMutation(t *testing.T) {
	t.Parallel()

	handle, err := NewEchoMutHandle("echo-bridged")
	require.NoError(t, err)
	defer handle.Stop(context.Background())

	b := bridge.New[codec.StringValue, codec.StringValue, codec.StringValue](
		handle, codec.NewProtoCodec())
	c := codec.NewProtoCodec()

	encoded, err := wire.EncodeMessage(c, capmsg.TaskMut[codec.StringValue]("sneaky"))
	require.NoError(t, err)

	replyBytes := b.Send(context.Background(), capmsg.PeerID{}, encoded)

	result, err := wire.DecodeResult[codec.StringValue, codec.StringValue](c, replyBytes)
	require.NoError(t, err)
	require.True(t, result.IsErr())
	require.Equal(t, capmsg.ErrNotAllowed, result.Err().Kind())
	require.Equal(t, capmsg.ReasonMutationDisabled, result.Err().Reason())

	b.SetAllowMut(true)

	encoded, err = wire.EncodeMessage(c, capmsg.TaskMut[codec.StringValue]("allowed"))
	require.NoError(t, err)

	replyBytes = b.Send(context.Background(), capmsg.PeerID{}, encoded)

	result, err = wire.DecodeResult[codec.StringValue, codec.StringValue](c, replyBytes)
	require.NoError(t, err)
	require.False(t, result.IsErr())
	require.Equal(t, codec.StringValue("allowed"), result.Reply().Value())
}
