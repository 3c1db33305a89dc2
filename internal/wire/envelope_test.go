package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/codec"
)

func TestMessageRoundTripAllKinds(t *testing.T) {
	t.Parallel()

	c := NewTestCodec(t)

	msgs := []capmsg.Message[codec.IntValue]{
		capmsg.Task[codec.IntValue](7),
		capmsg.TaskMut[codec.IntValue](9),
		capmsg.Ping[codec.IntValue](),
		capmsg.Stop[codec.IntValue](),
	}

	for _, msg := range msgs {
		encoded, err := EncodeMessage(c, msg)
		require.NoError(t, err)

		decoded, err := DecodeMessage[codec.IntValue](c, encoded)
		require.NoError(t, err)
		require.Equal(t, msg.Kind(), decoded.Kind())

		if msg.Kind() == capmsg.KindTask || msg.Kind() == capmsg.KindTaskMut {
			require.Equal(t, msg.Payload(), decoded.Payload())
		}
	}
}

func TestResultRoundTripAccepted(t *testing.T) {
	t.Parallel()

	c := NewTestCodec(t)

	res := capmsg.Ok[codec.IntValue, codec.StringValue](
		capmsg.AcceptedReply[codec.IntValue]())

	encoded, err := EncodeResult(c, res)
	require.NoError(t, err)

	decoded, err := DecodeResult[codec.IntValue, codec.StringValue](c, encoded)
	require.NoError(t, err)
	require.False(t, decoded.IsErr())
	require.False(t, decoded.Reply().HasValue())
}

func TestResultRoundTripTaskValue(t *testing.T) {
	t.Parallel()

	c := NewTestCodec(t)

	res := capmsg.Ok[codec.IntValue, codec.StringValue](
		capmsg.TaskReply(codec.IntValue(123)))

	encoded, err := EncodeResult(c, res)
	require.NoError(t, err)

	decoded, err := DecodeResult[codec.IntValue, codec.StringValue](c, encoded)
	require.NoError(t, err)
	require.False(t, decoded.IsErr())
	require.Equal(t, codec.IntValue(123), decoded.Reply().Value())
}

func TestResultRoundTripTaskError(t *testing.T) {
	t.Parallel()

	c := NewTestCodec(t)

	res := capmsg.Err[codec.IntValue, codec.StringValue](
		capmsg.TaskErr[codec.StringValue]("boom"))

	encoded, err := EncodeResult(c, res)
	require.NoError(t, err)

	decoded, err := DecodeResult[codec.IntValue, codec.StringValue](c, encoded)
	require.NoError(t, err)
	require.True(t, decoded.IsErr())
	require.Equal(t, capmsg.ErrTask, decoded.Err().Kind())
	require.Equal(t, codec.StringValue("boom"), decoded.Err().UserErr())
}

func TestResultRoundTripNotAllowed(t *testing.T) {
	t.Parallel()

	c := NewTestCodec(t)

	res := capmsg.Err[codec.IntValue, codec.StringValue](
		capmsg.NotAllowedErr[codec.StringValue](capmsg.ReasonStopDisabled))

	encoded, err := EncodeResult(c, res)
	require.NoError(t, err)

	decoded, err := DecodeResult[codec.IntValue, codec.StringValue](c, encoded)
	require.NoError(t, err)
	require.True(t, decoded.IsErr())
	require.Equal(t, capmsg.ErrNotAllowed, decoded.Err().Kind())
	require.Equal(t, capmsg.ReasonStopDisabled, decoded.Err().Reason())
}

func TestResultRoundTripBareErrorKinds(t *testing.T) {
	t.Parallel()

	c := NewTestCodec(t)

	kinds := []capmsg.ErrKind{
		capmsg.ErrSpawn, capmsg.ErrSend, capmsg.ErrRecv,
		capmsg.ErrConnect, capmsg.ErrSerialize, capmsg.ErrInit,
		capmsg.ErrAddress,
	}

	for _, kind := range kinds {
		var msgErr capmsg.MsgError[codec.StringValue]
		switch kind {
		case capmsg.ErrSpawn:
			msgErr = capmsg.SpawnErr[codec.StringValue](nil)
		case capmsg.ErrSend:
			msgErr = capmsg.SendErr[codec.StringValue](nil)
		case capmsg.ErrRecv:
			msgErr = capmsg.RecvErr[codec.StringValue](nil)
		case capmsg.ErrConnect:
			msgErr = capmsg.ConnectErr[codec.StringValue](nil)
		case capmsg.ErrSerialize:
			msgErr = capmsg.SerializeErr[codec.StringValue](nil)
		case capmsg.ErrInit:
			msgErr = capmsg.InitErr[codec.StringValue](nil)
		case capmsg.ErrAddress:
			msgErr = capmsg.AddressErr[codec.StringValue](nil)
		}

		encoded, err := EncodeResult[codec.IntValue](c, capmsg.Err[codec.IntValue](msgErr))
		require.NoError(t, err)

		decoded, err := DecodeResult[codec.IntValue, codec.StringValue](c, encoded)
		require.NoError(t, err)
		require.True(t, decoded.IsErr())
		require.Equal(t, kind, decoded.Err().Kind())
	}
}

func TestFallbackSerializeErrorDecodesAsSerialize(t *testing.T) {
	t.Parallel()

	c := NewTestCodec(t)

	decoded, err := DecodeResult[codec.IntValue, codec.StringValue](
		c, FallbackSerializeError())
	require.NoError(t, err)
	require.True(t, decoded.IsErr())
	require.Equal(t, capmsg.ErrSerialize, decoded.Err().Kind())
}
