package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quietlane/capwire/internal/capmsg"
)

func TestRequestFrameRoundTrip(t *testing.T) {
	t.Parallel()

	id, err := capmsg.NewPeerID()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRequest(&buf, id, []byte("hello")))

	header, err := ReadRequestHeader(&buf)
	require.NoError(t, err)
	require.True(t, id.Equal(header.PeerID))
	require.EqualValues(t, 5, header.MsgLen)

	body, err := ReadRequestBody(&buf, header.MsgLen)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), body)
}

func TestReplyFrameRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteReply(&buf, []byte("reply body")))

	body, err := ReadReply(&buf, DefaultMaxMsgSize)
	require.NoError(t, err)
	require.Equal(t, []byte("reply body"), body)
}

func TestReadReplyRejectsOversizedBeforeAllocating(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteReply(&buf, []byte("this reply is too large")))

	_, err := ReadReply(&buf, 4)
	require.Error(t, err)
}

func TestEmptyBodiesRoundTrip(t *testing.T) {
	t.Parallel()

	id, err := capmsg.NewPeerID()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRequest(&buf, id, nil))

	header, err := ReadRequestHeader(&buf)
	require.NoError(t, err)
	require.EqualValues(t, 0, header.MsgLen)

	body, err := ReadRequestBody(&buf, header.MsgLen)
	require.NoError(t, err)
	require.Empty(t, body)
}
