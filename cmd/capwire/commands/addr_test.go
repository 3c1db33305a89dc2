package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quietlane/capwire/internal/capmsg"
)

func TestAddrFormatThenParseRoundTrips(t *testing.T) {
	t.Parallel()

	peerHex := "11223344556677889900aabbccddeeff11223344556677889900aabbccddeeff"

	err := addrFormatCmd.RunE(addrFormatCmd, []string{"tcp", peerHex, "127.0.0.1:9000"})
	require.NoError(t, err)

	addr, err := capmsg.ParseActorAddress("tcp:" + peerHex + "@127.0.0.1:9000")
	require.NoError(t, err)
	require.Equal(t, "tcp", addr.Tag)
	require.Equal(t, "127.0.0.1:9000", addr.Host)

	err = addrParseCmd.RunE(addrParseCmd, []string{addr.Format()})
	require.NoError(t, err)
}

func TestAddrParseRejectsMalformed(t *testing.T) {
	t.Parallel()

	err := addrParseCmd.RunE(addrParseCmd, []string{"not-an-address"})
	require.Error(t, err)
}

func TestAddrFormatRejectsBadPeerHex(t *testing.T) {
	t.Parallel()

	err := addrFormatCmd.RunE(addrFormatCmd, []string{"tcp", "not-hex", "host:1"})
	require.Error(t, err)
}
