package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quietlane/capwire/internal/capmsg"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "capability.db")

	s, err := New(&Config{DatabaseFileName: dbPath}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestStorePeerRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	id, err := capmsg.NewPeerID()
	require.NoError(t, err)

	has, err := s.HasPeer(ctx, id)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, s.AddPeer(ctx, id))

	has, err = s.HasPeer(ctx, id)
	require.NoError(t, err)
	require.True(t, has)

	// Adding twice is idempotent.
	require.NoError(t, s.AddPeer(ctx, id))
}

func TestStoreAddrRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	id, err := capmsg.NewPeerID()
	require.NoError(t, err)
	addr := capmsg.NewActorAddress("tcp", id, "127.0.0.1:9000")

	has, err := s.HasAddr(ctx, addr)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, s.AddAddr(ctx, addr))

	has, err = s.HasAddr(ctx, addr)
	require.NoError(t, err)
	require.True(t, has)
}

func TestKeypairIsStableAcrossCalls(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	pub1, priv1, err := s.Keypair(ctx)
	require.NoError(t, err)
	require.Len(t, pub1, 32)

	pub2, priv2, err := s.Keypair(ctx)
	require.NoError(t, err)
	require.Equal(t, pub1, pub2)
	require.Equal(t, priv1, priv2)
}

func TestKeypairPersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "capability.db")
	log := slog.New(slog.DiscardHandler)

	s1, err := New(&Config{DatabaseFileName: dbPath}, log)
	require.NoError(t, err)

	pub1, _, err := s1.Keypair(context.Background())
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := New(&Config{DatabaseFileName: dbPath}, log)
	require.NoError(t, err)
	defer s2.Close()

	pub2, _, err := s2.Keypair(context.Background())
	require.NoError(t, err)
	require.Equal(t, pub1, pub2)
}
