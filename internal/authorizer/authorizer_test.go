package authorizer

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quietlane/capwire/internal/capmsg"
)

// memStore is a trivial in-memory authorizer.Store for tests.
type memStore struct {
	mu    sync.Mutex
	peers map[capmsg.PeerID]struct{}
	addrs map[string]struct{}
	pub   ed25519.PublicKey
	priv  ed25519.PrivateKey
}

func newMemStore() *memStore {
	return &memStore{
		peers: make(map[capmsg.PeerID]struct{}),
		addrs: make(map[string]struct{}),
	}
}

func (m *memStore) AddPeer(_ context.Context, id capmsg.PeerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peers[id] = struct{}{}
	return nil
}

func (m *memStore) AddAddr(_ context.Context, addr capmsg.ActorAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addrs[addr.Format()] = struct{}{}
	return nil
}

func (m *memStore) HasPeer(_ context.Context, id capmsg.PeerID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.peers[id]
	return ok, nil
}

func (m *memStore) HasAddr(_ context.Context, addr capmsg.ActorAddress) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.addrs[addr.Format()]
	return ok, nil
}

func (m *memStore) Keypair(_ context.Context) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pub == nil {
		m.pub, m.priv, _ = ed25519.GenerateKey(nil)
	}
	return m.pub, m.priv, nil
}

type accessDesc struct {
	scope string
}

func TestAuthorizerStorePeerThenResolveSeesIt(t *testing.T) {
	t.Parallel()

	mem := newMemStore()

	var seenKnown bool
	resolver := ResolverFunc[accessDesc](
		func(ctx context.Context, peer capmsg.PeerID, _ *capmsg.ActorAddress, _ accessDesc) Decision {
			known, _ := mem.HasPeer(ctx, peer)
			seenKnown = known
			if known {
				return Accepted
			}
			return Denied
		},
	)

	auth, err := New[accessDesc](mem, resolver)
	require.NoError(t, err)
	defer auth.Stop(context.Background())

	id, err := capmsg.NewPeerID()
	require.NoError(t, err)

	decision, err := auth.Resolve(context.Background(), id, nil, accessDesc{scope: "read"})
	require.NoError(t, err)
	require.Equal(t, Denied, decision)
	require.False(t, seenKnown)

	require.NoError(t, auth.StorePeer(context.Background(), id))

	decision, err = auth.Resolve(context.Background(), id, nil, accessDesc{scope: "read"})
	require.NoError(t, err)
	require.Equal(t, Accepted, decision)
	require.True(t, seenKnown)
}

func TestAuthorizerFetchKeypairIsStable(t *testing.T) {
	t.Parallel()

	mem := newMemStore()
	resolver := ResolverFunc[accessDesc](
		func(_ context.Context, _ capmsg.PeerID, _ *capmsg.ActorAddress, _ accessDesc) Decision {
			return Accepted
		},
	)

	auth, err := New[accessDesc](mem, resolver)
	require.NoError(t, err)
	defer auth.Stop(context.Background())

	pub1, _, err := auth.FetchKeypair(context.Background())
	require.NoError(t, err)

	pub2, _, err := auth.FetchKeypair(context.Background())
	require.NoError(t, err)
	require.Equal(t, pub1, pub2)
}

func TestAuthorizerCanBan(t *testing.T) {
	t.Parallel()

	mem := newMemStore()
	resolver := ResolverFunc[accessDesc](
		func(_ context.Context, _ capmsg.PeerID, _ *capmsg.ActorAddress, desc accessDesc) Decision {
			if desc.scope == "forbidden" {
				return Ban
			}
			return Accepted
		},
	)

	auth, err := New[accessDesc](mem, resolver)
	require.NoError(t, err)
	defer auth.Stop(context.Background())

	id, err := capmsg.NewPeerID()
	require.NoError(t, err)

	decision, err := auth.Resolve(context.Background(), id, nil, accessDesc{scope: "forbidden"})
	require.NoError(t, err)
	require.Equal(t, Ban, decision)
}
