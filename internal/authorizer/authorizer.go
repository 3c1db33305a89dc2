// Package authorizer implements the orthogonal local actor described in
// §4.7: two unordered sets (known peers, known address-equivalents), one
// process-wide keypair, and a single user-overridable resolution method.
// It is itself built as a LocalActor from internal/actor, giving it the
// same single-writer, FIFO-mailbox semantics as any other actor in this
// module: stores are mutated through HandleTaskMut, reads go through
// HandleTask.
package authorizer

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"

	"github.com/quietlane/capwire/internal/actor"
	"github.com/quietlane/capwire/internal/capmsg"
)

// Decision is the three-way outcome of a resolve call.
type Decision uint8

const (
	// Accepted admits the request.
	Accepted Decision = iota

	// Denied refuses this one request without prejudice.
	Denied

	// Ban refuses this request and advises the router that this peer
	// should never succeed again. Enforcement is the router's choice;
	// the authorizer itself only ever reports the decision.
	Ban
)

// String renders the decision for logging.
func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case Denied:
		return "denied"
	case Ban:
		return "ban"
	default:
		return "unknown"
	}
}

// Resolver is the user-overridable policy: given a peer, an optional
// address the request claims to be for, and an access descriptor of the
// caller's own type A, decide whether to let it through.
type Resolver[A any] interface {
	Resolve(ctx context.Context, peer capmsg.PeerID, addr *capmsg.ActorAddress, desc A) Decision
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc[A any] func(ctx context.Context, peer capmsg.PeerID, addr *capmsg.ActorAddress, desc A) Decision

// Resolve implements Resolver.
func (f ResolverFunc[A]) Resolve(
	ctx context.Context, peer capmsg.PeerID, addr *capmsg.ActorAddress, desc A,
) Decision {

	return f(ctx, peer, addr, desc)
}

// Store is the persistence surface backing the two sets and the process
// identity. internal/authorizer/store provides a SQLite-backed
// implementation; tests use a trivial in-memory one.
type Store interface {
	AddPeer(ctx context.Context, id capmsg.PeerID) error
	AddAddr(ctx context.Context, addr capmsg.ActorAddress) error
	HasPeer(ctx context.Context, id capmsg.PeerID) (bool, error)
	HasAddr(ctx context.Context, addr capmsg.ActorAddress) (bool, error)
	Keypair(ctx context.Context) (ed25519.PublicKey, ed25519.PrivateKey, error)
}

type requestKind uint8

const (
	reqStorePeer requestKind = iota
	reqStoreAddr
	reqFetchKeypair
	reqResolve
)

// request is the single message type the authorizer's actor dispatches
// on; it is never exposed outside this package.
type request[A any] struct {
	kind    requestKind
	peer    capmsg.PeerID
	addr    capmsg.ActorAddress
	hasAddr bool
	desc    A
}

// reply is the single value type the authorizer's actor produces.
type reply struct {
	decision Decision
	pub      ed25519.PublicKey
	priv     ed25519.PrivateKey
}

// behavior implements actor.Behavior[request[A], reply, string]. The user
// error type is a plain string since the only failures this actor
// produces originate from the Store, which already reports plain errors;
// nothing here needs a richer structured error of its own.
type behavior[A any] struct {
	store    Store
	resolver Resolver[A]
	log      *slog.Logger
}

// HandleTask answers the two read-only operations: fetch_keypair and
// resolve. Neither touches the stores' sets.
func (b *behavior[A]) HandleTask(
	ctx context.Context, req request[A],
) actor.HandlerResult[reply, string] {

	switch req.kind {
	case reqFetchKeypair:
		pub, priv, err := b.store.Keypair(ctx)
		if err != nil {
			return actor.Failure[reply, string](err.Error())
		}

		return actor.Value[reply, string](reply{pub: pub, priv: priv})

	case reqResolve:
		var addrPtr *capmsg.ActorAddress
		if req.hasAddr {
			a := req.addr
			addrPtr = &a
		}

		decision := b.resolver.Resolve(ctx, req.peer, addrPtr, req.desc)

		return actor.Value[reply, string](reply{decision: decision})

	default:
		return actor.Failure[reply, string](
			fmt.Sprintf("unsupported read request kind %d", req.kind))
	}
}

// HandleTaskMut answers the two mutating operations: store_peer and
// store_addr.
func (b *behavior[A]) HandleTaskMut(
	ctx context.Context, req request[A],
) actor.HandlerResult[reply, string] {

	switch req.kind {
	case reqStorePeer:
		if err := b.store.AddPeer(ctx, req.peer); err != nil {
			return actor.Failure[reply, string](err.Error())
		}

		return actor.NoValue[reply, string]()

	case reqStoreAddr:
		if err := b.store.AddAddr(ctx, req.addr); err != nil {
			return actor.Failure[reply, string](err.Error())
		}

		return actor.NoValue[reply, string]()

	default:
		return actor.Failure[reply, string](
			fmt.Sprintf("unsupported mutating request kind %d", req.kind))
	}
}

// Authorizer is the typed front end over the underlying LocalHandle. A is
// the caller-supplied access-descriptor type passed through Resolve to
// the user's Resolver.
type Authorizer[A any] struct {
	handle *actor.LocalHandle[request[A], reply, string]
}

// New spawns an authorizer actor over store, consulting resolver for
// every Resolve call.
func New[A any](
	store Store, resolver Resolver[A], opts ...actor.Option,
) (*Authorizer[A], error) {

	handle, err := actor.Spawn[request[A], reply, string](
		"authorizer", &behavior[A]{store: store, resolver: resolver},
		opts...)
	if err != nil {
		return nil, fmt.Errorf("spawning authorizer: %w", err)
	}

	return &Authorizer[A]{handle: handle}, nil
}

// StorePeer records id as a known peer.
func (a *Authorizer[A]) StorePeer(ctx context.Context, id capmsg.PeerID) error {
	result := a.handle.Send(ctx, capmsg.TaskMut(request[A]{
		kind: reqStorePeer, peer: id,
	}))
	_, err := result.Unpack()

	return err
}

// StoreAddr records addr as a known address-equivalent.
func (a *Authorizer[A]) StoreAddr(ctx context.Context, addr capmsg.ActorAddress) error {
	result := a.handle.Send(ctx, capmsg.TaskMut(request[A]{
		kind: reqStoreAddr, addr: addr, hasAddr: true,
	}))
	_, err := result.Unpack()

	return err
}

// FetchKeypair returns the process-wide identity.
func (a *Authorizer[A]) FetchKeypair(
	ctx context.Context,
) (ed25519.PublicKey, ed25519.PrivateKey, error) {

	result := a.handle.Send(ctx, capmsg.Task(request[A]{kind: reqFetchKeypair}))

	r, err := result.Unpack()
	if err != nil {
		return nil, nil, err
	}

	return r.Value().pub, r.Value().priv, nil
}

// Resolve consults the user's Resolver for the given peer, optional
// address, and access descriptor.
func (a *Authorizer[A]) Resolve(
	ctx context.Context, peer capmsg.PeerID, addr *capmsg.ActorAddress, desc A,
) (Decision, error) {

	req := request[A]{kind: reqResolve, peer: peer, desc: desc}
	if addr != nil {
		req.addr = *addr
		req.hasAddr = true
	}

	result := a.handle.Send(ctx, capmsg.Task(req))

	r, err := result.Unpack()
	if err != nil {
		return Denied, err
	}

	return r.Value().decision, nil
}

// Stop shuts the authorizer actor down.
func (a *Authorizer[A]) Stop(ctx context.Context) error {
	_, err := a.handle.Stop(ctx).Unpack()
	return err
}
