// Package bridge implements the UntypedBridge: the type-erased front end
// that decodes, validates, and re-encodes messages on behalf of a typed
// LocalActor, enforcing the allow_mut/allow_stop policy flags.
package bridge

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/quietlane/capwire/internal/actor"
	"github.com/quietlane/capwire/internal/authorizer"
	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/codec"
	"github.com/quietlane/capwire/internal/wire"
)

// AuthDecider is the narrow slice of *authorizer.Authorizer[string] the
// bridge needs to consult before forwarding a request to the handler.
// *authorizer.Authorizer[string] satisfies this structurally, so wiring one
// in needs no adapter code.
type AuthDecider interface {
	Resolve(ctx context.Context, peer capmsg.PeerID, addr *capmsg.ActorAddress, desc string) (authorizer.Decision, error)
}

// UntypedBridge bridges opaque byte buffers to a typed LocalHandle. It
// holds its own clone of the handle, by construction outliving any other
// handle a caller may also hold.
type UntypedBridge[I any, O any, E any] struct {
	handle *actor.LocalHandle[I, O, E]
	codec  codec.Codec
	log    *slog.Logger

	allowMut  atomic.Bool
	allowStop atomic.Bool

	auth atomic.Pointer[AuthDecider]
	addr atomic.Pointer[capmsg.ActorAddress]
}

// New constructs a bridge over handle using c for wire (de)serialization.
// Both policy flags default to false, per §3.
func New[I any, O any, E any](
	handle *actor.LocalHandle[I, O, E], c codec.Codec,
) *UntypedBridge[I, O, E] {

	return &UntypedBridge[I, O, E]{
		handle: handle.Clone(),
		codec:  c,
		log:    slog.New(slog.DiscardHandler),
	}
}

// SetLogger attaches a structured logger.
func (b *UntypedBridge[I, O, E]) SetLogger(l *slog.Logger) {
	if l != nil {
		b.log = l
	}
}

// SetAllowMut toggles whether TaskMut requests are forwarded to the
// handler instead of being refused with NotAllowed.
func (b *UntypedBridge[I, O, E]) SetAllowMut(allow bool) {
	b.allowMut.Store(allow)
}

// SetAllowStop toggles whether Stop requests are forwarded.
func (b *UntypedBridge[I, O, E]) SetAllowStop(allow bool) {
	b.allowStop.Store(allow)
}

// AllowMut reports the current allow_mut flag.
func (b *UntypedBridge[I, O, E]) AllowMut() bool {
	return b.allowMut.Load()
}

// AllowStop reports the current allow_stop flag.
func (b *UntypedBridge[I, O, E]) AllowStop() bool {
	return b.allowStop.Load()
}

// SetAuthorizer attaches an AuthDecider that Send consults on every request
// once the bridge's own allow_mut/allow_stop flags have passed. A nil
// authorizer (the default) disables the check entirely.
func (b *UntypedBridge[I, O, E]) SetAuthorizer(auth AuthDecider) {
	if auth == nil {
		b.auth.Store(nil)
		return
	}
	b.auth.Store(&auth)
}

// SetAddress records the ActorAddress the router assigned this bridge on
// Attach, so Resolve can be given a non-nil addr_opt. Bridges constructed
// directly in tests without a router never call this, leaving addr_opt nil.
func (b *UntypedBridge[I, O, E]) SetAddress(addr capmsg.ActorAddress) {
	b.addr.Store(&addr)
}

// Send runs the full per-message pipeline from §4.2: decode, validate
// against a policy snapshot taken at the start of this call, consult the
// authorizer if one is attached, forward to the LocalHandle if permitted,
// encode the result. It always returns bytes; every failure mode, including
// decode/encode failures, is represented inside the returned MsgResult wire
// encoding rather than as a Go error, matching the single send(bytes) ->
// bytes operation from §3. peer identifies the caller: per §9's capability
// model this is the same PeerID used for routing, since possession of a
// capability id is the only identity the router recognizes.
func (b *UntypedBridge[I, O, E]) Send(ctx context.Context, peer capmsg.PeerID, data []byte) []byte {
	// Snapshot the policy once so a concurrent toggle never changes the
	// outcome mid-validation.
	mutAllowed := b.allowMut.Load()
	stopAllowed := b.allowStop.Load()

	msg, err := wire.DecodeMessage[I](b.codec, data)
	if err != nil {
		b.log.DebugContext(ctx, "bridge decode failed", "error", err)

		return b.encodeOrFallback(capmsg.Err[O, E](
			capmsg.SerializeErr[E](err)))
	}

	if msg.Kind() == capmsg.KindTaskMut && !mutAllowed {
		return b.encodeOrFallback(capmsg.Err[O, E](
			capmsg.NotAllowedErr[E](capmsg.ReasonMutationDisabled)))
	}
	if msg.Kind() == capmsg.KindStop && !stopAllowed {
		return b.encodeOrFallback(capmsg.Err[O, E](
			capmsg.NotAllowedErr[E](capmsg.ReasonStopDisabled)))
	}

	if authPtr := b.auth.Load(); authPtr != nil {
		var addrPtr *capmsg.ActorAddress
		if a := b.addr.Load(); a != nil {
			addrPtr = a
		}

		decision, err := (*authPtr).Resolve(ctx, peer, addrPtr, msg.Kind().String())
		if err != nil {
			b.log.ErrorContext(ctx, "bridge authorizer resolve failed",
				"peer_id", peer.String(), "error", err)

			return b.encodeOrFallback(capmsg.Err[O, E](
				capmsg.NotAllowedErr[E](capmsg.ReasonDenied)))
		}

		switch decision {
		case authorizer.Denied:
			b.log.WarnContext(ctx, "bridge request denied by authorizer",
				"peer_id", peer.String(), "kind", msg.Kind().String())

			return b.encodeOrFallback(capmsg.Err[O, E](
				capmsg.NotAllowedErr[E](capmsg.ReasonDenied)))

		case authorizer.Ban:
			b.log.WarnContext(ctx, "bridge request rejected, peer banned by authorizer",
				"peer_id", peer.String(), "kind", msg.Kind().String())

			return b.encodeOrFallback(capmsg.Err[O, E](
				capmsg.NotAllowedErr[E](capmsg.ReasonBanned)))
		}
	}

	// The worker will exit after this cycle if this is Stop; nothing
	// further needs to happen here, the LocalHandle's own dispatch loop
	// already enforces that.
	result := b.handle.Send(ctx, msg)

	return b.encodeOrFallback(result)
}

// encodeOrFallback encodes result with the bridge's codec. If the codec
// itself fails to encode the result (a misbehaving E or O type), a
// minimal tag-only Serialize failure is returned instead, which needs no
// codec involvement to produce.
func (b *UntypedBridge[I, O, E]) encodeOrFallback(result capmsg.MsgResult[O, E]) []byte {
	encoded, err := wire.EncodeResult(b.codec, result)
	if err != nil {
		b.log.Error("bridge failed to encode result", "error", err)

		return wire.FallbackSerializeError()
	}

	return encoded
}
