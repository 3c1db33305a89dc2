// Package router implements the network-facing side of the capability
// protocol: a single listening Transport, a peer table mapping PeerID to
// the bridge that owns it, and the accept loop that reads one framed
// request per connection, looks up its bridge, and writes back the framed
// reply.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/transport"
	"github.com/quietlane/capwire/internal/wire"
)

// DefaultMsgReadTimeout bounds how long the router waits for a full
// request (header and body) to arrive on an accepted connection.
const DefaultMsgReadTimeout = 5 * time.Second

// Bridge is the minimal shape the router needs from an attached actor: an
// untyped, codec-already-applied send operation. *bridge.UntypedBridge
// satisfies this structurally for any I, O, E, which is what lets the
// router hold bridges of differing type parameters in a single map.
type Bridge interface {
	Send(ctx context.Context, peer capmsg.PeerID, data []byte) []byte
}

// Config collects the router's tunables.
type Config struct {
	MsgReadTimeout time.Duration
	MaxMsgSize     uint32
	Logger         *slog.Logger
}

// Option configures a Router at construction time.
type Option func(*Config)

// WithMsgReadTimeout overrides DefaultMsgReadTimeout.
func WithMsgReadTimeout(d time.Duration) Option {
	return func(c *Config) { c.MsgReadTimeout = d }
}

// WithMaxMsgSize overrides wire.DefaultMaxMsgSize; 0 keeps the default.
func WithMaxMsgSize(n uint32) Option {
	return func(c *Config) { c.MaxMsgSize = n }
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func buildConfig(opts []Option) Config {
	cfg := Config{
		MsgReadTimeout: DefaultMsgReadTimeout,
		MaxMsgSize:     wire.DefaultMaxMsgSize,
		Logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxMsgSize == 0 {
		cfg.MaxMsgSize = wire.DefaultMaxMsgSize
	}

	return cfg
}

// Router owns one Transport and the peer table of bridges attached to it.
// Attach/Revoke/Stop are serialized by mu, a readers-writer lock: the
// accept loop only ever takes a read lock to look up a peer, so concurrent
// requests never block each other, while attach/revoke take the write
// lock and are observed atomically by every subsequent accept.
type Router struct {
	transport transport.Transport
	cfg       Config

	mu    sync.RWMutex
	peers map[capmsg.PeerID]Bridge
	addrs map[capmsg.PeerID]capmsg.ActorAddress

	ctx    context.Context
	cancel context.CancelFunc
	eg     *errgroup.Group

	stopOnce sync.Once
}

// New constructs a Router over tr. Start must be called before it accepts
// connections.
func New(tr transport.Transport, opts ...Option) *Router {
	return &Router{
		transport: tr,
		cfg:       buildConfig(opts),
		peers:     make(map[capmsg.PeerID]Bridge),
		addrs:     make(map[capmsg.PeerID]capmsg.ActorAddress),
	}
}

// Start initializes the transport and launches the accept loop in the
// background. Start must be called at most once.
func (r *Router) Start(ctx context.Context) error {
	if err := r.transport.Init(ctx); err != nil {
		return fmt.Errorf("initializing transport: %w", err)
	}

	r.ctx, r.cancel = context.WithCancel(ctx)
	eg, egCtx := errgroup.WithContext(r.ctx)
	r.eg = eg

	eg.Go(func() error {
		r.acceptLoop(egCtx)
		return nil
	})

	return nil
}

// HostAddress returns the dial string this router's transport currently
// exposes.
func (r *Router) HostAddress() string {
	return r.transport.Address()
}

// addressable is satisfied by bridges that want to know their own
// ActorAddress once Attach assigns one, so they can pass it as Resolve's
// addr_opt. *bridge.UntypedBridge implements this via SetAddress.
type addressable interface {
	SetAddress(capmsg.ActorAddress)
}

// Attach mints a fresh PeerID, registers b under it, and returns the
// ActorAddress a remote caller needs to reach it: tag is the transport's
// protocol name, host is the router's current listen address.
func (r *Router) Attach(b Bridge) (capmsg.ActorAddress, error) {
	id, err := capmsg.NewPeerID()
	if err != nil {
		return capmsg.ActorAddress{}, fmt.Errorf("minting peer id: %w", err)
	}

	addr := capmsg.NewActorAddress(r.transport.Name(), id, r.transport.Address())

	if a, ok := b.(addressable); ok {
		a.SetAddress(addr)
	}

	r.mu.Lock()
	r.peers[id] = b
	r.addrs[id] = addr
	r.mu.Unlock()

	return addr, nil
}

// Revoke removes addr's peer id from the table. Inbound requests for a
// revoked address are silently dropped by the accept loop from that point
// on; Revoke on an address already absent is a no-op.
func (r *Router) Revoke(addr capmsg.ActorAddress) {
	r.mu.Lock()
	delete(r.peers, addr.PeerID)
	delete(r.addrs, addr.PeerID)
	r.mu.Unlock()
}

// Capabilities returns the ActorAddress of every peer currently attached
// to this router, in no particular order. It is read-only introspection
// for the admin plane and has no bearing on core routing.
func (r *Router) Capabilities() []capmsg.ActorAddress {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]capmsg.ActorAddress, 0, len(r.addrs))
	for _, addr := range r.addrs {
		out = append(out, addr)
	}

	return out
}

// PeerCount returns the number of peers currently attached.
func (r *Router) PeerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.peers)
}

// Stop cancels the accept loop, waits for in-flight connection workers to
// finish, clears the peer table, and closes the transport. Stop is
// idempotent.
func (r *Router) Stop() error {
	var stopErr error

	r.stopOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		if r.eg != nil {
			_ = r.eg.Wait()
		}

		r.mu.Lock()
		r.peers = make(map[capmsg.PeerID]Bridge)
		r.addrs = make(map[capmsg.PeerID]capmsg.ActorAddress)
		r.mu.Unlock()

		stopErr = r.transport.Close()
	})

	return stopErr
}

func (r *Router) acceptLoop(ctx context.Context) {
	log := r.cfg.Logger

	for {
		stream, err := r.transport.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			log.WarnContext(ctx, "accept failed", "error", err)
			continue
		}

		connID := uuid.New()
		r.eg.Go(func() error {
			r.handleConnection(ctx, connID, stream)
			return nil
		})
	}
}

// handleConnection services exactly one request/reply exchange: read the
// header, enforce the size bound before allocating a body buffer, read the
// body, look up the target bridge, forward, write the reply.
func (r *Router) handleConnection(
	ctx context.Context, connID uuid.UUID, stream transport.Stream,
) {

	log := r.cfg.Logger
	defer func() { _ = stream.Close() }()

	if r.cfg.MsgReadTimeout > 0 {
		_ = stream.SetDeadline(time.Now().Add(r.cfg.MsgReadTimeout))
	}

	header, err := wire.ReadRequestHeader(stream)
	if err != nil {
		log.DebugContext(ctx, "reading request header failed",
			"conn_id", connID, "error", err)
		return
	}

	if r.cfg.MaxMsgSize > 0 && header.MsgLen > r.cfg.MaxMsgSize {
		log.WarnContext(ctx, "request exceeds max message size, dropping",
			"conn_id", connID, "peer_id", header.PeerID.String(),
			"msg_len", header.MsgLen, "max_msg_size", r.cfg.MaxMsgSize)
		return
	}

	body, err := wire.ReadRequestBody(stream, header.MsgLen)
	if err != nil {
		log.DebugContext(ctx, "reading request body failed",
			"conn_id", connID, "error", err)
		return
	}

	r.mu.RLock()
	b, ok := r.peers[header.PeerID]
	r.mu.RUnlock()

	if !ok {
		log.WarnContext(ctx, "request for unknown or revoked peer id, dropping",
			"conn_id", connID, "peer_id", header.PeerID.String())
		return
	}

	reply := b.Send(ctx, header.PeerID, body)

	if err := wire.WriteReply(stream, reply); err != nil {
		log.DebugContext(ctx, "writing reply failed",
			"conn_id", connID, "error", err)
	}
}
