// Package transport defines the pluggable duplex-byte-stream abstraction
// the router and RemoteHandle build on, plus two concrete implementations.
package transport

import (
	"context"
	"io"
	"time"
)

// Stream is an ordered, reliable, bidirectional byte connection. Framing is
// entirely the caller's responsibility; a Stream is nothing more than a
// net.Conn-shaped pair of Read/Write/Close, plus a deadline so the router
// can bound its per-connection read phase.
type Stream interface {
	io.ReadWriteCloser

	SetDeadline(t time.Time) error
}

// Transport is the set of operations a concrete transport implements:
// name, init, accept, connect, address, and close. The protocol tag
// returned by Name is fixed for the lifetime of the type and is the value
// embedded in every ActorAddress this transport mints.
type Transport interface {
	// Name returns the protocol tag used inside addresses, e.g. "tcp"
	// or "unix".
	Name() string

	// Init binds/listens. It must be idempotent-or-error: calling it
	// twice on an already-initialized transport returns an error rather
	// than silently rebinding.
	Init(ctx context.Context) error

	// Accept waits for and returns one inbound duplex stream. It blocks
	// until a connection arrives, ctx is cancelled, or the transport is
	// closed.
	Accept(ctx context.Context) (Stream, error)

	// Connect dials the given host string, as produced by Address or
	// embedded in an ActorAddress.
	Connect(ctx context.Context, host string) (Stream, error)

	// Address returns the dial string this transport currently exposes,
	// suitable for embedding in an ActorAddress's host field.
	Address() string

	// Close releases any listening resources. Accept calls already in
	// flight return an error.
	Close() error
}
