package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
)

// TCP is a Transport over loopback or routed TCP. ListenAddr selects the
// bind address for Init; Address reports the address the listener
// actually bound to, which matters when ListenAddr's port is 0.
type TCP struct {
	ListenAddr string

	mu       sync.Mutex
	listener net.Listener
}

// NewTCP constructs a TCP transport that will bind to listenAddr on Init.
func NewTCP(listenAddr string) *TCP {
	return &TCP{ListenAddr: listenAddr}
}

// Name implements Transport.
func (t *TCP) Name() string {
	return "tcp"
}

// Init implements Transport.
func (t *TCP) Init(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener != nil {
		return errors.New("tcp transport already initialized")
	}

	var lc net.ListenConfig

	l, err := lc.Listen(ctx, "tcp", t.ListenAddr)
	if err != nil {
		return fmt.Errorf("tcp listen on %q: %w", t.ListenAddr, err)
	}

	t.listener = l

	return nil
}

// Accept implements Transport.
func (t *TCP) Accept(ctx context.Context) (Stream, error) {
	t.mu.Lock()
	listener := t.listener
	t.mu.Unlock()

	if listener == nil {
		return nil, errors.New("tcp transport not initialized")
	}

	type result struct {
		conn net.Conn
		err  error
	}
	resCh := make(chan result, 1)

	go func() {
		conn, err := listener.Accept()
		resCh <- result{conn, err}
	}()

	select {
	case res := <-resCh:
		return res.conn, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Connect implements Transport.
func (t *TCP) Connect(ctx context.Context, host string) (Stream, error) {
	var d net.Dialer

	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, fmt.Errorf("tcp dial %q: %w", host, err)
	}

	return conn, nil
}

// Address implements Transport.
func (t *TCP) Address() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener == nil {
		return t.ListenAddr
	}

	return t.listener.Addr().String()
}

// Close implements Transport.
func (t *TCP) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener == nil {
		return nil
	}

	err := t.listener.Close()
	t.listener = nil

	return err
}
