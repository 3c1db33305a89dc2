package actor

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/quietlane/capwire/internal/capmsg"
)

// envelope pairs a dispatched message with the one-shot channel its result
// is delivered on. The channel is always non-nil: every LocalHandle
// operation is request/response, there is no fire-and-forget variant at
// this layer.
type envelope[I any, O any, E any] struct {
	msg       capmsg.Message[I]
	reply     chan capmsg.MsgResult[O, E]
	callerCtx context.Context
}

// channelMailbox is a bounded, channel-backed mailbox. Sends are guarded by
// an RWMutex so a concurrent Close can never race a send onto an already
// closed channel: Close takes the write lock, every Send/TrySend holds the
// read lock for the full duration of its channel operation.
type channelMailbox[I any, O any, E any] struct {
	ch        chan envelope[I, O, E]
	closed    atomic.Bool
	mu        sync.RWMutex
	closeOnce sync.Once
	actorCtx  context.Context
}

func newChannelMailbox[I any, O any, E any](
	actorCtx context.Context, capacity int,
) *channelMailbox[I, O, E] {

	if capacity <= 0 {
		capacity = defaultMailboxSize
	}

	return &channelMailbox[I, O, E]{
		ch:       make(chan envelope[I, O, E], capacity),
		actorCtx: actorCtx,
	}
}

// send blocks until the envelope is accepted, the caller's context is
// cancelled, or the actor's context is cancelled. It reports whether the
// envelope was accepted.
func (m *channelMailbox[I, O, E]) send(
	ctx context.Context, env envelope[I, O, E],
) bool {

	if ctx.Err() != nil || m.actorCtx.Err() != nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed.Load() {
		return false
	}

	select {
	case m.ch <- env:
		return true
	case <-ctx.Done():
		return false
	case <-m.actorCtx.Done():
		return false
	}
}

// trySend enqueues without blocking; it fails immediately if the mailbox is
// full, closed, or the actor has already terminated.
func (m *channelMailbox[I, O, E]) trySend(env envelope[I, O, E]) bool {
	if m.actorCtx.Err() != nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed.Load() {
		return false
	}

	select {
	case m.ch <- env:
		return true
	default:
		return false
	}
}

// receive yields envelopes until ctx is cancelled or the mailbox is closed
// and drained.
func (m *channelMailbox[I, O, E]) receive(
	ctx context.Context,
) iter.Seq[envelope[I, O, E]] {

	return func(yield func(envelope[I, O, E]) bool) {
		for {
			if ctx.Err() != nil {
				return
			}

			select {
			case env, ok := <-m.ch:
				if !ok {
					return
				}
				if !yield(env) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}
}

// close closes the mailbox. Safe to call more than once; only the first
// call has an effect.
func (m *channelMailbox[I, O, E]) close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.closed.Store(true)
		close(m.ch)
	})
}

func (m *channelMailbox[I, O, E]) isClosed() bool {
	return m.closed.Load()
}

// drain yields every envelope left in the mailbox after close. It must only
// be called after close.
func (m *channelMailbox[I, O, E]) drain() iter.Seq[envelope[I, O, E]] {
	return func(yield func(envelope[I, O, E]) bool) {
		if !m.isClosed() {
			return
		}

		for {
			select {
			case env, ok := <-m.ch:
				if !ok {
					return
				}
				if !yield(env) {
					return
				}
			default:
				return
			}
		}
	}
}
