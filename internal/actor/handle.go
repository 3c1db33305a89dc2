package actor

import (
	"context"

	"github.com/quietlane/capwire/internal/capmsg"
)

// LocalHandle is a sendable, clonable reference to a single mailbox.
// Cloning (simply copying the value) produces a handle to the same
// mailbox; the underlying worker is only actually torn down once its
// context is cancelled, either via Stop or via a Stop message it
// processes.
type LocalHandle[I any, O any, E any] struct {
	actor *localActor[I, O, E]
}

// Send enqueues msg and blocks for both room in the mailbox and the
// handler's reply, subject to ctx. A context cancellation, a full mailbox
// whose actor has since terminated, or a terminated actor all surface as
// MsgError: Send when the enqueue phase fails, Recv when the mailbox
// accepted the envelope but no reply was ever produced.
func (h *LocalHandle[I, O, E]) Send(
	ctx context.Context, msg capmsg.Message[I],
) capmsg.MsgResult[O, E] {

	if h.actor.ctx.Err() != nil {
		return capmsg.Err[O, E](capmsg.SendErr[E](ErrActorTerminated))
	}

	reply := make(chan capmsg.MsgResult[O, E], 1)
	env := envelope[I, O, E]{msg: msg, reply: reply, callerCtx: ctx}

	if !h.actor.mailbox.send(ctx, env) {
		return h.sendFailureResult(ctx)
	}

	select {
	case result := <-reply:
		return result
	case <-ctx.Done():
		return capmsg.Err[O, E](capmsg.RecvErr[E](ctx.Err()))
	case <-h.actor.ctx.Done():
		// A Stop is answered just before the worker cancels its context,
		// so a reply may already be waiting; it takes precedence.
		select {
		case result := <-reply:
			return result
		default:
		}
		return capmsg.Err[O, E](capmsg.RecvErr[E](ErrActorTerminated))
	}
}

// TrySend is the non-blocking enqueue variant: it fails immediately with
// MsgError::Send if the mailbox has no free capacity, rather than waiting
// for room. Once enqueued, it still waits for the handler's reply.
func (h *LocalHandle[I, O, E]) TrySend(
	ctx context.Context, msg capmsg.Message[I],
) capmsg.MsgResult[O, E] {

	if h.actor.ctx.Err() != nil {
		return capmsg.Err[O, E](capmsg.SendErr[E](ErrActorTerminated))
	}

	reply := make(chan capmsg.MsgResult[O, E], 1)
	env := envelope[I, O, E]{msg: msg, reply: reply, callerCtx: ctx}

	if !h.actor.mailbox.trySend(env) {
		return capmsg.Err[O, E](capmsg.SendErr[E](ErrMailboxFull))
	}

	select {
	case result := <-reply:
		return result
	case <-h.actor.ctx.Done():
		select {
		case result := <-reply:
			return result
		default:
		}
		return capmsg.Err[O, E](capmsg.RecvErr[E](ErrActorTerminated))
	}
}

// SendBlocking is a convenience for callers without a context of their
// own; it is exactly Send with context.Background().
func (h *LocalHandle[I, O, E]) SendBlocking(
	msg capmsg.Message[I],
) capmsg.MsgResult[O, E] {

	return h.Send(context.Background(), msg)
}

// Clone returns a handle to the same mailbox.
func (h *LocalHandle[I, O, E]) Clone() *LocalHandle[I, O, E] {
	return &LocalHandle[I, O, E]{actor: h.actor}
}

// Stop asks the actor to process a Stop message, which is always the last
// message it handles before its mailbox closes. When the Stop is accepted,
// it returns only once the actor's context is cancelled (or ctx is done),
// so Terminated already reports true.
func (h *LocalHandle[I, O, E]) Stop(ctx context.Context) capmsg.MsgResult[O, E] {
	result := h.Send(ctx, capmsg.Stop[I]())
	if !result.IsErr() {
		select {
		case <-h.actor.ctx.Done():
		case <-ctx.Done():
		}
	}
	return result
}

// Terminated reports whether the underlying actor's context has already
// been cancelled, which happens once a Stop has been processed.
func (h *LocalHandle[I, O, E]) Terminated() bool {
	return h.actor.ctx.Err() != nil
}

func (h *LocalHandle[I, O, E]) sendFailureResult(ctx context.Context) capmsg.MsgResult[O, E] {
	if h.actor.ctx.Err() != nil {
		return capmsg.Err[O, E](capmsg.SendErr[E](ErrActorTerminated))
	}
	if err := ctx.Err(); err != nil {
		return capmsg.Err[O, E](capmsg.SendErr[E](err))
	}

	return capmsg.Err[O, E](capmsg.SendErr[E](ErrMailboxFull))
}
