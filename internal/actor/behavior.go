package actor

import (
	"context"

	"github.com/quietlane/capwire/internal/capmsg"
)

// Behavior is the pair of handlers a user supplies to Spawn: one for
// read-only message types, one for mutating ones. Both return either a
// typed value (success-with-value), no value at all (success-without-value,
// meaningful only from HandleTaskMut), or the user's own error type E.
type Behavior[I any, O any, E any] interface {
	// HandleTask answers a Task(i) dispatch. It must never need to
	// mutate actor state in a way that matters for TaskMut's gating;
	// conventionally it is the pure/read path.
	HandleTask(ctx context.Context, in I) HandlerResult[O, E]

	// HandleTaskMut answers a TaskMut(i) dispatch.
	HandleTaskMut(ctx context.Context, in I) HandlerResult[O, E]
}

// HandlerResult is what a Behavior method returns: a value, no value, or a
// user error, never more than one at once.
type HandlerResult[O any, E any] struct {
	hasValue bool
	value    O
	hasErr   bool
	err      E
}

// Value builds a success-with-value result.
func Value[O any, E any](v O) HandlerResult[O, E] {
	return HandlerResult[O, E]{hasValue: true, value: v}
}

// NoValue builds a success-without-value result. Only meaningful as the
// return of HandleTaskMut; the dispatch loop maps it to Reply::Accepted.
func NoValue[O any, E any]() HandlerResult[O, E] {
	return HandlerResult[O, E]{}
}

// Failure builds a result carrying the user's typed error.
func Failure[O any, E any](err E) HandlerResult[O, E] {
	return HandlerResult[O, E]{hasErr: true, err: err}
}

// toMsgResult maps a HandlerResult onto the wire-facing MsgResult per the
// dispatch rules in §4.1: error maps to Task(e), a value maps to Task(o),
// no value maps to Accepted.
func (hr HandlerResult[O, E]) toMsgResult() capmsg.MsgResult[O, E] {
	switch {
	case hr.hasErr:
		return capmsg.Err[O, E](capmsg.TaskErr[E](hr.err))
	case hr.hasValue:
		return capmsg.Ok[O, E](capmsg.TaskReply[O](hr.value))
	default:
		return capmsg.Ok[O, E](capmsg.AcceptedReply[O]())
	}
}
