package demo

import (
	"context"

	"github.com/quietlane/capwire/internal/actor"
	"github.com/quietlane/capwire/internal/codec"
)

// EchoMut holds one string of state. Task reads it back without changing
// it; TaskMut replaces it and returns the new value. Exercising both
// against the same actor is what makes it useful for the default-deny
// policy path: a bridge with allow_mut left at its default false answers
// every TaskMut with NotAllowed while still answering Task normally,
// which this actor's two different behaviors make easy to tell apart in
// a test.
type EchoMut struct {
	state codec.StringValue
}

// NewEchoMut constructs an EchoMut starting from the empty string.
func NewEchoMut() *EchoMut {
	return &EchoMut{}
}

// HandleTask returns the current state unchanged.
func (e *EchoMut) HandleTask(
	_ context.Context, _ codec.StringValue,
) actor.HandlerResult[codec.StringValue, codec.StringValue] {

	return actor.Value[codec.StringValue, codec.StringValue](e.state)
}

// HandleTaskMut replaces the state with in and returns it. Safe without a
// mutex: the actor's single-writer dispatch loop guarantees this method
// never runs concurrently with itself or with HandleTask.
func (e *EchoMut) HandleTaskMut(
	_ context.Context, in codec.StringValue,
) actor.HandlerResult[codec.StringValue, codec.StringValue] {

	e.state = in

	return actor.Value[codec.StringValue, codec.StringValue](in)
}

// NewEchoMutHandle spawns an EchoMut actor.
func NewEchoMutHandle(
	id string, opts ...actor.Option,
) (*actor.LocalHandle[codec.StringValue, codec.StringValue, codec.StringValue], error) {

	return actor.Spawn[codec.StringValue, codec.StringValue, codec.StringValue](
		id, NewEchoMut(), opts...)
}
