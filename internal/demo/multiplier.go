// Package demo ships the two example actors used by spec.md §8's test
// scenarios and by cmd/capwired's/cmd/capwire's example wiring: a simple
// multiplier and a mutation-exercising echo.
package demo

import (
	"context"

	"github.com/quietlane/capwire/internal/actor"
	"github.com/quietlane/capwire/internal/codec"
)

// Multiplier answers Task(x) with a*x. It is the `Mult{a}` actor from
// spec.md §8, scenarios 1-4.
type Multiplier struct {
	Factor codec.IntValue
}

// HandleTask implements actor.Behavior.
func (m Multiplier) HandleTask(
	_ context.Context, in codec.IntValue,
) actor.HandlerResult[codec.IntValue, codec.StringValue] {

	return actor.Value[codec.IntValue, codec.StringValue](m.Factor * in)
}

// HandleTaskMut implements actor.Behavior identically to HandleTask:
// Multiplier has no mutable state for TaskMut to exercise differently.
func (m Multiplier) HandleTaskMut(
	ctx context.Context, in codec.IntValue,
) actor.HandlerResult[codec.IntValue, codec.StringValue] {

	return m.HandleTask(ctx, in)
}

// NewMultiplierHandle spawns a Multiplier actor with the given factor.
func NewMultiplierHandle(
	id string, factor codec.IntValue, opts ...actor.Option,
) (*actor.LocalHandle[codec.IntValue, codec.IntValue, codec.StringValue], error) {

	return actor.Spawn[codec.IntValue, codec.IntValue, codec.StringValue](
		id, Multiplier{Factor: factor}, opts...)
}
