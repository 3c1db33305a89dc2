package router

import (
	"context"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/quietlane/capwire/internal/actor"
	"github.com/quietlane/capwire/internal/bridge"
	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/codec"
	"github.com/quietlane/capwire/internal/transport"
	"github.com/quietlane/capwire/internal/wire"
)

// TestPropertyRevocationStopsFutureDelivery checks §8's Revocation
// invariant: whatever number of requests an address served before Revoke
// returns, the next request through it fails, for arbitrary pre-revoke send
// counts.
func TestPropertyRevocationStopsFutureDelivery(t *testing.T) {
	t.Parallel()

	r := newStartedRouter(t)

	rapid.Check(t, func(rt *rapid.T) {
		preRevoke := rapid.IntRange(0, 10).Draw(rt, "preRevoke")

		handle, err := actor.Spawn[codec.IntValue, codec.IntValue, codec.StringValue](
			"tripler-revoke-property", tripler{})
		if err != nil {
			rt.Fatalf("spawn: %v", err)
		}
		defer handle.Stop(context.Background())

		b := bridge.New[codec.IntValue, codec.IntValue, codec.StringValue](
			handle, codec.NewProtoCodec())

		addr, err := r.Attach(b)
		if err != nil {
			rt.Fatalf("attach: %v", err)
		}

		remote := wire.NewRemoteHandle[codec.IntValue, codec.IntValue, codec.StringValue](
			addr, transport.NewTCP(""), codec.NewProtoCodec(), 0)

		for i := 0; i < preRevoke; i++ {
			result := remote.Send(context.Background(), capmsg.Task[codec.IntValue](codec.IntValue(i)))
			if result.IsErr() {
				rt.Fatalf("pre-revoke send %d failed: %v", i, result.Err())
			}
		}

		r.Revoke(addr)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		after := remote.Send(ctx, capmsg.Task[codec.IntValue](0))
		if !after.IsErr() {
			rt.Fatalf("send after revoke (preceded by %d sends) unexpectedly succeeded", preRevoke)
		}
		if after.Err().Kind() != capmsg.ErrRecv {
			rt.Fatalf("send after revoke failed with kind %s, want ErrRecv", after.Err().Kind())
		}
	})
}

// TestPropertyMaxMsgSizeRejectsOversizedRequest checks §8's Size-bound
// invariant: for arbitrary max_msg_size configurations and payload lengths
// exceeding it, the request is rejected rather than ever being delivered to
// the handler.
func TestPropertyMaxMsgSizeRejectsOversizedRequest(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		maxSize := rapid.Uint32Range(8, 256).Draw(rt, "maxSize")
		overBy := rapid.IntRange(1, 256).Draw(rt, "overBy")

		r := New(transport.NewTCP("127.0.0.1:0"), WithMaxMsgSize(maxSize))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer r.Stop()

		if err := r.Start(ctx); err != nil {
			rt.Fatalf("start: %v", err)
		}

		calls := 0
		handle, err := actor.Spawn[codec.StringValue, codec.StringValue, codec.StringValue](
			"echo-size-property", countingStringEchoer{calls: &calls})
		if err != nil {
			rt.Fatalf("spawn: %v", err)
		}
		defer handle.Stop(context.Background())

		b := bridge.New[codec.StringValue, codec.StringValue, codec.StringValue](
			handle, codec.NewProtoCodec())

		addr, err := r.Attach(b)
		if err != nil {
			rt.Fatalf("attach: %v", err)
		}

		remote := wire.NewRemoteHandle[codec.StringValue, codec.StringValue, codec.StringValue](
			addr, transport.NewTCP(""), codec.NewProtoCodec(), 0)

		payload := make([]byte, int(maxSize)+overBy)
		for i := range payload {
			payload[i] = 'x'
		}

		readCtx, cancel2 := context.WithTimeout(context.Background(), time.Second)
		defer cancel2()

		result := remote.Send(readCtx, capmsg.Task(codec.StringValue(payload)))
		if !result.IsErr() {
			rt.Fatalf("oversized request (max=%d, len~%d) unexpectedly succeeded",
				maxSize, len(payload))
		}
		if calls != 0 {
			rt.Fatalf("oversized request reached the handler %d times, want 0", calls)
		}
	})
}

type countingStringEchoer struct {
	calls *int
}

func (c countingStringEchoer) HandleTask(
	_ context.Context, in codec.StringValue,
) actor.HandlerResult[codec.StringValue, codec.StringValue] {

	*c.calls++
	return actor.Value[codec.StringValue, codec.StringValue](in)
}

func (c countingStringEchoer) HandleTaskMut(
	ctx context.Context, in codec.StringValue,
) actor.HandlerResult[codec.StringValue, codec.StringValue] {

	return c.HandleTask(ctx, in)
}
