package actor

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/goleak"
	"pgregory.net/rapid"

	"github.com/quietlane/capwire/internal/capmsg"
)

// pureBehavior is a deterministic, side-effect-free HandleTask so the
// round-trip property can compare the handler's own return value against
// what the caller observed.
type pureBehavior struct{}

func (pureBehavior) HandleTask(
	_ context.Context, in int,
) HandlerResult[int, string] {

	return Value[int, string](in*2 + 1)
}

func (b pureBehavior) HandleTaskMut(
	ctx context.Context, in int,
) HandlerResult[int, string] {

	return b.HandleTask(ctx, in)
}

// TestPropertyRoundTrip checks §8's Round-trip invariant: for a pure
// read-only handler, send(Task(x)) observed as Reply::Task(y) iff the
// handler itself would return Ok(y) for x.
func TestPropertyRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Parallel()

	handle, err := Spawn[int, int, string]("round-trip-property", pureBehavior{})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	defer handle.Stop(context.Background())

	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.IntRange(-1_000_000, 1_000_000).Draw(rt, "x")

		want := pureBehavior{}.HandleTask(context.Background(), x).toMsgResult()
		if want.IsErr() {
			rt.Fatalf("pure handler unexpectedly returned an error for %d", x)
		}

		got := handle.SendBlocking(capmsg.Task(x))
		if got.IsErr() {
			rt.Fatalf("send(Task(%d)) failed: %v", x, got.Err())
		}
		if got.Reply().Value() != want.Reply().Value() {
			rt.Fatalf("send(Task(%d)) observed %d, handler itself returns %d",
				x, got.Reply().Value(), want.Reply().Value())
		}
	})
}

// recordingBehavior appends every payload it handles to recv, in the order
// dispatched. Since a LocalActor's behavior only ever runs on its own
// single dispatch goroutine, the append needs no lock of its own; the
// happens-before edge for reading it back comes from the blocking
// SendBlocking/Stop calls the test makes afterward.
type recordingBehavior struct {
	recv *[]int
}

func (b recordingBehavior) HandleTask(
	_ context.Context, in int,
) HandlerResult[int, string] {

	*b.recv = append(*b.recv, in)
	return Value[int, string](in)
}

func (b recordingBehavior) HandleTaskMut(
	ctx context.Context, in int,
) HandlerResult[int, string] {

	return b.HandleTask(ctx, in)
}

// TestPropertyOrderingInvariant checks §8's Ordering invariant: a single
// sender issuing Task(x1), Task(x2), ..., Task(xn) observes handler
// invocations in that same order, never reordered or dropped.
func TestPropertyOrderingInvariant(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		xs := rapid.SliceOfN(rapid.IntRange(-100, 100), 0, 40).Draw(rt, "xs")

		var seen []int
		handle, err := Spawn[int, int, string](
			"ordering-property", recordingBehavior{recv: &seen})
		if err != nil {
			rt.Fatalf("spawn: %v", err)
		}

		for _, x := range xs {
			result := handle.SendBlocking(capmsg.Task(x))
			if result.IsErr() {
				rt.Fatalf("send(Task(%d)) failed: %v", x, result.Err())
			}
		}

		stopResult := handle.Stop(context.Background())
		if stopResult.IsErr() {
			rt.Fatalf("stop failed: %v", stopResult.Err())
		}

		if !reflect.DeepEqual(xs, seen) {
			rt.Fatalf("handler observed %v, sender enqueued %v", seen, xs)
		}
	})
}

// TestPropertyStopIsTerminal checks §8's Stop-is-terminal invariant: once a
// Stop has been observed as Reply::Accepted, every later send on the same
// handle fails, regardless of how many messages preceded the Stop.
func TestPropertyStopIsTerminal(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		preStop := rapid.IntRange(0, 20).Draw(rt, "preStop")
		postStop := rapid.IntRange(1, 10).Draw(rt, "postStop")

		handle, err := Spawn[int, int, string]("stop-terminal-property", pureBehavior{})
		if err != nil {
			rt.Fatalf("spawn: %v", err)
		}

		for i := 0; i < preStop; i++ {
			result := handle.SendBlocking(capmsg.Task(i))
			if result.IsErr() {
				rt.Fatalf("pre-stop send %d failed: %v", i, result.Err())
			}
		}

		stopResult := handle.Stop(context.Background())
		if stopResult.IsErr() {
			rt.Fatalf("stop failed: %v", stopResult.Err())
		}
		if !handle.Terminated() {
			rt.Fatalf("handle not terminated after Stop returned")
		}

		for i := 0; i < postStop; i++ {
			after := handle.SendBlocking(capmsg.Task(i))
			if !after.IsErr() {
				rt.Fatalf("post-stop send %d unexpectedly succeeded", i)
			}
			if after.Err().Kind() != capmsg.ErrSend && after.Err().Kind() != capmsg.ErrRecv {
				rt.Fatalf("post-stop send %d failed with unexpected kind %s",
					i, after.Err().Kind())
			}
		}
	})
}
