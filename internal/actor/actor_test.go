package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/quietlane/capwire/internal/capmsg"
)

// multiplyBehavior answers Task(x) with a*x and treats TaskMut the same
// way, which is enough to exercise both dispatch paths without a second
// demo type.
type multiplyBehavior struct {
	factor int
}

func (b multiplyBehavior) HandleTask(
	_ context.Context, in int,
) HandlerResult[int, string] {

	return Value[int, string](in * b.factor)
}

func (b multiplyBehavior) HandleTaskMut(
	ctx context.Context, in int,
) HandlerResult[int, string] {

	return b.HandleTask(ctx, in)
}

// failingBehavior always returns the user error type, exercising the
// Task(E) dispatch path.
type failingBehavior struct{}

func (failingBehavior) HandleTask(
	_ context.Context, _ int,
) HandlerResult[int, string] {

	return Failure[int, string]("always fails")
}

func (b failingBehavior) HandleTaskMut(
	ctx context.Context, in int,
) HandlerResult[int, string] {

	return b.HandleTask(ctx, in)
}

func TestSpawnAndTask(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Parallel()

	handle, err := Spawn[int, int, string]("mult", multiplyBehavior{factor: 3})
	require.NoError(t, err)

	result := handle.SendBlocking(capmsg.Task[int](7))
	require.False(t, result.IsErr())
	require.True(t, result.Reply().HasValue())
	require.Equal(t, 21, result.Reply().Value())

	stopResult := handle.Stop(context.Background())
	require.False(t, stopResult.IsErr())
}

func TestTaskMutDispatchesToMutHandler(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Parallel()

	handle, err := Spawn[int, int, string]("mult-mut", multiplyBehavior{factor: 2})
	require.NoError(t, err)
	defer handle.Stop(context.Background())

	result := handle.SendBlocking(capmsg.TaskMut[int](5))
	require.False(t, result.IsErr())
	require.Equal(t, 10, result.Reply().Value())
}

func TestPingNeverInvokesHandler(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Parallel()

	handle, err := Spawn[int, int, string]("ping-only", failingBehavior{})
	require.NoError(t, err)
	defer handle.Stop(context.Background())

	result := handle.SendBlocking(capmsg.Ping[int]())
	require.False(t, result.IsErr())
	require.False(t, result.Reply().HasValue())
}

func TestTaskErrorSurfacesAsMsgErrorTask(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Parallel()

	handle, err := Spawn[int, int, string]("always-fails", failingBehavior{})
	require.NoError(t, err)
	defer handle.Stop(context.Background())

	result := handle.SendBlocking(capmsg.Task[int](1))
	require.True(t, result.IsErr())
	require.Equal(t, capmsg.ErrTask, result.Err().Kind())
	require.Equal(t, "always fails", result.Err().UserErr())
}

func TestStopIsTerminal(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Parallel()

	handle, err := Spawn[int, int, string]("stops", multiplyBehavior{factor: 1})
	require.NoError(t, err)

	stopResult := handle.Stop(context.Background())
	require.False(t, stopResult.IsErr())

	require.Eventually(t, handle.Terminated, time.Second, time.Millisecond)

	after := handle.SendBlocking(capmsg.Task[int](1))
	require.True(t, after.IsErr())
	require.Equal(t, capmsg.ErrSend, after.Err().Kind())
}

func TestCloneSharesMailbox(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Parallel()

	handle, err := Spawn[int, int, string]("clone", multiplyBehavior{factor: 4})
	require.NoError(t, err)

	clone := handle.Clone()
	defer clone.Stop(context.Background())

	result := clone.SendBlocking(capmsg.Task[int](2))
	require.False(t, result.IsErr())
	require.Equal(t, 8, result.Reply().Value())
}

func TestSendRespectsContextCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Parallel()

	handle, err := Spawn[int, int, string]("ctx-cancel", multiplyBehavior{factor: 1},
		WithMailboxSize(1))
	require.NoError(t, err)
	defer handle.Stop(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := handle.Send(ctx, capmsg.Task[int](1))
	require.True(t, result.IsErr())
	require.True(t, errors.Is(ctx.Err(), context.Canceled))
}
