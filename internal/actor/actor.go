package actor

import (
	"context"
	"log/slog"
	"time"

	"github.com/quietlane/capwire/internal/capmsg"
)

const (
	// defaultMailboxSize is the reference bound from §5: bounded
	// channels default to capacity 1024 so senders feel backpressure
	// rather than buffering unboundedly.
	defaultMailboxSize = 1024

	// defaultSpawnTimeout bounds how long Spawn waits for the worker's
	// readiness signal before reporting a Spawn failure.
	defaultSpawnTimeout = 5 * time.Second
)

// mergeContexts returns a context that is cancelled as soon as either
// parent is. It lets the dispatch loop honor both the actor's own lifetime
// and a caller-scoped deadline at the same time. Callers must invoke the
// returned cancel func once done to release the watcher goroutine.
func mergeContexts(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	deadline1, hasDeadline1 := ctx1.Deadline()
	deadline2, hasDeadline2 := ctx2.Deadline()

	baseCtx := ctx1
	if hasDeadline2 {
		if !hasDeadline1 || deadline2.Before(deadline1) {
			baseCtx = ctx2
		}
	}

	mergedCtx, cancel := context.WithCancel(baseCtx)

	go func() {
		select {
		case <-ctx1.Done():
			cancel()
		case <-ctx2.Done():
			cancel()
		case <-mergedCtx.Done():
		}
	}()

	return mergedCtx, cancel
}

// Config configures a Spawn call.
type Config struct {
	// MailboxSize bounds the actor's mailbox. Zero selects
	// defaultMailboxSize.
	MailboxSize int

	// SpawnTimeout bounds how long Spawn waits for the worker's
	// readiness signal. Zero selects defaultSpawnTimeout.
	SpawnTimeout time.Duration

	// Logger receives structured records tagged with the actor's id.
	// A nil Logger discards all output.
	Logger *slog.Logger
}

// Option mutates a Config.
type Option func(*Config)

// WithMailboxSize overrides the mailbox bound.
func WithMailboxSize(size int) Option {
	return func(c *Config) { c.MailboxSize = size }
}

// WithSpawnTimeout overrides the readiness-wait bound.
func WithSpawnTimeout(d time.Duration) Option {
	return func(c *Config) { c.SpawnTimeout = d }
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func buildConfig(opts []Option) Config {
	cfg := Config{
		MailboxSize:  defaultMailboxSize,
		SpawnTimeout: defaultSpawnTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = defaultMailboxSize
	}
	if cfg.SpawnTimeout <= 0 {
		cfg.SpawnTimeout = defaultSpawnTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return cfg
}

// localActor owns a single mailbox and drives it from one goroutine,
// giving the actor single-writer semantics: its behavior never observes
// two messages concurrently.
type localActor[I any, O any, E any] struct {
	id       string
	behavior Behavior[I, O, E]
	mailbox  *channelMailbox[I, O, E]
	ctx      context.Context
	cancel   context.CancelFunc
	log      *slog.Logger
}

// Spawn starts a worker goroutine for behavior and blocks until it
// confirms readiness over an internal channel. Spawning is atomic: Spawn
// either returns a usable handle or an error; no goroutine or handle leaks
// on the failure path.
func Spawn[I any, O any, E any](
	id string, behavior Behavior[I, O, E], opts ...Option,
) (*LocalHandle[I, O, E], error) {

	cfg := buildConfig(opts)

	ctx, cancel := context.WithCancel(context.Background())

	a := &localActor[I, O, E]{
		id:       id,
		behavior: behavior,
		mailbox:  newChannelMailbox[I, O, E](ctx, cfg.MailboxSize),
		ctx:      ctx,
		cancel:   cancel,
		log:      cfg.Logger.With("actor_id", id),
	}

	ready := make(chan struct{})
	go a.process(ready)

	select {
	case <-ready:
		return &LocalHandle[I, O, E]{actor: a}, nil
	case <-time.After(cfg.SpawnTimeout):
		cancel()
		return nil, capmsg.SpawnErr[E](ErrSpawnTimeout)
	}
}

// process is the single goroutine that owns this actor's state. It
// signals readiness, then dispatches every envelope per §4.1's rules,
// terminating cleanly on Stop or on context cancellation from the outside.
func (a *localActor[I, O, E]) process(ready chan<- struct{}) {
	close(ready)

	a.log.Debug("actor started")

	for env := range a.mailbox.receive(a.ctx) {
		callerCtx := env.callerCtx
		if callerCtx == nil {
			callerCtx = a.ctx
		}
		dispatchCtx, cancel := mergeContexts(a.ctx, callerCtx)

		result, terminal := a.dispatch(dispatchCtx, env.msg)
		cancel()

		env.reply <- result
		close(env.reply)

		if terminal {
			a.log.Debug("actor processed stop, terminating")
			a.cancel()
		}
	}

	a.mailbox.close()

	drained := 0
	for env := range a.mailbox.drain() {
		drained++
		env.reply <- capmsg.Err[O, E](capmsg.RecvErr[E](ErrActorTerminated))
		close(env.reply)
	}

	a.log.Debug("actor terminated", "drained_messages", drained)
}

// dispatch applies the §4.1 dispatch rules for a single message and
// reports whether it was a Stop (the worker must exit after replying).
func (a *localActor[I, O, E]) dispatch(
	ctx context.Context, msg capmsg.Message[I],
) (capmsg.MsgResult[O, E], bool) {

	switch msg.Kind() {
	case capmsg.KindTask:
		return a.behavior.HandleTask(ctx, msg.Payload()).toMsgResult(), false

	case capmsg.KindTaskMut:
		return a.behavior.HandleTaskMut(ctx, msg.Payload()).toMsgResult(), false

	case capmsg.KindPing:
		return capmsg.Ok[O, E](capmsg.AcceptedReply[O]()), false

	case capmsg.KindStop:
		return capmsg.Ok[O, E](capmsg.AcceptedReply[O]()), true

	default:
		return capmsg.Ok[O, E](capmsg.AcceptedReply[O]()), false
	}
}
