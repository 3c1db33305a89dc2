package actor

import "errors"

// ErrSpawnTimeout is returned by Spawn when the worker goroutine never
// signals readiness over its confirmation channel.
var ErrSpawnTimeout = errors.New("actor: worker did not confirm readiness")

// ErrMailboxFull is the cause wrapped into a capmsg.SendErr when TrySend
// finds no room in the mailbox.
var ErrMailboxFull = errors.New("actor: mailbox full")

// ErrActorTerminated is the cause wrapped into capmsg.SendErr/RecvErr once
// an actor's context has been cancelled, either by Stop() or by processing
// a Stop message.
var ErrActorTerminated = errors.New("actor: terminated")
