package capmsg

import "fmt"

// ErrKind enumerates the uniform message-error variants. It is the sealed
// error taxonomy every public operation in this module reports through;
// nothing returns a bare string error across an actor, bridge, or wire
// boundary.
type ErrKind uint8

const (
	// ErrSpawn: cannot create a worker.
	ErrSpawn ErrKind = iota

	// ErrSend: cannot enqueue (receiver dropped, mailbox closed,
	// transport write failed).
	ErrSend

	// ErrRecv: cannot observe a reply (reply channel closed, transport
	// read failed).
	ErrRecv

	// ErrTask: the user handler returned its typed error. The payload
	// lives in MsgError.UserErr.
	ErrTask

	// ErrNotAllowed: a policy flag forbade this message kind on this
	// bridge, or the authorizer denied/banned the caller.
	ErrNotAllowed

	// ErrConnect: transport dial failed.
	ErrConnect

	// ErrSerialize: codec encode or decode failed.
	ErrSerialize

	// ErrInit: router or transport refused to start. Fatal for the
	// router.
	ErrInit

	// ErrAddress: textual address form is malformed.
	ErrAddress
)

func (k ErrKind) String() string {
	switch k {
	case ErrSpawn:
		return "Spawn"
	case ErrSend:
		return "Send"
	case ErrRecv:
		return "Recv"
	case ErrTask:
		return "Task"
	case ErrNotAllowed:
		return "NotAllowed"
	case ErrConnect:
		return "Connect"
	case ErrSerialize:
		return "Serialize"
	case ErrInit:
		return "Init"
	case ErrAddress:
		return "Address"
	default:
		return "Unknown"
	}
}

// NotAllowedReason distinguishes the several ways an operation can be
// refused without reaching a handler.
type NotAllowedReason uint8

const (
	// ReasonMutationDisabled: a TaskMut arrived while allow_mut is
	// false.
	ReasonMutationDisabled NotAllowedReason = iota

	// ReasonStopDisabled: a Stop arrived while allow_stop is false.
	ReasonStopDisabled

	// ReasonDenied: the authorizer's resolve() returned Denied.
	ReasonDenied

	// ReasonBanned: the authorizer's resolve() returned Ban.
	ReasonBanned
)

func (r NotAllowedReason) String() string {
	switch r {
	case ReasonMutationDisabled:
		return "mutation disabled"
	case ReasonStopDisabled:
		return "stop disabled"
	case ReasonDenied:
		return "denied"
	case ReasonBanned:
		return "banned"
	default:
		return "unknown"
	}
}

// MsgError is the generic failure envelope every operation in this module
// reports through. It is generic over the user's own handler error type E
// so that Task(E) survives codec round-tripping undamaged.
type MsgError[E any] struct {
	kind     ErrKind
	userErr  E
	reason   NotAllowedReason
	cause    error
}

// SpawnErr builds an ErrSpawn failure.
func SpawnErr[E any](cause error) MsgError[E] {
	return MsgError[E]{kind: ErrSpawn, cause: cause}
}

// SendErr builds an ErrSend failure.
func SendErr[E any](cause error) MsgError[E] {
	return MsgError[E]{kind: ErrSend, cause: cause}
}

// RecvErr builds an ErrRecv failure.
func RecvErr[E any](cause error) MsgError[E] {
	return MsgError[E]{kind: ErrRecv, cause: cause}
}

// TaskErr wraps the user's handler error.
func TaskErr[E any](e E) MsgError[E] {
	return MsgError[E]{kind: ErrTask, userErr: e}
}

// NotAllowedErr builds an ErrNotAllowed failure carrying the specific
// reason it was refused.
func NotAllowedErr[E any](reason NotAllowedReason) MsgError[E] {
	return MsgError[E]{kind: ErrNotAllowed, reason: reason}
}

// ConnectErr builds an ErrConnect failure.
func ConnectErr[E any](cause error) MsgError[E] {
	return MsgError[E]{kind: ErrConnect, cause: cause}
}

// SerializeErr builds an ErrSerialize failure.
func SerializeErr[E any](cause error) MsgError[E] {
	return MsgError[E]{kind: ErrSerialize, cause: cause}
}

// InitErr builds an ErrInit failure.
func InitErr[E any](cause error) MsgError[E] {
	return MsgError[E]{kind: ErrInit, cause: cause}
}

// AddressErr builds an ErrAddress failure.
func AddressErr[E any](cause error) MsgError[E] {
	return MsgError[E]{kind: ErrAddress, cause: cause}
}

// Kind reports the error variant.
func (e MsgError[E]) Kind() ErrKind {
	return e.kind
}

// UserErr returns the wrapped handler error. It is only meaningful when
// Kind is ErrTask.
func (e MsgError[E]) UserErr() E {
	return e.userErr
}

// Reason returns the NotAllowed sub-case. It is only meaningful when Kind
// is ErrNotAllowed.
func (e MsgError[E]) Reason() NotAllowedReason {
	return e.reason
}

// Cause returns the underlying local error, if any (never present for
// ErrTask or ErrNotAllowed, which carry their own structured payload
// instead).
func (e MsgError[E]) Cause() error {
	return e.cause
}

// Error implements the error interface so MsgError composes with fmt and
// errors.Is/As call sites that only need a message, not structured
// matching.
func (e MsgError[E]) Error() string {
	switch e.kind {
	case ErrTask:
		return fmt.Sprintf("task error: %v", e.userErr)
	case ErrNotAllowed:
		return fmt.Sprintf("not allowed: %s", e.reason)
	default:
		if e.cause != nil {
			return fmt.Sprintf("%s: %v", e.kind, e.cause)
		}
		return e.kind.String()
	}
}
