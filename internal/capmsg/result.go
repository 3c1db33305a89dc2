package capmsg

// MsgResult is what a LocalHandle.Send, an UntypedBridge.Send, or a
// RemoteHandle call ultimately produces: either a Reply[O] or a
// MsgError[E], never both.
type MsgResult[O any, E any] struct {
	reply Reply[O]
	err   MsgError[E]
	isErr bool
}

// Ok wraps a successful reply.
func Ok[O any, E any](r Reply[O]) MsgResult[O, E] {
	return MsgResult[O, E]{reply: r}
}

// Err wraps a failure.
func Err[O any, E any](err MsgError[E]) MsgResult[O, E] {
	return MsgResult[O, E]{err: err, isErr: true}
}

// IsErr reports whether this result carries a MsgError.
func (r MsgResult[O, E]) IsErr() bool {
	return r.isErr
}

// Reply returns the carried reply. Only meaningful when IsErr is false.
func (r MsgResult[O, E]) Reply() Reply[O] {
	return r.reply
}

// Err returns the carried error. Only meaningful when IsErr is true.
func (r MsgResult[O, E]) Err() MsgError[E] {
	return r.err
}

// Unpack is a convenience for call sites that want the idiomatic
// (value, error) shape.
func (r MsgResult[O, E]) Unpack() (Reply[O], error) {
	if r.isErr {
		return Reply[O]{}, r.err
	}

	return r.reply, nil
}
