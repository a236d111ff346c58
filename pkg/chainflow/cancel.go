package chainflow

import "sync/atomic"

// Handle is a cooperative cancellation flag for one chain run.
//
// It is write-once per run: Cancel() latches the flag and there is no way to
// clear it. A handle may be linked to a parent so an upstream request
// cancellation transitively cancels the chain. IsCancelled is checked, never
// blocked on, before every unit of work; work already in flight is not
// forcibly aborted.
type Handle struct {
	flag   atomic.Bool
	parent *Handle
}

// NewHandle creates an unlinked cancellation handle.
func NewHandle() *Handle {
	return &Handle{}
}

// NewChildHandle creates a handle linked to parent. Cancelling the parent
// cancels the child; cancelling the child leaves the parent untouched.
// A nil parent is equivalent to NewHandle().
func NewChildHandle(parent *Handle) *Handle {
	return &Handle{parent: parent}
}

// Cancel sets the flag. Safe to call from any goroutine, and more than once.
func (h *Handle) Cancel() {
	h.flag.Store(true)
}

// IsCancelled reports whether this handle or any ancestor was cancelled.
// Safe on a nil handle, which is never cancelled.
func (h *Handle) IsCancelled() bool {
	for ; h != nil; h = h.parent {
		if h.flag.Load() {
			return true
		}
	}
	return false
}
