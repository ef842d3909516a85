package resource

import "weak"

// Listener receives load and unload events for a handle it observes. The tag
// is the value supplied at registration, letting one listener watch many
// handles and tell them apart.
//
// Callbacks run on the Manager tick thread with no handle lock held; a
// listener may call back into Acquire/Release/Observe but must not block.
type Listener interface {
	// OnResourceLoaded fires after a payload is installed into the handle at
	// an access level satisfying the listener's requirement.
	OnResourceLoaded(handle *Handle, tag int)

	// OnResourceUnloaded fires before the handle's payload is released.
	OnResourceUnloaded(handle *Handle, tag int)
}

// ListenerRef resolves to a live Listener or reports that the listener has
// been collected. Handles hold their observers through this indirection so a
// registration never extends the listener's lifetime.
type ListenerRef interface {
	// Get returns the listener and true while it is still alive.
	Get() (Listener, bool)
}

// weakListener holds a listener through a weak pointer to its concrete type.
type weakListener[T any] struct {
	ptr weak.Pointer[T]
}

func (w weakListener[T]) Get() (Listener, bool) {
	v := w.ptr.Value()
	if v == nil {
		return nil, false
	}
	return any(v).(Listener), true
}

// WeakListener wraps a concrete listener in a weak reference. Once the
// caller drops its last strong reference the entry is silently skipped and
// purged on the next notification walk.
func WeakListener[T any, PT interface {
	*T
	Listener
}](l PT) ListenerRef {
	return weakListener[T]{ptr: weak.Make((*T)(l))}
}
