package resource

import "sync"

// Handle is the stable identity of a resource across load and unload cycles:
// a reference-counted, observer-bearing record keyed by canonical virtual
// path. A handle entry is never replaced in the database; once created under
// a path, the same *Handle is returned until the database forgets it.
//
// The payload and access level are mutated only on the Manager tick thread.
// Observe, Acquire, and Release may run concurrently from any goroutine; the
// handle's own mutex guards them. The mutex is never held across listener
// callbacks.
type Handle struct {
	path string
	kind Kind
	db   *Database

	mu        sync.Mutex
	access    AccessLevel
	payload   Resource
	refCount  int
	observers []observerEntry
}

// observerEntry pairs a weak listener reference with its registration data.
type observerEntry struct {
	ref    ListenerRef
	access AccessLevel
	tag    int
}

// liveObserver is a resolved observer captured under the handle lock for
// dispatch outside of it.
type liveObserver struct {
	listener Listener
	access   AccessLevel
	tag      int
}

// VirtualPath returns the handle's canonical virtual path.
func (h *Handle) VirtualPath() string {
	return h.path
}

// Kind returns the handle's resource kind.
func (h *Handle) Kind() Kind {
	return h.kind
}

// AccessLevel returns the access level of the currently installed payload,
// or AccessUnloaded when no payload is present.
func (h *Handle) AccessLevel() AccessLevel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.access
}

// Loaded reports whether a payload is currently installed.
func (h *Handle) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.access != AccessUnloaded
}

// Payload returns the installed payload, or nil when the handle is unloaded.
func (h *Handle) Payload() Resource {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.payload
}

// RefCount returns the current reference count.
func (h *Handle) RefCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refCount
}

// Acquire increments the handle's reference count.
func (h *Handle) Acquire() {
	h.mu.Lock()
	h.refCount++
	h.mu.Unlock()
}

// Release decrements the handle's reference count. Dropping below zero is an
// invariant violation and panics with RefCountUnderflowError. When the count
// reaches zero on a loaded handle, a conditional unload is scheduled; the
// Manager performs it on a later tick if nothing re-acquires first.
func (h *Handle) Release() {
	h.mu.Lock()
	h.refCount--
	underflow := h.refCount < 0
	unused := h.refCount == 0 && h.access != AccessUnloaded
	h.mu.Unlock()

	if underflow {
		panic(&RefCountUnderflowError{VirtualPath: h.path})
	}
	if unused && h.db != nil {
		h.db.requestUnload(h.path, false)
	}
}

// Observe registers a listener for this handle. If a payload is already
// installed at a level satisfying required, OnResourceLoaded is delivered to
// this listener immediately, before Observe returns.
func (h *Handle) Observe(ref ListenerRef, required AccessLevel, tag int) {
	h.mu.Lock()
	h.purgeDeadLocked()
	h.observers = append(h.observers, observerEntry{ref: ref, access: required, tag: tag})
	satisfied := h.payload != nil && Satisfies(required, h.access)
	h.mu.Unlock()

	if satisfied {
		if l, ok := ref.Get(); ok {
			l.OnResourceLoaded(h, tag)
		}
	}
}

// Install adopts a new payload at the given access level and notifies every
// live listener whose required access it satisfies. If the handle was
// already loaded, the previous payload is unloaded first: listeners see
// OnResourceUnloaded, the old payload is released, and only then is the new
// payload installed and OnResourceLoaded dispatched.
//
// Install runs only on the Manager tick thread.
func (h *Handle) Install(res Resource, access AccessLevel) {
	h.mu.Lock()
	old := h.payload
	wasLoaded := h.access != AccessUnloaded
	if wasLoaded {
		h.payload = nil
		h.access = AccessUnloaded
	}
	listeners := h.liveObserversLocked()
	h.mu.Unlock()

	if wasLoaded {
		for _, o := range listeners {
			o.listener.OnResourceUnloaded(h, o.tag)
		}
		if old != nil {
			old.Release()
		}
	}

	h.mu.Lock()
	h.payload = res
	h.access = access
	listeners = h.liveObserversLocked()
	h.mu.Unlock()

	for _, o := range listeners {
		if Satisfies(o.access, access) {
			o.listener.OnResourceLoaded(h, o.tag)
		}
	}
}

// Unload notifies listeners, releases the payload, and resets the handle to
// AccessUnloaded. No-op on an unloaded handle. Runs only on the Manager tick
// thread.
func (h *Handle) Unload() {
	h.unload(false)
}

// UnloadIfUnused unloads only when the reference count is zero. Runs only on
// the Manager tick thread.
func (h *Handle) UnloadIfUnused() {
	h.unload(true)
}

func (h *Handle) unload(onlyUnused bool) {
	h.mu.Lock()
	if h.access == AccessUnloaded || (onlyUnused && h.refCount > 0) {
		h.mu.Unlock()
		return
	}
	old := h.payload
	h.payload = nil
	h.access = AccessUnloaded
	listeners := h.liveObserversLocked()
	h.mu.Unlock()

	for _, o := range listeners {
		o.listener.OnResourceUnloaded(h, o.tag)
	}
	if old != nil {
		old.Release()
	}
}

// liveObserversLocked resolves every live observer and purges dead entries.
// Caller must hold h.mu.
func (h *Handle) liveObserversLocked() []liveObserver {
	live := make([]liveObserver, 0, len(h.observers))
	kept := h.observers[:0]
	for _, e := range h.observers {
		l, ok := e.ref.Get()
		if !ok {
			continue
		}
		kept = append(kept, e)
		live = append(live, liveObserver{listener: l, access: e.access, tag: e.tag})
	}
	h.observers = kept
	return live
}

// purgeDeadLocked drops observer entries whose listener has been collected.
// Caller must hold h.mu.
func (h *Handle) purgeDeadLocked() {
	kept := h.observers[:0]
	for _, e := range h.observers {
		if _, ok := e.ref.Get(); ok {
			kept = append(kept, e)
		}
	}
	h.observers = kept
}
