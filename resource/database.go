package resource

import (
	"strings"
	"sync"
)

// Database is the shared map from canonical virtual path to resource handle.
// Concurrent reads are allowed; mutations are serialized by the database
// mutex. Handle removal happens only on the Manager tick thread.
type Database struct {
	mu      sync.RWMutex
	handles map[string]*Handle

	// onUnused is set by the Manager; Release calls it (via requestUnload)
	// when a loaded handle's reference count reaches zero.
	onUnused func(virtualPath string, unconditional bool)
}

// NewDatabase creates an empty resource database.
func NewDatabase() *Database {
	return &Database{
		handles: make(map[string]*Handle),
	}
}

// SetUnloadScheduler installs the callback invoked when a loaded handle
// becomes unused. The Manager points this at its unload queue during
// construction, before any concurrent use.
func (db *Database) SetUnloadScheduler(fn func(virtualPath string, unconditional bool)) {
	db.mu.Lock()
	db.onUnused = fn
	db.mu.Unlock()
}

// requestUnload forwards an unused-handle notification to the Manager.
// Called by Handle.Release with no handle lock held.
func (db *Database) requestUnload(virtualPath string, unconditional bool) {
	db.mu.RLock()
	fn := db.onUnused
	db.mu.RUnlock()
	if fn != nil {
		fn(virtualPath, unconditional)
	}
}

// Lookup returns the handle registered under the given virtual path, or nil.
// No mutation.
func (db *Database) Lookup(virtualPath string) *Handle {
	key := CanonicalPath(virtualPath)
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.handles[key]
}

// GetOrCreate returns the handle for the given virtual path, creating an
// unloaded handle of the given kind if none exists. Requesting an existing
// handle under a different kind is a programming error and panics with
// KindMismatchError.
func (db *Database) GetOrCreate(kind Kind, virtualPath string) *Handle {
	key := CanonicalPath(virtualPath)

	db.mu.RLock()
	h := db.handles[key]
	db.mu.RUnlock()
	if h == nil {
		db.mu.Lock()
		h = db.handles[key]
		if h == nil {
			h = &Handle{path: key, kind: kind, db: db}
			db.handles[key] = h
		}
		db.mu.Unlock()
	}

	if h.kind != kind {
		panic(&KindMismatchError{VirtualPath: key, Existing: h.kind, Requested: kind})
	}
	return h
}

// Observe registers a listener under the given path, creating the handle if
// absent, and returns the handle. Delivery semantics are those of
// Handle.Observe.
func (db *Database) Observe(virtualPath string, kind Kind, ref ListenerRef, required AccessLevel, tag int) *Handle {
	h := db.GetOrCreate(kind, virtualPath)
	h.Observe(ref, required, tag)
	return h
}

// Remove forgets the handle under the given path. Removal is legal only when
// the handle is unreferenced and unloaded; Remove reports whether the entry
// was removed. Runs only on the Manager tick thread.
func (db *Database) Remove(virtualPath string) bool {
	key := CanonicalPath(virtualPath)

	db.mu.Lock()
	defer db.mu.Unlock()
	h := db.handles[key]
	if h == nil {
		return false
	}
	h.mu.Lock()
	removable := h.refCount == 0 && h.payload == nil
	h.mu.Unlock()
	if !removable {
		return false
	}
	delete(db.handles, key)
	return true
}

// Sweep calls fn for every handle in the database. The handle set is
// snapshotted first, so fn may mutate handles (but not remove entries).
func (db *Database) Sweep(fn func(*Handle)) {
	db.mu.RLock()
	snapshot := make([]*Handle, 0, len(db.handles))
	for _, h := range db.handles {
		snapshot = append(snapshot, h)
	}
	db.mu.RUnlock()

	for _, h := range snapshot {
		fn(h)
	}
}

// Len returns the number of registered handles.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.handles)
}

// UnloadedWithPrefix returns the canonical paths of every unloaded handle
// whose key begins with the given prefix. Used by the texture refresh scans.
func (db *Database) UnloadedWithPrefix(prefix string) []string {
	prefix = CanonicalPath(prefix)

	db.mu.RLock()
	defer db.mu.RUnlock()
	var paths []string
	for key, h := range db.handles {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		h.mu.Lock()
		unloaded := h.access == AccessUnloaded
		h.mu.Unlock()
		if unloaded {
			paths = append(paths, key)
		}
	}
	return paths
}
