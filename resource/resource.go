package resource

// Resource is a decoded asset payload. A payload owns any GPU or native
// handles it allocated; Release must free them. Payloads are installed into
// handles by the Manager tick and released either on unload or when a
// re-load replaces them.
type Resource interface {
	// Kind returns the payload's resource kind tag.
	Kind() Kind

	// Release frees every GPU or native handle the payload owns. Called at
	// most once, on the tick thread.
	Release()
}
