// Package loader is the concurrent pipeline that streams archived assets
// into the live resource database: per-kind decode pipelines with bounded
// parallelism, archive and texture-container expansion stages, Jobs that
// batch work behind a single completion event, and the Manager whose
// per-frame tick installs replies, notifies listeners, and reclaims unused
// handles.
package loader

import (
	"github.com/WarpZephyr/DSMapStudio/decode"
	"github.com/WarpZephyr/DSMapStudio/locator"
	"github.com/WarpZephyr/DSMapStudio/resource"
)

// BytesRequest asks a pipeline to decode an in-memory buffer, typically an
// archive entry's decompressed contents.
type BytesRequest struct {
	// VirtualPath is the canonical virtual path the decoded resource
	// installs under.
	VirtualPath string
	// Buffer is the raw asset data.
	Buffer []byte
	// Access is the level to decode at.
	Access resource.AccessLevel
	// Game is the active game family.
	Game locator.GameFamily
}

// FileRequest asks a pipeline to decode a loose file on disk.
type FileRequest struct {
	VirtualPath string
	// Path is the concrete filesystem path.
	Path   string
	Access resource.AccessLevel
	Game   locator.GameFamily
}

// ContainerRequest asks the texture pipeline to expand a texture container
// into per-slot requests.
type ContainerRequest struct {
	// PathBase is the virtual path prefix slot names are joined onto.
	PathBase string
	// Container is the parsed container, or nil when FilePath should be
	// read instead.
	Container decode.TextureContainer
	// FilePath is the container's filesystem path when Container is nil.
	FilePath string
	Access   resource.AccessLevel
	Game     locator.GameFamily
}

// SlotRequest asks the texture slot loader to load one container slot.
type SlotRequest struct {
	VirtualPath string
	Container   decode.TextureContainer
	// Index is the slot's position inside the container.
	Index  int
	Access resource.AccessLevel
	Game   locator.GameFamily
}

// ArchiveRequest asks the archive expansion stage to open a binder and fan
// its entries out to the kind pipelines.
type ArchiveRequest struct {
	VirtualPath string
	Access      resource.AccessLevel
	// PopulateOnly opens the binder without posting any decode or container
	// requests and without creating handles; decoding happens on a later
	// load.
	PopulateOnly bool
	// Filter selects which entry kinds to expand.
	Filter resource.KindMask
	// Whitelist, when non-nil, restricts expansion to the listed canonical
	// entry paths.
	Whitelist map[string]struct{}
}

// Reply is one successfully decoded resource on its way to the database.
// Replies carry no ordering guarantee relative to one another.
type Reply struct {
	VirtualPath string
	Access      resource.AccessLevel
	Resource    resource.Resource
}
