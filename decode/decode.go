package decode

import (
	"github.com/WarpZephyr/DSMapStudio/locator"
	"github.com/WarpZephyr/DSMapStudio/resource"
)

// Decoder turns raw asset data into a typed resource payload. One decoder is
// registered per resource kind; decoders are stateless and safe for
// concurrent use from pipeline workers.
type Decoder interface {
	// DecodeBytes decodes an in-memory buffer at the requested access level.
	//
	// Parameters:
	//   - buf: the decompressed asset bytes
	//   - access: the access level to decode at
	//   - game: the active game family
	//
	// Returns:
	//   - resource.Resource: the decoded payload
	//   - error: a FormatError-class error if the input is rejected
	DecodeBytes(buf []byte, access resource.AccessLevel, game locator.GameFamily) (resource.Resource, error)

	// DecodeFile decodes a loose file on disk at the requested access level.
	//
	// Parameters:
	//   - path: the concrete filesystem path
	//   - access: the access level to decode at
	//   - game: the active game family
	//
	// Returns:
	//   - resource.Resource: the decoded payload
	//   - error: a NotFound- or FormatError-class error on failure
	DecodeFile(path string, access resource.AccessLevel, game locator.GameFamily) (resource.Resource, error)
}

// TextureSlot is one subresource inside a texture container. The slot loader
// decodes its metadata and hands its pixel data to the GPU upload queue.
type TextureSlot interface {
	// Name returns the slot's name inside the container.
	Name() string

	// Cube reports whether the slot holds a cubemap rather than a 2D texture.
	Cube() bool

	// Pixels returns the slot's encoded texel data together with its
	// dimensions. The returned slice is dropped once the GPU upload runs.
	Pixels() ([]byte, uint32, uint32)
}

// TextureContainer is a parsed texture archive (TPF) holding many slots.
type TextureContainer interface {
	// Slots returns the container's subresources in declaration order.
	Slots() []TextureSlot
}

// TextureContainerReader parses texture containers from disk or memory.
type TextureContainerReader interface {
	// ReadFile parses the container at the given filesystem path.
	ReadFile(path string) (TextureContainer, error)

	// ReadBytes parses a container from an in-memory buffer.
	ReadBytes(buf []byte) (TextureContainer, error)
}

// BinderEntry is a single sub-file inside a binder archive.
type BinderEntry interface {
	// Name returns the entry's internal name, including its extension.
	Name() string

	// Bytes returns the entry's decompressed contents.
	Bytes() ([]byte, error)
}

// BinderReader iterates the entries of an opened binder archive.
type BinderReader interface {
	// Entries returns every entry in the binder.
	Entries() []BinderEntry

	// Close releases the underlying file handles.
	Close() error
}
