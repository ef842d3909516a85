package resource

// Kind tags the concrete payload type a handle carries. Per-kind dispatch in
// the loader is keyed by this tag.
type Kind int

const (
	// KindFlver is a FLVER model.
	KindFlver Kind = iota
	// KindCollisionHkx is a havok collision mesh.
	KindCollisionHkx
	// KindNavmesh is a legacy NVM navmesh.
	KindNavmesh
	// KindNavmeshHkx is a havok navmesh.
	KindNavmeshHkx
	// KindTexture is a single texture slot out of a texture container.
	KindTexture

	kindCount
)

// String returns the kind's display name.
func (k Kind) String() string {
	switch k {
	case KindFlver:
		return "Flver"
	case KindCollisionHkx:
		return "CollisionHkx"
	case KindNavmesh:
		return "Navmesh"
	case KindNavmeshHkx:
		return "NavmeshHkx"
	case KindTexture:
		return "Texture"
	default:
		return "Unknown"
	}
}

// Mask returns the single-kind bitmask for k.
func (k Kind) Mask() KindMask {
	return 1 << uint(k)
}

// KindMask is a bitmask over resource kinds, used to filter which entries an
// archive expansion selects.
type KindMask uint32

const (
	// MaskNone selects no kinds.
	MaskNone KindMask = 0
	// MaskAll selects every kind.
	MaskAll KindMask = 1<<uint(kindCount) - 1
)

// Has reports whether the mask selects k.
func (m KindMask) Has(k Kind) bool {
	return m&k.Mask() != 0
}
