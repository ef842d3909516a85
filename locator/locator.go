package locator

// GameFamily identifies which FromSoftware title the active project targets.
// The family selects binder dialects, path layouts, and per-game decode quirks.
type GameFamily int

const (
	GameFamilyUndefined GameFamily = iota
	GameFamilyDemonsSouls
	GameFamilyDarkSouls1PTDE
	GameFamilyDarkSouls1Remaster
	GameFamilyDarkSouls2
	GameFamilyDarkSouls3
	GameFamilyBloodborne
	GameFamilySekiro
	GameFamilyEldenRing
	GameFamilyArmoredCore4
	GameFamilyArmoredCoreFA
	GameFamilyArmoredCoreV
	GameFamilyArmoredCoreVD
	GameFamilyArmoredCore6
)

// AssetDescription describes a located asset on disk, as returned by the
// locator for indirect lookups such as AET texture ids.
type AssetDescription struct {
	// AssetPath is the concrete filesystem path of the asset archive.
	AssetPath string
	// AssetVirtualPath is the virtual path the archive's contents load under.
	AssetVirtualPath string
}

// AssetLocator translates virtual asset paths into concrete filesystem paths
// for the active project. The resource loading subsystem consumes this
// interface; the editor's project layer implements it.
type AssetLocator interface {
	// VirtualToReal resolves a virtual path to a filesystem path plus an
	// optional nested-binder hint (the sub-binder path inside a split
	// archive). An empty real path means the asset does not exist for the
	// active game.
	//
	// Parameters:
	//   - virtualPath: the virtual path to resolve
	//
	// Returns:
	//   - string: the concrete filesystem path, or "" if unresolvable
	//   - string: the nested binder hint, or "" if none
	VirtualToReal(virtualPath string) (string, string)

	// JoinBinder forms the virtual path of a binder entry from its parent
	// archive's virtual path and the entry's internal name.
	//
	// Parameters:
	//   - parentVirtualPath: the archive's virtual path
	//   - entryName: the entry's name inside the binder
	//
	// Returns:
	//   - string: the child virtual path
	JoinBinder(parentVirtualPath, entryName string) string

	// GameType returns the active game family.
	GameType() GameFamily

	// GameRoot returns the absolute path of the active game's data root.
	GameRoot() string

	// AETTexture resolves an asset-environment-texture id to the archive
	// holding its texture data. The second return is false when the id has
	// no texture for the active game.
	//
	// Parameters:
	//   - aetID: the aet id extracted from an asset virtual path
	//
	// Returns:
	//   - AssetDescription: the located texture archive
	//   - bool: whether the id resolved
	AETTexture(aetID string) (AssetDescription, bool)

	// FullMapList returns every map id known for the active game.
	// Used by tests and bulk tooling only.
	FullMapList() []string
}
