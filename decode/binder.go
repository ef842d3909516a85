package decode

import (
	"strings"

	"github.com/WarpZephyr/DSMapStudio/locator"
)

// BinderDialect selects the on-disk binder format generation.
type BinderDialect int

const (
	// BinderDialectLegacy is the older binder layout used by the earliest
	// supported titles.
	BinderDialectLegacy BinderDialect = iota
	// BinderDialectV4 is the current binder layout used by everything else.
	BinderDialectV4
)

// BinderProvider opens binder archives on disk. The editor's format layer
// implements it; the loading subsystem only selects dialect and file pairing.
type BinderProvider interface {
	// OpenBinder opens a single-file binder.
	OpenBinder(path string, dialect BinderDialect) (BinderReader, error)

	// OpenSplitBinder opens a split header+data binder pair.
	OpenSplitBinder(headerPath, dataPath string, dialect BinderDialect) (BinderReader, error)
}

// DialectFor returns the binder dialect used by the given game family.
// Demon's Souls, both Dark Souls 1 releases, and the two PS3-era Armored
// Core V titles ship legacy binders; every later title uses v4.
func DialectFor(game locator.GameFamily) BinderDialect {
	switch game {
	case locator.GameFamilyDemonsSouls,
		locator.GameFamilyDarkSouls1PTDE,
		locator.GameFamilyDarkSouls1Remaster,
		locator.GameFamilyArmoredCoreV,
		locator.GameFamilyArmoredCoreVD:
		return BinderDialectLegacy
	default:
		return BinderDialectV4
	}
}

// OpenBinder opens the binder at realPath for the given game family,
// selecting the dialect by family and the single-vs-split layout by
// extension: a path ending in "bhd" (case-insensitive) is a split header
// opened together with its sibling "<stem>.bdt" data file.
//
// Parameters:
//   - provider: the binder format implementation
//   - realPath: the concrete filesystem path of the binder (or its header)
//   - game: the active game family
//
// Returns:
//   - BinderReader: the opened binder
//   - error: a ContainerError-class error if the binder is unreadable
func OpenBinder(provider BinderProvider, realPath string, game locator.GameFamily) (BinderReader, error) {
	dialect := DialectFor(game)
	if strings.HasSuffix(strings.ToLower(realPath), "bhd") {
		// The data file sits next to the header with the same name, the
		// trailing "bhd" swapped for "bdt" (covers .bhd and .tpfbhd alike).
		dataPath := realPath[:len(realPath)-3] + "bdt"
		return provider.OpenSplitBinder(realPath, dataPath, dialect)
	}
	return provider.OpenBinder(realPath, dialect)
}
