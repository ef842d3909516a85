package resource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WarpZephyr/DSMapStudio/resource"
)

func TestGetOrCreateIsStablePerPath(t *testing.T) {
	db := resource.NewDatabase()

	h1 := db.GetOrCreate(resource.KindFlver, "chr/c0001/c0001.flv")
	h2 := db.GetOrCreate(resource.KindFlver, "CHR/C0001/C0001.FLV")

	// Keys are case-insensitive; the same handle identity comes back.
	assert.Same(t, h1, h2)
	assert.Equal(t, "chr/c0001/c0001.flv", h1.VirtualPath())
	assert.Equal(t, 1, db.Len())
}

func TestGetOrCreateKindMismatchPanics(t *testing.T) {
	db := resource.NewDatabase()
	db.GetOrCreate(resource.KindFlver, "chr/c0001/c0001.flv")

	require.PanicsWithError(t,
		`resource: handle "chr/c0001/c0001.flv" is Flver, requested as Texture`,
		func() {
			db.GetOrCreate(resource.KindTexture, "chr/c0001/c0001.flv")
		})
}

func TestLookupDoesNotCreate(t *testing.T) {
	db := resource.NewDatabase()

	assert.Nil(t, db.Lookup("chr/c0001/c0001.flv"))
	assert.Equal(t, 0, db.Len())

	h := db.GetOrCreate(resource.KindFlver, "chr/c0001/c0001.flv")
	assert.Same(t, h, db.Lookup("Chr/C0001/c0001.flv"))
}

func TestRemoveRefusesLiveHandles(t *testing.T) {
	db := resource.NewDatabase()
	h := db.GetOrCreate(resource.KindFlver, "chr/c0001/c0001.flv")

	// Loaded handle: not removable.
	h.Install(&fakePayload{kind: resource.KindFlver}, resource.AccessEditOnly)
	assert.False(t, db.Remove("chr/c0001/c0001.flv"))

	// Unloaded but referenced: not removable.
	h.Unload()
	h.Acquire()
	assert.False(t, db.Remove("chr/c0001/c0001.flv"))

	// Unreferenced and unloaded: removable.
	h.Release()
	assert.True(t, db.Remove("chr/c0001/c0001.flv"))
	assert.Nil(t, db.Lookup("chr/c0001/c0001.flv"))
}

func TestSweepVisitsEveryHandle(t *testing.T) {
	db := resource.NewDatabase()
	db.GetOrCreate(resource.KindFlver, "chr/a.flv")
	db.GetOrCreate(resource.KindNavmesh, "nav/b.nvm")

	seen := map[string]bool{}
	db.Sweep(func(h *resource.Handle) {
		seen[h.VirtualPath()] = true
	})

	assert.Equal(t, map[string]bool{"chr/a.flv": true, "nav/b.nvm": true}, seen)
}

func TestUnloadedWithPrefix(t *testing.T) {
	db := resource.NewDatabase()
	db.GetOrCreate(resource.KindTexture, "map/tex/m10_wall")
	loaded := db.GetOrCreate(resource.KindTexture, "map/tex/m10_floor")
	db.GetOrCreate(resource.KindTexture, "aet/aet007_025/t0")

	loaded.Install(&fakePayload{kind: resource.KindTexture}, resource.AccessGPUOptimizedOnly)

	assert.ElementsMatch(t, []string{"map/tex/m10_wall"}, db.UnloadedWithPrefix("map/tex"))
	assert.ElementsMatch(t, []string{"aet/aet007_025/t0"}, db.UnloadedWithPrefix("aet/"))
}

func TestObserveCreatesHandle(t *testing.T) {
	db := resource.NewDatabase()
	obs := &recorder{}

	h := db.Observe("chr/c0001/c0001.flv", resource.KindFlver,
		resource.WeakListener(obs), resource.AccessEditOnly, 3)

	require.NotNil(t, h)
	assert.Equal(t, 1, db.Len())
	assert.False(t, h.Loaded())
	assert.Empty(t, obs.Events())
}
