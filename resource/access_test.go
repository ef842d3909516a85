package resource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/WarpZephyr/DSMapStudio/resource"
)

func TestSatisfies(t *testing.T) {
	// Full covers every request; otherwise only exact matches do.
	assert.True(t, resource.Satisfies(resource.AccessEditOnly, resource.AccessFull))
	assert.True(t, resource.Satisfies(resource.AccessGPUOptimizedOnly, resource.AccessFull))
	assert.True(t, resource.Satisfies(resource.AccessFull, resource.AccessFull))
	assert.True(t, resource.Satisfies(resource.AccessEditOnly, resource.AccessEditOnly))
	assert.True(t, resource.Satisfies(resource.AccessGPUOptimizedOnly, resource.AccessGPUOptimizedOnly))

	assert.False(t, resource.Satisfies(resource.AccessGPUOptimizedOnly, resource.AccessEditOnly))
	assert.False(t, resource.Satisfies(resource.AccessEditOnly, resource.AccessGPUOptimizedOnly))
	assert.False(t, resource.Satisfies(resource.AccessFull, resource.AccessEditOnly))
}

func TestSatisfiesUnloadedNeverSatisfies(t *testing.T) {
	for _, requested := range []resource.AccessLevel{
		resource.AccessUnloaded,
		resource.AccessEditOnly,
		resource.AccessGPUOptimizedOnly,
		resource.AccessFull,
	} {
		assert.False(t, resource.Satisfies(requested, resource.AccessUnloaded),
			"requested %s", requested)
	}
}

func TestCanonicalPath(t *testing.T) {
	assert.Equal(t, "chr/c0001/c0001.flv", resource.CanonicalPath("Chr/C0001/c0001.FLV"))
	assert.Equal(t, "map/tex/m10", resource.CanonicalPath(`map\tex\m10`))
}

func TestKindMask(t *testing.T) {
	m := resource.KindFlver.Mask() | resource.KindTexture.Mask()
	assert.True(t, m.Has(resource.KindFlver))
	assert.True(t, m.Has(resource.KindTexture))
	assert.False(t, m.Has(resource.KindCollisionHkx))

	assert.True(t, resource.MaskAll.Has(resource.KindNavmeshHkx))
	assert.False(t, resource.MaskNone.Has(resource.KindFlver))
}
