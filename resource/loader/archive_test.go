package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/WarpZephyr/DSMapStudio/resource"
)

func TestKindForEntryName(t *testing.T) {
	cases := []struct {
		name string
		kind resource.Kind
	}{
		{"c0001.flver", resource.KindFlver},
		{"c0001.flv", resource.KindFlver},
		{"c0001.flv.dcx", resource.KindFlver},
		{"c0001.flver.dcx", resource.KindFlver},
		{"n0000.nvm", resource.KindNavmesh},
		{"h0000.hkx", resource.KindCollisionHkx},
		{"h0000.hkx.dcx", resource.KindCollisionHkx},
	}
	for _, c := range cases {
		kind, ok := kindForEntryName(c.name, resource.MaskAll)
		assert.True(t, ok, c.name)
		assert.Equal(t, c.kind, kind, c.name)
	}

	_, ok := kindForEntryName("readme.txt", resource.MaskAll)
	assert.False(t, ok)
}

func TestKindForEntryNameHkxTieBreak(t *testing.T) {
	// Both havok kinds claim .hkx; collision wins when both bits are set.
	kind, ok := kindForEntryName("h0000.hkx", resource.KindCollisionHkx.Mask()|resource.KindNavmeshHkx.Mask())
	assert.True(t, ok)
	assert.Equal(t, resource.KindCollisionHkx, kind)

	kind, ok = kindForEntryName("n0000.hkx", resource.KindNavmeshHkx.Mask())
	assert.True(t, ok)
	assert.Equal(t, resource.KindNavmeshHkx, kind)

	_, ok = kindForEntryName("h0000.hkx", resource.KindFlver.Mask())
	assert.False(t, ok)
}

func TestKindForEntryNameHonoursFilter(t *testing.T) {
	_, ok := kindForEntryName("c0001.flv", resource.KindTexture.Mask())
	assert.False(t, ok)

	_, ok = kindForEntryName("n0000.nvm", resource.KindFlver.Mask())
	assert.False(t, ok)
}

func TestIsTextureContainerName(t *testing.T) {
	assert.True(t, isTextureContainerName("c0001.tpf"))
	assert.True(t, isTextureContainerName("c0001.tpf.dcx"))
	assert.False(t, isTextureContainerName("c0001.flv"))
}

func TestTextureContainerBase(t *testing.T) {
	// Archive entries: slots live under the container's directory.
	assert.Equal(t, "chr/c0001", textureContainerBase("chr/c0001/c0001.tpf"))
	assert.Equal(t, "chr/c0001", textureContainerBase("chr/c0001/c0001.tpf.dcx"))

	// Map textures: the numbered chunk suffix is trimmed.
	assert.Equal(t, "map/tex/m10_00_00_00", textureContainerBase("map/tex/m10_00_00_00_0001"))

	// Map textures ending in "tex" lose the suffix and its separator.
	assert.Equal(t, "map/tex/m10", textureContainerBase("map/tex/m10_tex"))

	// Map texture paths with neither shape pass through.
	assert.Equal(t, "map/tex/m10_wall", textureContainerBase("map/tex/m10_wall"))
}

func TestEstimatedSizeIsMaxOfEstimates(t *testing.T) {
	j := &Job{}
	j.BumpCourseEstimate(3)
	assert.Equal(t, 3, j.EstimatedSize())

	j.BumpEstimate(2)
	assert.Equal(t, 3, j.EstimatedSize())

	j.BumpEstimate(5)
	assert.Equal(t, 7, j.EstimatedSize())
	assert.Equal(t, 0, j.Progress())
}
