package gpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WarpZephyr/DSMapStudio/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestTexturePoolExhaustion(t *testing.T) {
	pool := gpu.NewTexturePool("test", 2)

	d1 := pool.Allocate("a")
	d2 := pool.Allocate("b")
	require.NotNil(t, d1)
	require.NotNil(t, d2)
	assert.Equal(t, 2, pool.InUse())

	// Exhausted pools return nil rather than erroring.
	assert.Nil(t, pool.Allocate("c"))

	// Releasing a slot makes room again.
	d1.Release()
	assert.Equal(t, 1, pool.InUse())
	assert.NotNil(t, pool.Allocate("d"))
}

func TestCubePoolMarksDescriptors(t *testing.T) {
	pool := gpu.NewCubeTexturePool("cubes", 1)
	d := pool.Allocate("sky")
	require.NotNil(t, d)
	assert.True(t, d.Cube())
	assert.Equal(t, "sky", d.Label())

	flat := gpu.NewTexturePool("flat", 1).Allocate("wall")
	require.NotNil(t, flat)
	assert.False(t, flat.Cube())
}

func TestDescriptorReleaseWithoutUploadIsSafe(t *testing.T) {
	pool := gpu.NewTexturePool("test", 1)
	d := pool.Allocate("a")
	require.NotNil(t, d)
	assert.Nil(t, d.View())

	d.Release()
	assert.Equal(t, 0, pool.InUse())
}

func TestUploadQueueRunsTasksInOrder(t *testing.T) {
	q := gpu.NewUploadQueue(nil, nil, 8)
	q.Start()
	defer q.Close()

	results := make(chan int, 2)
	q.EnqueueLowPriority(func(_ *wgpu.Device, _ *wgpu.Queue) { results <- 1 })
	q.EnqueueLowPriority(func(_ *wgpu.Device, _ *wgpu.Queue) { results <- 2 })

	assert.Equal(t, 1, <-results)
	assert.Equal(t, 2, <-results)
}

func TestUploadQueueDropsTasksAfterClose(t *testing.T) {
	q := gpu.NewUploadQueue(nil, nil, 1)
	q.Start()
	q.Close()

	// Enqueue after close must neither run the task nor block.
	q.EnqueueLowPriority(func(_ *wgpu.Device, _ *wgpu.Queue) {
		t.Error("task ran after close")
	})
}
