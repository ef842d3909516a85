package loader

import (
	"fmt"
	"sync"

	"github.com/WarpZephyr/DSMapStudio/common"
	"github.com/WarpZephyr/DSMapStudio/decode"
	"github.com/WarpZephyr/DSMapStudio/gpu"
	"github.com/WarpZephyr/DSMapStudio/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureResource is a loaded texture slot. Its payload is the GPU
// descriptor; the CPU-side texel data only lives until the upload task runs.
type TextureResource struct {
	desc *gpu.Descriptor
}

// Kind returns resource.KindTexture.
func (t *TextureResource) Kind() resource.Kind {
	return resource.KindTexture
}

// Descriptor returns the texture's GPU descriptor slot.
func (t *TextureResource) Descriptor() *gpu.Descriptor {
	return t.desc
}

// Release destroys the GPU texture and returns the descriptor slot to its
// pool.
func (t *TextureResource) Release() {
	if t.desc != nil {
		t.desc.Release()
		t.desc = nil
	}
}

// texturePipeline loads texture containers: a container-expansion stage with
// unbounded parallelism fans each container out into per-slot requests, and
// a bounded slot-loader stage decodes slots, allocates descriptors, and
// enqueues GPU uploads.
type texturePipeline struct {
	job *Job

	reader   decode.TextureContainerReader
	uploads  *gpu.UploadQueue
	pool2D   *gpu.TexturePool
	poolCube *gpu.TexturePool

	texturesEnabled bool
	strict          bool

	expandIn chan ContainerRequest
	slotsIn  chan SlotRequest

	mu           sync.RWMutex
	expandClosed bool
	slotsClosed  bool

	expandWG sync.WaitGroup // dispatcher + per-container goroutines
	slotWG   sync.WaitGroup // bounded slot workers
}

func newTexturePipeline(job *Job, parallelism int) *texturePipeline {
	parallelism = common.Coalesce(parallelism, defaultPortParallelism)
	m := job.mgr
	t := &texturePipeline{
		job:             job,
		reader:          m.containers,
		uploads:         m.uploads,
		pool2D:          m.texPool,
		poolCube:        m.cubePool,
		texturesEnabled: m.cfg.Textures.Enabled,
		strict:          m.cfg.Resources.StrictResourceChecking,
		expandIn:        make(chan ContainerRequest, requestQueueDepth),
		slotsIn:         make(chan SlotRequest, requestQueueDepth),
	}

	t.expandWG.Add(1)
	go t.runExpandDispatcher()

	t.slotWG.Add(parallelism)
	for i := 0; i < parallelism; i++ {
		go t.runSlotWorker()
	}
	return t
}

// PostContainer submits a container for expansion. No-op after
// CloseExpansion.
func (t *texturePipeline) PostContainer(req ContainerRequest) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.expandClosed {
		return
	}
	t.expandIn <- req
}

// CloseExpansion closes the container-expansion stage.
func (t *texturePipeline) CloseExpansion() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.expandClosed {
		return
	}
	t.expandClosed = true
	close(t.expandIn)
}

// WaitExpansion blocks until every in-flight container has finished
// emitting slot requests.
func (t *texturePipeline) WaitExpansion() {
	t.expandWG.Wait()
}

// CloseSlots closes the slot-loader stage. Must happen after WaitExpansion.
func (t *texturePipeline) CloseSlots() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.slotsClosed {
		return
	}
	t.slotsClosed = true
	close(t.slotsIn)
}

// WaitSlots blocks until every slot worker has drained.
func (t *texturePipeline) WaitSlots() {
	t.slotWG.Wait()
}

// runExpandDispatcher spawns one goroutine per container; expansion
// parallelism is unbounded.
func (t *texturePipeline) runExpandDispatcher() {
	defer t.expandWG.Done()
	for req := range t.expandIn {
		t.expandWG.Add(1)
		go func(req ContainerRequest) {
			defer t.expandWG.Done()
			t.expandContainer(req)
		}(req)
	}
}

// expandContainer reads the container if necessary and emits one slot
// request per subresource, bumping the job estimate by the slot count.
// Containers are discarded silently when texture loading is disabled.
func (t *texturePipeline) expandContainer(req ContainerRequest) {
	if !t.texturesEnabled {
		return
	}

	container := req.Container
	if container == nil {
		if t.reader == nil {
			resource.Logger().Warn("no texture container reader, dropping container",
				"path", req.PathBase)
			return
		}
		var err error
		container, err = t.reader.ReadFile(req.FilePath)
		if err != nil {
			resource.Logger().Warn("failed to read texture container, dropping",
				"path", req.PathBase, "file", req.FilePath, "error", err)
			return
		}
	}

	slots := container.Slots()
	t.job.BumpEstimate(len(slots))

	for i, slot := range slots {
		t.postSlot(SlotRequest{
			VirtualPath: resource.CanonicalPath(req.PathBase + "/" + slot.Name()),
			Container:   container,
			Index:       i,
			Access:      req.Access,
			Game:        req.Game,
		})
	}
}

func (t *texturePipeline) postSlot(req SlotRequest) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.slotsClosed {
		return
	}
	t.slotsIn <- req
}

func (t *texturePipeline) runSlotWorker() {
	defer t.slotWG.Done()
	for req := range t.slotsIn {
		t.loadSlot(req)
	}
}

// loadSlot decodes one slot's metadata, allocates a descriptor from the
// matching pool, and enqueues the low-priority GPU upload that fills it.
// The descriptor is the reply payload; the CPU texel data is dropped once
// the upload runs.
func (t *texturePipeline) loadSlot(req SlotRequest) {
	if t.job.Err() != nil {
		// The job already failed fatally; do not produce partial handles.
		return
	}

	slots := req.Container.Slots()
	if req.Index < 0 || req.Index >= len(slots) {
		resource.Logger().Warn("texture slot index out of range, dropping",
			"path", req.VirtualPath, "index", req.Index)
		return
	}
	slot := slots[req.Index]

	pool := t.pool2D
	if slot.Cube() {
		pool = t.poolCube
	}
	desc := pool.Allocate(req.VirtualPath)
	if desc == nil {
		if t.strict {
			t.job.fail(fmt.Errorf("%w: texture descriptor pool exhausted at %q",
				resource.ErrResourceExhausted, req.VirtualPath))
			return
		}
		resource.Logger().Warn("texture descriptor pool exhausted, dropping slot",
			"path", req.VirtualPath)
		return
	}

	pixels, width, height := slot.Pixels()
	t.uploads.EnqueueLowPriority(func(device *wgpu.Device, queue *wgpu.Queue) {
		if device == nil || queue == nil {
			return
		}
		if err := gpu.UploadTexture(device, queue, desc, pixels, width, height); err != nil {
			resource.Logger().Warn("texture upload failed", "path", req.VirtualPath, "error", err)
		}
	})

	t.job.replies <- &Reply{
		VirtualPath: req.VirtualPath,
		Access:      req.Access,
		Resource:    &TextureResource{desc: desc},
	}
}
