// Package gpu holds the loading subsystem's GPU-facing pieces: texture
// descriptor pools, the low-priority upload queue, and coalesced geometry
// staging writes. Built on the wgpu bindings; descriptor pools themselves
// are externally synchronized only through this package.
package gpu

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Descriptor is an allocated texture slot. It starts empty; the upload queue
// fills it with a texture and view once the slot's upload task runs.
// Releasing the descriptor destroys the texture and returns the slot to its
// pool.
type Descriptor struct {
	pool  *TexturePool
	cube  bool
	label string

	mu      sync.Mutex
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// Cube reports whether the slot was allocated from the cubemap pool.
func (d *Descriptor) Cube() bool {
	return d.cube
}

// Label returns the slot's debug label.
func (d *Descriptor) Label() string {
	return d.label
}

// SetTexture adopts the uploaded texture and its view. Called by the upload
// task on the uploader thread. A texture set on an already-filled descriptor
// replaces it, releasing the previous one.
func (d *Descriptor) SetTexture(tex *wgpu.Texture, view *wgpu.TextureView) {
	d.mu.Lock()
	oldTex, oldView := d.texture, d.view
	d.texture = tex
	d.view = view
	d.mu.Unlock()

	if oldView != nil {
		oldView.Release()
	}
	if oldTex != nil {
		oldTex.Release()
	}
}

// View returns the texture view, or nil while the upload is still pending.
func (d *Descriptor) View() *wgpu.TextureView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

// Release destroys the descriptor's GPU texture (if uploaded) and returns
// the slot to its pool. Safe to call on a never-filled descriptor.
func (d *Descriptor) Release() {
	d.mu.Lock()
	tex, view := d.texture, d.view
	d.texture = nil
	d.view = nil
	d.mu.Unlock()

	if view != nil {
		view.Release()
	}
	if tex != nil {
		tex.Release()
	}
	if d.pool != nil {
		d.pool.free()
	}
}

// TexturePool hands out a bounded number of texture descriptor slots.
// Allocation fails by returning nil once the pool is exhausted; the caller
// decides whether that is fatal (strict resource checking) or a dropped
// request.
type TexturePool struct {
	label    string
	capacity int
	cube     bool

	mu    sync.Mutex
	inUse int
}

// NewTexturePool creates a pool of 2D texture slots.
func NewTexturePool(label string, capacity int) *TexturePool {
	return &TexturePool{label: label, capacity: capacity}
}

// NewCubeTexturePool creates a pool of cubemap texture slots.
func NewCubeTexturePool(label string, capacity int) *TexturePool {
	return &TexturePool{label: label, capacity: capacity, cube: true}
}

// Allocate reserves a descriptor slot, or returns nil when the pool is
// exhausted.
func (p *TexturePool) Allocate(label string) *Descriptor {
	p.mu.Lock()
	if p.inUse >= p.capacity {
		p.mu.Unlock()
		return nil
	}
	p.inUse++
	p.mu.Unlock()

	return &Descriptor{pool: p, cube: p.cube, label: label}
}

// InUse returns the number of currently allocated slots.
func (p *TexturePool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Capacity returns the pool's slot budget.
func (p *TexturePool) Capacity() int {
	return p.capacity
}

func (p *TexturePool) free() {
	p.mu.Lock()
	if p.inUse > 0 {
		p.inUse--
	}
	p.mu.Unlock()
}
