package loader

import (
	"github.com/WarpZephyr/DSMapStudio/config"
	"github.com/WarpZephyr/DSMapStudio/decode"
	"github.com/WarpZephyr/DSMapStudio/gpu"
	"github.com/WarpZephyr/DSMapStudio/locator"
	"github.com/WarpZephyr/DSMapStudio/resource"
)

// ManagerBuilderOption is a functional option for configuring a Manager via
// NewManager.
type ManagerBuilderOption func(*Manager)

// WithLocator is an option builder that sets the asset locator. Required.
func WithLocator(l locator.AssetLocator) ManagerBuilderOption {
	return func(m *Manager) {
		m.loc = l
	}
}

// WithConfig is an option builder that replaces the default configuration.
func WithConfig(cfg *config.Config) ManagerBuilderOption {
	return func(m *Manager) {
		if cfg != nil {
			m.cfg = cfg
		}
	}
}

// WithDecoder is an option builder that registers the decoder for one
// resource kind. Kinds without a decoder drop their requests with a warning.
func WithDecoder(kind resource.Kind, d decode.Decoder) ManagerBuilderOption {
	return func(m *Manager) {
		m.decoders[kind] = d
	}
}

// WithBinderProvider is an option builder that sets the binder format
// implementation used by archive expansion.
func WithBinderProvider(p decode.BinderProvider) ManagerBuilderOption {
	return func(m *Manager) {
		m.binders = p
	}
}

// WithTextureContainerReader is an option builder that sets the texture
// container parser used by container expansion.
func WithTextureContainerReader(r decode.TextureContainerReader) ManagerBuilderOption {
	return func(m *Manager) {
		m.containers = r
	}
}

// WithUploadQueue is an option builder that sets the GPU upload queue. The
// host owns starting and stopping it against its device.
func WithUploadQueue(q *gpu.UploadQueue) ManagerBuilderOption {
	return func(m *Manager) {
		m.uploads = q
	}
}

// WithTexturePools is an option builder that sets the 2D and cubemap
// descriptor pools.
func WithTexturePools(tex2D, cube *gpu.TexturePool) ManagerBuilderOption {
	return func(m *Manager) {
		m.texPool = tex2D
		m.cubePool = cube
	}
}
