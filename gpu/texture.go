package gpu

import "github.com/cogentcore/webgpu/wgpu"

// UploadTexture creates a GPU texture for the given RGBA pixel data, writes
// the pixels through the queue, and fills the descriptor with the resulting
// texture and view. The pixel slice is not retained; once this returns the
// caller may drop the CPU-side data.
//
// Runs on the uploader goroutine via an UploadTask.
//
// Parameters:
//   - device: the GPU device
//   - queue: the GPU queue used to write the texel data
//   - desc: the descriptor slot to fill
//   - pixels: RGBA texel data, 4 bytes per pixel; cubemaps carry 6 layers
//   - width, height: dimensions in pixels
//
// Returns:
//   - error: error if texture or view creation fails
func UploadTexture(device *wgpu.Device, queue *wgpu.Queue, desc *Descriptor, pixels []byte, width, height uint32) error {
	layers := uint32(1)
	if desc.Cube() {
		layers = 6
	}

	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label() + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: layers,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: layers,
		},
	)

	var view *wgpu.TextureView
	if desc.Cube() {
		view, err = tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           desc.Label() + " View",
			Format:          wgpu.TextureFormatRGBA8UnormSrgb,
			Dimension:       wgpu.TextureViewDimensionCube,
			MipLevelCount:   1,
			ArrayLayerCount: 6,
			Aspect:          wgpu.TextureAspectAll,
		})
	} else {
		view, err = tex.CreateView(nil)
	}
	if err != nil {
		tex.Release()
		return err
	}

	desc.SetTexture(tex, view)
	return nil
}
