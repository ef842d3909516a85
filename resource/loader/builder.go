package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/WarpZephyr/DSMapStudio/resource"
)

// JobBuilder is the narrow façade callers use to fill a Job with load tasks
// before kicking off its completion. Archive tasks are deduplicated by
// virtual path through the Manager's in-flight set; file and texture tasks
// are posted on every call.
type JobBuilder struct {
	mgr *Manager
	job *Job
}

// Job returns the job under construction, for progress polling.
func (b *JobBuilder) Job() *Job {
	return b.job
}

// LoadArchive queues a binder archive for expansion. A path already in
// flight is a no-op, so posting the same archive twice within overlapping
// jobs yields a single expansion task.
//
// Parameters:
//   - virtualPath: the archive's virtual path
//   - access: the access level for every produced resource
//   - populateOnly: open the archive without posting any decode requests;
//     no handles are created for its entries
//   - filter: which entry kinds to expand; resource.MaskAll for everything
//   - whitelist: optional restriction to specific entry virtual paths
func (b *JobBuilder) LoadArchive(virtualPath string, access resource.AccessLevel, populateOnly bool, filter resource.KindMask, whitelist []string) {
	key := resource.CanonicalPath(virtualPath)
	if !b.mgr.markInFlight(key) {
		return
	}

	var wl map[string]struct{}
	if whitelist != nil {
		wl = make(map[string]struct{}, len(whitelist))
		for _, vp := range whitelist {
			wl[resource.CanonicalPath(vp)] = struct{}{}
		}
	}

	b.job.BumpCourseEstimate(1)
	b.job.PostArchive(ArchiveRequest{
		VirtualPath:  key,
		Access:       access,
		PopulateOnly: populateOnly,
		Filter:       filter,
		Whitelist:    wl,
	})
}

// LoadFile queues a single loose file, dispatched to the pipeline its
// extension indicates. Texture containers expand into their slots with the
// same map-texture path normalisation as archive expansion.
func (b *JobBuilder) LoadFile(virtualPath string, access resource.AccessLevel) {
	key := resource.CanonicalPath(virtualPath)
	m := b.mgr

	realPath, _ := m.loc.VirtualToReal(key)
	if realPath == "" {
		resource.Logger().Warn("file path unresolvable, dropping", "path", key)
		return
	}
	game := m.loc.GameType()

	if isTextureContainerName(key) {
		b.job.PostContainer(ContainerRequest{
			PathBase: textureContainerBase(key),
			FilePath: realPath,
			Access:   access,
			Game:     game,
		})
		return
	}

	kind, ok := kindForEntryName(key, resource.MaskAll)
	if !ok {
		resource.Logger().Warn("unrecognised file extension, dropping", "path", key)
		return
	}

	b.job.BumpEstimate(1)
	b.job.PostFile(kind, FileRequest{
		VirtualPath: key,
		Path:        realPath,
		Access:      access,
		Game:        game,
	})
}

// LoadUDSFMTextures scans the database for unloaded map texture handles and
// queues the matching loose TPF files unpacked game installs keep under
// map/tx. Handles whose TPF is missing are left untouched.
func (b *JobBuilder) LoadUDSFMTextures() {
	m := b.mgr
	root := m.loc.GameRoot()

	for _, key := range m.db.UnloadedWithPrefix("map/tex") {
		base := key
		if idx := strings.LastIndex(base, "/"); idx >= 0 {
			base = base[idx+1:]
		}
		tpfPath := filepath.Join(root, "map", "tx", base+".tpf")
		if _, err := os.Stat(tpfPath); err != nil {
			continue
		}
		b.job.PostContainer(ContainerRequest{
			PathBase: "map/tex",
			FilePath: tpfPath,
			Access:   resource.AccessGPUOptimizedOnly,
			Game:     m.loc.GameType(),
		})
	}
}

// LoadUnloadedTextures scans the database for unloaded asset texture handles
// (aet/ keys), resolves each asset id's texture archive through the locator,
// and queues one container expansion per distinct id.
func (b *JobBuilder) LoadUnloadedTextures() {
	m := b.mgr
	seen := make(map[string]struct{})

	for _, key := range m.db.UnloadedWithPrefix("aet/") {
		parts := strings.Split(key, "/")
		if len(parts) < 2 {
			continue
		}
		aetID := parts[1]
		if _, ok := seen[aetID]; ok {
			continue
		}
		seen[aetID] = struct{}{}

		desc, ok := m.loc.AETTexture(aetID)
		if !ok {
			continue
		}
		b.job.PostContainer(ContainerRequest{
			PathBase: "aet/" + aetID,
			FilePath: desc.AssetPath,
			Access:   resource.AccessGPUOptimizedOnly,
			Game:     m.loc.GameType(),
		})
	}
}

// Complete registers the job with the Manager and returns its completion
// future. The Manager's tick begins draining the job's replies immediately.
func (b *JobBuilder) Complete() <-chan error {
	b.mgr.registerJob(b.job)
	return b.job.Complete()
}
