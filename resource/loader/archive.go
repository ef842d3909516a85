package loader

import (
	"strings"
	"sync"

	"github.com/WarpZephyr/DSMapStudio/decode"
	"github.com/WarpZephyr/DSMapStudio/resource"
)

// archiveStage expands binder archives into per-entry pipeline requests.
// Parallelism is unbounded: a dispatcher goroutine spawns one worker per
// archive.
type archiveStage struct {
	job *Job

	in chan ArchiveRequest

	mu     sync.RWMutex
	closed bool

	wg sync.WaitGroup
}

func newArchiveStage(job *Job) *archiveStage {
	s := &archiveStage{
		job: job,
		in:  make(chan ArchiveRequest, requestQueueDepth),
	}
	s.wg.Add(1)
	go s.runDispatcher()
	return s
}

// Post submits an archive for expansion. No-op after Close.
func (s *archiveStage) Post(req ArchiveRequest) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.in <- req
}

// Close closes the stage's input. In-flight expansions drain normally.
func (s *archiveStage) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.in)
}

// Wait blocks until every in-flight archive has finished expanding.
func (s *archiveStage) Wait() {
	s.wg.Wait()
}

func (s *archiveStage) runDispatcher() {
	defer s.wg.Done()
	for req := range s.in {
		s.wg.Add(1)
		go func(req ArchiveRequest) {
			defer s.wg.Done()
			s.expand(req)
		}(req)
	}
}

// expand resolves the archive, opens its binder, and routes each selected
// entry: texture containers go to container expansion, everything else to
// the kind pipeline its extension indicates. A binder that cannot be opened
// drops the whole archive task.
func (s *archiveStage) expand(req ArchiveRequest) {
	m := s.job.mgr

	realPath, _ := m.loc.VirtualToReal(req.VirtualPath)
	if realPath == "" {
		resource.Logger().Warn("archive path unresolvable, dropping",
			"path", req.VirtualPath)
		return
	}

	if m.binders == nil {
		resource.Logger().Warn("no binder provider registered, dropping archive",
			"path", req.VirtualPath)
		return
	}

	game := m.loc.GameType()
	br, err := decode.OpenBinder(m.binders, realPath, game)
	if err != nil {
		resource.Logger().Warn("failed to open binder, dropping archive",
			"path", req.VirtualPath, "file", realPath, "error", err)
		return
	}
	defer br.Close()

	for _, entry := range br.Entries() {
		childPath := resource.CanonicalPath(m.loc.JoinBinder(req.VirtualPath, entry.Name()))
		if req.Whitelist != nil {
			if _, ok := req.Whitelist[childPath]; !ok {
				continue
			}
		}

		name := strings.ToLower(entry.Name())
		if isTextureContainerName(name) {
			if !req.Filter.Has(resource.KindTexture) || req.PopulateOnly {
				continue
			}
			if m.containers == nil {
				continue
			}
			data, err := entry.Bytes()
			if err != nil {
				resource.Logger().Warn("failed to read binder entry, dropping",
					"path", childPath, "error", err)
				continue
			}
			container, err := m.containers.ReadBytes(data)
			if err != nil {
				resource.Logger().Warn("failed to parse texture container entry, dropping",
					"path", childPath, "error", err)
				continue
			}
			// Container expansion bumps the estimate by slot count; nothing
			// is counted here.
			s.job.textures.PostContainer(ContainerRequest{
				PathBase:  textureContainerBase(childPath),
				Container: container,
				Access:    req.Access,
				Game:      game,
			})
			continue
		}

		kind, ok := kindForEntryName(name, req.Filter)
		if !ok || req.PopulateOnly {
			continue
		}

		data, err := entry.Bytes()
		if err != nil {
			resource.Logger().Warn("failed to read binder entry, dropping",
				"path", childPath, "error", err)
			continue
		}

		s.job.BumpEstimate(1)
		s.job.pipelines[kind].PostBytes(BytesRequest{
			VirtualPath: childPath,
			Buffer:      data,
			Access:      req.Access,
			Game:        game,
		})
	}
}

// isTextureContainerName reports whether a lowercased entry name is a
// texture container.
func isTextureContainerName(name string) bool {
	return strings.HasSuffix(name, ".tpf") || strings.HasSuffix(name, ".tpf.dcx")
}

// kindForEntryName routes a lowercased entry name to a pipeline kind,
// honouring the expansion filter. Both havok kinds claim ".hkx"; collision
// wins when the filter selects both.
func kindForEntryName(name string, filter resource.KindMask) (resource.Kind, bool) {
	switch {
	case strings.HasSuffix(name, ".flver"),
		strings.HasSuffix(name, ".flv"),
		strings.HasSuffix(name, ".flv.dcx"),
		strings.HasSuffix(name, ".flver.dcx"):
		return resource.KindFlver, filter.Has(resource.KindFlver)
	case strings.HasSuffix(name, ".nvm"):
		return resource.KindNavmesh, filter.Has(resource.KindNavmesh)
	case strings.HasSuffix(name, ".hkx"),
		strings.HasSuffix(name, ".hkx.dcx"):
		if filter.Has(resource.KindCollisionHkx) {
			return resource.KindCollisionHkx, true
		}
		return resource.KindNavmeshHkx, filter.Has(resource.KindNavmeshHkx)
	default:
		return 0, false
	}
}

// textureContainerBase derives the virtual path prefix a container's slot
// names are joined onto. Map textures keep their container directory with
// the numbered chunk suffix trimmed; other containers' slots live under the
// directory the container sits in.
func textureContainerBase(containerPath string) string {
	vp := resource.CanonicalPath(containerPath)
	vp = strings.TrimSuffix(vp, ".dcx")
	vp = strings.TrimSuffix(vp, ".tpf")

	if strings.HasPrefix(vp, "map/tex") {
		if hasChunkSuffix(vp) {
			return vp[:len(vp)-5]
		}
		if strings.HasSuffix(vp, "tex") {
			return vp[:len(vp)-4]
		}
		return vp
	}

	if idx := strings.LastIndex(vp, "/"); idx >= 0 {
		return vp[:idx]
	}
	return vp
}

// hasChunkSuffix reports whether vp ends in an underscore followed by four
// digits, the numbered-chunk naming of split map texture archives.
func hasChunkSuffix(vp string) bool {
	if len(vp) < 5 || vp[len(vp)-5] != '_' {
		return false
	}
	for _, c := range vp[len(vp)-4:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
