package loader

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/WarpZephyr/DSMapStudio/config"
	"github.com/WarpZephyr/DSMapStudio/decode"
	"github.com/WarpZephyr/DSMapStudio/gpu"
	"github.com/WarpZephyr/DSMapStudio/locator"
	"github.com/WarpZephyr/DSMapStudio/resource"
)

// schedulerQueueDepth bounds pending job orchestrations before submission
// blocks.
const schedulerQueueDepth = 256

// Manager is the process-wide coordinator of resource loading. It owns the
// database, the in-flight set guarding duplicate archive posts, the active
// job registry, the unload and observation queues, and the scheduler that
// runs job completion orchestrations.
//
// The host drives the Manager by calling Tick once per UI frame. Installs,
// unloads, and database removals happen only inside Tick, on that single
// thread; everything else the Manager exposes is safe to call concurrently.
type Manager struct {
	cfg *config.Config
	db  *resource.Database
	loc locator.AssetLocator

	decoders   map[resource.Kind]decode.Decoder
	binders    decode.BinderProvider
	containers decode.TextureContainerReader

	uploads  *gpu.UploadQueue
	texPool  *gpu.TexturePool
	cubePool *gpu.TexturePool

	scheduler worker.DynamicWorkerPool
	taskID    atomic.Int64

	mu              sync.Mutex
	inFlight        map[string]struct{}
	active          []*Job
	unloadQueue     []unloadRequest
	observeQueue    []observeRequest
	refreshUDSFM    bool
	refreshUnloaded bool
	shutdown        bool

	// hadActive is the active-job state at the end of the previous tick;
	// only Tick touches it.
	hadActive bool

	prof *Profiler
}

type unloadRequest struct {
	virtualPath   string
	unconditional bool
}

type observeRequest struct {
	virtualPath string
	kind        resource.Kind
	ref         resource.ListenerRef
	access      resource.AccessLevel
	tag         int
}

// NewManager creates a Manager with the provided options applied. A locator
// is required; NewManager panics without one. Work that needs an unset
// decoder, binder provider, or container reader is dropped with a warning.
// Unset descriptor pools default to 4096 2D and 256 cubemap slots. An unset
// upload queue defaults to a started queue with no device, whose upload
// tasks do nothing. Partial wiring thus stays usable in tools and tests.
func NewManager(options ...ManagerBuilderOption) *Manager {
	m := &Manager{
		cfg:      config.Default(),
		db:       resource.NewDatabase(),
		decoders: make(map[resource.Kind]decode.Decoder),
		inFlight: make(map[string]struct{}),
	}

	for _, option := range options {
		option(m)
	}

	if m.loc == nil {
		panic("loader: NewManager requires an AssetLocator")
	}
	if m.texPool == nil {
		m.texPool = gpu.NewTexturePool("textures", 4096)
	}
	if m.cubePool == nil {
		m.cubePool = gpu.NewCubeTexturePool("cube textures", 256)
	}
	if m.uploads == nil {
		m.uploads = gpu.NewUploadQueue(nil, nil, 0)
		m.uploads.Start()
	}

	m.scheduler = worker.NewDynamicWorkerPool(m.cfg.Resources.JobSchedulerWidth, schedulerQueueDepth, 1*time.Second)
	m.db.SetUnloadScheduler(m.scheduleUnload)

	return m
}

// Database returns the shared resource database.
func (m *Manager) Database() *resource.Database {
	return m.db
}

// NewJobBuilder creates a named Job and its builder façade.
func (m *Manager) NewJobBuilder(name string) *JobBuilder {
	return &JobBuilder{mgr: m, job: newJob(m, name)}
}

// ScheduleObserve queues a listener registration. The next tick creates the
// handle if needed and registers the listener with Handle.Observe delivery
// semantics.
func (m *Manager) ScheduleObserve(virtualPath string, kind resource.Kind, ref resource.ListenerRef, required resource.AccessLevel, tag int) {
	m.mu.Lock()
	m.observeQueue = append(m.observeQueue, observeRequest{
		virtualPath: resource.CanonicalPath(virtualPath),
		kind:        kind,
		ref:         ref,
		access:      required,
		tag:         tag,
	})
	m.mu.Unlock()
}

// ScheduleUnload queues an unconditional unload for the next idle tick.
func (m *Manager) ScheduleUnload(virtualPath string) {
	m.scheduleUnload(resource.CanonicalPath(virtualPath), true)
}

// scheduleUnload is the database's unused-handle callback; conditional
// requests are honoured only if the handle is still unreferenced when the
// tick drains the queue.
func (m *Manager) scheduleUnload(virtualPath string, unconditional bool) {
	m.mu.Lock()
	m.unloadQueue = append(m.unloadQueue, unloadRequest{virtualPath: virtualPath, unconditional: unconditional})
	m.mu.Unlock()
}

// RefreshUDSFMTextures flags a one-shot scan for loose unpacked map textures
// once the current jobs retire.
func (m *Manager) RefreshUDSFMTextures() {
	m.mu.Lock()
	m.refreshUDSFM = true
	m.mu.Unlock()
}

// RefreshUnloadedTextures flags a one-shot scan for unloaded asset textures
// once the current jobs retire.
func (m *Manager) RefreshUnloadedTextures() {
	m.mu.Lock()
	m.refreshUnloaded = true
	m.mu.Unlock()
}

// ActiveJobs returns a snapshot of the jobs the tick is currently draining.
func (m *Manager) ActiveJobs() []*Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Job, len(m.active))
	copy(out, m.active)
	return out
}

// markInFlight inserts a canonical path into the in-flight set, reporting
// whether it was newly inserted.
func (m *Manager) markInFlight(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inFlight[key]; ok {
		return false
	}
	m.inFlight[key] = struct{}{}
	return true
}

// registerJob adds a job to the active registry so the tick drains it.
func (m *Manager) registerJob(j *Job) {
	m.mu.Lock()
	m.active = append(m.active, j)
	m.mu.Unlock()
	resource.Logger().Info("job registered", "job", j.Name(), "id", j.ID().String())
}

// submit runs fn on the job scheduler pool. No-op after Shutdown.
func (m *Manager) submit(fn func()) {
	m.mu.Lock()
	closed := m.shutdown
	m.mu.Unlock()
	if closed {
		return
	}
	m.scheduler.SubmitTask(worker.Task{
		ID: int(m.taskID.Add(1)),
		Do: func() (any, error) {
			fn()
			return nil, nil
		},
	})
}

// Tick is the Manager's per-frame step, invoked by the host on the UI
// thread. It drains queued observations, performs pending unloads when no
// jobs are active, installs every buffered reply, retires finished jobs,
// runs flagged texture refreshes, and sweeps unused handles when the last
// job retires.
func (m *Manager) Tick() {
	// 1. Queued observations become handles and listener registrations.
	m.mu.Lock()
	observations := m.observeQueue
	m.observeQueue = nil
	activeAtStart := len(m.active)
	m.mu.Unlock()

	for _, o := range observations {
		m.db.Observe(o.virtualPath, o.kind, o.ref, o.access, o.tag)
	}

	// 2. With no jobs active, the in-flight set is forgotten (new jobs
	// re-guard) and pending unloads run.
	if activeAtStart == 0 {
		m.mu.Lock()
		m.inFlight = make(map[string]struct{})
		unloads := m.unloadQueue
		m.unloadQueue = nil
		m.mu.Unlock()

		for _, u := range unloads {
			h := m.db.Lookup(u.virtualPath)
			if h == nil {
				continue
			}
			if u.unconditional {
				h.Unload()
			} else {
				h.UnloadIfUnused()
			}
			if h.RefCount() == 0 && !h.Loaded() {
				m.db.Remove(u.virtualPath)
			}
		}
	}

	// 3. Drain every active job's replies and retire finished jobs.
	jobs := m.ActiveJobs()
	processed := 0
	for _, j := range jobs {
		processed += m.drainReplies(j)
		if j.Finished() {
			// A worker may have published between the drain above and the
			// finished flag flipping; a finished job's buffer is quiescent,
			// so one more drain empties it for good.
			processed += m.drainReplies(j)
		}
	}

	m.mu.Lock()
	remaining := m.active[:0]
	for _, j := range m.active {
		if j.Finished() {
			resource.Logger().Info("job retired", "job", j.Name(), "id", j.ID().String(),
				"progress", j.Progress(), "estimated", j.EstimatedSize())
			continue
		}
		remaining = append(remaining, j)
	}
	m.active = remaining
	nowActive := len(m.active)
	refreshUDSFM, refreshUnloaded := m.refreshUDSFM, m.refreshUnloaded
	if nowActive == 0 {
		m.refreshUDSFM, m.refreshUnloaded = false, false
	}
	m.mu.Unlock()

	// 4. Idle housekeeping: flush staged geometry and run flagged refreshes.
	if nowActive == 0 {
		m.uploads.FlushStaging()
		if refreshUDSFM {
			b := m.NewJobBuilder("UDSFM Texture Load")
			b.LoadUDSFMTextures()
			b.Complete()
		}
		if refreshUnloaded {
			b := m.NewJobBuilder("Loose Texture Load")
			b.LoadUnloadedTextures()
			b.Complete()
		}
	}

	// 5. Sweep unused handles when the last job retires.
	m.mu.Lock()
	nowActive = len(m.active)
	m.mu.Unlock()
	if m.hadActive && nowActive == 0 {
		m.db.Sweep(func(h *resource.Handle) {
			h.UnloadIfUnused()
		})
	}
	m.hadActive = nowActive > 0

	if m.prof != nil {
		m.prof.Observe(processed, m.db.Len())
	}
}

// drainReplies non-blockingly empties one job's reply buffer, installing
// each reply into its handle. Replies arriving after a fatal job error are
// released and discarded so no partial handles remain.
func (m *Manager) drainReplies(j *Job) int {
	failed := j.Err() != nil
	processed := 0
	for {
		select {
		case r := <-j.replies:
			if failed {
				r.Resource.Release()
				continue
			}
			j.progress.Add(1)
			processed++
			h := m.db.GetOrCreate(r.Resource.Kind(), r.VirtualPath)
			h.Install(r.Resource, r.Access)
		default:
			return processed
		}
	}
}

// EnableProfiler turns on periodic loading statistics via the subsystem
// logger.
func (m *Manager) EnableProfiler() {
	m.prof = NewProfiler()
}

// DisableProfiler turns statistics off.
func (m *Manager) DisableProfiler() {
	m.prof = nil
}

// Shutdown tears the subsystem down: pending observations and unloads are
// discarded, no further orchestrations are scheduled, and the upload queue
// stops. In-flight pipeline workers finish their current request and then
// observe their closed channels. The scheduler's idle workers exit on their
// own timeout.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.shutdown = true
	m.observeQueue = nil
	m.unloadQueue = nil
	m.active = nil
	m.inFlight = make(map[string]struct{})
	m.mu.Unlock()

	m.uploads.Close()
}
