package loader

import (
	"sync"
	"sync/atomic"

	"github.com/WarpZephyr/DSMapStudio/resource"
	"github.com/google/uuid"
)

// replyQueueDepth bounds a job's reply buffer. Pipeline workers block when
// the Manager tick falls this far behind.
const replyQueueDepth = 4096

// Job is a named batch of load work: one pipeline per non-texture kind, the
// texture pipeline, the archive expansion stage, and the reply buffer they
// all publish into. A Job's orderly completion is a single observable event.
type Job struct {
	id   uuid.UUID
	name string
	mgr  *Manager

	replies   chan *Reply
	pipelines map[resource.Kind]*pipeline
	textures  *texturePipeline
	archives  *archiveStage

	estimate       atomic.Int64
	courseEstimate atomic.Int64
	progress       atomic.Int64
	finished       atomic.Bool

	errMu sync.Mutex
	err   error

	done         chan error
	completeOnce sync.Once
}

// newJob wires a Job's pipelines and stages against the Manager's registered
// collaborators.
func newJob(mgr *Manager, name string) *Job {
	j := &Job{
		id:      uuid.New(),
		name:    name,
		mgr:     mgr,
		replies: make(chan *Reply, replyQueueDepth),
		done:    make(chan error, 1),
	}

	parallelism := mgr.cfg.Resources.PipelinePortParallelism
	j.pipelines = map[resource.Kind]*pipeline{
		resource.KindFlver:        newPipeline(resource.KindFlver, mgr.decoders[resource.KindFlver], j.replies, parallelism),
		resource.KindCollisionHkx: newPipeline(resource.KindCollisionHkx, mgr.decoders[resource.KindCollisionHkx], j.replies, parallelism),
		resource.KindNavmesh:      newPipeline(resource.KindNavmesh, mgr.decoders[resource.KindNavmesh], j.replies, parallelism),
		resource.KindNavmeshHkx:   newPipeline(resource.KindNavmeshHkx, mgr.decoders[resource.KindNavmeshHkx], j.replies, parallelism),
	}
	j.textures = newTexturePipeline(j, parallelism)
	j.archives = newArchiveStage(j)
	return j
}

// ID returns the job's unique identity, used for log correlation.
func (j *Job) ID() uuid.UUID {
	return j.id
}

// Name returns the job's display name.
func (j *Job) Name() string {
	return j.name
}

// PostArchive forwards an archive request to the expansion stage.
func (j *Job) PostArchive(req ArchiveRequest) {
	j.archives.Post(req)
}

// PostBytes forwards a bytes request to the given kind's pipeline.
func (j *Job) PostBytes(kind resource.Kind, req BytesRequest) {
	if p := j.pipelines[kind]; p != nil {
		p.PostBytes(req)
	}
}

// PostFile forwards a file request to the given kind's pipeline.
func (j *Job) PostFile(kind resource.Kind, req FileRequest) {
	if p := j.pipelines[kind]; p != nil {
		p.PostFile(req)
	}
}

// PostContainer forwards a texture container to the expansion stage.
func (j *Job) PostContainer(req ContainerRequest) {
	j.textures.PostContainer(req)
}

// BumpEstimate adds n to the fine-grained size estimate.
func (j *Job) BumpEstimate(n int) {
	j.estimate.Add(int64(n))
}

// BumpCourseEstimate adds n to the coarse size estimate, counted per archive
// before its contents are known.
func (j *Job) BumpCourseEstimate(n int) {
	j.courseEstimate.Add(int64(n))
}

// EstimatedSize returns the larger of the fine and coarse estimates. It may
// exceed final progress when individual requests fail.
func (j *Job) EstimatedSize() int {
	fine := j.estimate.Load()
	course := j.courseEstimate.Load()
	if fine > course {
		return int(fine)
	}
	return int(course)
}

// Progress returns how many of this job's replies the Manager has processed.
func (j *Job) Progress() int {
	return int(j.progress.Load())
}

// Finished reports whether the completion orchestration has run to the end.
func (j *Job) Finished() bool {
	return j.finished.Load()
}

// Err returns the job's fatal error, or nil. Only strict descriptor
// exhaustion aborts a job; recoverable request failures never set it.
func (j *Job) Err() error {
	j.errMu.Lock()
	defer j.errMu.Unlock()
	return j.err
}

// fail records the job's first fatal error.
func (j *Job) fail(err error) {
	j.errMu.Lock()
	if j.err == nil {
		j.err = err
	}
	j.errMu.Unlock()
}

// Complete stops accepting work and returns a future that resolves once
// every stage has drained, in dependency order: archive expansion first
// (it produces bytes and file requests), then the kind pipelines' ports,
// then container expansion (it produces slot requests), then the slot
// loader. Closing upstream stages before downstream ports guarantees no
// request is lost. After the future resolves, no further replies for this
// job will appear.
func (j *Job) Complete() <-chan error {
	j.completeOnce.Do(func() {
		j.mgr.submit(func() {
			// (a) close archive expansion and await drain.
			j.archives.Close()
			j.archives.Wait()

			// (b) close each pipeline's bytes and file ports.
			for _, p := range j.pipelines {
				p.Close()
			}

			// (c) close container expansion and await drain.
			j.textures.CloseExpansion()
			j.textures.WaitExpansion()

			// (d) close the texture slot loader.
			j.textures.CloseSlots()

			// (e) await every port's completion.
			for _, p := range j.pipelines {
				p.Wait()
			}
			j.textures.WaitSlots()

			j.finished.Store(true)
			j.done <- j.Err()
			close(j.done)
		})
	})
	return j.done
}
