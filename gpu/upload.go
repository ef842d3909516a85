package gpu

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// UploadTask runs on the uploader goroutine with the device and queue it
// needs to create and fill GPU resources.
type UploadTask func(device *wgpu.Device, queue *wgpu.Queue)

// UploadQueue executes texture uploads and staged buffer writes on a single
// background goroutine, keeping them off the frame thread. Tasks enqueued
// through EnqueueLowPriority run in FIFO order.
type UploadQueue struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	tasks    chan UploadTask
	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup

	stagingMu sync.Mutex
	staged    []BufferWrite
}

// BufferWrite is one staged geometry write: data destined for a GPU buffer
// at an offset. Writes are coalesced and submitted together on flush.
type BufferWrite struct {
	Buffer *wgpu.Buffer
	Offset uint64
	Data   []byte
}

// NewUploadQueue creates an upload queue bound to the given device and
// queue. depth bounds how many tasks may be pending before enqueueing
// blocks; values below 1 fall back to 1024.
func NewUploadQueue(device *wgpu.Device, queue *wgpu.Queue, depth int) *UploadQueue {
	if depth < 1 {
		depth = 1024
	}
	return &UploadQueue{
		device: device,
		queue:  queue,
		tasks:  make(chan UploadTask, depth),
		quit:   make(chan struct{}),
	}
}

// Start launches the uploader goroutine. Tasks enqueued before Start sit in
// the queue until it runs.
func (q *UploadQueue) Start() {
	q.wg.Add(1)
	go q.run()
}

// run drains the task channel until Close. Tasks still queued at shutdown
// are discarded.
func (q *UploadQueue) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.quit:
			return
		case task := <-q.tasks:
			if task != nil {
				task(q.device, q.queue)
			}
		}
	}
}

// EnqueueLowPriority queues a task for the uploader goroutine. Blocks when
// the queue is at capacity.
func (q *UploadQueue) EnqueueLowPriority(task UploadTask) {
	select {
	case <-q.quit:
	case q.tasks <- task:
	}
}

// StageBufferWrite records a geometry write for the next staging flush.
// Safe for concurrent use from pipeline workers.
func (q *UploadQueue) StageBufferWrite(w BufferWrite) {
	q.stagingMu.Lock()
	q.staged = append(q.staged, w)
	q.stagingMu.Unlock()
}

// FlushStaging submits every staged buffer write as one upload task. The
// Manager calls this when the last active job retires.
func (q *UploadQueue) FlushStaging() {
	q.stagingMu.Lock()
	writes := q.staged
	q.staged = nil
	q.stagingMu.Unlock()

	if len(writes) == 0 {
		return
	}
	q.EnqueueLowPriority(func(_ *wgpu.Device, queue *wgpu.Queue) {
		if queue == nil {
			return
		}
		for _, w := range writes {
			if w.Buffer == nil {
				continue
			}
			queue.WriteBuffer(w.Buffer, w.Offset, w.Data)
		}
	})
}

// Close stops the uploader goroutine. Safe to call multiple times; queued
// tasks that have not run are discarded.
func (q *UploadQueue) Close() {
	q.quitOnce.Do(func() {
		close(q.quit)
	})
	q.wg.Wait()
}
