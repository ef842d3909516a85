package loader

import (
	"sync"

	"github.com/WarpZephyr/DSMapStudio/common"
	"github.com/WarpZephyr/DSMapStudio/decode"
	"github.com/WarpZephyr/DSMapStudio/resource"
)

// defaultPortParallelism is the worker count per pipeline port when the
// configuration does not override it.
const defaultPortParallelism = 6

// requestQueueDepth bounds each port's pending requests. Producers block
// when a port is this far behind.
const requestQueueDepth = 256

// pipeline transforms load requests of one resource kind into replies. It
// exposes two independent ports — bytes and file — each backed by its own
// bounded worker pool. Workers decode through the kind's decoder and publish
// successful results into the owning Job's reply buffer; recoverable decode
// errors are logged and the request dropped.
type pipeline struct {
	kind    resource.Kind
	decoder decode.Decoder
	replies chan<- *Reply

	bytesIn chan BytesRequest
	filesIn chan FileRequest

	mu     sync.RWMutex
	closed bool

	wg sync.WaitGroup
}

// newPipeline creates a pipeline for the given kind and spawns parallelism
// workers per port.
func newPipeline(kind resource.Kind, decoder decode.Decoder, replies chan<- *Reply, parallelism int) *pipeline {
	parallelism = common.Coalesce(parallelism, defaultPortParallelism)
	p := &pipeline{
		kind:    kind,
		decoder: decoder,
		replies: replies,
		bytesIn: make(chan BytesRequest, requestQueueDepth),
		filesIn: make(chan FileRequest, requestQueueDepth),
	}

	p.wg.Add(parallelism * 2)
	for i := 0; i < parallelism; i++ {
		go p.runBytesWorker()
		go p.runFileWorker()
	}
	return p
}

// PostBytes submits a bytes request. No-op after Close.
func (p *pipeline) PostBytes(req BytesRequest) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	p.bytesIn <- req
}

// PostFile submits a file request. No-op after Close.
func (p *pipeline) PostFile(req FileRequest) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	p.filesIn <- req
}

// Close closes both ports. No further posts are accepted; in-flight requests
// drain normally.
func (p *pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.bytesIn)
	close(p.filesIn)
}

// Wait blocks until every worker has observed its closed port and finished
// its in-flight request.
func (p *pipeline) Wait() {
	p.wg.Wait()
}

func (p *pipeline) runBytesWorker() {
	defer p.wg.Done()
	for req := range p.bytesIn {
		if p.decoder == nil {
			resource.Logger().Warn("no decoder registered, dropping request",
				"kind", p.kind.String(), "path", req.VirtualPath)
			continue
		}
		res, err := p.decoder.DecodeBytes(req.Buffer, req.Access, req.Game)
		if err != nil {
			resource.Logger().Warn("failed to decode resource bytes, dropping request",
				"kind", p.kind.String(), "path", req.VirtualPath, "error", err)
			continue
		}
		p.replies <- &Reply{VirtualPath: req.VirtualPath, Access: req.Access, Resource: res}
	}
}

func (p *pipeline) runFileWorker() {
	defer p.wg.Done()
	for req := range p.filesIn {
		if p.decoder == nil {
			resource.Logger().Warn("no decoder registered, dropping request",
				"kind", p.kind.String(), "path", req.VirtualPath)
			continue
		}
		res, err := p.decoder.DecodeFile(req.Path, req.Access, req.Game)
		if err != nil {
			resource.Logger().Warn("failed to decode resource file, dropping request",
				"kind", p.kind.String(), "path", req.VirtualPath, "file", req.Path, "error", err)
			continue
		}
		p.replies <- &Reply{VirtualPath: req.VirtualPath, Access: req.Access, Resource: res}
	}
}
