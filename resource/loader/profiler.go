package loader

import (
	"runtime"
	"time"

	"github.com/WarpZephyr/DSMapStudio/resource"
)

// Profiler tracks tick rate, reply throughput, and memory statistics for the
// loading subsystem. Outputs stats through the subsystem logger once per
// update interval.
type Profiler struct {
	tickCount      int
	replyCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
}

// NewProfiler creates a new Profiler with default settings.
// The update interval is 1 second and cannot be changed.
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Observe records one Manager tick and the replies it installed. Logs
// loading statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Observe(replies, handleCount int) bool {
	p.tickCount++
	p.replyCount += replies
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	ticksPerSec := float64(p.tickCount) / elapsed.Seconds()
	repliesPerSec := float64(p.replyCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024

	resource.Logger().Info("loading stats",
		"ticks_per_sec", ticksPerSec,
		"replies_per_sec", repliesPerSec,
		"handles", handleCount,
		"heap_mb", allocMB,
	)

	p.tickCount = 0
	p.replyCount = 0
	p.lastTime = currentTime
	return true
}
