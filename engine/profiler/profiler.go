package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// Stats is one reporting window of animation evaluation statistics.
type Stats struct {
	// FPS is the number of frames evaluated per second.
	FPS float64

	// InstancesPerSecond is the number of skeleton instances posed per second.
	InstancesPerSecond float64

	// AvgFrameTime is the mean wall time spent evaluating one frame.
	AvgFrameTime time.Duration

	// MaxFrameTime is the slowest frame evaluation in the window.
	MaxFrameTime time.Duration

	// HeapMB is the live heap size in megabytes.
	HeapMB float64

	// AllocRateMB is the heap allocation rate in megabytes per second.
	AllocRateMB float64

	// GCCount is the total number of completed GC cycles.
	GCCount uint32
}

// Profiler tracks animation evaluation throughput and memory statistics.
// Outputs stats to the common logger at a configurable interval. It is not safe for concurrent use.
type Profiler struct {
	frameCount     int
	instanceCount  int
	evalTotal      time.Duration
	evalMax        time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	last           Stats
}

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval is an option builder that sets how often statistics are logged.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval option to a profiler
func WithUpdateInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Record adds one evaluated frame to the current window.
//
// Parameters:
//   - instances: the number of instances posed this frame
//   - elapsed: the wall time the frame's evaluation took
func (p *Profiler) Record(instances int, elapsed time.Duration) {
	p.frameCount++
	p.instanceCount += instances
	p.evalTotal += elapsed
	if elapsed > p.evalMax {
		p.evalMax = elapsed
	}
}

// Tick logs statistics when the update interval has elapsed and starts a new window.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || p.frameCount == 0 {
		return false
	}
	seconds := max(elapsed.Seconds(), 1e-9)

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	p.last = Stats{
		FPS:                float64(p.frameCount) / seconds,
		InstancesPerSecond: float64(p.instanceCount) / seconds,
		AvgFrameTime:       p.evalTotal / time.Duration(p.frameCount),
		MaxFrameTime:       p.evalMax,
		HeapMB:             float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:        float64(allocDelta) / 1024 / 1024 / seconds,
		GCCount:            p.memStats.NumGC,
	}

	common.Logger().Info("animation profile",
		"fps", p.last.FPS,
		"instancesPerSecond", p.last.InstancesPerSecond,
		"avgFrame", p.last.AvgFrameTime,
		"maxFrame", p.last.MaxFrameTime,
		"heapMB", p.last.HeapMB,
		"allocRateMB", p.last.AllocRateMB,
		"gc", p.last.GCCount,
	)

	p.frameCount = 0
	p.instanceCount = 0
	p.evalTotal = 0
	p.evalMax = 0
	p.lastTime = currentTime
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the statistics of the most recently logged window.
func (p *Profiler) Last() Stats {
	return p.last
}
