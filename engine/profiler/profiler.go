package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

// StatsSource provides the driver traffic counters sampled each interval.
// *gpu.RenderContext implements it.
type StatsSource interface {
	Stats() gpu.Stats
	ResetStats()
}

// Report is one interval's worth of measurements.
type Report struct {
	// FPS is the number of frames per second over the interval.
	FPS float64

	// FrameTime is the mean frame duration.
	FrameTime time.Duration

	// DrawCalls and StateChanges are per-frame means of the render context counters.
	DrawCalls    float64
	StateChanges float64

	// ElidedBinds is the per-frame mean of binds skipped because the object was already bound.
	ElidedBinds float64

	// HeapMB is the live heap, AllocRateMB the heap allocated per second.
	HeapMB      float64
	AllocRateMB float64

	// GCCount is the total number of collections, MaxPause the longest pause in the interval.
	GCCount  uint32
	MaxPause time.Duration
}

// Profiler tracks frame rate, driver traffic and memory statistics.
// Outputs a structured record to the logger at a configurable interval.
type Profiler struct {
	logger         *slog.Logger
	source         StatsSource
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
	last           Report
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often a report is produced.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// WithLogger sets the logger reports are written to.
func WithLogger(logger *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// WithStats samples draw calls and state changes from source. The counters are reset after
// every report.
func WithStats(source StatsSource) ProfilerOption {
	return func(p *Profiler) {
		p.source = source
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default(),
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	p.lastGCCount = ms.NumGC
	p.lastTotalAlloc = ms.TotalAlloc
	return p
}

// Tick should be called once per frame. When the update interval has elapsed it logs a report
// with FPS, frame time, draw calls, state changes, heap usage, allocation rate and GC pauses.
//
// Returns:
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	frames := float64(p.frameCount)
	r := Report{
		FPS:       frames / elapsed.Seconds(),
		FrameTime: elapsed / time.Duration(p.frameCount),
	}
	if p.source != nil {
		s := p.source.Stats()
		r.DrawCalls = float64(s.DrawCalls) / frames
		r.StateChanges = float64(s.StateChanges) / frames
		r.ElidedBinds = float64(s.ElidedBinds) / frames
		p.source.ResetStats()
	}

	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	r.GCCount = gcCount
	// PauseNs is a circular buffer of the last 256 pauses.
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	for i := startIdx; i < gcCount; i++ {
		if pause := time.Duration(p.memStats.PauseNs[i%256]); pause > r.MaxPause {
			r.MaxPause = pause
		}
	}

	p.logger.Info("profile",
		slog.Float64("fps", r.FPS),
		slog.Duration("frame_time", r.FrameTime),
		slog.Float64("draw_calls", r.DrawCalls),
		slog.Float64("state_changes", r.StateChanges),
		slog.Float64("elided_binds", r.ElidedBinds),
		slog.Float64("heap_mb", r.HeapMB),
		slog.Float64("alloc_rate_mb", r.AllocRateMB),
		slog.Uint64("gc", uint64(gcCount)),
		slog.Duration("gc_max_pause", r.MaxPause),
	)

	p.last = r
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recent report.
func (p *Profiler) Last() Report {
	return p.last
}
