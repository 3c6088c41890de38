package profiler_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	stats  gpu.Stats
	resets int
}

func (f *fakeStats) Stats() gpu.Stats { return f.stats }
func (f *fakeStats) ResetStats() {
	f.stats = gpu.Stats{}
	f.resets++
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTick_ReportsPerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	source := &fakeStats{}
	var out bytes.Buffer
	p := profiler.NewProfiler(
		profiler.WithClock(clock.now),
		profiler.WithStats(source),
		profiler.WithLogger(slog.New(slog.NewTextHandler(&out, nil))),
	)

	for range 3 {
		clock.advance(250 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	source.stats = gpu.Stats{DrawCalls: 40, StateChanges: 80, ElidedBinds: 12}
	clock.advance(250 * time.Millisecond)
	require.True(t, p.Tick())

	r := p.Last()
	assert.InDelta(t, 4.0, r.FPS, 1e-9)
	assert.Equal(t, 250*time.Millisecond, r.FrameTime)
	assert.InDelta(t, 10.0, r.DrawCalls, 1e-9)
	assert.InDelta(t, 20.0, r.StateChanges, 1e-9)
	assert.InDelta(t, 3.0, r.ElidedBinds, 1e-9)
	assert.Positive(t, r.HeapMB)
	assert.Equal(t, 1, source.resets)

	assert.Contains(t, out.String(), "msg=profile")
	assert.Contains(t, out.String(), "draw_calls=10")
}

func TestTick_StartsNewInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := profiler.NewProfiler(
		profiler.WithClock(clock.now),
		profiler.WithInterval(100*time.Millisecond),
		profiler.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	)

	clock.advance(100 * time.Millisecond)
	require.True(t, p.Tick())
	clock.advance(50 * time.Millisecond)
	assert.False(t, p.Tick())
	clock.advance(50 * time.Millisecond)
	require.True(t, p.Tick())
	assert.InDelta(t, 20.0, p.Last().FPS, 1e-9)
}
