package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestTickReportsOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(
		WithClock(clock.now),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	for range 9 {
		clock.t = clock.t.Add(100 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	assert.Empty(t, buf.String())

	clock.t = clock.t.Add(100 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 10, p.Last().FPS, 1e-9)
	assert.Contains(t, buf.String(), "frame stats")
	assert.Contains(t, buf.String(), "fps=10")

	// the frame counter restarts after a report
	clock.t = clock.t.Add(500 * time.Millisecond)
	assert.False(t, p.Tick())
	clock.t = clock.t.Add(500 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 2, p.Last().FPS, 1e-9)
}

func TestCustomInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var buf bytes.Buffer
	p := NewProfiler(WithClock(clock.now), WithInterval(250*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	clock.t = clock.t.Add(250 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 4, p.Last().FPS, 1e-9)
	assert.Positive(t, p.Last().SysMB)
}
