package gremlin

import (
	"context"
	"sync/atomic"
	"time"
)

const defaultCursorInterval = 50 * time.Millisecond

type cursorSample struct {
	pos Vec2
	ok  bool
}

// CursorSampler polls a cursor source that may block (an OS query, a remote
// display) on its own goroutine, so the tick loop reads the last sample
// without waiting. Samples are stale by at most one interval.
type CursorSampler struct {
	source   func() (Vec2, bool)
	interval time.Duration
	latest   atomic.Pointer[cursorSample]
}

// NewCursorSampler creates a sampler for source. A non-positive interval
// uses 50ms.
func NewCursorSampler(source func() (Vec2, bool), interval time.Duration) *CursorSampler {
	if interval <= 0 {
		interval = defaultCursorInterval
	}
	return &CursorSampler{source: source, interval: interval}
}

// Latest returns the most recent sample. It never blocks; before the first
// sample it reports false.
func (c *CursorSampler) Latest() (Vec2, bool) {
	s := c.latest.Load()
	if s == nil {
		return Vec2{}, false
	}
	return s.pos, s.ok
}

// Sample queries the source once and stores the result.
func (c *CursorSampler) Sample() {
	pos, ok := c.source()
	c.latest.Store(&cursorSample{pos: pos, ok: ok})
}

// Run samples every interval until ctx is cancelled.
func (c *CursorSampler) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	c.Sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sample()
		}
	}
}

// Start runs the sampler on a new goroutine.
func (c *CursorSampler) Start(ctx context.Context) {
	go c.Run(ctx)
}
