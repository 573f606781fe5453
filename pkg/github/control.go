package github

import (
	"context"
	"sync"
	"time"
)

// Interval at which a paused pipeline re-checks the control flag.
const pausePollInterval = 200 * time.Millisecond

// Control is the cooperative pause/resume primitive for the enrichment
// pipeline. There is no hard cancellation: toggling the paused flag is the
// only control offered, and the pipeline blocks between batches while it is
// set. Cancel the context to abandon the operation entirely.
type Control struct {
	mu     sync.Mutex
	paused bool
}

// NewControl creates an unpaused control.
func NewControl() *Control {
	return &Control{}
}

// SetPaused toggles the paused flag. Safe to call from any goroutine.
func (c *Control) SetPaused(paused bool) {
	c.mu.Lock()
	c.paused = paused
	c.mu.Unlock()
}

// Paused reports the current flag value.
func (c *Control) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// WaitReady blocks until the control is unpaused or ctx is done.
// Pausing consumes no quota; the pipeline simply idles here.
func (c *Control) WaitReady(ctx context.Context) error {
	for c.Paused() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pausePollInterval):
		}
	}
	return nil
}
