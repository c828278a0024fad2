// internal/sched/tickclock.go

package sched

import "rtsim/internal/numeric"

// TickClock is the virtual clock of one simulation run. It advances in fixed
// steps and counts them.
type TickClock struct {
	now     int64
	tick    int64
	horizon int64
	count   int64
}

// NewTickClock creates a clock at time 0 that stops at horizon.
func NewTickClock(tick, horizon int64) *TickClock {
	return &TickClock{tick: tick, horizon: horizon}
}

// Now returns the current virtual time.
func (c *TickClock) Now() int64 { return c.now }

// Tick returns the step size.
func (c *TickClock) Tick() int64 { return c.tick }

// Count returns how many ticks have elapsed.
func (c *TickClock) Count() int64 { return c.count }

// Done reports whether the horizon has been reached.
func (c *TickClock) Done() bool { return c.now >= c.horizon }

// Advance moves the clock forward by one tick.
func (c *TickClock) Advance() error {
	next, err := numeric.CheckedAdd(c.now, c.tick)
	if err != nil {
		return err
	}
	c.now = next
	c.count++
	return nil
}
