package view

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Debouncer delays fn until Trigger has not been called for delay. Each
// Trigger cancels the pending call.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *clock.Timer
	seq     uint64
	stopped bool
}

func NewDebouncer(c clock.Clock, delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		clock: c,
		delay: delay,
		fn:    fn,
	}
}

func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.fire(seq)
	})
}

// Flush runs a pending call immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer == nil || d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.timer = nil
	d.seq++
	d.mu.Unlock()

	d.fn()
}

// Stop cancels any pending call; later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	// a Stop that lost the race with the timer, or a newer Trigger
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}
