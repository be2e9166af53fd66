package watch

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of Trigger calls into one signal on C, sent once
// delay has passed without another trigger.
type Debouncer struct {
	C chan struct{}

	delay time.Duration
	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with a single-slot signal channel.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{C: make(chan struct{}, 1), delay: delay}
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	select {
	case d.C <- struct{}{}:
	default:
	}
}

// Stop cancels a pending signal.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
