package client

import (
	"sync"
	"time"
)

// DefaultSearchDelay is how long a Debouncer waits after the last keystroke
// before firing a search.
const DefaultSearchDelay = 500 * time.Millisecond

// Debouncer collapses rapid successive calls into one, firing the most
// recent function after the delay elapses with no further calls.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &Debouncer{delay: delay}
}

// Do schedules fn, cancelling any previously scheduled call. fn runs on a
// timer goroutine.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
