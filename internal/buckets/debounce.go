package buckets

import (
	"sync"
	"time"
)

// Debouncer commits a search term only after input has settled for the
// configured delay. Superseded keystrokes are simply never committed.
type Debouncer struct {
	delay  time.Duration
	commit func(string)

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration, commit func(string)) *Debouncer {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Debouncer{delay: delay, commit: commit}
}

// Type registers a keystroke, restarting the settle timer.
func (d *Debouncer) Type(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.commit(term)
	})
}

// Stop cancels any pending commit.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
