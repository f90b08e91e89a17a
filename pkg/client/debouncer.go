package client

import (
	"sync"
	"time"
)

const DefaultDebounceDelay = 500 * time.Millisecond

// Debouncer runs the most recently triggered function once Delay has passed
// without another trigger.
type Debouncer struct {
	Delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{Delay: delay}
}

func (debouncer *Debouncer) Trigger(fn func()) {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	if debouncer.timer != nil {
		debouncer.timer.Stop()
	}
	debouncer.timer = time.AfterFunc(debouncer.Delay, fn)
}

// Stop cancels a pending call.
func (debouncer *Debouncer) Stop() {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	if debouncer.timer != nil {
		debouncer.timer.Stop()
		debouncer.timer = nil
	}
}
