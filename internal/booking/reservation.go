package booking

import (
	"sync"
	"time"
)

// countdown is the cancellable once-per-second tick loop that mirrors the
// server-side hold client-side. It is started on entry into an active
// reservation and stopped on any exit transition; a stopped countdown fires
// no further expiry transitions.
type countdown struct {
	done chan struct{}
	once sync.Once
}

func (c *countdown) stop() {
	c.once.Do(func() { close(c.done) })
}

// manageCountdown starts or cancels the tick loop to match the presence of
// an active reservation in the post-transition state.
func (e *Engine) manageCountdown(next State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	if next.Reservation != nil && e.countdown == nil {
		c := &countdown{done: make(chan struct{})}
		e.countdown = c
		go e.runCountdown(c)
		return
	}

	if next.Reservation == nil && e.countdown != nil {
		e.countdown.stop()
		e.countdown = nil
	}
}

func (e *Engine) runCountdown(c *countdown) {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			e.Dispatch(Tick{Now: e.clock()})
		}
	}
}
