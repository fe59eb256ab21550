// Package clock implements the VM's optional pacing throttle: a simple
// time.Sleep-based limiter that caps how many instructions/sec the step
// loop drives, kept deliberately separate from the real-time timer's wall
// clock sampling.
package clock

import "time"

// Pacer throttles a step loop to a target instruction rate. A zero-value
// Pacer (zero interval) never sleeps; callers construct one with NewPacer to get
// a concrete Hz and then call Wait once per step.
type Pacer struct {
	interval time.Duration
	last     time.Time
	sleep    func(time.Duration)
	now      func() time.Time
}

// NewPacer returns a Pacer targeting hz instructions/sec. hz == 0 disables
// pacing entirely: Wait returns immediately.
func NewPacer(hz int) *Pacer {
	p := &Pacer{sleep: time.Sleep, now: time.Now}
	if hz > 0 {
		p.interval = time.Second / time.Duration(hz)
	}
	p.last = p.now()
	return p
}

// Wait blocks, if pacing is enabled, until at least one interval has
// elapsed since the previous call, then records the new reference time.
// It never blocks on the very first call after construction by more than
// one interval, and never accumulates backlog across slow steps: a step
// that already took longer than the interval proceeds without waiting.
func (p *Pacer) Wait() {
	if p.interval == 0 {
		return
	}
	elapsed := p.now().Sub(p.last)
	if elapsed < p.interval {
		p.sleep(p.interval - elapsed)
	}
	p.last = p.now()
}
