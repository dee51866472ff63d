package app

import (
	"sync"
	"time"
)

// DefaultQuoteInterval is how often the quote panel advances on its own.
const DefaultQuoteInterval = 20 * time.Second

// Ticker is the subset of time.Ticker a Rotator needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Rotator calls onTick on a fixed interval until stopped.
type Rotator struct {
	interval  time.Duration
	newTicker TickerFactory
	onTick    func()

	mu   sync.Mutex
	stop chan struct{}
}

// NewRotator creates a stopped rotator. A zero interval means DefaultQuoteInterval
// and a nil factory means NewTimeTicker.
func NewRotator(interval time.Duration, newTicker TickerFactory, onTick func()) *Rotator {
	if interval <= 0 {
		interval = DefaultQuoteInterval
	}

	if newTicker == nil {
		newTicker = NewTimeTicker
	}

	return &Rotator{
		interval:  interval,
		newTicker: newTicker,
		onTick:    onTick,
	}
}

// Start begins ticking. It does nothing when already running.
func (r *Rotator) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stop != nil {
		return
	}

	r.startLocked()
}

// Stop ends ticking. It does not wait for an in-flight onTick to return,
// so it is safe to call while holding a lock that onTick takes.
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
}

// Restart stops and starts again with a fresh ticker.
func (r *Rotator) Restart() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.startLocked()
}

// Running reports whether the rotator is ticking.
func (r *Rotator) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stop != nil
}

func (r *Rotator) startLocked() {
	stop := make(chan struct{})
	ticker := r.newTicker(r.interval)
	r.stop = stop

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				select {
				case <-stop:
					return
				default:
				}

				r.onTick()
			}
		}
	}()
}

func (r *Rotator) stopLocked() {
	if r.stop == nil {
		return
	}

	close(r.stop)
	r.stop = nil
}
