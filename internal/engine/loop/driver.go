package loop

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/logger"
)

// Ticker is anything the Driver can tick; *GameLoop satisfies it.
type Ticker interface {
	Step() error
}

// Driver calls a Ticker on a fixed interval from the goroutine that calls
// Run. Ticks never overlap. The first tick error stops the driver.
type Driver struct {
	ticker   Ticker
	interval time.Duration

	stop     chan struct{}
	stopOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewDriver returns a driver ticking t every interval. A non-positive
// interval ticks as fast as possible.
func NewDriver(t Ticker, interval time.Duration) *Driver {
	return &Driver{
		ticker:   t,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Run ticks until the context is cancelled, Stop is called or a tick fails.
// It returns the tick error, or nil for a requested stop.
func (d *Driver) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if d.interval > 0 {
		t := time.NewTicker(d.interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-d.stop:
				return nil
			case <-tick:
			}
		} else {
			select {
			case <-ctx.Done():
				return nil
			case <-d.stop:
				return nil
			default:
			}
		}

		if err := d.ticker.Step(); err != nil {
			d.mu.Lock()
			d.err = err
			d.mu.Unlock()
			logger.Error("driver stopped", zap.Error(err))
			d.Stop()
			return err
		}
	}
}

// Stop ends Run after the current tick. Safe to call from any goroutine and
// more than once.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// Done is closed once Stop has been called or a tick has failed.
func (d *Driver) Done() <-chan struct{} {
	return d.stop
}

// Err returns the tick error that stopped the driver, if any.
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
