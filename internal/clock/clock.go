// Package clock provides a cancellable periodic callback source.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time and periodic callbacks.
type Clock interface {
	Now() time.Time
	// Every calls fn once per d until the returned Handle is stopped.
	Every(d time.Duration, fn func()) Handle
}

// Handle cancels a periodic callback. Stop is idempotent.
type Handle interface {
	Stop()
}

// Real implements Clock on top of time.Ticker.
type Real struct {
	// Dispatch, when set, receives each due callback instead of it being
	// called on the ticker goroutine. Hosts with an event loop use it to
	// run callbacks on their own goroutine.
	Dispatch func(fn func())
}

// NewReal returns a Real clock that forwards callbacks to dispatch.
func NewReal(dispatch func(fn func())) *Real {
	return &Real{Dispatch: dispatch}
}

// Now returns the wall clock time.
func (c *Real) Now() time.Time {
	return time.Now()
}

// Every starts a ticker goroutine that lives until the handle is stopped.
func (c *Real) Every(d time.Duration, fn func()) Handle {
	h := &realHandle{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-h.done:
				return
			case <-h.ticker.C:
				select {
				case <-h.done:
					return
				default:
				}
				if c.Dispatch != nil {
					c.Dispatch(fn)
				} else {
					fn()
				}
			}
		}
	}()
	return h
}

type realHandle struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (h *realHandle) Stop() {
	h.once.Do(func() {
		h.ticker.Stop()
		close(h.done)
	})
}
