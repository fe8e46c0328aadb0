package clock

import (
	"sort"
	"time"
)

// Fake is a manually advanced Clock for tests. It is not safe for
// concurrent use.
type Fake struct {
	now     time.Time
	handles []*fakeHandle
}

// NewFake returns a Fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	return f.now
}

// Every registers fn to run each time d elapses on Advance.
func (f *Fake) Every(d time.Duration, fn func()) Handle {
	h := &fakeHandle{every: d, next: f.now.Add(d), fn: fn}
	f.handles = append(f.handles, h)
	return h
}

// Active reports how many handles have not been stopped.
func (f *Fake) Active() int {
	n := 0
	for _, h := range f.handles {
		if !h.stopped {
			n++
		}
	}
	return n
}

// Advance moves time forward by d, firing due callbacks in time order.
// Callbacks observe Now equal to their scheduled time.
func (f *Fake) Advance(d time.Duration) {
	target := f.now.Add(d)
	for {
		due := f.nextDue(target)
		if due == nil {
			break
		}
		f.now = due.next
		due.next = due.next.Add(due.every)
		due.fn()
	}
	f.now = target
}

// Set moves time to t without firing callbacks.
func (f *Fake) Set(t time.Time) {
	f.now = t
}

func (f *Fake) nextDue(limit time.Time) *fakeHandle {
	var live []*fakeHandle
	for _, h := range f.handles {
		if !h.stopped && !h.next.After(limit) {
			live = append(live, h)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].next.Before(live[j].next)
	})
	return live[0]
}

type fakeHandle struct {
	every   time.Duration
	next    time.Time
	fn      func()
	stopped bool
}

func (h *fakeHandle) Stop() {
	h.stopped = true
}
