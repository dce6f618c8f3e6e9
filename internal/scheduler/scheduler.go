// Package scheduler provides the small set of concurrency primitives the
// rest of the balancer is built on: a drift-free periodic ticker (the Go
// analog of vTaskDelayUntil), a one-slot task-notification rendezvous
// (the analog of a FreeRTOS direct-to-task notification), and a
// bounded-timeout mutex acquisition helper. No real-time kernel exists in
// the Go ecosystem examples this module was built from, so these are
// implemented directly atop goroutines, channels, and time.Ticker rather
// than grounded on a specific example repo.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Periodic calls fn on a drift-free cadence until ctx is cancelled. Unlike
// time.Ticker alone, the deadline for iteration n+1 is computed from the
// fixed period and the start time, not from when iteration n finished, so
// a slow iteration does not push every subsequent wakeup later.
func Periodic(ctx context.Context, period time.Duration, fn func()) {
	next := time.Now().Add(period)
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			fn()
			next = next.Add(period)
			d := time.Until(next)
			if d < 0 {
				// Missed one or more periods; resync rather than firing
				// a burst of back-to-back iterations.
				next = time.Now().Add(period)
				d = period
			}
			timer.Reset(d)
		}
	}
}

// Notify is a one-slot rendezvous: a producer (an ISR analog, here a
// goroutine servicing the bus) posts completion, and exactly one waiter
// wakes. Matches the bus driver's "task to notify" pattern (spec §4.2):
// the slot is written before a transfer starts and consumed by the
// completion signal.
type Notify struct {
	ch chan struct{}
}

// NewNotify returns a ready-to-use Notify with an empty slot.
func NewNotify() *Notify {
	return &Notify{ch: make(chan struct{}, 1)}
}

// Signal posts completion. Non-blocking: if the slot is already full
// (the previous signal was never consumed), the new signal is dropped —
// a double-signal with no intervening wait can only mean a bug, not a
// legitimate queue to drain.
func (n *Notify) Signal() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until Signal is called or ctx is done, returning false on
// timeout/cancellation.
func (n *Notify) Wait(ctx context.Context) bool {
	select {
	case <-n.ch:
		return true
	case <-ctx.Done():
		return false
	}
}

// TimeoutMutex is a mutex whose Lock can fail after a bounded wait,
// matching the bus driver's 100ms-timeout acquisition (spec §4.2, §5).
// On timeout the mutex is guaranteed not to be held by the caller.
type TimeoutMutex struct {
	ch chan struct{}
}

// NewTimeoutMutex returns an unlocked TimeoutMutex.
func NewTimeoutMutex() *TimeoutMutex {
	m := &TimeoutMutex{ch: make(chan struct{}, 1)}
	m.ch <- struct{}{}
	return m
}

// TryLock attempts to acquire the mutex within timeout, returning false
// if it could not be acquired in time. The mutex is never left partially
// acquired: either TryLock returns true and the caller owns it, or it
// returns false and owns nothing.
func (m *TimeoutMutex) TryLock(timeout time.Duration) bool {
	select {
	case <-m.ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Unlock releases the mutex. Calling Unlock without a successful TryLock
// is a programming error and panics, since the channel's capacity-1
// buffer is already full; callers must pair every successful TryLock
// with exactly one Unlock.
func (m *TimeoutMutex) Unlock() {
	select {
	case m.ch <- struct{}{}:
	default:
		panic("scheduler: TimeoutMutex.Unlock called without a held lock")
	}
}

// CriticalSection runs fn while holding mu, matching the firmware's
// "critical section for short shared writes" pattern (spec §4.1, §9) —
// brief, non-blocking, never calls into code that itself acquires locks.
func CriticalSection(mu *sync.Mutex, fn func()) {
	mu.Lock()
	defer mu.Unlock()
	fn()
}
