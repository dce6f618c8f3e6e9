// Package bus implements the shared-bus transaction facade described in
// spec §4.2: a serialized write/read surface guarded by a bounded-timeout
// mutex and a one-slot task-notification rendezvous, so that only one
// transfer is ever outstanding and the calling goroutine is the one woken
// on completion. Grounded on the reference-counted, mutex-guarded
// resource lifecycle pattern in _examples/registry.go, adapted from a
// per-process servo-bus singleton to a per-transaction serialization
// facade for this domain's I2C-like sensor bus.
package bus

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/gmrozek-mchp/mlbb/internal/scheduler"
)

// ErrTimeout is returned when a transaction does not complete within the
// bus timeout. It is a transient failure per spec §7: callers drop the
// sample and retry next period, never surfacing it to the operator.
var ErrTimeout = errors.New("bus: transaction timed out")

// Timeout is the bound on a single transaction, matching spec §5.
const Timeout = 100 * time.Millisecond

// Transport is the byte-level collaborator a concrete bus driver talks
// to — the low-level I2C/SPI peripheral, out of scope per spec §1. Tests
// supply a fake.
type Transport interface {
	WriteBytes(addr int, data []byte) error
	ReadBytes(addr int, into []byte) error
}

// Bus serializes Transport access behind a timeout mutex plus a one-slot
// completion notification, so at most one transfer is outstanding and the
// notified goroutine is always the one that issued it.
type Bus struct {
	transport Transport
	mu        *scheduler.TimeoutMutex
	notify    *scheduler.Notify
}

// New returns a Bus wrapping transport.
func New(transport Transport) *Bus {
	return &Bus{
		transport: transport,
		mu:        scheduler.NewTimeoutMutex(),
		notify:    scheduler.NewNotify(),
	}
}

// Write starts a write transfer and blocks until it completes or the bus
// timeout elapses. The mutex is always released on both the success and
// timeout paths.
func (b *Bus) Write(ctx context.Context, addr int, data []byte) error {
	if !b.mu.TryLock(Timeout) {
		return ErrTimeout
	}
	defer b.mu.Unlock()

	err := b.transport.WriteBytes(addr, data)
	b.notify.Signal()

	tctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()
	if !b.notify.Wait(tctx) {
		return ErrTimeout
	}
	if err != nil {
		return errors.Wrap(err, "bus: write failed")
	}
	return nil
}

// Read starts a read transfer and blocks until it completes or the bus
// timeout elapses, with the same release guarantee as Write.
func (b *Bus) Read(ctx context.Context, addr int, into []byte) error {
	if !b.mu.TryLock(Timeout) {
		return ErrTimeout
	}
	defer b.mu.Unlock()

	err := b.transport.ReadBytes(addr, into)
	b.notify.Signal()

	tctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()
	if !b.notify.Wait(tctx) {
		return ErrTimeout
	}
	if err != nil {
		return errors.Wrap(err, "bus: read failed")
	}
	return nil
}
