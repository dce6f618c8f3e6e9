package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPeriodicRunsAtApproximateCadence(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	var count atomic.Int32
	Periodic(ctx, 10*time.Millisecond, func() {
		count.Add(1)
	})

	n := count.Load()
	if n < 3 || n > 8 {
		t.Errorf("Periodic fired %d times in 55ms at 10ms period, expected roughly 4-5", n)
	}
}

func TestNotifySignalThenWait(t *testing.T) {
	n := NewNotify()
	n.Signal()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if !n.Wait(ctx) {
		t.Fatal("Wait returned false after Signal was already posted")
	}
}

func TestNotifyWaitTimesOut(t *testing.T) {
	n := NewNotify()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if n.Wait(ctx) {
		t.Fatal("Wait returned true with no Signal posted")
	}
}

func TestNotifyDoubleSignalDropped(t *testing.T) {
	n := NewNotify()
	n.Signal()
	n.Signal() // should be dropped, not block

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if !n.Wait(ctx) {
		t.Fatal("expected first signal to be observed")
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel2()
	if n.Wait(ctx2) {
		t.Fatal("expected second signal to have been dropped, not queued")
	}
}

func TestTimeoutMutexAcquireRelease(t *testing.T) {
	m := NewTimeoutMutex()

	if !m.TryLock(time.Second) {
		t.Fatal("TryLock failed on an unlocked mutex")
	}
	m.Unlock()

	if !m.TryLock(time.Second) {
		t.Fatal("TryLock failed after Unlock")
	}
	m.Unlock()
}

func TestTimeoutMutexTimesOutWhenHeld(t *testing.T) {
	m := NewTimeoutMutex()
	if !m.TryLock(time.Second) {
		t.Fatal("initial TryLock failed")
	}
	defer m.Unlock()

	if m.TryLock(10 * time.Millisecond) {
		t.Fatal("TryLock succeeded while mutex was already held")
	}
}

func TestCriticalSectionSerializes(t *testing.T) {
	var mu sync.Mutex
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			CriticalSection(&mu, func() {
				counter++
			})
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}
