// Package joystick models the two-axis/two-button manual input device,
// scanned over a shared bus at a fixed cadence. Grounded on
// original_source/src/nunchuk/nunchuk.c: the two-command wake sequence,
// the 200Hz scan rate, the 100ms power-up delay, and the all-ones resync
// condition are all carried over; only the bus transport (I2C in the
// original, the generic internal/bus facade here) differs.
package joystick

import (
	"context"
	"sync"
	"time"

	"github.com/gmrozek-mchp/mlbb/internal/bus"
	"github.com/gmrozek-mchp/mlbb/internal/logging"
)

// Address is the bus address the joystick responds to, matching the
// original firmware's NUNCHUK_I2C_ADDRESS.
const Address = 0x52

// ScanPeriod is the fixed inter-sample period, 1/200s.
const ScanPeriod = time.Second / 200

// PowerUpDelay is the settle time observed before the first config write.
const PowerUpDelay = 100 * time.Millisecond

var (
	cmdInit1 = []byte{0xF0, 0x55}
	cmdInit2 = []byte{0xFB, 0x00}
	cmdRead  = []byte{0x00}
)

// Sample is one published joystick reading. JoyX/JoyY have the zero-point
// offsets already subtracted.
type Sample struct {
	JoyX, JoyY       int16
	ButtonC, ButtonZ bool
}

// Joystick scans the bus on a fixed cadence and publishes Sample values
// under a critical section (spec §4.1, §5: "brief interrupt disable").
type Joystick struct {
	bus    *bus.Bus
	logger logging.Logger

	mu       sync.Mutex
	raw      Sample
	zeroX    int16
	zeroY    int16
}

// New returns a Joystick bound to the given shared bus.
func New(b *bus.Bus, logger logging.Logger) *Joystick {
	return &Joystick{bus: b, logger: logger}
}

// Sample returns the most recent published reading with zero offsets
// applied.
func (j *Joystick) Sample() Sample {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Sample{
		JoyX:    j.raw.JoyX - j.zeroX,
		JoyY:    j.raw.JoyY - j.zeroY,
		ButtonC: j.raw.ButtonC,
		ButtonZ: j.raw.ButtonZ,
	}
}

// ZeroSet captures the current raw reading as the new zero point, for use
// when the operator rests the stick and presses the zero button.
func (j *Joystick) ZeroSet() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.zeroX = j.raw.JoyX
	j.zeroY = j.raw.JoyY
}

// Run drives the scan loop until ctx is cancelled. Intended to be started
// as its own goroutine at 200Hz priority-2 cadence (spec §5).
func (j *Joystick) Run(ctx context.Context) {
	time.Sleep(PowerUpDelay)
	j.sendConfig(ctx)

	ticker := time.NewTicker(ScanPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.scanOnce(ctx)
		}
	}
}

func (j *Joystick) scanOnce(ctx context.Context) {
	if err := j.bus.Write(ctx, Address, cmdRead); err != nil {
		j.logger.Debugf("joystick write failed: %v", err)
		return
	}

	time.Sleep(time.Millisecond)

	buf := make([]byte, 6)
	if err := j.bus.Read(ctx, Address, buf); err != nil {
		j.logger.Debugf("joystick read failed: %v", err)
		return
	}

	if buf[0] == 0xFF && buf[1] == 0xFF {
		j.logger.Warn("joystick cable error detected, reconfiguring")
		j.sendConfig(ctx)
		return
	}

	j.mu.Lock()
	j.raw = Sample{
		JoyX:    int16(buf[0]),
		JoyY:    int16(buf[1]),
		ButtonC: buf[5]&0x02 == 0,
		ButtonZ: buf[5]&0x01 == 0,
	}
	j.mu.Unlock()
}

func (j *Joystick) sendConfig(ctx context.Context) {
	if err := j.bus.Write(ctx, Address, cmdInit1); err != nil {
		j.logger.Debugf("joystick config write 1 failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	if err := j.bus.Write(ctx, Address, cmdInit2); err != nil {
		j.logger.Debugf("joystick config write 2 failed: %v", err)
	}
	time.Sleep(time.Millisecond)
}
