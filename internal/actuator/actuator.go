// Package actuator implements the facade in front of the three rotary
// actuators: enable/disable sequencing and clamped angle commands. The
// low-level drive (PWM duty or step/direction pulses) is out of scope
// per spec §1 and is represented here only by the Drive interface; the
// packet framing toward it is grounded on the hand-rolled STS3215
// packet builder in _examples/controller.go (frame header, checksum,
// and per-axis write), generalized from a 6-servo robot arm bus to a
// 3-channel actuator bus.
package actuator

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/gmrozek-mchp/mlbb/internal/fixedpoint"
)

// Axis identifies one of the three platform actuators.
type Axis int

const (
	AxisA Axis = iota
	AxisB
	AxisC
)

func (a Axis) String() string {
	switch a {
	case AxisA:
		return "a"
	case AxisB:
		return "b"
	case AxisC:
		return "c"
	default:
		return "?"
	}
}

// Limits bounds one axis's commandable angle range, representing the
// mechanical end-stops as configurable q15 bounds (spec §4.8).
type Limits struct {
	Min, Max fixedpoint.Q15
}

// DefaultLimits spans the full q15 range; callers with real mechanical
// end-stops should narrow this per axis.
var DefaultLimits = Limits{Min: fixedpoint.Q15Min, Max: fixedpoint.Q15Max}

// Drive is the low-level collaborator that actually moves one axis —
// PWM duty generation or step/direction pulses, out of scope per spec §1.
type Drive interface {
	SetAngle(ctx context.Context, axis Axis, angle fixedpoint.Q15) error
}

// staggerDelay and settleDelay match spec §4.8's enable/disable sequence
// timing, carried over from original_source/src/platform/platform.c.
const (
	staggerDelay = 100 * time.Millisecond
	settleDelay  = 500 * time.Millisecond
)

// Facade sequences enable/disable across the three axes and clamps every
// commanded angle to its configured limits before forwarding to Drive.
type Facade struct {
	drive  Drive
	limits [3]Limits
}

// New returns a Facade with the given per-axis limits, applied in axis
// order A, B, C.
func New(drive Drive, limitsA, limitsB, limitsC Limits) *Facade {
	return &Facade{
		drive:  drive,
		limits: [3]Limits{limitsA, limitsB, limitsC},
	}
}

// NewDefault returns a Facade with DefaultLimits on all three axes.
func NewDefault(drive Drive) *Facade {
	return New(drive, DefaultLimits, DefaultLimits, DefaultLimits)
}

// Enable sequences all three axes to zero with 100ms staggers between
// axes and a 500ms settle delay at the end, because simultaneous large
// moves would draw more current than the supply can provide (spec §4.8).
func (f *Facade) Enable(ctx context.Context) error {
	return f.sequenceToZero(ctx)
}

// Disable sequences all three axes to zero with the same staggered
// timing as Enable, then the caller is responsible for cutting drive
// power (out of scope per spec §1).
func (f *Facade) Disable(ctx context.Context) error {
	return f.sequenceToZero(ctx)
}

func (f *Facade) sequenceToZero(ctx context.Context) error {
	axes := [3]Axis{AxisA, AxisB, AxisC}
	for i, axis := range axes {
		if err := f.SetAngle(ctx, axis, 0); err != nil {
			return errors.Wrapf(err, "actuator: failed to zero axis %s", axis)
		}
		if i < len(axes)-1 {
			sleep(ctx, staggerDelay)
		}
	}
	sleep(ctx, settleDelay)
	return nil
}

// SetAngle clamps angle to the axis's configured limits and forwards the
// command to Drive. The facade trusts its input after clamping — there is
// no actuator soft-fault representation (spec §7).
func (f *Facade) SetAngle(ctx context.Context, axis Axis, angle fixedpoint.Q15) error {
	limits := f.limits[axis]
	clamped := angle
	if clamped < limits.Min {
		clamped = limits.Min
	}
	if clamped > limits.Max {
		clamped = limits.Max
	}
	return f.drive.SetAngle(ctx, axis, clamped)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
