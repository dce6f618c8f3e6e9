// Package balancer implements the central dispatcher described in spec
// §4.6: mode arbitration between Off/Human/Pid/Nn/Fuzzy, button-driven
// mode cycling with debounce, and the rotating-target generator driving
// autonomous modes. Grounded on original_source/src/balance/balance.c's
// top-level state machine.
package balancer

import (
	"context"
	"time"

	"github.com/gmrozek-mchp/mlbb/internal/actuator"
	"github.com/gmrozek-mchp/mlbb/internal/fixedpoint"
	"github.com/gmrozek-mchp/mlbb/internal/fuzzy"
	"github.com/gmrozek-mchp/mlbb/internal/human"
	"github.com/gmrozek-mchp/mlbb/internal/joystick"
	"github.com/gmrozek-mchp/mlbb/internal/kinematics"
	"github.com/gmrozek-mchp/mlbb/internal/logging"
	"github.com/gmrozek-mchp/mlbb/internal/nn"
	"github.com/gmrozek-mchp/mlbb/internal/pid"
	"github.com/gmrozek-mchp/mlbb/internal/scheduler"
	"github.com/gmrozek-mchp/mlbb/internal/touchpanel"
)

// Mode identifies which controller is currently driving the plate.
type Mode int

const (
	// Invalid is the sentinel initial mode (spec §4.6): it never matches
	// a real mode, forcing a full transition on the first Tick.
	Invalid Mode = iota - 1
	Off
	Human
	Pid
	Nn
	Fuzzy
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case Human:
		return "human"
	case Pid:
		return "pid"
	case Nn:
		return "nn"
	case Fuzzy:
		return "fuzzy"
	default:
		return "invalid"
	}
}

// LedID identifies an indicator LED the caller should drive.
type LedID int

const (
	LedOff LedID = iota
	LedHuman
	LedPid
	LedNn
	LedFuzzy
)

// DebounceCount is the number of consecutive button-C-held samples
// required before button C toggles the persistent mode, filtering switch
// bounce. Button Z is not debounced: it selects Human on the first sample
// it is held.
const DebounceCount = 5

// TargetInterval is the autonomous-mode target rotation period: the
// target moves to the next table entry (see nextTargetIndex) once this
// much time has been exceeded.
const TargetInterval = 5 * time.Second

// tickRate is the cadence the dispatcher runs at, matching the control
// loop's 100Hz cadence (spec §5).
const tickRate = 10 * time.Millisecond

// targetTable is the fixed set of five targets the autonomous modes
// cycle between.
var targetTable = [5]kinematics.XY{
	{X: 0, Y: 0},
	{X: 8000, Y: 8000},
	{X: 8000, Y: -8000},
	{X: -8000, Y: 8000},
	{X: -8000, Y: -8000},
}

// Balancer dispatches sensor samples through whichever mode is active,
// arbitrates mode transitions from joystick buttons, and drives the
// rotating target table for autonomous modes.
type Balancer struct {
	logger     logging.Logger
	touch      *touchpanel.Sensor
	joy        *joystick.Joystick
	kinematics *kinematics.Kinematics
	drive      *actuator.Facade

	pidPair   *pid.Pair
	fuzzyPair *fuzzy.Pair
	nnState   *nn.State
	humanCtl  *human.State

	mode         Mode
	heldMode     Mode
	debounceRun  int

	targetIndex int
	targetTimer time.Duration

	lastCommand kinematics.XY
}

// Params bundles the Balancer's collaborators.
type Params struct {
	Logger     logging.Logger
	Touch      *touchpanel.Sensor
	Joystick   *joystick.Joystick
	Kinematics *kinematics.Kinematics
	Drive      *actuator.Facade
	NnModel    *nn.Model
}

// New returns a Balancer in the Invalid mode, forcing a full transition
// to Off on the first Tick.
func New(p Params) *Balancer {
	return &Balancer{
		logger:     p.Logger,
		touch:      p.Touch,
		joy:        p.Joystick,
		kinematics: p.Kinematics,
		drive:      p.Drive,
		pidPair:    pid.NewPair(),
		fuzzyPair:  fuzzy.NewPair(),
		nnState:    nn.NewState(p.NnModel),
		humanCtl:   human.NewState(),
		mode:       Invalid,
		heldMode:   Off,
	}
}

// Mode returns the currently active mode.
func (b *Balancer) Mode() Mode { return b.mode }

// SetMode directly selects m as the held mode, taking effect on the next
// Tick. This is the only way to reach Nn or Fuzzy (spec §4.6: button C
// never cycles onto them); it's how the console's `mode <name>` command
// selects them, as well as Off/Pid. A held Human override (button Z down)
// still takes priority until released.
func (b *Balancer) SetMode(m Mode) {
	b.heldMode = m
}

// ParseMode maps a console argument onto a Mode, for the `mode <name>`
// command. ok is false for an unrecognized name.
func ParseMode(name string) (m Mode, ok bool) {
	switch name {
	case "off":
		return Off, true
	case "human":
		return Human, true
	case "pid":
		return Pid, true
	case "nn":
		return Nn, true
	case "fuzzy":
		return Fuzzy, true
	default:
		return Invalid, false
	}
}

// Run drives the dispatcher at the fixed control cadence until ctx is
// cancelled.
func (b *Balancer) Run(ctx context.Context) {
	scheduler.Periodic(ctx, tickRate, func() {
		b.Tick(ctx)
	})
}

// Tick runs one dispatch cycle: arbitrate the requested mode, transition
// if it changed, advance the autonomous target if applicable, run the
// active controller, and forward its output to the actuator facade via
// kinematics.
func (b *Balancer) Tick(ctx context.Context) {
	requested := b.arbitrate()
	if requested != b.mode {
		b.transition(requested)
	}

	target := b.currentTarget()
	ball := b.touch.Sample()

	var abc kinematics.ABC

	switch b.mode {
	case Off:
		abc = kinematics.ABC{}

	case Human:
		sample := b.joy.Sample()
		xy := b.humanCtl.Run(sample)
		b.lastCommand = xy
		abc = b.kinematics.SetXY(xy)

	case Pid:
		if !ball.Detected {
			b.pidPair.Reset()
			abc = kinematics.ABC{}
			break
		}
		xy := b.pidPair.Run(target.X, target.Y, fixedpoint.Q15(ball.X), fixedpoint.Q15(ball.Y))
		b.lastCommand = xy
		abc = b.kinematics.SetXY(xy)

	case Nn:
		if !ball.Detected {
			b.nnState.Reset()
			abc = kinematics.ABC{}
			break
		}
		b.nnState.Run(target.X, target.Y, fixedpoint.Q15(ball.X), fixedpoint.Q15(ball.Y), true)
		abc = b.nnState.ApplyTo(b.kinematics)

	case Fuzzy:
		if !ball.Detected {
			b.fuzzyPair.Reset()
			abc = kinematics.ABC{}
			break
		}
		xy := b.fuzzyPair.Run(target.X, target.Y, fixedpoint.Q15(ball.X), fixedpoint.Q15(ball.Y))
		b.lastCommand = xy
		abc = b.kinematics.SetXY(xy)
	}

	if err := b.drive.SetAngle(ctx, actuator.AxisA, abc.A); err != nil {
		b.logger.Debugf("balancer: axis a command failed: %v", err)
	}
	if err := b.drive.SetAngle(ctx, actuator.AxisB, abc.B); err != nil {
		b.logger.Debugf("balancer: axis b command failed: %v", err)
	}
	if err := b.drive.SetAngle(ctx, actuator.AxisC, abc.C); err != nil {
		b.logger.Debugf("balancer: axis c command failed: %v", err)
	}
}

// arbitrate reads the joystick buttons and returns the mode that should
// be active this tick: button Z overrides to Human for as long as it is
// held, button C toggles the persistent mode between Off and Pid on a
// debounced press (spec §4.6). Neither button requires ball detection to
// take effect.
func (b *Balancer) arbitrate() Mode {
	sample := b.joy.Sample()

	if sample.ButtonZ {
		return Human
	}

	if sample.ButtonC {
		b.debounceRun++
	} else {
		b.debounceRun = 0
	}

	if b.debounceRun == DebounceCount {
		b.heldMode = nextAutonomousMode(b.heldMode)
	}

	if b.mode == Human {
		// Button Z was just released; fall back to the last
		// non-Human mode rather than re-triggering on stale state.
		return b.heldMode
	}

	return b.heldMode
}

// nextAutonomousMode implements spec §4.6's button-C rule: the
// persistent mode only ever toggles between Off and Pid. Nn and Fuzzy
// are not part of the cycle; they're reachable only through a direct
// console mode selection (see SetMode), so a C-press while held in
// either of them collapses back to Pid rather than continuing past it
// ("with NN -> Pid").
func nextAutonomousMode(m Mode) Mode {
	switch m {
	case Off:
		return Pid
	case Pid:
		return Off
	default:
		return Pid
	}
}

// transition runs Reset on the outgoing and incoming controllers and
// logs the change, matching spec §4.6 ("every transition resets both the
// outgoing and incoming controller state").
func (b *Balancer) transition(to Mode) {
	b.logger.Infof("balancer: mode %s -> %s", b.mode, to)

	switch b.mode {
	case Pid:
		b.pidPair.Reset()
	case Nn:
		b.nnState.Reset()
	case Fuzzy:
		b.fuzzyPair.Reset()
	case Human:
		b.humanCtl.Reset()
		b.joy.ZeroSet()
	}

	b.mode = to
	b.targetIndex = 0
	b.targetTimer = 0

	switch to {
	case Pid:
		b.pidPair.Reset()
	case Nn:
		b.nnState.Reset()
	case Fuzzy:
		b.fuzzyPair.Reset()
	case Human:
		b.humanCtl.Reset()
		b.joy.ZeroSet()
	}
}

// currentTarget advances the autonomous rotating-target generator and
// returns the target for this tick. Human and Off modes ignore it.
func (b *Balancer) currentTarget() kinematics.XY {
	b.targetTimer += tickRate
	if b.targetTimer > TargetInterval {
		b.targetTimer = 0
		b.targetIndex = nextTargetIndex(b.targetIndex, len(targetTable))
	}
	return targetTable[b.targetIndex]
}

// nextTargetIndex advances to the next entry in targetTable, wrapping
// around; with a fixed table this is equivalent to the original firmware's
// reject-sampling but deterministic, which keeps the autonomous demo
// sequence reproducible.
func nextTargetIndex(current, count int) int {
	return (current + 1) % count
}

// IndicatorLED reports which LED should be lit for the current mode.
func (b *Balancer) IndicatorLED() (LedID, bool) {
	switch b.mode {
	case Human:
		return LedHuman, true
	case Pid:
		return LedPid, true
	case Nn:
		return LedNn, true
	case Fuzzy:
		return LedFuzzy, true
	default:
		return LedOff, false
	}
}

// LastCommand returns the most recent PID/Human/Fuzzy tilt command, for
// telemetry (spec §6). NN's output is not recorded here: while Nn is
// active this keeps the last command of the previous mode.
func (b *Balancer) LastCommand() kinematics.XY {
	return b.lastCommand
}
