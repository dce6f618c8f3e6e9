// Package pid implements the two-axis PID controller pair described in
// spec §4.3: filtered derivative via a lagged history ring, and gated
// integral anti-windup that only charges while the controlled variable
// is close to target and nearly still. Grounded on
// original_source/src/balance/balance_pid.c, generalized to the full
// gated-integral algorithm spec.md specifies (the original file's
// revision bypasses much of this; spec.md supersedes it deliberately,
// per spec §9).
package pid

import (
	"github.com/gmrozek-mchp/mlbb/internal/fixedpoint"
	"github.com/gmrozek-mchp/mlbb/internal/kinematics"
)

// HistoryDepth is the ring-buffer length (H in spec §3).
const HistoryDepth = 10

// Thresholds gating the conditional integrator, per spec §4.3.
const (
	nearTargetThreshold  = 512
	slowMovementThreshold = 5
)

// Defaults per spec §4.3.
const (
	DefaultKp               = 600
	DefaultKi               = 20
	DefaultKd               = 8000
	DefaultOutputScale      = 256
	DefaultDeltaFilterSize  = 5
)

// State holds one axis's tunable gains and running history.
type State struct {
	Kp, Ki, Kd      uint16
	OutputScale     uint16
	DeltaFilterSize int

	history      [HistoryDepth]int32
	historyIndex int
	errorSum     int32
	lastError    int32
	lastDelta    int32
	integralEnabled bool
}

// NewState returns a State with spec-default gains.
func NewState() *State {
	return &State{
		Kp:              DefaultKp,
		Ki:              DefaultKi,
		Kd:              DefaultKd,
		OutputScale:     DefaultOutputScale,
		DeltaFilterSize: DefaultDeltaFilterSize,
	}
}

// SetDeltaFilterSize saturates to HistoryDepth and resets the history, per
// spec §4.3 ("changing it resets the history").
func (s *State) SetDeltaFilterSize(n int) {
	if n < 1 {
		n = 1
	}
	if n > HistoryDepth {
		n = HistoryDepth
	}
	s.DeltaFilterSize = n
	s.resetHistory()
}

func (s *State) resetHistory() {
	for i := range s.history {
		s.history[i] = 0
	}
	s.historyIndex = 0
}

// Reset zeroes history, error sum, and disables the integrator
// (spec §4.3: "losing the ball deterministically parks the plate flat").
func (s *State) Reset() {
	s.resetHistory()
	s.errorSum = 0
	s.lastError = 0
	s.lastDelta = 0
	s.integralEnabled = false
}

// IntegralEnabled reports whether the most recent step's gating predicate
// allowed the integrator to charge (exposed for the "pidi" console
// command, spec §6).
func (s *State) IntegralEnabled() bool {
	return s.integralEnabled
}

// ErrorSum returns the running integrator accumulator.
func (s *State) ErrorSum() int32 {
	return s.errorSum
}

// Step runs one control-law iteration per spec §4.3 steps 1-9, returning
// the q31 command before axis clamping (the pair's two outputs are
// clamped and fed to Kinematics together by Pair.Run).
func (s *State) Step(target, actual fixedpoint.Q15) int32 {
	errorQ31 := int32(target) - int32(actual)

	deltaIndex := mod(s.historyIndex-s.DeltaFilterSize, HistoryDepth)
	errorDelta := errorQ31 - s.history[deltaIndex]

	pTerm := errorQ31 * int32(s.Kp)

	nearTarget := abs32(errorQ31) < nearTargetThreshold
	movingSlow := abs32(errorDelta) < slowMovementThreshold
	s.integralEnabled = nearTarget && movingSlow
	if s.integralEnabled {
		s.errorSum += errorQ31
	}

	iTerm := s.errorSum * int32(s.Ki)
	dTerm := errorDelta * int32(s.Kd)

	s.history[s.historyIndex] = errorQ31
	s.historyIndex = mod(s.historyIndex+1, HistoryDepth)

	s.lastError = errorQ31
	s.lastDelta = errorDelta

	scale := int32(s.OutputScale)
	if scale == 0 {
		scale = 1
	}
	output := (pTerm + iTerm + dTerm) / scale

	return output
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Pair drives the two independent axis controllers together and produces
// the clamped tilt demand, per spec §4.3.
type Pair struct {
	X, Y *State
}

// NewPair returns a Pair with both axes at spec-default gains.
func NewPair() *Pair {
	return &Pair{X: NewState(), Y: NewState()}
}

// Run steps both axes and returns the clamped (x, y) tilt demand for
// Kinematics.SetXY.
func (p *Pair) Run(targetX, targetY, ballX, ballY fixedpoint.Q15) kinematics.XY {
	outX := p.X.Step(targetX, ballX)
	outY := p.Y.Step(targetY, ballY)

	return kinematics.XY{
		X: fixedpoint.ClampI32ToQ15(outX),
		Y: fixedpoint.ClampI32ToQ15(outY),
	}
}

// Reset resets both axes, used when the ball is not detected (spec §4.3).
func (p *Pair) Reset() {
	p.X.Reset()
	p.Y.Reset()
}

// SetGains applies the same Kp/Ki/Kd to both axes, so both axes are
// always tuned together.
func (p *Pair) SetGains(kp, ki, kd uint16) {
	p.X.Kp, p.Y.Kp = kp, kp
	p.X.Ki, p.Y.Ki = ki, ki
	p.X.Kd, p.Y.Kd = kd, kd
}

// SetOutputScale applies the same output scale to both axes.
func (p *Pair) SetOutputScale(scale uint16) {
	p.X.OutputScale = scale
	p.Y.OutputScale = scale
}

// SetDeltaFilterSize applies (and saturates) the same filter size to both
// axes, resetting both histories.
func (p *Pair) SetDeltaFilterSize(n int) {
	p.X.SetDeltaFilterSize(n)
	p.Y.SetDeltaFilterSize(n)
}
