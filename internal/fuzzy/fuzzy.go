// Package fuzzy implements the Mamdani fuzzy controller (spec §4 /
// SPEC_FULL.md §5.10), grounded on
// original_source/src/balance/balance_fuzzy.c: five triangular membership
// sets per variable, a 25-rule table, MIN rule strength, and
// center-of-gravity defuzzification are all carried over along with the
// original's conservative default scales.
package fuzzy

import (
	"github.com/gmrozek-mchp/mlbb/internal/fixedpoint"
	"github.com/gmrozek-mchp/mlbb/internal/kinematics"
)

// Set identifies one of the five triangular membership sets shared by
// error, error_dot, and output.
type Set int

const (
	NL Set = iota // negative large
	NS            // negative small
	ZE            // zero
	PS            // positive small
	PL            // positive large
	setCount
)

// Default scales, per original_source/src/balance/balance_fuzzy.c; the
// output scale is deliberately conservative to eliminate overshoot (spec
// §9 open question, adopted verbatim rather than re-tuned).
const (
	DefaultErrorScale    = 1200
	DefaultErrorDotScale = 2500
	DefaultOutputScale   = 170
)

// centers are the five membership-set peak positions on the normalized
// [-3, 3] universe shared by every scaled variable.
var centers = [setCount]float32{-3, -1.5, 0, 1.5, 3}

// membership returns the degree (0..1) to which x belongs to set s on the
// shared triangular universe, linearly interpolating between neighboring
// peaks and clipping outside the outer ones.
func membership(s Set, x float32) float32 {
	if x < centers[NL] {
		x = centers[NL]
	}
	if x > centers[PL] {
		x = centers[PL]
	}
	center := centers[s]
	width := float32(1.5)
	d := x - center
	if d < 0 {
		d = -d
	}
	deg := 1 - d/width
	if deg < 0 {
		deg = 0
	}
	if deg > 1 {
		deg = 1
	}
	return deg
}

// rules is the 25-entry error x error_dot -> output table, laid out
// exactly as original_source/src/balance/balance_fuzzy.c's rule table
// (row = error, column = error_dot).
var rules = [setCount][setCount]Set{
	{NL, NL, NL, NS, ZE},
	{NL, NL, NS, ZE, PS},
	{NL, NS, ZE, PS, PL},
	{NS, ZE, PS, PL, PL},
	{ZE, PS, PL, PL, PL},
}

// State holds the fuzzy controller's per-axis tunable scales, mirroring
// PidState's shape per spec §3 (gains in place of Kp/Ki/Kd).
type State struct {
	ErrorScale    int32
	ErrorDotScale int32
	OutputScale   int32

	lastError float32
}

// NewState returns a State at the original firmware's default scales.
func NewState() *State {
	return &State{
		ErrorScale:    DefaultErrorScale,
		ErrorDotScale: DefaultErrorDotScale,
		OutputScale:   DefaultOutputScale,
	}
}

// Reset clears the one-step error history used for error_dot.
func (s *State) Reset() {
	s.lastError = 0
}

// Step runs one Mamdani inference cycle for a single axis: fuzzify
// error and its derivative, evaluate all 25 rules with MIN rule
// strength, and defuzzify by center of gravity.
func (s *State) Step(target, actual fixedpoint.Q15) int32 {
	errorRaw := float32(int32(target) - int32(actual))
	errorDot := errorRaw - s.lastError
	s.lastError = errorRaw

	errorNorm := errorRaw / float32(s.ErrorScale)
	errorDotNorm := errorDot / float32(s.ErrorDotScale)

	var errorDeg, errorDotDeg [setCount]float32
	for i := Set(0); i < setCount; i++ {
		errorDeg[i] = membership(i, errorNorm)
		errorDotDeg[i] = membership(i, errorDotNorm)
	}

	var outputWeight [setCount]float32
	for e := Set(0); e < setCount; e++ {
		if errorDeg[e] == 0 {
			continue
		}
		for d := Set(0); d < setCount; d++ {
			if errorDotDeg[d] == 0 {
				continue
			}
			strength := min32(errorDeg[e], errorDotDeg[d])
			out := rules[e][d]
			if strength > outputWeight[out] {
				outputWeight[out] = strength
			}
		}
	}

	var numerator, denominator float32
	for o := Set(0); o < setCount; o++ {
		numerator += outputWeight[o] * centers[o]
		denominator += outputWeight[o]
	}
	if denominator == 0 {
		return 0
	}

	output := (numerator / denominator) * float32(s.OutputScale)
	return int32(output)
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// Pair drives the two independent axis controllers together, mirroring
// pid.Pair's shape so the balancer dispatcher can treat both modes
// uniformly.
type Pair struct {
	X, Y *State
}

// NewPair returns a Pair with both axes at default scales.
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

// Reset resets both axes' error history, used when the ball is not
// detected.
func (p *Pair) Reset() {
	p.X.Reset()
	p.Y.Reset()
}

// SetScales applies the same error/error_dot/output scales to both axes,
// so both axes are always tuned together.
func (p *Pair) SetScales(errorScale, errorDotScale, outputScale int32) {
	p.X.ErrorScale, p.Y.ErrorScale = errorScale, errorScale
	p.X.ErrorDotScale, p.Y.ErrorDotScale = errorDotScale, errorDotScale
	p.X.OutputScale, p.Y.OutputScale = outputScale, outputScale
}
