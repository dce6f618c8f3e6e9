// Package human implements the manual joystick-driven tilt controller
// (spec §4.5), grounded on original_source/src/balance/balance_human.c:
// the soft-response gain curve and its constants are carried over
// verbatim; the joystick softening algorithm differs
// from a raw linear mapping specifically to give fine control near
// center and a stronger throw at the edges.
package human

import (
	"github.com/gmrozek-mchp/mlbb/internal/fixedpoint"
	"github.com/gmrozek-mchp/mlbb/internal/joystick"
	"github.com/gmrozek-mchp/mlbb/internal/kinematics"
)

// Constants from original_source/src/balance/balance_human.c.
const (
	LinearRange = 25
	FullRange   = 100
	GainMin     = 20
	GainMax     = 75
)

// State holds the human controller's diagnostics (no gains to tune beyond
// the two below, per spec §3: "same shape as PidState minus gains").
type State struct {
	GainMin, GainMax int

	lastCommandX, lastCommandY fixedpoint.Q15
}

// NewState returns a State with the original firmware's default gains.
func NewState() *State {
	return &State{GainMin: GainMin, GainMax: GainMax}
}

// Reset has no internal history to clear; callers should also call
// joystick.Joystick.ZeroSet to re-anchor the stick's rest position, per
// spec §4.5 ("Reset calls joystick_zero_set()").
func (s *State) Reset() {
	s.lastCommandX = 0
	s.lastCommandY = 0
}

// Run computes the tilt command directly from the joystick, softened by
// soften, and returns it for Kinematics.SetXY.
func (s *State) Run(sample joystick.Sample) kinematics.XY {
	cmdX := s.soften(int32(sample.JoyX))
	cmdY := s.soften(int32(sample.JoyY))

	s.lastCommandX = fixedpoint.ClampI32ToQ15(cmdX)
	s.lastCommandY = fixedpoint.ClampI32ToQ15(cmdY)

	return kinematics.XY{X: s.lastCommandX, Y: s.lastCommandY}
}

// LastCommand returns the most recent (x, y) command, for telemetry.
func (s *State) LastCommand() (fixedpoint.Q15, fixedpoint.Q15) {
	return s.lastCommandX, s.lastCommandY
}

// soften applies the piecewise-linear soft response described in spec
// §4.5: linear with gain G_min for |joy| <= 25, then linearly increasing
// gain from G_min to G_max over (25, 100], and emits
// sign(joy) * |joy| * gain(|joy|) in q15.
func (s *State) soften(joy int32) int32 {
	if joy == 0 {
		return 0
	}

	sign := int32(1)
	magnitude := joy
	if joy < 0 {
		sign = -1
		magnitude = -joy
	}
	if magnitude > FullRange {
		magnitude = FullRange
	}

	gain := s.gainFor(magnitude)

	// gain is in percent (20-75); scale magnitude (0-100) by gain/100 and
	// project into q15 range by scaling against FullRange.
	scaled := magnitude * gain / 100
	command := sign * scaled * (int32(fixedpoint.Q15Max) / FullRange)

	return command
}

func (s *State) gainFor(magnitude int32) int32 {
	if magnitude <= LinearRange {
		return int32(s.GainMin)
	}

	span := int32(FullRange - LinearRange)
	over := magnitude - LinearRange
	gainSpan := int32(s.GainMax - s.GainMin)

	return int32(s.GainMin) + (over*gainSpan)/span
}
