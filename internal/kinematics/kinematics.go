// Package kinematics maps a desired plate tilt (x, y) onto the three
// linear-actuator angles (a, b, c) of the triangular platform, and back.
//
// The mechanism is a linear-small-angle approximation of a three-arm
// Stewart-lite platform: each actuator sits 120 degrees apart around the
// plate centroid, and tilt along the plate's local axes decomposes onto
// the three actuators via a fixed 60-degree projection.
package kinematics

import "github.com/gmrozek-mchp/mlbb/internal/fixedpoint"

// sin60Q16 is sin(60deg) as an unsigned fraction of 65536 (not 32768),
// matching the firmware's forward-kinematics multiply constant 0xDDB3.
const sin60Q16 = 0xDDB3

// invSin60Q15 is 1/sin(60deg) as a q15 fraction of 32768, matching the
// firmware's inverse-kinematics multiply constant 37838 with a 15-bit
// downshift. The two constants use different denominators because the
// original firmware's forward and inverse paths were written years apart
// against different multiply helpers; both are kept verbatim rather than
// unified, since unifying them would change the round-trip rounding
// behavior SetXY/GetXY callers depend on.
const invSin60Q15 = 37838

// XY is a desired plate tilt in the plate's local (x, y) frame, q15.
type XY struct {
	X, Y fixedpoint.Q15
}

// ABC is a triple of actuator angle demands, q15.
type ABC struct {
	A, B, C fixedpoint.Q15
}

// CentroidCompensation, when true, adds a common-mode offset (a+b+c)/3 to
// every channel so the plate centroid is held at a fixed height as the
// tilt changes. Disabled by default, per the firmware's commented-out
// behavior — kept as a field rather than a build tag so it is a runtime
// tunable for experimentation.
type Kinematics struct {
	CentroidCompensation bool
}

// New returns a Kinematics engine with centroid compensation disabled,
// matching the firmware default.
func New() *Kinematics {
	return &Kinematics{CentroidCompensation: false}
}

// SetXY computes actuator demands from a plate tilt and passes them
// through SetABC (applying centroid compensation if enabled).
//
//	a =  y
//	b = -x*sin60 + (-y)*cos60
//	c =  x*sin60 + (-y)*cos60
//
// cos60 is exactly 1/2, so (-y)*cos60 is a plain integer division by 2.
func (k *Kinematics) SetXY(xy XY) ABC {
	x32, y32 := int32(xy.X), int32(xy.Y)

	xSin60 := int32((x32 * sin60Q16) >> 16)
	negYCos60 := -y32 / 2

	a := y32
	b := -xSin60 + negYCos60
	c := xSin60 + negYCos60

	return k.SetABC(ABC{
		A: fixedpoint.ClampI32ToQ15(a),
		B: fixedpoint.ClampI32ToQ15(b),
		C: fixedpoint.ClampI32ToQ15(c),
	})
}

// SetABC applies optional centroid-height compensation and returns the
// resulting actuator demand triple, which callers forward to the actuator
// facade; compensation only shifts the common mode.
func (k *Kinematics) SetABC(abc ABC) ABC {
	if !k.CentroidCompensation {
		return abc
	}

	common := (int32(abc.A) + int32(abc.B) + int32(abc.C)) / 3
	return ABC{
		A: fixedpoint.ClampI32ToQ15(int32(abc.A) + common),
		B: fixedpoint.ClampI32ToQ15(int32(abc.B) + common),
		C: fixedpoint.ClampI32ToQ15(int32(abc.C) + common),
	}
}

// GetXY inverts SetXY's forward map:
//
//	y = a
//	x = (c + a/2) * (1/sin60)
//
// This is the formulation spec.md designates as authoritative; the
// original firmware carries a second, inconsistent formulation that is
// deliberately not implemented here (see DESIGN.md).
func GetXY(abc ABC) XY {
	a32, c32 := int32(abc.A), int32(abc.C)

	y := a32
	sum := c32 + a32/2
	x := (sum * invSin60Q15) >> 15

	return XY{
		X: fixedpoint.ClampI32ToQ15(x),
		Y: fixedpoint.ClampI32ToQ15(y),
	}
}
