// Package fixedpoint implements the q15/q31 signed fractional arithmetic
// shared by every controller and the kinematics engine.
//
// q15 is a 16-bit signed integer interpreted as a fraction in [-1, 1):
// the integer value divided by 32768. q31 is the 32-bit analog, used as
// the intermediate accumulator type for products and sums that would
// otherwise overflow q15.
package fixedpoint

import "math"

// Q15 is a signed 16-bit fixed-point fraction in [-1, 1).
type Q15 int16

// Q31 is a signed 32-bit fixed-point fraction, used for intermediate
// products and running sums that must not saturate at q15 width.
type Q31 int32

const (
	Q15Max = Q15(math.MaxInt16)
	Q15Min = Q15(math.MinInt16)
	Q31Max = Q31(math.MaxInt32)
	Q31Min = Q31(math.MinInt32)
)

// ClampQ31ToQ15 saturates a q31 accumulator into q15 range.
func ClampQ31ToQ15(v Q31) Q15 {
	if v > Q31(Q15Max) {
		return Q15Max
	}
	if v < Q31(Q15Min) {
		return Q15Min
	}
	return Q15(v)
}

// ClampI32ToQ15 saturates a plain int32 into q15 range.
func ClampI32ToQ15(v int32) Q15 {
	if v > int32(Q15Max) {
		return Q15Max
	}
	if v < int32(Q15Min) {
		return Q15Min
	}
	return Q15(v)
}

// MulQ15 multiplies two q15 fractions, returning a q31 product
// (no downshift applied — callers choose where to truncate back to q15).
func MulQ15(a, b Q15) Q31 {
	return Q31(int32(a) * int32(b))
}

// MulQ15Scalar multiplies a q31 value by a plain unsigned integer scale
// factor (a gain, not a fraction), producing a q31 product truncated to
// 32 bits.
func MulQ15Scalar(a Q31, scale uint16) Q31 {
	return Q31(int64(a) * int64(scale))
}

// FloatToQ15 converts a float32 in [-1, 1] to q15, clamping on overflow.
// It scales by 32767 rather than 32768, so 1.0 maps to Q15Max and -1.0 to
// -32767; Q15ToFloat uses the same scale.
func FloatToQ15(v float32) Q15 {
	scaled := int32(v * 32767.0)
	return ClampI32ToQ15(scaled)
}

// Q15ToFloat converts a q15 value back to float32.
func Q15ToFloat(v Q15) float32 {
	return float32(v) / 32767.0
}
