package fixedpoint

import "testing"

func TestClampQ31ToQ15(t *testing.T) {
	tests := []struct {
		name string
		in   Q31
		want Q15
	}{
		{"within range", 1000, 1000},
		{"above max", Q31(Q15Max) + 1, Q15Max},
		{"below min", Q31(Q15Min) - 1, Q15Min},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampQ31ToQ15(tt.in); got != tt.want {
				t.Errorf("ClampQ31ToQ15(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampI32ToQ15(t *testing.T) {
	if got := ClampI32ToQ15(40000); got != Q15Max {
		t.Errorf("ClampI32ToQ15(40000) = %d, want %d", got, Q15Max)
	}
	if got := ClampI32ToQ15(-40000); got != Q15Min {
		t.Errorf("ClampI32ToQ15(-40000) = %d, want %d", got, Q15Min)
	}
	if got := ClampI32ToQ15(123); got != 123 {
		t.Errorf("ClampI32ToQ15(123) = %d, want 123", got)
	}
}

func TestMulQ15(t *testing.T) {
	// 0.5 * 0.5 in q15 should be roughly 0.25
	half := Q15(16384)
	got := MulQ15(half, half)
	want := Q31(16384 * 16384)
	if got != want {
		t.Errorf("MulQ15(half, half) = %d, want %d", got, want)
	}
}

func TestFloatToQ15RoundTrip(t *testing.T) {
	tests := []float32{0, 0.5, -0.5, 0.999, -1.0}
	for _, f := range tests {
		q := FloatToQ15(f)
		back := Q15ToFloat(q)
		diff := back - f
		if diff < 0 {
			diff = -diff
		}
		if diff > 0.001 {
			t.Errorf("round trip %f -> %d -> %f, diff %f too large", f, q, back, diff)
		}
	}
}

func TestFloatToQ15Clamps(t *testing.T) {
	if got := FloatToQ15(2.0); got != Q15Max {
		t.Errorf("FloatToQ15(2.0) = %d, want %d", got, Q15Max)
	}
}
