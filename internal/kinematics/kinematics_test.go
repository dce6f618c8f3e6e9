package kinematics

import (
	"testing"

	"github.com/gmrozek-mchp/mlbb/internal/fixedpoint"
)

// TestSetXYScenario verifies the forward kinematics mapping against the
// worked example of x=1000, y=500.
func TestSetXYScenario(t *testing.T) {
	k := New()
	abc := k.SetXY(XY{X: 1000, Y: 500})

	if abc.A != 500 {
		t.Errorf("a = %d, want 500", abc.A)
	}
	if diff := abs(int32(abc.B) - (-1116)); diff > 2 {
		t.Errorf("b = %d, want approximately -1116", abc.B)
	}
	if diff := abs(int32(abc.C) - 616); diff > 2 {
		t.Errorf("c = %d, want approximately 616", abc.C)
	}
}

// TestRoundTripTolerance verifies SetXY -> GetXY recovers x within the
// tolerance of 2 counts.
func TestRoundTripTolerance(t *testing.T) {
	k := New()
	xy := XY{X: 1000, Y: 500}
	abc := k.SetXY(xy)
	back := GetXY(abc)

	if diff := abs(int32(back.X) - int32(xy.X)); diff > 2 {
		t.Errorf("round trip x: got %d, want within 2 of %d", back.X, xy.X)
	}
	if diff := abs(int32(back.Y) - int32(xy.Y)); diff > 2 {
		t.Errorf("round trip y: got %d, want within 2 of %d", back.Y, xy.Y)
	}
}

func TestSetXYZero(t *testing.T) {
	k := New()
	abc := k.SetXY(XY{X: 0, Y: 0})
	if abc.A != 0 || abc.B != 0 || abc.C != 0 {
		t.Errorf("zero tilt should produce zero actuator demand, got %+v", abc)
	}
}

func TestCentroidCompensation(t *testing.T) {
	k := New()
	k.CentroidCompensation = true

	abc := ABC{A: fixedpoint.Q15(300), B: fixedpoint.Q15(300), C: fixedpoint.Q15(300)}
	got := k.SetABC(abc)

	// Common mode offset of an already-common-mode triple should double it.
	if got.A != 600 || got.B != 600 || got.C != 600 {
		t.Errorf("centroid compensation on uniform input = %+v, want all 600", got)
	}
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
