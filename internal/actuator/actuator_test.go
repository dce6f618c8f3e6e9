package actuator

import (
	"context"
	"testing"

	"github.com/gmrozek-mchp/mlbb/internal/fixedpoint"
)

type fakeDrive struct {
	calls []call
}

type call struct {
	axis  Axis
	angle fixedpoint.Q15
}

func (f *fakeDrive) SetAngle(ctx context.Context, axis Axis, angle fixedpoint.Q15) error {
	f.calls = append(f.calls, call{axis, angle})
	return nil
}

func TestSetAngleClampsToLimits(t *testing.T) {
	fd := &fakeDrive{}
	f := New(fd, Limits{Min: -1000, Max: 1000}, DefaultLimits, DefaultLimits)

	if err := f.SetAngle(context.Background(), AxisA, 5000); err != nil {
		t.Fatalf("SetAngle returned error: %v", err)
	}

	if len(fd.calls) != 1 || fd.calls[0].angle != 1000 {
		t.Fatalf("expected clamped angle 1000, got %+v", fd.calls)
	}
}

func TestSetAngleClampsToMin(t *testing.T) {
	fd := &fakeDrive{}
	f := New(fd, Limits{Min: -1000, Max: 1000}, DefaultLimits, DefaultLimits)

	if err := f.SetAngle(context.Background(), AxisA, -5000); err != nil {
		t.Fatalf("SetAngle returned error: %v", err)
	}
	if fd.calls[0].angle != -1000 {
		t.Fatalf("expected clamped angle -1000, got %d", fd.calls[0].angle)
	}
}

func TestEnableSequencesAllThreeAxes(t *testing.T) {
	fd := &fakeDrive{}
	f := NewDefault(fd)

	if err := f.Enable(context.Background()); err != nil {
		t.Fatalf("Enable returned error: %v", err)
	}

	if len(fd.calls) != 3 {
		t.Fatalf("expected 3 axis calls, got %d", len(fd.calls))
	}
	wantOrder := []Axis{AxisA, AxisB, AxisC}
	for i, c := range fd.calls {
		if c.axis != wantOrder[i] {
			t.Errorf("call %d axis = %v, want %v", i, c.axis, wantOrder[i])
		}
		if c.angle != 0 {
			t.Errorf("call %d angle = %d, want 0", i, c.angle)
		}
	}
}

func TestAxisString(t *testing.T) {
	tests := map[Axis]string{AxisA: "a", AxisB: "b", AxisC: "c"}
	for axis, want := range tests {
		if got := axis.String(); got != want {
			t.Errorf("Axis(%d).String() = %q, want %q", axis, got, want)
		}
	}
}
