package balancer

import (
	"testing"

	"github.com/gmrozek-mchp/mlbb/internal/logging"
)

func newTestBalancer() *Balancer {
	return New(Params{Logger: logging.NewTest()})
}

func TestModeStringNames(t *testing.T) {
	cases := map[Mode]string{
		Off:     "off",
		Human:   "human",
		Pid:     "pid",
		Nn:      "nn",
		Fuzzy:   "fuzzy",
		Invalid: "invalid",
	}
	for m, want := range cases {
		if got := m.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", m, got, want)
		}
	}
}

func TestNextAutonomousModeTogglesOffAndPid(t *testing.T) {
	seq := []Mode{Off, Pid, Off, Pid}
	m := Off
	for _, want := range seq {
		if m != want {
			t.Errorf("cycle landed on %v, want %v", m, want)
		}
		m = nextAutonomousMode(m)
	}
}

func TestNextAutonomousModeCollapsesDirectSelectedModesToPid(t *testing.T) {
	for _, m := range []Mode{Nn, Fuzzy} {
		if got := nextAutonomousMode(m); got != Pid {
			t.Errorf("nextAutonomousMode(%v) = %v, want Pid", m, got)
		}
	}
}

func TestSetModeReachesNnAndFuzzyDirectly(t *testing.T) {
	b := newTestBalancer()
	b.mode = Off
	b.heldMode = Off

	b.SetMode(Nn)
	if b.heldMode != Nn {
		t.Errorf("heldMode after SetMode(Nn) = %v, want Nn", b.heldMode)
	}

	b.SetMode(Fuzzy)
	if b.heldMode != Fuzzy {
		t.Errorf("heldMode after SetMode(Fuzzy) = %v, want Fuzzy", b.heldMode)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"off":   Off,
		"human": Human,
		"pid":   Pid,
		"nn":    Nn,
		"fuzzy": Fuzzy,
	}
	for name, want := range cases {
		m, ok := ParseMode(name)
		if !ok || m != want {
			t.Errorf("ParseMode(%q) = (%v, %v), want (%v, true)", name, m, ok, want)
		}
	}
	if _, ok := ParseMode("bogus"); ok {
		t.Error("ParseMode(\"bogus\") ok = true, want false")
	}
}

func TestNextTargetIndexWrapsAround(t *testing.T) {
	if got := nextTargetIndex(0, 5); got != 1 {
		t.Errorf("nextTargetIndex(0,5) = %d, want 1", got)
	}
	if got := nextTargetIndex(4, 5); got != 0 {
		t.Errorf("nextTargetIndex(4,5) = %d, want 0 (wraps)", got)
	}
}

func TestIndicatorLEDReflectsMode(t *testing.T) {
	b := &Balancer{mode: Pid}
	led, on := b.IndicatorLED()
	if !on || led != LedPid {
		t.Errorf("IndicatorLED() for Pid mode = (%v, %v), want (LedPid, true)", led, on)
	}

	b.mode = Off
	led, on = b.IndicatorLED()
	if on || led != LedOff {
		t.Errorf("IndicatorLED() for Off mode = (%v, %v), want (LedOff, false)", led, on)
	}
}

func TestCurrentTargetAdvancesAfterInterval(t *testing.T) {
	b := &Balancer{}

	first := b.currentTarget()
	if first != targetTable[0] {
		t.Errorf("first currentTarget() = %+v, want %+v", first, targetTable[0])
	}

	// Advance just shy of TargetInterval: index should not move yet.
	steps := int(TargetInterval/tickRate) - 1
	for i := 0; i < steps; i++ {
		b.currentTarget()
	}
	if b.targetIndex != 0 {
		t.Errorf("targetIndex = %d before interval elapsed, want 0", b.targetIndex)
	}

	b.currentTarget()
	if b.targetIndex != 1 {
		t.Errorf("targetIndex = %d after interval elapsed, want 1", b.targetIndex)
	}
}

func TestTransitionResetsOutgoingAndIncomingController(t *testing.T) {
	b := newTestBalancer()
	b.mode = Off
	b.pidPair.X.Step(1000, 0) // dirty the PID state

	b.transition(Pid)

	if b.mode != Pid {
		t.Errorf("mode after transition = %v, want Pid", b.mode)
	}
	if b.pidPair.X.ErrorSum() != 0 {
		t.Error("entering Pid mode should reset its controller state")
	}
	if b.targetIndex != 0 || b.targetTimer != 0 {
		t.Error("transition should reset the autonomous target cursor")
	}
}
