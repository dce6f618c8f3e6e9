package touchpanel

import "testing"

func TestFeedCompleteFrame(t *testing.T) {
	s := New()

	// byte0 MSB set (sync + detected bit), bytes1-4 MSB clear.
	frame := []byte{0x81, 0x55, 0x02, 0x2A, 0x01}

	var published bool
	for _, b := range frame {
		if s.Feed(b) {
			published = true
		}
	}

	if !published {
		t.Fatal("Feed never reported a published frame")
	}

	sample := s.Sample()
	if !sample.Detected {
		t.Error("expected Detected = true")
	}

	wantX := (int16(0x02&0x1F) << 7) | int16(0x55&0x7F)
	wantY := (int16(0x01&0x1F) << 7) | int16(0x2A&0x7F)
	if sample.X != wantX {
		t.Errorf("X = %d, want %d", sample.X, wantX)
	}
	if sample.Y != wantY {
		t.Errorf("Y = %d, want %d", sample.Y, wantY)
	}
}

func TestFeedResyncsOnUnexpectedMSB(t *testing.T) {
	s := New()

	// Start a frame, then interrupt it with a new sync byte mid-frame.
	s.Feed(0x81)
	s.Feed(0x10)
	if s.Feed(0x92) {
		t.Fatal("resync byte should not complete a frame")
	}

	// Finish the new frame; should parse starting from the resync byte.
	s.Feed(0x00)
	s.Feed(0x00)
	s.Feed(0x00)
	if !s.Feed(0x00) {
		t.Fatal("expected frame to complete after resync")
	}
}

func TestFeedIgnoresNonSyncAtStart(t *testing.T) {
	s := New()
	if s.Feed(0x10) {
		t.Fatal("non-sync byte at frame start should not complete a frame")
	}
}

func TestSampleZeroedBeforeAnyFrame(t *testing.T) {
	s := New()
	sample := s.Sample()
	if sample.Detected || sample.X != 0 || sample.Y != 0 {
		t.Errorf("expected zeroed sample before any Feed, got %+v", sample)
	}
}
