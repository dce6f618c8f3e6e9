package telemetry

import (
	"encoding/binary"
	"testing"
)

func TestEncodeBasicFrameEnvelope(t *testing.T) {
	s := Basic{BallDetected: true, TargetX: 1000, BallX: -500}
	buf := EncodeBasic(KindBasic, s)

	if buf[0] != frameStart {
		t.Errorf("buf[0] = %x, want frameStart %x", buf[0], frameStart)
	}
	if buf[1] != byte(KindBasic) {
		t.Errorf("buf[1] = %x, want %x", buf[1], byte(KindBasic))
	}
	if buf[len(buf)-1] != frameEnd {
		t.Errorf("last byte = %x, want frameEnd %x", buf[len(buf)-1], frameEnd)
	}
}

func TestEncodeBasicLength(t *testing.T) {
	buf := EncodeBasic(KindBasic, Basic{})
	// 2 header bytes + 1 bool + 9 int16 fields (2 bytes each) + 1 trailer.
	want := 2 + 1 + 9*2 + 1
	if len(buf) != want {
		t.Errorf("len(buf) = %d, want %d", len(buf), want)
	}
}

func TestEncodeBasicFieldOrder(t *testing.T) {
	s := Basic{
		BallDetected: true,
		TargetX:      1, TargetY: 2,
		BallX: 3, BallY: 4,
		CommandX: 5, CommandY: 6,
		ServoA: 7, ServoB: 8, ServoC: 9,
	}
	buf := EncodeBasic(KindBasic, s)

	if buf[2] != 1 {
		t.Fatalf("BallDetected byte = %d, want 1", buf[2])
	}

	vals := []int16{1, 2, 3, 4, 5, 6, 7, 8, 9}
	off := 3
	for i, want := range vals {
		got := int16(binary.LittleEndian.Uint16(buf[off : off+2]))
		if got != want {
			t.Errorf("field %d = %d, want %d", i, got, want)
		}
		off += 2
	}
}

func TestEncodeDiagnosticIncludesErrorTerms(t *testing.T) {
	s := Diagnostic{
		Basic:       Basic{BallDetected: false},
		ErrorX:      100,
		ErrorY:      -100,
		ErrorSumX:   123456,
		ErrorSumY:   -654321,
		ErrorDeltaX: 5,
		ErrorDeltaY: -5,
	}
	buf := EncodeDiagnostic(KindDiagnostic, s)

	if buf[1] != byte(KindDiagnostic) {
		t.Errorf("kind byte = %x, want %x", buf[1], byte(KindDiagnostic))
	}
	if buf[len(buf)-1] != frameEnd {
		t.Errorf("last byte = %x, want frameEnd", buf[len(buf)-1])
	}

	// ErrorSumX/Y are the only int32 fields, located right after the two
	// int16 error terms (offset 3 bool+detected, 6 target/ball/command*2
	// already consumed = 3+12=15, then errorX/errorY 4 bytes -> offset 19).
	offErrorSumX := 3 + 6*2 + 2*2
	gotSumX := int32(binary.LittleEndian.Uint32(buf[offErrorSumX : offErrorSumX+4]))
	if gotSumX != s.ErrorSumX {
		t.Errorf("ErrorSumX = %d, want %d", gotSumX, s.ErrorSumX)
	}
}

func TestFrameEndIsBitwiseComplementOfFrameStart(t *testing.T) {
	if frameEnd != 0xFC {
		t.Errorf("frameEnd = %x, want 0xFC (complement of 0x03)", frameEnd)
	}
}
