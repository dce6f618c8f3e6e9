// Package telemetry encodes the binary sample-stream frames sent to a
// host tool over the console's serial link, per spec §6: a fixed
// 0x03/kind/payload/~0x03 envelope with little-endian i16 payload fields.
// Grounded on the frame contract in spec §6 directly; no corresponding
// original_source/ file transmits a binary stream (the original command
// console only emits ASCII), so the encoder is new code, built in the
// style of the hand-rolled binary encoders elsewhere in this tree
// rather than adapted from a C source.
package telemetry

import "encoding/binary"

const (
	frameStart = 0x03
	frameEnd   = ^byte(frameStart)
)

// Kind identifies what a telemetry frame's payload contains.
type Kind byte

const (
	KindBasic      Kind = 'B'
	KindDiagnostic Kind = 'D'
	KindFuzzy      Kind = 'F'
)

// Basic is the minimal sample set common to every mode (spec §6): ball
// detection, target, ball position, commanded tilt, and the three
// actuator angles actually sent to the plate.
type Basic struct {
	BallDetected bool
	TargetX      int16
	TargetY      int16
	BallX        int16
	BallY        int16
	CommandX     int16
	CommandY     int16
	ServoA       int16
	ServoB       int16
	ServoC       int16
}

// Diagnostic extends Basic with the PID/NN internal error terms, for
// controllers that expose them.
type Diagnostic struct {
	Basic
	ErrorX      int16
	ErrorY      int16
	ErrorSumX   int32
	ErrorSumY   int32
	ErrorDeltaX int16
	ErrorDeltaY int16
}

// EncodeBasic returns the framed bytes for a Basic sample.
func EncodeBasic(kind Kind, s Basic) []byte {
	buf := make([]byte, 0, 24)
	buf = append(buf, frameStart, byte(kind))
	buf = appendBool(buf, s.BallDetected)
	buf = appendI16(buf, s.TargetX)
	buf = appendI16(buf, s.TargetY)
	buf = appendI16(buf, s.BallX)
	buf = appendI16(buf, s.BallY)
	buf = appendI16(buf, s.CommandX)
	buf = appendI16(buf, s.CommandY)
	buf = appendI16(buf, s.ServoA)
	buf = appendI16(buf, s.ServoB)
	buf = appendI16(buf, s.ServoC)
	buf = append(buf, frameEnd)
	return buf
}

// EncodeDiagnostic returns the framed bytes for a Diagnostic sample: the
// Basic payload followed by the error-term extension fields.
func EncodeDiagnostic(kind Kind, s Diagnostic) []byte {
	buf := make([]byte, 0, 40)
	buf = append(buf, frameStart, byte(kind))
	buf = appendBool(buf, s.BallDetected)
	buf = appendI16(buf, s.TargetX)
	buf = appendI16(buf, s.TargetY)
	buf = appendI16(buf, s.BallX)
	buf = appendI16(buf, s.BallY)
	buf = appendI16(buf, s.CommandX)
	buf = appendI16(buf, s.CommandY)
	buf = appendI16(buf, s.ErrorX)
	buf = appendI16(buf, s.ErrorY)
	buf = appendI32(buf, s.ErrorSumX)
	buf = appendI32(buf, s.ErrorSumY)
	buf = appendI16(buf, s.ErrorDeltaX)
	buf = appendI16(buf, s.ErrorDeltaY)
	buf = appendI16(buf, s.ServoA)
	buf = appendI16(buf, s.ServoB)
	buf = appendI16(buf, s.ServoC)
	buf = append(buf, frameEnd)
	return buf
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func appendI16(buf []byte, v int16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], uint16(v))
	return append(buf, tmp[:]...)
}

func appendI32(buf []byte, v int32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	return append(buf, tmp[:]...)
}
