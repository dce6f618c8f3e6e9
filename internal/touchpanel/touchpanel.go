// Package touchpanel decodes the resistive touch-panel byte stream into
// BallSample values and publishes them through a lock-free ping-pong
// buffer, grounded on the touch-panel frame format in spec §6 (there is
// no surviving original_source/ file for the touch driver itself — only
// the frame contract — so the parser below is built directly from the
// specification, not adapted from a C source).
package touchpanel

import "sync/atomic"

// BallSample is one decoded touch-panel reading.
type BallSample struct {
	Detected bool
	X, Y     int16
}

// Sensor holds a two-slot ping-pong buffer of BallSample and a
// byte-stream frame parser. The active slot index is swapped atomically
// after a complete, validated frame; readers never observe a torn sample.
type Sensor struct {
	slots  [2]BallSample
	active atomic.Uint32

	// frame-parser state
	buf [5]byte
	pos int
}

// New returns a Sensor with both slots zeroed (ball not detected).
func New() *Sensor {
	return &Sensor{}
}

// Sample returns the most recently published BallSample. Safe for
// concurrent use by any number of readers while a single writer calls
// Feed.
func (s *Sensor) Sample() BallSample {
	idx := s.active.Load()
	return s.slots[idx]
}

// Feed consumes one byte from the touch-panel stream. It implements the
// frame sync rule from spec §6: byte 0 must have its MSB set, bytes 1-4
// must have their MSB clear; any violation resets the parser to hunt for
// a new sync byte. On a complete valid frame it decodes and publishes a
// BallSample, returning true.
func (s *Sensor) Feed(b byte) bool {
	if s.pos == 0 {
		if b&0x80 == 0 {
			// Not a sync byte; keep hunting.
			return false
		}
		s.buf[0] = b
		s.pos = 1
		return false
	}

	if b&0x80 != 0 {
		// MSB-set byte where a data byte was expected: resync on this
		// byte as the new frame start.
		s.buf[0] = b
		s.pos = 1
		return false
	}

	s.buf[s.pos] = b
	s.pos++

	if s.pos < 5 {
		return false
	}

	s.pos = 0
	sample := decode(s.buf)
	s.publish(sample)
	return true
}

func decode(buf [5]byte) BallSample {
	b0, b1, b2, b3, b4 := buf[0], buf[1], buf[2], buf[3], buf[4]

	x := (int16(b2&0x1F) << 7) | int16(b1&0x7F)
	y := (int16(b4&0x1F) << 7) | int16(b3&0x7F)

	return BallSample{
		Detected: b0&0x01 != 0,
		X:        x,
		Y:        y,
	}
}

func (s *Sensor) publish(sample BallSample) {
	cur := s.active.Load()
	next := cur ^ 1
	s.slots[next] = sample
	s.active.Store(next)
}
