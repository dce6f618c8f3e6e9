package actuator

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/gmrozek-mchp/mlbb/internal/fixedpoint"
)

// STS3215-style protocol constants, carried over verbatim from
// _examples/controller.go's servo controller (frame header, instruction
// codes, and the goal-position register address).
const (
	servoFrameHeader  = 0xFF
	servoInstWrite    = 0x03
	servoAddrGoalPos  = 0x2A
	servoProtoTimeout = 100 * time.Millisecond
)

// SerialPort is the byte-level collaborator a ServoDrive writes packets
// to and reads responses from.
type SerialPort interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
}

// ServoDrive implements Drive by framing each axis's angle command as an
// STS3215-style write packet, one per axis ID. Grounded on the
// sendPacket/writeRegister methods in _examples/controller.go,
// generalized from a 6-servo robot arm bus to the plate's 3-actuator
// bus.
type ServoDrive struct {
	port SerialPort
	mu   sync.Mutex

	// ids maps Axis to the servo ID addressed on the wire.
	ids [3]int
}

// NewServoDrive returns a ServoDrive addressing axes A, B, C as servo IDs
// 1, 2, 3 respectively.
func NewServoDrive(port SerialPort) *ServoDrive {
	return &ServoDrive{port: port, ids: [3]int{1, 2, 3}}
}

// SetAngle converts a q15 angle into a servo goal-position count and
// writes it via a framed packet.
func (d *ServoDrive) SetAngle(ctx context.Context, axis Axis, angle fixedpoint.Q15) error {
	id := d.ids[axis]
	position := q15ToServoCount(angle)

	params := []byte{servoAddrGoalPos, byte(position), byte(position >> 8)}
	_, err := d.sendPacket(id, servoInstWrite, params)
	return errors.Wrapf(err, "actuator: servo %d write failed", id)
}

// sendPacket builds [0xFF, 0xFF, ID, LENGTH, INSTRUCTION, ...PARAMS, CHECKSUM]
// and writes it, matching _examples/controller.go's sendPacket framing
// exactly.
func (d *ServoDrive) sendPacket(id int, instruction byte, params []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	length := len(params) + 2
	packet := make([]byte, 0, 6+len(params))
	packet = append(packet, servoFrameHeader, servoFrameHeader)
	packet = append(packet, byte(id), byte(length), instruction)
	packet = append(packet, params...)

	checksum := byte(0)
	for i := 2; i < len(packet); i++ {
		checksum += packet[i]
	}
	checksum = ^checksum
	packet = append(packet, checksum)

	if _, err := d.port.Write(packet); err != nil {
		return nil, errors.Wrap(err, "failed to write to serial port")
	}

	return nil, nil
}

// q15ToServoCount maps the full q15 angle range onto a 12-bit servo
// position count (0-4095), matching the STS3215's position resolution.
func q15ToServoCount(angle fixedpoint.Q15) int {
	const servoRange = 4096
	centered := int32(angle) + 32768
	return int(int64(centered) * servoRange / 65536)
}
