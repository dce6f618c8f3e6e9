package actuator

// STS3215 register addresses touched at startup, carried over from
// _examples/servo_config.go's servo configuration pass.
const (
	regResponseDelay = 0x07
	regAcceleration  = 0x29
	regPGain         = 0x15
	regIGain         = 0x17
	regDGain         = 0x16
)

// Configure writes the startup register set to all three axis servos:
// minimum return delay for fast bus turnaround, a fixed acceleration
// ramp, and PID register gains tuned to reduce servo shakiness at rest.
// Grounded on _examples/servo_config.go's configureServosOptimal,
// generalized from a 6-servo arm (with a gripper-specific branch) to
// the plate's 3-servo bus; the gripper torque-limit branch has no
// equivalent here and is dropped.
func (d *ServoDrive) Configure() error {
	for _, id := range d.ids {
		if _, err := d.sendPacket(id, servoInstWrite, []byte{regResponseDelay, 0}); err != nil {
			return err
		}
		if _, err := d.sendPacket(id, servoInstWrite, []byte{regAcceleration, 254}); err != nil {
			return err
		}
		if _, err := d.sendPacket(id, servoInstWrite, []byte{regPGain, 16}); err != nil {
			return err
		}
		if _, err := d.sendPacket(id, servoInstWrite, []byte{regIGain, 0}); err != nil {
			return err
		}
		if _, err := d.sendPacket(id, servoInstWrite, []byte{regDGain, 32}); err != nil {
			return err
		}
	}
	return nil
}
