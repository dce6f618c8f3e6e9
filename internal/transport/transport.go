// Package transport wraps the serial link to the host console and the
// shared sensor bus's underlying UART, using go.bug.st/serial. Port
// discovery is adapted from _examples/discovery.go: the same
// platform-specific candidate-port filtering and port-suffix extraction,
// generalized from SO-101 arm enumeration to this firmware's single
// console port.
package transport

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/gmrozek-mchp/mlbb/internal/logging"
)

// DefaultBaud matches the console UART's fixed rate.
const DefaultBaud = 115200

// Port wraps an open serial.Port as the console's byte stream.
type Port struct {
	port serial.Port
}

// Open opens name at baud 8N1, matching the console's fixed wire format.
func Open(name string, baud int) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: failed to open %s", name)
	}
	return &Port{port: p}, nil
}

func (p *Port) Read(buf []byte) (int, error)  { return p.port.Read(buf) }
func (p *Port) Write(buf []byte) (int, error) { return p.port.Write(buf) }
func (p *Port) Close() error                  { return p.port.Close() }

// EnumerateCandidates returns serial ports whose names match this
// platform's conventional USB-serial naming, mirroring
// _examples/discovery.go's isCandidatePort/extractPortSuffix logic.
func EnumerateCandidates(logger logging.Logger) []string {
	all := enumerateSerialPorts(logger)
	var candidates []string
	for _, port := range all {
		if isCandidatePort(port) {
			candidates = append(candidates, port)
		}
	}
	return candidates
}

func enumerateSerialPorts(logger logging.Logger) []string {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		if logger != nil {
			logger.Debugf("transport: failed to enumerate serial ports: %v", err)
		}
		return nil
	}

	var names []string
	for _, port := range ports {
		names = append(names, port.Name)
	}
	return names
}

func isCandidatePort(port string) bool {
	switch {
	case strings.HasPrefix(port, "/dev/ttyUSB"), strings.HasPrefix(port, "/dev/ttyACM"):
		return true
	case strings.HasPrefix(port, "/dev/tty.usbmodem"), strings.HasPrefix(port, "/dev/tty.usbserial"),
		strings.HasPrefix(port, "/dev/cu.usbmodem"), strings.HasPrefix(port, "/dev/cu.usbserial"):
		return true
	case strings.HasPrefix(port, "COM"):
		return true
	default:
		return false
	}
}

// PortSuffix extracts a friendly identifier from a port path, e.g.
// "/dev/ttyUSB0" -> "ttyUSB0".
func PortSuffix(portPath string) string {
	base := filepath.Base(portPath)
	if strings.HasPrefix(base, "tty.usb") {
		return strings.TrimPrefix(base, "tty.")
	}
	if strings.HasPrefix(base, "cu.usb") {
		return strings.TrimPrefix(base, "cu.")
	}
	return base
}

// OpenFirstCandidate opens the first candidate port found, returning an
// error if none are present. Intended for zero-configuration startup.
func OpenFirstCandidate(logger logging.Logger, baud int) (*Port, string, error) {
	candidates := EnumerateCandidates(logger)
	if len(candidates) == 0 {
		return nil, "", errors.New("transport: no candidate serial ports found")
	}

	var lastErr error
	for _, name := range candidates {
		p, err := Open(name, baud)
		if err == nil {
			return p, name, nil
		}
		lastErr = err
		time.Sleep(10 * time.Millisecond)
	}
	return nil, "", errors.Wrap(lastErr, "transport: failed to open any candidate port")
}
