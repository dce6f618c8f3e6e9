// Command balancerd is the ball-on-plate balancer daemon: it wires
// together the sensor inputs, shared bus, controller modes, kinematics,
// actuator facade, and command console into the running system described
// by spec §5, and serves the console over the first detected serial
// port. Structured as a thin main delegating to a realMain() error, for
// testable error handling.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gmrozek-mchp/mlbb/internal/actuator"
	"github.com/gmrozek-mchp/mlbb/internal/balancer"
	"github.com/gmrozek-mchp/mlbb/internal/bus"
	"github.com/gmrozek-mchp/mlbb/internal/config"
	"github.com/gmrozek-mchp/mlbb/internal/console"
	"github.com/gmrozek-mchp/mlbb/internal/joystick"
	"github.com/gmrozek-mchp/mlbb/internal/kinematics"
	"github.com/gmrozek-mchp/mlbb/internal/logging"
	"github.com/gmrozek-mchp/mlbb/internal/nn"
	"github.com/gmrozek-mchp/mlbb/internal/telemetry"
	"github.com/gmrozek-mchp/mlbb/internal/touchpanel"
	"github.com/gmrozek-mchp/mlbb/internal/transport"
)

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func realMain() error {
	configPath := flag.String("config", "", "path to balancer config JSON (optional)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := newLogger(*debug)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return err
		}
	}
	if *debug {
		cfg.Debug = true
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		port     *transport.Port
		portName string
		err      error
	)
	if cfg.Port != "" {
		port, err = transport.Open(cfg.Port, cfg.Baudrate)
		portName = cfg.Port
	} else {
		port, portName, err = transport.OpenFirstCandidate(logger, cfg.Baudrate)
	}
	if err != nil {
		return err
	}
	defer port.Close()
	logger.Infof("balancerd: console attached on %s", portName)

	busTransport := newLoopbackTransport(logger)
	sharedBus := bus.New(busTransport)

	touch := touchpanel.New()
	joy := joystick.New(sharedBus, logger.Named("joystick"))
	kin := kinematics.New()

	servoDrive := actuator.NewServoDrive(port)
	if err := servoDrive.Configure(); err != nil {
		logger.Warnf("balancerd: servo configuration pass failed: %v", err)
	}
	drive := actuator.NewDefault(servoDrive)

	nnModel := defaultNnModel()

	dispatcher := balancer.New(balancer.Params{
		Logger:     logger.Named("balancer"),
		Touch:      touch,
		Joystick:   joy,
		Kinematics: kin,
		Drive:      drive,
		NnModel:    nnModel,
	})

	if err := drive.Enable(ctx); err != nil {
		return fmt.Errorf("balancerd: failed to enable actuators: %w", err)
	}

	con := console.New(port)
	registerCommands(con, dispatcher, touch, joy)

	go joy.Run(ctx)
	go dispatcher.Run(ctx)
	go runTelemetryLoop(ctx, port, dispatcher, touch)
	go runConsoleReader(ctx, port, con, logger)

	con.Prompt()

	<-ctx.Done()
	logger.Info("balancerd: shutting down")
	return drive.Disable(context.Background())
}

func newLogger(debug bool) logging.Logger {
	if debug {
		return logging.NewDevelopment()
	}
	return logging.New()
}

// runConsoleReader feeds bytes from the serial port into the console's
// byte-fed state machine, one tick per received byte, and advances the
// streaming timer on the fixed control cadence.
func runConsoleReader(ctx context.Context, r interface{ Read([]byte) (int, error) }, con *console.Console, logger logging.Logger) {
	reader := bufio.NewReader(&readerAdapter{r: r})
	buf := make([]byte, 1)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			con.Tick()
		default:
		}

		n, err := reader.Read(buf)
		if err != nil {
			continue
		}
		if n > 0 {
			con.Feed(buf[0])
		}
	}
}

type readerAdapter struct {
	r interface{ Read([]byte) (int, error) }
}

func (a *readerAdapter) Read(p []byte) (int, error) { return a.r.Read(p) }

// runTelemetryLoop streams a Basic telemetry frame at the control
// cadence, for whichever mode is currently active.
func runTelemetryLoop(ctx context.Context, w interface{ Write([]byte) (int, error) }, b *balancer.Balancer, touch *touchpanel.Sensor) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample := touch.Sample()
			cmd := b.LastCommand()
			frame := telemetry.EncodeBasic(telemetry.KindBasic, telemetry.Basic{
				BallDetected: sample.Detected,
				BallX:        sample.X,
				BallY:        sample.Y,
				CommandX:     int16(cmd.X),
				CommandY:     int16(cmd.Y),
			})
			w.Write(frame)
		}
	}
}

// registerCommands wires the console's mode, joystick-zero and ball-status
// commands.
func registerCommands(con *console.Console, b *balancer.Balancer, touch *touchpanel.Sensor, joy *joystick.Joystick) {
	con.Register("mode", func(c *console.Console, argv []string) {
		if len(argv) < 2 {
			c.Printf("\r\nmode: %s\r\n", b.Mode())
			return
		}
		m, ok := balancer.ParseMode(argv[1])
		if !ok {
			c.Printf("\r\nmode: unrecognized mode %q\r\n", argv[1])
			return
		}
		b.SetMode(m)
		c.Printf("\r\nmode: %s\r\n", m)
	})
	con.Register("zero", func(c *console.Console, argv []string) {
		joy.ZeroSet()
		c.Printf("\r\njoystick zeroed\r\n")
	})
	con.Register("ball", func(c *console.Console, argv []string) {
		s := touch.Sample()
		c.Printf("\r\nball: detected=%v x=%d y=%d\r\n", s.Detected, s.X, s.Y)
	})
}

// newLoopbackTransport is a placeholder bus.Transport for the
// touch-panel/joystick I2C-like bus until a concrete peripheral driver
// is wired to a physical bus controller.
func newLoopbackTransport(logger logging.Logger) bus.Transport {
	return &loopbackTransport{logger: logger}
}

type loopbackTransport struct {
	logger logging.Logger
}

func (t *loopbackTransport) WriteBytes(addr int, data []byte) error { return nil }

func (t *loopbackTransport) ReadBytes(addr int, into []byte) error {
	for i := range into {
		into[i] = 0
	}
	return nil
}

// defaultNnModel returns a zero-weight placeholder network matching the
// original firmware's 6-input/3-output (ABC) topology, pending a trained
// weight file being loaded via Config.NnModelFile.
func defaultNnModel() *nn.Model {
	return &nn.Model{
		Features:   nn.Features6,
		Head:       nn.OutputABC,
		InputSize:  6,
		OutputSize: 3,
		Layers: []nn.Layer{
			zeroLayer(6, 6),
			zeroLayer(6, 12),
			zeroLayer(12, 12),
			zeroLayer(12, 3),
		},
	}
}

func zeroLayer(in, out int) nn.Layer {
	weights := make([][]float32, out)
	for i := range weights {
		weights[i] = make([]float32, in)
	}
	return nn.Layer{Weights: weights, Bias: make([]float32, out)}
}
