package panel

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/config"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/panel/gpio"
)

// nativeDriver bit-bangs the HUB75 protocol directly off gpiocdev lines: a
// dedicated goroutine walks binary-code-modulation planes (no scheduling
// priority is set for it), while the caller renders into a
// private back buffer handed off through a single-slot atomic pointer.
type nativeDriver struct {
	lines  *gpio.Lines
	cfg    config.PanelConfig
	logger zerolog.Logger

	front atomic.Pointer[FrameBuffer]
	back  *FrameBuffer

	stop     chan struct{}
	stopped  sync.WaitGroup
	fatalErr atomic.Pointer[error]
	fatal    chan error
}

func newNativeDriver(cfg config.PanelConfig, width, height int, logger zerolog.Logger) (Driver, error) {
	lines, err := gpio.Open("gpiochip0", defaultPins(cfg))
	if err != nil {
		return nil, err
	}

	d := &nativeDriver{
		lines:  lines,
		cfg:    cfg,
		logger: logger.With().Str("component", "panel-native").Logger(),
		back:   NewFrameBuffer(width, height),
		stop:   make(chan struct{}),
		fatal:  make(chan error, 1),
	}
	d.front.Store(NewFrameBuffer(width, height))

	d.stopped.Add(1)
	go d.refreshLoop()

	return d, nil
}

// defaultPins maps the Adafruit-bonnet-style pinout onto the configured
// multiplexing scheme's address line count.
func defaultPins(cfg config.PanelConfig) gpio.Pins {
	addressBits := addressLineCount(cfg)
	rowAddress := []int{22, 26, 27, 20, 24}[:addressBits]

	return gpio.Pins{
		R1: 5, G1: 13, B1: 6,
		R2: 12, G2: 16, B2: 23,
		Clock: 17, Latch: 21, OE: 4,
		RowAddress: rowAddress,
	}
}

func addressLineCount(cfg config.PanelConfig) int {
	switch {
	case cfg.Rows > 32:
		return 5
	case cfg.Rows > 16:
		return 4
	default:
		return 3
	}
}

func (d *nativeDriver) Canvas() *FrameBuffer {
	return d.back
}

func (d *nativeDriver) Swap() *FrameBuffer {
	presented := d.back
	previous := d.front.Swap(presented)
	d.back = previous
	return d.back
}

func (d *nativeDriver) Close() error {
	close(d.stop)
	d.stopped.Wait()
	return d.lines.Close()
}

// Fatal returns the channel refreshLoop reports an unrecoverable GPIO
// failure on.
func (d *nativeDriver) Fatal() <-chan error {
	return d.fatal
}

// fail latches err as the driver's fatal failure, logs it, and hands it to
// any caller selecting on Fatal. Only the first failure is kept.
func (d *nativeDriver) fail(err error) {
	if !d.fatalErr.CompareAndSwap(nil, &err) {
		return
	}
	d.logger.Error().Err(err).Msg("gpio write failed, refresh loop stopping")
	select {
	case d.fatal <- err:
	default:
	}
}

// refreshLoop walks binary-code-modulation planes row by row. A GPIO write
// failure here is unrecoverable for this process: it reports the failure
// through fail and stops, leaving the caller to exit non-zero and let its
// supervisor restart it, per the panel driver's failure contract.
func (d *nativeDriver) refreshLoop() {
	defer d.stopped.Done()

	baseNs := time.Duration(d.cfg.PWMLSBNanoseconds)
	planes := d.cfg.PWMBits
	// Each address drives one row in the top half (R1/G1/B1) and the row
	// rows below it in the bottom half (R2/G2/B2).
	rows := d.cfg.Rows / 2

	for {
		select {
		case <-d.stop:
			return
		default:
		}

		buf := d.front.Load()
		for row := 0; row < rows; row++ {
			d.lines.SetRowAddress(row)

			for plane := 0; plane < planes; plane++ {
				threshold := uint8(1 << uint(plane))

				for col := 0; col < buf.Width; col++ {
					top := buf.At(col, row)
					bottom := buf.At(col, row+rows)
					d.lines.SetRGB(
						top.R&threshold != 0, top.G&threshold != 0, top.B&threshold != 0,
						bottom.R&threshold != 0, bottom.G&threshold != 0, bottom.B&threshold != 0,
					)
					d.lines.PulseClock()
				}

				d.lines.SetOE(false)
				d.lines.PulseLatch()
				d.lines.SetOE(true)
				time.Sleep(baseNs << uint(plane))
			}

			if err := d.lines.Err(); err != nil {
				d.fail(err)
				return
			}
		}
	}
}
