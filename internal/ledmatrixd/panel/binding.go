package panel

import (
	"github.com/rs/zerolog"

	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/config"
)

// CBinding is the surface a bound external matrix library (e.g. a cgo
// wrapper around rpi-rgb-led-matrix) must expose. bindingDriver adapts it to
// the Driver contract; the binding itself runs its own refresh loop
// internally, so bindingDriver does no rasterization of its own.
type CBinding interface {
	// SetPixel writes one gamma/brightness-applied pixel at (x, y).
	SetPixel(x, y int, r, g, b uint8)
	// Swap presents everything written since the last Swap.
	Swap()
	// Close releases the library's resources.
	Close() error
}

// bindingDriver forwards swap-buffer semantics to an injected CBinding,
// holding the frame the caller renders into as a plain FrameBuffer and
// flushing it to the binding pixel-by-pixel on Swap.
type bindingDriver struct {
	binding CBinding
	back    *FrameBuffer
	logger  zerolog.Logger
}

// newBindingDriver only records the geometry: cfg's binding-only knobs
// (no_hardware_pulse, show_refresh, inverse_colors) are not read here, and
// no concrete CBinding implementation ships in this repository.
func newBindingDriver(cfg config.PanelConfig, width, height int, logger zerolog.Logger) (Driver, error) {
	return &bindingDriver{
		back:   NewFrameBuffer(width, height),
		logger: logger.With().Str("component", "panel-binding").Logger(),
	}, nil
}

// WithBinding attaches the concrete CBinding implementation to an existing
// bound driver. Constructed separately from New because the binding's own
// init (no_hardware_pulse, show_refresh, inverse_colors) happens on the cgo
// side and is out of this package's control.
func (d *bindingDriver) WithBinding(b CBinding) {
	d.binding = b
}

func (d *bindingDriver) Canvas() *FrameBuffer {
	return d.back
}

func (d *bindingDriver) Swap() *FrameBuffer {
	if d.binding != nil {
		for y := 0; y < d.back.Height; y++ {
			for x := 0; x < d.back.Width; x++ {
				p := d.back.At(x, y)
				d.binding.SetPixel(x, y, p.R, p.G, p.B)
			}
		}
		d.binding.Swap()
	}
	d.back.Clear()
	return d.back
}

func (d *bindingDriver) Close() error {
	if d.binding != nil {
		return d.binding.Close()
	}
	return nil
}

// Fatal never fires: the binding runs its own refresh loop and reports its
// own fatal errors through whatever failure mode the cgo layer provides.
func (d *bindingDriver) Fatal() <-chan error {
	return nil
}
