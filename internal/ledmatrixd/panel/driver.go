package panel

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/config"
)

// Driver is the contract the display engine renders against: claim a back
// buffer, mutate it, then swap it in as the refresh source.
type Driver interface {
	// Canvas returns the writable back buffer. The caller owns it
	// exclusively until the next Swap.
	Canvas() *FrameBuffer
	// Swap atomically presents the back buffer as the new refresh source
	// and returns the (now writable) buffer the caller should render into
	// next. It never blocks beyond a bounded single-slot hand-off.
	Swap() *FrameBuffer
	// Close stops the refresh thread and releases hardware resources.
	Close() error
	// Fatal returns a channel that receives exactly one error if the driver
	// hits an unrecoverable hardware failure while refreshing the panel.
	// The caller is expected to treat any receive as process-fatal. A
	// driver that cannot fail this way returns a channel that never fires.
	Fatal() <-chan error
}

// New builds the Driver selected by cfg.Driver ("native" or "binding").
// Config validation errors here are startup-fatal, per the panel driver's
// failure semantics.
func New(cfg config.PanelConfig, logger zerolog.Logger) (Driver, error) {
	width := cfg.Cols * cfg.ChainLength
	height := cfg.Rows * cfg.Parallel
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid panel geometry: %dx%d", width, height)
	}

	switch cfg.Driver {
	case "native":
		return newNativeDriver(cfg, width, height, logger)
	case "binding":
		return newBindingDriver(cfg, width, height, logger)
	default:
		return nil, fmt.Errorf("unknown panel driver %q", cfg.Driver)
	}
}
