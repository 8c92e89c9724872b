// Package gpio wraps the HUB75 pin set as gpiocdev output lines: the six
// data lines, clock, latch, output-enable, and up to five row-address
// lines.
package gpio

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// Pins names every GPIO offset the native driver drives, on the chip given
// to Open.
type Pins struct {
	R1, G1, B1 int
	R2, G2, B2 int
	Clock      int
	Latch      int
	OE         int
	// RowAddress holds one offset per address bit (A, B, C, D, E); its
	// length must match the panel's multiplexing scheme.
	RowAddress []int
}

// all returns every offset in Pins, in a stable order matched by Lines.set.
func (p Pins) all() []int {
	out := append([]int{p.R1, p.G1, p.B1, p.R2, p.G2, p.B2, p.Clock, p.Latch, p.OE}, p.RowAddress...)
	return out
}

// Lines holds one requested output line per pin, plus the fixed offsets
// into Lines.lines that correspond to each named signal.
type Lines struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
	pins  Pins

	// err latches the first SetValue failure across every line. The refresh
	// loop checks it once per row rather than testing every individual
	// write's return value.
	err atomic.Pointer[error]
}

// Open requests every HUB75 pin as a low output line on chipName (typically
// "gpiochip0").
func Open(chipName string, pins Pins) (*Lines, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", chipName, err)
	}

	offsets := pins.all()
	lines := make([]*gpiocdev.Line, len(offsets))
	for i, offset := range offsets {
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
		if err != nil {
			for _, opened := range lines[:i] {
				if opened != nil {
					opened.Close()
				}
			}
			chip.Close()
			return nil, fmt.Errorf("requesting line %d: %w", offset, err)
		}
		lines[i] = line
	}

	return &Lines{chip: chip, lines: lines, pins: pins}, nil
}

// Close releases every requested line and the chip handle.
func (l *Lines) Close() error {
	var firstErr error
	for _, line := range l.lines {
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := l.chip.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

const (
	idxR1 = iota
	idxG1
	idxB1
	idxR2
	idxG2
	idxB2
	idxClock
	idxLatch
	idxOE
	idxRowAddressBase
)

func boolVal(v bool) int {
	if v {
		return 1
	}
	return 0
}

// set writes val to the line at idx, latching the error (if any) as the
// first fatal failure seen on this chip.
func (l *Lines) set(idx, val int) {
	if err := l.lines[idx].SetValue(val); err != nil {
		l.err.CompareAndSwap(nil, &err)
	}
}

// Err returns the first write error encountered by any Set/Pulse call on
// this chip, or nil if every write has succeeded so far.
func (l *Lines) Err() error {
	if p := l.err.Load(); p != nil {
		return *p
	}
	return nil
}

// SetRGB drives the six color data lines for one clock cycle's worth of
// upper/lower-half pixel data.
func (l *Lines) SetRGB(r1, g1, b1, r2, g2, b2 bool) {
	l.set(idxR1, boolVal(r1))
	l.set(idxG1, boolVal(g1))
	l.set(idxB1, boolVal(b1))
	l.set(idxR2, boolVal(r2))
	l.set(idxG2, boolVal(g2))
	l.set(idxB2, boolVal(b2))
}

// PulseClock raises then lowers the clock line, shifting one column of data
// into the panel's shift registers.
func (l *Lines) PulseClock() {
	l.set(idxClock, 1)
	l.set(idxClock, 0)
}

// PulseLatch raises then lowers the latch line, committing the shifted row
// to the panel's output registers.
func (l *Lines) PulseLatch() {
	l.set(idxLatch, 1)
	l.set(idxLatch, 0)
}

// SetOE drives the output-enable line. The panel blanks its LEDs while OE is
// high, so callers raise it before latching and lower it for the BCM
// plane's on-time.
func (l *Lines) SetOE(enabled bool) {
	l.set(idxOE, boolVal(!enabled))
}

// SetRowAddress drives the row-address lines to the binary encoding of row.
func (l *Lines) SetRowAddress(row int) {
	for i := range l.pins.RowAddress {
		bit := (row >> uint(i)) & 1
		l.set(idxRowAddressBase+i, bit)
	}
}
