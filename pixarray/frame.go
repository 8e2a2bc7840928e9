package pixarray

import (
	"fmt"

	"github.com/lightshed/apa102ctl/gpio"
)

// Frame is the complete bit sequence for one APA102 transmission: a 32-bit
// all-zero start word, one 32-bit word per pixel, then enough zero latch bits
// to shift data through every driver IC in the chain. A Frame is built by
// EncodeFrame and consumed once by Transmit; it holds no line state.
type Frame struct {
	bits []byte // packed MSB-first
	n    int    // number of valid bits
}

// Len returns the number of bits in the frame.
func (f Frame) Len() int {
	return f.n
}

// Bit returns the level the data line takes for bit i.
func (f Frame) Bit(i int) gpio.Level {
	return f.bits[i/8]&(0x80>>uint(i%8)) != 0
}

// latchWords is the number of trailing zero words needed after the pixel
// data. Each chained IC consumes one clock edge to pass data along, so a
// strip of N needs at least ceil(N/2) extra bits; we round up to whole words
// and always send at least one, even for empty strips. Sending fewer makes
// the far end of long strips refresh unreliably.
func latchWords(numPixels int) int {
	w := ((numPixels+1)/2 + 31) / 32
	if w == 0 {
		w = 1
	}
	return w
}

// EncodeFrame builds the wire frame for the given pixels. The per-pixel word
// is three high bits, 5 bits of brightness, then the blue, green and red
// bytes, MSB first. That field order is the hardware's, not ours: reordering
// it silently swaps color channels on the strip. Over-range values are
// masked to their field width rather than rejected. The function is pure;
// equal input always yields a bit-identical Frame.
func EncodeFrame(pixels []Pixel) Frame {
	b := make([]byte, 0, 4+4*len(pixels)+4*latchWords(len(pixels)))
	b = append(b, 0x00, 0x00, 0x00, 0x00)
	for _, p := range pixels {
		b = append(b, 0xe0|byte(p.Brightness&0x1f), byte(p.B&0xff), byte(p.G&0xff), byte(p.R&0xff))
	}
	for i := 0; i < latchWords(len(pixels)); i++ {
		b = append(b, 0x00, 0x00, 0x00, 0x00)
	}
	return Frame{b, len(b) * 8}
}

// LineError reports a failed level change during a transmission. Bit is the
// frame bit index being clocked out when the failure happened.
type LineError struct {
	Bit   int
	Line  string // "clock" or "data"
	Cause error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("couldn't set %s line at bit %d: %v", e.Line, e.Bit, e.Cause)
}

func (e *LineError) Unwrap() error {
	return e.Cause
}

// setIdle drives both lines low, best-effort.
func setIdle(clk, dat gpio.Line) {
	clk.SetLevel(gpio.Low) // Ignore error
	dat.SetLevel(gpio.Low) // Ignore error
}

// Transmit clocks the frame out over the two lines. For each bit the data
// line is set first, then the clock is pulsed high and low; the receiver
// samples on the rising edge, so data must be stable before the clock rises.
// No delay is inserted between transitions - the per-call latency of the
// underlying line is both sufficient and the throughput bottleneck.
//
// On the first failed level change the transmission aborts, both lines are
// driven low best-effort, and a *LineError identifies the bit reached. The
// strip is then showing a mix of old and new data; retrying is the caller's
// decision. On success both lines are left low.
func (f Frame) Transmit(clk, dat gpio.Line) error {
	for i := 0; i < f.n; i++ {
		if err := dat.SetLevel(f.Bit(i)); err != nil {
			setIdle(clk, dat)
			return &LineError{i, "data", err}
		}
		if err := clk.SetLevel(gpio.High); err != nil {
			setIdle(clk, dat)
			return &LineError{i, "clock", err}
		}
		if err := clk.SetLevel(gpio.Low); err != nil {
			setIdle(clk, dat)
			return &LineError{i, "clock", err}
		}
	}
	// The latch bits end with the data line low already, but a frame isn't
	// required to end in a zero bit.
	if err := dat.SetLevel(gpio.Low); err != nil {
		clk.SetLevel(gpio.Low) // Ignore error
		return &LineError{f.n, "data", err}
	}
	return nil
}
