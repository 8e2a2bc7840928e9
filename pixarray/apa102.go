package pixarray

import (
	"fmt"
	"io"

	"github.com/lightshed/apa102ctl/gpio"
)

// APA102 drives a strip by bitbanging the clock/data protocol over two GPIO
// lines. It assumes exclusive ownership of both lines for the duration of
// each Write.
type APA102 struct {
	numPixels int
	pixels    []Pixel
	clk       gpio.Line
	dat       gpio.Line
	modified  bool
}

// NewAPA102 returns a strip of numPixels LEDs on the given lines. If reset
// is set, an all-off frame is transmitted immediately.
func NewAPA102(clk, dat gpio.Line, numPixels int, reset bool) (*APA102, error) {
	a := APA102{
		numPixels: numPixels,
		pixels:    make([]Pixel, numPixels),
		clk:       clk,
		dat:       dat,
		modified:  true,
	}
	if reset {
		if err := a.Write(); err != nil {
			return nil, fmt.Errorf("couldn't reset strip: %v", err)
		}
	}
	return &a, nil
}

func (a *APA102) MaxPerChannel() int {
	return 255
}

func (a *APA102) MaxBrightness() int {
	return 31
}

func (a *APA102) GetPixel(i int) Pixel {
	return a.pixels[i]
}

func (a *APA102) SetPixel(i int, p Pixel) {
	// Mask on the way in so GetPixel round-trips what the wire will carry.
	p.R &= 0xff
	p.G &= 0xff
	p.B &= 0xff
	p.Brightness &= 0x1f
	if a.pixels[i] != p {
		a.pixels[i] = p
		a.modified = true
	}
}

// Write transmits the framebuffer. Unchanged buffers are not retransmitted;
// the strip latches its last frame and keeps displaying it.
func (a *APA102) Write() error {
	if !a.modified {
		return nil
	}
	if err := EncodeFrame(a.pixels).Transmit(a.clk, a.dat); err != nil {
		return err
	}
	a.modified = false
	return nil
}

// Close drives both lines to idle and releases them if the backend supports
// it.
func (a *APA102) Close() error {
	setIdle(a.clk, a.dat)
	for _, l := range []gpio.Line{a.clk, a.dat} {
		if c, ok := l.(io.Closer); ok {
			if err := c.Close(); err != nil {
				return fmt.Errorf("couldn't release line: %v", err)
			}
		}
	}
	return nil
}
