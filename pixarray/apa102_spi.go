package pixarray

import (
	"fmt"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/apa102"
	"periph.io/x/host/v3"
)

// APA102SPI drives a strip through a hardware SPI port instead of bitbanged
// GPIO. Much faster, but brightness is a single global intensity: the
// per-pixel Brightness channel is not sent, and GetPixel reports it as the
// strip-wide value.
type APA102SPI struct {
	numPixels int
	intensity uint8
	rgb       []byte // 3 bytes per pixel, as the periph driver consumes it
	dev       *apa102.Dev
	port      spi.PortCloser
	modified  bool
}

// NewAPA102SPI opens the named SPI port (e.g. "/dev/spidev0.0", or "" for
// the first registered port) and prepares a strip of numPixels LEDs.
func NewAPA102SPI(portName string, numPixels int, intensity uint8) (*APA102SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("couldn't init periph host: %v", err)
	}
	p, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("couldn't open SPI port %q: %v", portName, err)
	}
	a, err := newAPA102SPI(p, numPixels, intensity)
	if err != nil {
		p.Close() // Ignore error
		return nil, err
	}
	a.port = p
	return a, nil
}

func newAPA102SPI(p spi.Port, numPixels int, intensity uint8) (*APA102SPI, error) {
	opts := apa102.DefaultOpts
	opts.NumPixels = numPixels
	opts.Intensity = intensity
	dev, err := apa102.New(p, &opts)
	if err != nil {
		return nil, fmt.Errorf("couldn't create APA102 device: %v", err)
	}
	return &APA102SPI{
		numPixels: numPixels,
		intensity: intensity,
		rgb:       make([]byte, numPixels*3),
		dev:       dev,
		modified:  true,
	}, nil
}

func (a *APA102SPI) MaxPerChannel() int {
	return 255
}

func (a *APA102SPI) MaxBrightness() int {
	return 31
}

func (a *APA102SPI) GetPixel(i int) Pixel {
	return Pixel{
		R:          int(a.rgb[i*3]),
		G:          int(a.rgb[i*3+1]),
		B:          int(a.rgb[i*3+2]),
		Brightness: int(a.intensity) >> 3,
	}
}

func (a *APA102SPI) SetPixel(i int, p Pixel) {
	r, g, b := byte(p.R&0xff), byte(p.G&0xff), byte(p.B&0xff)
	if a.rgb[i*3] != r || a.rgb[i*3+1] != g || a.rgb[i*3+2] != b {
		a.rgb[i*3], a.rgb[i*3+1], a.rgb[i*3+2] = r, g, b
		a.modified = true
	}
}

func (a *APA102SPI) Write() error {
	if !a.modified {
		return nil
	}
	if _, err := a.dev.Write(a.rgb); err != nil {
		return fmt.Errorf("couldn't write to SPI: %v", err)
	}
	a.modified = false
	return nil
}

func (a *APA102SPI) Close() error {
	if a.port == nil {
		return nil
	}
	return a.port.Close()
}
