//go:build linux

package gpio

import (
	"fmt"

	gpiocdev "github.com/warthog618/go-gpiocdev"
)

const consumer = "apa102ctl"

// CdevLine is an output line requested from a GPIO character device
// (/dev/gpiochipN). Each level change is one ioctl, so this is the slowest
// backend, but it works on any board with a gpio-cdev driver.
type CdevLine struct {
	l *gpiocdev.Line
}

// RequestOutput requests the line at offset on chip as an output, driven low.
func RequestOutput(chip string, offset int) (*CdevLine, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("couldn't request line %d on %s: %v", offset, chip, err)
	}
	return &CdevLine{l}, nil
}

func (c *CdevLine) SetLevel(lv Level) error {
	v := 0
	if lv == High {
		v = 1
	}
	return c.l.SetValue(v)
}

func (c *CdevLine) Close() error {
	return c.l.Close()
}

// CdevInput is an input line requested from a GPIO character device.
type CdevInput struct {
	l *gpiocdev.Line
}

func RequestInput(chip string, offset int) (*CdevInput, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("couldn't request line %d on %s: %v", offset, chip, err)
	}
	return &CdevInput{l}, nil
}

func (c *CdevInput) Level() (Level, error) {
	v, err := c.l.Value()
	if err != nil {
		return Low, err
	}
	return v != 0, nil
}

func (c *CdevInput) Close() error {
	return c.l.Close()
}
