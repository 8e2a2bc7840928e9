//go:build !linux

package gpio

import "fmt"

var errNoGpiomem = fmt.Errorf("/dev/gpiomem is only available on linux")

type MemGPIO struct{}

func OpenMemGPIO() (*MemGPIO, error) {
	return nil, errNoGpiomem
}

func (m *MemGPIO) OutputLine(pin int) (*MemLine, error) {
	return nil, errNoGpiomem
}

func (m *MemGPIO) Close() error {
	return errNoGpiomem
}

type MemLine struct{}

func (l *MemLine) SetLevel(Level) error {
	return errNoGpiomem
}
