package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphLine drives a pin through the periph.io host drivers. Portable
// across periph-supported boards; slower than the memory-mapped backend.
type PeriphLine struct {
	p pgpio.PinIO
}

// OpenPeriphPin looks up a pin by periph name (e.g. "GPIO24") and configures
// it as an output, driven low.
func OpenPeriphPin(name string) (*PeriphLine, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("couldn't init periph host: %v", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no pin named %q", name)
	}
	if err := p.Out(pgpio.Low); err != nil {
		return nil, fmt.Errorf("couldn't set %s as output: %v", name, err)
	}
	return &PeriphLine{p}, nil
}

func (l *PeriphLine) SetLevel(lv Level) error {
	return l.p.Out(pgpio.Level(lv))
}

func (l *PeriphLine) Close() error {
	return l.p.Halt()
}
