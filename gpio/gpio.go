// Package gpio provides digital output lines for bitbanging LED protocols.
//
// The Line interface is the only thing the protocol code depends on; the
// concrete backends in this package differ in how they reach the hardware
// (character device, /dev/gpiomem registers, periph.io host drivers) and in
// per-call latency, which is what bounds strip refresh rate.
package gpio

// Level is the logical state of a digital line.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Line is a single digital output.
type Line interface {
	SetLevel(Level) error
}

// InputLine is a single digital input.
type InputLine interface {
	Level() (Level, error)
}
