//go:build !linux

package gpio

import "fmt"

var errNoCdev = fmt.Errorf("GPIO character devices are only available on linux")

type CdevLine struct{}

func RequestOutput(chip string, offset int) (*CdevLine, error) {
	return nil, errNoCdev
}

func (c *CdevLine) SetLevel(Level) error {
	return errNoCdev
}

func (c *CdevLine) Close() error {
	return errNoCdev
}

type CdevInput struct{}

func RequestInput(chip string, offset int) (*CdevInput, error) {
	return nil, errNoCdev
}

func (c *CdevInput) Level() (Level, error) {
	return Low, errNoCdev
}

func (c *CdevInput) Close() error {
	return errNoCdev
}
