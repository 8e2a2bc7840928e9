//go:build linux

package gpio

import (
	"fmt"
	"os"
	"unsafe"

	mmap "github.com/edsrzf/mmap-go"
)

// BCM283x GPIO register block, as exposed at offset 0 of /dev/gpiomem.
// Layout from p90 of the peripherals datasheet.
type gpioRegs struct {
	fsel       [6]uint32 // GPIO Function Select
	resvd_0x18 uint32
	set        [2]uint32 // GPIO Pin Output Set
	resvd_0x24 uint32
	clr        [2]uint32 // GPIO Pin Output Clear
	resvd_0x30 uint32
	lev        [2]uint32 // GPIO Pin Level
}

// MemGPIO drives pins by poking the set/clear registers directly. A level
// change is a single store, roughly an order of magnitude cheaper than a
// character-device ioctl, which matters when every frame bit costs three
// level changes.
type MemGPIO struct {
	buf  mmap.MMap
	regs *gpioRegs
}

// OpenMemGPIO maps the GPIO register block via /dev/gpiomem. Only works on
// Raspberry Pi-class hardware exposing that device.
func OpenMemGPIO() (*MemGPIO, error) {
	f, err := os.OpenFile("/dev/gpiomem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("couldn't open /dev/gpiomem: %v", err)
	}
	// The register block is well under a page; map a whole page.
	buf, err := mmap.MapRegion(f, os.Getpagesize(), mmap.RDWR, 0, 0)
	f.Close() // Ignore error - the mapping outlives the fd
	if err != nil {
		return nil, fmt.Errorf("couldn't map GPIO registers: %v", err)
	}
	m := MemGPIO{buf: buf}
	m.regs = (*gpioRegs)(unsafe.Pointer(&buf[0]))
	return &m, nil
}

// OutputLine configures pin as an output and returns a Line driving it.
func (m *MemGPIO) OutputLine(pin int) (*MemLine, error) {
	if pin < 0 || pin > 53 { // p94
		return nil, fmt.Errorf("pin %d not supported", pin)
	}
	reg := pin / 10
	offset := uint((pin % 10) * 3)
	m.regs.fsel[reg] &= ^(uint32(0x7) << offset)
	m.regs.fsel[reg] |= 1 << offset
	return &MemLine{m, pin / 32, 1 << uint(pin%32)}, nil
}

func (m *MemGPIO) Close() error {
	return m.buf.Unmap()
}

// MemLine is one output pin of a MemGPIO block.
type MemLine struct {
	m    *MemGPIO
	reg  int
	mask uint32
}

func (l *MemLine) SetLevel(lv Level) error {
	if lv == High {
		l.m.regs.set[l.reg] = l.mask
	} else {
		l.m.regs.clr[l.reg] = l.mask
	}
	return nil
}
