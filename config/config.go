// Package config loads the controller configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GPIO names the character-device lines used by the bitbang backends.
type GPIO struct {
	Chip      string `yaml:"chip"`       // e.g. /dev/gpiochip0
	ClockLine int    `yaml:"clock_line"` // line offset of the clock output
	DataLine  int    `yaml:"data_line"`  // line offset of the data output
}

// Periph names the pins used by the periph backend.
type Periph struct {
	ClockPin string `yaml:"clock_pin"` // e.g. GPIO24
	DataPin  string `yaml:"data_pin"`  // e.g. GPIO23
}

// SPI configures the hardware-SPI backend.
type SPI struct {
	Dev       string `yaml:"dev"`       // e.g. /dev/spidev0.0, empty for first port
	Intensity int    `yaml:"intensity"` // global brightness, 0-255
}

// Power configures the optional supply-switching lines.
type Power struct {
	CtrlLine   int    `yaml:"ctrl_line"`   // -1 for none
	StatusLine int    `yaml:"status_line"` // -1 for none
	StatusWait string `yaml:"status_wait"` // how long to wait for healthy power, e.g. "2s"
}

type Config struct {
	Backend    string `yaml:"backend"` // gpiod | memmap | periph | spi
	Pixels     int    `yaml:"pixels"`
	Brightness int    `yaml:"brightness"` // default per-pixel brightness, 0-31
	Port       int    `yaml:"port"`

	GPIO   GPIO   `yaml:"gpio"`
	Periph Periph `yaml:"periph,omitempty"`
	SPI    SPI    `yaml:"spi,omitempty"`
	Power  Power  `yaml:"power,omitempty"`
}

var backends = map[string]bool{
	"gpiod":  true,
	"memmap": true,
	"periph": true,
	"spi":    true,
}

func Default() *Config {
	return &Config{
		Backend:    "gpiod",
		Pixels:     8,
		Brightness: 31,
		Port:       24601,
		GPIO:       GPIO{Chip: "/dev/gpiochip0", ClockLine: 24, DataLine: 23},
		Periph:     Periph{ClockPin: "GPIO24", DataPin: "GPIO23"},
		SPI:        SPI{Intensity: 255},
		Power:      Power{CtrlLine: -1, StatusLine: -1, StatusWait: "2s"},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read config: %v", err)
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("couldn't parse config: %v", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	if !backends[c.Backend] {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Pixels < 1 {
		return fmt.Errorf("invalid pixel count %d", c.Pixels)
	}
	if c.Brightness < 0 || c.Brightness > 31 {
		return fmt.Errorf("brightness %d outside [0, 31]", c.Brightness)
	}
	if c.SPI.Intensity < 0 || c.SPI.Intensity > 255 {
		return fmt.Errorf("SPI intensity %d outside [0, 255]", c.SPI.Intensity)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}
