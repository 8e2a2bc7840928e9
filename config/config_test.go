package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apa102ctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pixels: 144\ngpio:\n  chip: /dev/gpiochip1\n  clock_line: 11\n  data_line: 10\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 144, c.Pixels)
	assert.Equal(t, "/dev/gpiochip1", c.GPIO.Chip)
	assert.Equal(t, 11, c.GPIO.ClockLine)
	assert.Equal(t, 10, c.GPIO.DataLine)
	// Unset fields keep their defaults.
	assert.Equal(t, "gpiod", c.Backend)
	assert.Equal(t, 31, c.Brightness)
	assert.Equal(t, 24601, c.Port)
	assert.Equal(t, -1, c.Power.CtrlLine)
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apa102ctl.yaml")
	c := Default()
	c.Backend = "spi"
	c.Pixels = 300
	c.SPI.Dev = "/dev/spidev0.1"
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "dma" }},
		{"zero pixels", func(c *Config) { c.Pixels = 0 }},
		{"negative pixels", func(c *Config) { c.Pixels = -3 }},
		{"brightness over range", func(c *Config) { c.Brightness = 32 }},
		{"intensity over range", func(c *Config) { c.SPI.Intensity = 300 }},
		{"bad port", func(c *Config) { c.Port = 0 }},
	}

	for _, test := range tests {
		c := Default()
		test.mutate(c)
		assert.Error(t, c.Validate(), test.name)
	}
	assert.NoError(t, Default().Validate())
}
