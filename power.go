package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/lightshed/apa102ctl/config"
	"github.com/lightshed/apa102ctl/gpio"
)

var powerCtrlLine = flag.Int("powerctrl", -1, "The line offset controlling the strip's power supply, -1 for none")
var powerStatusLine = flag.Int("powerstatus", -1, "The line offset reporting supply status, -1 for none")
var powerStatusWait = flag.Duration("powerwait", 2*time.Second, "How long to wait for the supply to report good status")

// powerControl switches the strip's power supply on and off. A nil
// *powerControl is valid and does nothing.
type powerControl struct {
	ctrl   *gpio.CdevLine
	status *gpio.CdevInput
	wait   time.Duration
	ison   bool
}

func initPower(cfg *config.Config) (*powerControl, error) {
	if cfg.Power.CtrlLine < 0 {
		return nil, nil
	}
	wait, err := time.ParseDuration(cfg.Power.StatusWait)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse status wait: %v", err)
	}
	ctrl, err := gpio.RequestOutput(cfg.GPIO.Chip, cfg.Power.CtrlLine)
	if err != nil {
		return nil, fmt.Errorf("couldn't get power control line: %v", err)
	}
	pc := powerControl{ctrl: ctrl, wait: wait}
	if cfg.Power.StatusLine >= 0 {
		pc.status, err = gpio.RequestInput(cfg.GPIO.Chip, cfg.Power.StatusLine)
		if err != nil {
			ctrl.Close() // Ignore error
			return nil, fmt.Errorf("couldn't get power status line: %v", err)
		}
	}
	return &pc, nil
}

func (pc *powerControl) on() error {
	if pc == nil || pc.ison {
		return nil
	}
	logger.Info().Msg("Powering strip on")
	if err := pc.ctrl.SetLevel(gpio.High); err != nil {
		return fmt.Errorf("couldn't set power control line: %v", err)
	}
	if pc.status != nil {
		deadline := time.Now().Add(pc.wait)
		for {
			lv, err := pc.status.Level()
			if err != nil {
				return fmt.Errorf("couldn't read power status line: %v", err)
			}
			if lv == gpio.High {
				break
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("power status still low after %s", pc.wait)
			}
			time.Sleep(50 * time.Millisecond)
		}
	}
	pc.ison = true
	return nil
}

func (pc *powerControl) off() error {
	if pc == nil || !pc.ison {
		return nil
	}
	logger.Info().Msg("Powering strip off")
	if err := pc.ctrl.SetLevel(gpio.Low); err != nil {
		return fmt.Errorf("couldn't clear power control line: %v", err)
	}
	pc.ison = false
	return nil
}
