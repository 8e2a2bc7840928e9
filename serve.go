package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lightshed/apa102ctl/config"
	"github.com/lightshed/apa102ctl/effects"
	"github.com/lightshed/apa102ctl/gpio"
	"github.com/lightshed/apa102ctl/pixarray"
)

var configFile = flag.String("config", "", "A YAML config file; overrides the other flags when set")
var backend = flag.String("backend", "gpiod", "How to reach the strip: one of gpiod, memmap, periph, spi")
var chip = flag.String("chip", "/dev/gpiochip0", "The GPIO character device the strip is connected to")
var clkLine = flag.Int("clk", 24, "The line offset of the clock output (gpiod and memmap backends)")
var datLine = flag.Int("dat", 23, "The line offset of the data output (gpiod and memmap backends)")
var periphClk = flag.String("periphclk", "GPIO24", "The periph pin name of the clock output")
var periphDat = flag.String("periphdat", "GPIO23", "The periph pin name of the data output")
var spiDev = flag.String("spidev", "", "The SPI port for the spi backend, empty for the first registered one")
var spiIntensity = flag.Int("spiintensity", 255, "The global intensity for the spi backend")
var pixels = flag.Int("pixels", 8, "The number of pixels to be controlled")
var brightness = flag.Int("brightness", 31, "The default per-pixel brightness, 0-31")
var port = flag.Int("port", 24601, "The port that the server should listen to")

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

type Server struct {
	pa      *pixarray.PixArray
	pw      *powerControl
	l       net.Listener
	c       chan effects.Effect
	laste   effects.Effect
	off     bool
	running bool
}

func NewServer(port int, pa *pixarray.PixArray, pw *powerControl) (*Server, error) {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	c := make(chan effects.Effect)
	logger.Info().Msgf("Listening on port %d", port)
	return &Server{pa, pw, l, c, nil, true, false}, nil
}

func parseDuration(parms string) (string, time.Duration, error) {
	t := strings.SplitN(parms, " ", 2)
	d, err := time.ParseDuration(t[0] + "s")
	if err != nil {
		return "", 0, err
	}
	if len(t) == 1 {
		return "", d, nil
	}
	return t[1], d, nil
}

// parseColor reads an RRGGBBWW hex token, the last byte being the APA102
// per-pixel brightness.
func (s *Server) parseColor(parms string) (string, *pixarray.Pixel, error) {
	t := strings.SplitN(parms, " ", 2)
	var p pixarray.Pixel
	n, err := fmt.Sscanf(t[0], "%02X%02X%02X%02X", &p.R, &p.G, &p.B, &p.Brightness)
	if err != nil && err != io.EOF {
		return "", nil, err
	}
	if n != s.pa.NumColors() {
		return "", nil, fmt.Errorf("only %d tokens parsed from '%s', wanted %d", n, t[0], s.pa.NumColors())
	}
	max := s.pa.MaxPerChannel()
	if p.R > max || p.G > max || p.B > max {
		return "", nil, fmt.Errorf("invalid color: one or more of %d, %d, %d is >%d, parsed from %s", p.R, p.G, p.B, max, t[0])
	}
	if p.Brightness > s.pa.MaxBrightness() {
		return "", nil, fmt.Errorf("invalid brightness %d, >%d, parsed from %s", p.Brightness, s.pa.MaxBrightness(), t[0])
	}
	if len(t) == 1 {
		return "", &p, nil
	}
	return t[1], &p, nil
}

func (s *Server) createEffect(cmd, parms string, w *bufio.Writer) (effects.Effect, error) {
	switch {
	case cmd == "FADE_ALL":
		parms, p, err := s.parseColor(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing color: %v", err)
		}
		_, d, err := parseDuration(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing duration: %v", err)
		}
		return effects.NewFade(d, *p), nil
	case cmd == "ZIP_SET_ALL":
		parms, p, err := s.parseColor(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing color: %v", err)
		}
		_, d, err := parseDuration(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing duration: %v", err)
		}
		return effects.NewZip(d, *p), nil
	case cmd == "CYCLE":
		_, d, err := parseDuration(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing duration: %v", err)
		}
		return effects.NewCycle(d), nil
	case cmd == "RAINBOW":
		_, d, err := parseDuration(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing duration: %v", err)
		}
		return effects.NewRainbow(d), nil
	case cmd == "KNIGHTRIDER":
		_, d, err := parseDuration(parms)
		if err != nil {
			return nil, fmt.Errorf("error parsing duration: %v", err)
		}
		return effects.NewKnightRider(d, s.pa.NumPixels()/4), nil
	case cmd == "GET":
		for _, p := range s.pa.GetPixels() {
			if p.R != 0 || p.G != 0 || p.B != 0 {
				w.WriteString("1\n")
				err := w.Flush()
				return nil, err
			}
		}
		w.WriteString("0\n")
		err := w.Flush()
		return nil, err
	case cmd == "COLOUR" || cmd == "COLOR":
		p := s.pa.GetPixels()[0]
		c := p.String() + "\n"
		logger.Info().Msgf("Returning %s", c)
		w.WriteString(c)
		err := w.Flush()
		return nil, err
	case cmd == "MODE":
		n := "CONST"
		if s.off {
			n = "OFF"
		} else if s.running {
			if s.laste == nil {
				return nil, fmt.Errorf("s running, but laste nil!")
			}
			n = s.laste.Name()
		}
		logger.Info().Msgf("Mode '%s'", n)
		if parms == "" {
			w.WriteString(n + "\n")
			err := w.Flush()
			return nil, err
		}
		r := "0\n"
		if parms == n {
			r = "1\n"
		}
		w.WriteString(r)
		err := w.Flush()
		return nil, err
	case cmd == "ON":
		return s.laste, nil
	case cmd == "OFF":
		// Hack: we insert this directly into the channel because we don't want to overwrite whatever the last effect was
		fb := effects.NewFade(20*time.Second, pixarray.Pixel{R: 0, G: 0, B: 0, Brightness: 0})
		s.off = true
		s.c <- fb
		return nil, nil
	}
	return nil, fmt.Errorf("unknown command: %s", cmd)
}

func (s *Server) runEffects() {
	var laste, e effects.Effect
	var d time.Duration
	var steps int
	var start time.Time
	for {
		if d == 0 {
			e = <-s.c
		} else {
			select {
			case e = <-s.c:
				break
			case <-time.After(d):
				break
			}
		}
		if e == nil {
			logger.Fatal().Msg("Ready to process effect, but no effect!")
		}
		if e != laste {
			if err := s.pw.on(); err != nil {
				logger.Fatal().Err(err).Msg("Failed power-on")
			}
			start = time.Now()
			e.Start(s.pa, start)
			s.running = true
			steps = 0
		}
		d = e.NextStep(s.pa, time.Now())
		steps++
		if err := s.pa.Write(); err != nil {
			logger.Error().Err(err).Msg("Failed writing to strip")
		}
		if d == 0 {
			d := time.Since(start)
			ps := time.Duration(d.Nanoseconds() / int64(steps))
			logger.Info().Msgf("Finished effect, %d steps, %s total, %s/step", steps, d, ps)
			laste = nil
			e = nil
			s.running = false
			p := s.pa.GetPixels()[0]
			if p.R <= 0 && p.G <= 0 && p.B <= 0 {
				if err := s.pw.off(); err != nil {
					logger.Fatal().Err(err).Msg("Failed power-off")
				}
			}
		} else {
			laste = e
		}
	}
}

func (s *Server) handleConnection(c net.Conn) {
	logger.Info().Msgf("Handling connection from %v", c.RemoteAddr())
	defer c.Close()
	r := bufio.NewReader(c)
	w := bufio.NewWriter(c)
	for {
		l, err := r.ReadString('\n')
		if err == io.EOF {
			logger.Info().Msgf("EOF for connection %v", c.RemoteAddr())
			return
		}
		if err != nil {
			logger.Error().Err(err).Msgf("Error reading string for connection %v", c.RemoteAddr())
			return
		}
		l = strings.TrimSpace(l)
		logger.Info().Msgf("Got line '%s'", l)
		t := strings.SplitN(l, " ", 2)
		cmd := strings.ToUpper(t[0])
		parms := ""
		if len(t) > 1 {
			parms = t[1]
		}
		if cmd == "QUIT" {
			return
		}
		e, err := s.createEffect(cmd, parms, w)
		if err != nil {
			es := fmt.Sprintf("Error creating effect: %v", err)
			logger.Error().Msg(es)
			w.WriteString("ERR: " + es + "\n")
			err = w.Flush()
			if err != nil {
				logger.Error().Err(err).Msg("error writing error reply")
			}
			return
		}
		if e != nil {
			// Some commands don't result in a new Effect, e.g. status
			// those commands write their own reply.
			w.WriteString("OK\n")
			err = w.Flush()
			if err != nil {
				logger.Error().Err(err).Msg("error writing reply")
			}
			s.c <- e
			s.laste = e
			s.off = false
		}
	}
}

func (s *Server) handleConnections() {
	for {
		conn, err := s.l.Accept()
		if err != nil {
			logger.Error().Err(err).Msg("Error accepting connection")
			continue
		}
		go s.handleConnection(conn)
	}
}

func loadConfig() (*config.Config, error) {
	if *configFile != "" {
		return config.Load(*configFile)
	}
	cfg := config.Default()
	cfg.Backend = *backend
	cfg.Pixels = *pixels
	cfg.Brightness = *brightness
	cfg.Port = *port
	cfg.GPIO = config.GPIO{Chip: *chip, ClockLine: *clkLine, DataLine: *datLine}
	cfg.Periph = config.Periph{ClockPin: *periphClk, DataPin: *periphDat}
	cfg.SPI = config.SPI{Dev: *spiDev, Intensity: *spiIntensity}
	cfg.Power = config.Power{CtrlLine: *powerCtrlLine, StatusLine: *powerStatusLine, StatusWait: powerStatusWait.String()}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newStrip(cfg *config.Config) (pixarray.LEDStrip, error) {
	switch cfg.Backend {
	case "gpiod":
		clk, err := gpio.RequestOutput(cfg.GPIO.Chip, cfg.GPIO.ClockLine)
		if err != nil {
			return nil, fmt.Errorf("couldn't get clock line: %v", err)
		}
		dat, err := gpio.RequestOutput(cfg.GPIO.Chip, cfg.GPIO.DataLine)
		if err != nil {
			clk.Close() // Ignore error
			return nil, fmt.Errorf("couldn't get data line: %v", err)
		}
		return pixarray.NewAPA102(clk, dat, cfg.Pixels, true)
	case "memmap":
		m, err := gpio.OpenMemGPIO()
		if err != nil {
			return nil, fmt.Errorf("couldn't open GPIO registers: %v", err)
		}
		clk, err := m.OutputLine(cfg.GPIO.ClockLine)
		if err != nil {
			return nil, fmt.Errorf("couldn't get clock line: %v", err)
		}
		dat, err := m.OutputLine(cfg.GPIO.DataLine)
		if err != nil {
			return nil, fmt.Errorf("couldn't get data line: %v", err)
		}
		return pixarray.NewAPA102(clk, dat, cfg.Pixels, true)
	case "periph":
		clk, err := gpio.OpenPeriphPin(cfg.Periph.ClockPin)
		if err != nil {
			return nil, fmt.Errorf("couldn't get clock pin: %v", err)
		}
		dat, err := gpio.OpenPeriphPin(cfg.Periph.DataPin)
		if err != nil {
			return nil, fmt.Errorf("couldn't get data pin: %v", err)
		}
		return pixarray.NewAPA102(clk, dat, cfg.Pixels, true)
	case "spi":
		return pixarray.NewAPA102SPI(cfg.SPI.Dev, cfg.Pixels, uint8(cfg.SPI.Intensity))
	}
	return nil, fmt.Errorf("unrecognized backend: %v", cfg.Backend)
}

func main() {
	flag.Parse()
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Bad configuration")
	}
	leds, err := newStrip(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msgf("Failed creating %s strip", cfg.Backend)
	}
	pa := pixarray.NewPixArray(cfg.Pixels, 4, leds)
	// Pre-set the brightness channel so RGB-only fades are visible.
	pa.SetAll(pixarray.Pixel{R: 0, G: 0, B: 0, Brightness: cfg.Brightness})

	pw, err := initPower(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed power setup")
	}

	s, err := NewServer(cfg.Port, pa, pw)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed creating server")
	}
	go s.runEffects()
	s.handleConnections()
}
