package pixarray

import (
	"fmt"
)

func abs(i int) int {
	if i >= 0 {
		return i
	}
	return -i
}

// Pixel is one LED's requested output. R, G and B are 8-bit channel values;
// Brightness is the APA102 5-bit global-dimming value for that LED.
// Out-of-range values are masked to their field width when encoded, matching
// what the hardware does with over-range input.
type Pixel struct {
	R          int
	G          int
	B          int
	Brightness int
}

func (p *Pixel) String() string {
	return fmt.Sprintf("%02x%02x%02x%02x", p.R, p.G, p.B, p.Brightness)
}

type PixArray struct {
	numPixels int
	numColors int
	leds      LEDStrip
}

func NewPixArray(numPixels int, numColors int, leds LEDStrip) *PixArray {
	return &PixArray{numPixels, numColors, leds}
}

func (pa *PixArray) NumPixels() int {
	return pa.numPixels
}

func (pa *PixArray) NumColors() int {
	return pa.numColors
}

func (pa *PixArray) MaxPerChannel() int {
	return pa.leds.MaxPerChannel()
}

func (pa *PixArray) MaxBrightness() int {
	return pa.leds.MaxBrightness()
}

func (pa *PixArray) Write() error {
	return pa.leds.Write()
}

func (pa *PixArray) GetPixels() []Pixel {
	p := make([]Pixel, pa.numPixels)
	for i := 0; i < pa.numPixels; i++ {
		p[i] = pa.leds.GetPixel(i)
	}
	return p
}

func (pa *PixArray) GetPixel(i int) Pixel {
	return pa.leds.GetPixel(i)
}

// SetAlternate distributes p1 and p2 across the array such that num out of
// every div pixels show p2, spread as evenly as possible.
func (pa *PixArray) SetAlternate(num int, div int, p1 Pixel, p2 Pixel) {
	totSet := 0
	shouldSet := 0
	for i := 0; i < pa.numPixels; i++ {
		shouldSet += num
		e1 := abs((totSet + div) - shouldSet)
		e2 := abs(totSet - shouldSet)
		if e1 < e2 {
			totSet += div
			pa.leds.SetPixel(i, p2)
		} else {
			pa.leds.SetPixel(i, p1)
		}
	}
}

// SetPerChanAlternate is SetAlternate with the choice made independently per
// channel, which is what a fade needs for smooth dithering.
func (pa *PixArray) SetPerChanAlternate(num Pixel, div int, p1 Pixel, p2 Pixel) {
	totSet := Pixel{}
	shouldSet := Pixel{}
	p := Pixel{}
	for i := 0; i < pa.numPixels; i++ {
		shouldSet.R += num.R
		e1 := abs((totSet.R + div) - shouldSet.R)
		e2 := abs(totSet.R - shouldSet.R)
		if e1 < e2 {
			totSet.R += div
			p.R = p2.R
		} else {
			p.R = p1.R
		}
		shouldSet.G += num.G
		e1 = abs((totSet.G + div) - shouldSet.G)
		e2 = abs(totSet.G - shouldSet.G)
		if e1 < e2 {
			totSet.G += div
			p.G = p2.G
		} else {
			p.G = p1.G
		}
		shouldSet.B += num.B
		e1 = abs((totSet.B + div) - shouldSet.B)
		e2 = abs(totSet.B - shouldSet.B)
		if e1 < e2 {
			totSet.B += div
			p.B = p2.B
		} else {
			p.B = p1.B
		}
		if pa.numColors == 4 {
			shouldSet.Brightness += num.Brightness
			e1 = abs((totSet.Brightness + div) - shouldSet.Brightness)
			e2 = abs(totSet.Brightness - shouldSet.Brightness)
			if e1 < e2 {
				totSet.Brightness += div
				p.Brightness = p2.Brightness
			} else {
				p.Brightness = p1.Brightness
			}
		}
		pa.leds.SetPixel(i, p)
	}
}

func (pa *PixArray) SetAll(p Pixel) {
	for i := 0; i < pa.numPixels; i++ {
		pa.leds.SetPixel(i, p)
	}
}

func (pa *PixArray) SetOne(i int, p Pixel) {
	pa.leds.SetPixel(i, p)
}
