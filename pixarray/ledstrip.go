package pixarray

// LEDStrip is a chain of LEDs with some transport underneath. SetPixel
// updates a framebuffer; Write pushes the whole buffer to the hardware.
type LEDStrip interface {
	MaxPerChannel() int
	MaxBrightness() int
	GetPixel(i int) Pixel
	SetPixel(i int, p Pixel)
	Write() error
	Close() error
}
