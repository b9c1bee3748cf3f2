package clockless

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"periph.io/x/devices/v3/clockless/strip"
)

// PixelSource produces the channel bytes of one frame, pixel by pixel.
//
// The bytes are final: color order, brightness, gamma and dithering are
// applied by the source. A source is consumed once per ShowPixels call.
type PixelSource interface {
	// Size returns the number of pixels left.
	Size() int
	// Has reports whether at least n more pixels remain.
	Has(n int) bool
	// LoadAndScale0 returns the first channel byte of the current pixel.
	LoadAndScale0() byte
	// LoadAndScale1 returns the second channel byte of the current pixel.
	LoadAndScale1() byte
	// LoadAndScale2 returns the third channel byte of the current pixel.
	LoadAndScale2() byte
	// AdvanceData moves to the next pixel.
	AdvanceData()
	// StepDithering is called once per pixel after AdvanceData.
	StepDithering()
}

// Opts is the configuration of a strip.
type Opts struct {
	// Name of the pin carrying the data line, checked against the MOSI pin of
	// the SPI connection when it exposes one. Optional.
	DataPin string

	// Frequency and Encoding must be chosen together: patterns calibrated for
	// one frequency produce an out of tolerance waveform at any other.
	Frequency physic.Frequency
	Mode      spi.Mode // Clock mode, must not include spi.LSBFirst
	Encoding  Encoding

	// ResetLength is the number of zero bytes sent after the pixels to latch
	// the frame.
	ResetLength int
	// MaxRefreshRate is the frame rate advertised to schedulers, in Hz.
	MaxRefreshRate int

	// Strip geometry, used by Write, Draw and Halt. ShowPixels sends whatever
	// its source yields.
	NumPixels int
	Order     strip.Order

	// MaxBufferSize caps the frame buffer in bytes, 0 means no cap.
	MaxBufferSize int

	// Logger receives debug and warning entries, nil means
	// logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// DefaultOpts is the configuration for a WS2812 strip: 6.4MHz, mode 0 and
// a 10 bytes (12.5µs) reset tail.
var DefaultOpts = Opts{
	Frequency:      6400 * physic.KiloHertz,
	Mode:           spi.Mode0,
	Encoding:       DefaultEncoding,
	ResetLength:    10,
	MaxRefreshRate: 400,
	Order:          strip.OrderGRB,
}

func (o *Opts) validate() error {
	if o.Frequency <= 0 {
		return errors.Errorf("clockless: invalid frequency %s", o.Frequency)
	}
	if o.Mode&spi.LSBFirst != 0 {
		return errors.New("clockless: bits must be sent MSB first")
	}
	if err := o.Encoding.validate(); err != nil {
		return err
	}
	if o.ResetLength < 0 {
		return errors.New("clockless: reset length must be positive")
	}
	if o.MaxRefreshRate <= 0 {
		return errors.New("clockless: max refresh rate must be positive")
	}
	if o.NumPixels < 0 {
		return errors.New("clockless: number of pixels must be positive")
	}
	if o.MaxBufferSize < 0 {
		return errors.New("clockless: max buffer size must be positive")
	}
	return nil
}

// Stats counts the work done by a Dev.
type Stats struct {
	Frames      int // Frames written
	Bytes       int // Bytes written, reset tails included
	Allocations int // Frame buffer (re)allocations
}

// Dev is a handle to an LED strip.
type Dev struct {
	p    spi.Port
	opts Opts
	log  logrus.FieldLogger

	// mu is held for a whole frame, buffer build and write.
	mu    sync.Mutex
	c     spi.Conn // nil until Init
	maxTx int

	buf   []byte
	alloc func(n int) ([]byte, error)

	img    *strip.Image // Draw target, allocated on first Draw
	stats  Stats
	halted bool
}

// New returns a handle to the strip on p. It does not touch the port: call
// Init before the first frame.
//
// opts can be nil to use DefaultOpts.
func New(p spi.Port, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	d := &Dev{
		p:     p,
		opts:  *opts,
		log:   opts.Logger,
		alloc: allocate,
	}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}
	return d, nil
}

// NewSPI returns an initialized handle to the strip on p.
//
// opts can be nil to use DefaultOpts.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	d, err := New(p, opts)
	if err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Init connects to the SPI port at the configured frequency and mode, 8 bits
// per word. It must be called exactly once.
func (d *Dev) Init() error {
	if !d.mu.TryLock() {
		return ErrBusy
	}
	defer d.mu.Unlock()
	if d.c != nil {
		return ErrAlreadyInitialized
	}
	c, err := d.p.Connect(d.opts.Frequency, d.opts.Mode, 8)
	if err != nil {
		return errors.Wrap(err, "clockless: connect")
	}
	if err := checkDataPin(c, d.opts.DataPin); err != nil {
		return err
	}
	if l, ok := c.(conn.Limits); ok {
		d.maxTx = l.MaxTxSize()
	}
	d.c = c
	d.log.WithFields(logrus.Fields{
		"port":      d.p.String(),
		"frequency": d.opts.Frequency.String(),
		"mode":      int(d.opts.Mode),
		"maxTx":     d.maxTx,
	}).Debug("clockless: connected")
	return nil
}

// checkDataPin verifies the MOSI pin of c is named want.
func checkDataPin(c spi.Conn, want string) error {
	if want == "" {
		return nil
	}
	p, ok := c.(spi.Pins)
	if !ok {
		return nil
	}
	if mosi := p.MOSI(); mosi != nil && mosi.Name() != want {
		return errors.Errorf("clockless: data pin is %s, want %s", mosi.Name(), want)
	}
	return nil
}

// ShowPixels encodes the pixels of src and writes them, followed by the
// reset tail, in one transaction. It returns once the write completed.
//
// On error nothing is written and the strip keeps showing the previous
// frame.
func (d *Dev) ShowPixels(src PixelSource) error {
	s, err := d.acquire()
	if err != nil {
		return err
	}
	defer s.release()
	return d.show(s, src)
}

// show builds and writes one frame. d.mu must be held.
func (d *Dev) show(s session, src PixelSource) error {
	if err := d.buildFrame(src); err != nil {
		d.log.WithError(err).Warn("clockless: frame skipped")
		return err
	}
	if err := s.write(d.buf); err != nil {
		return err
	}
	d.stats.Frames++
	d.stats.Bytes += len(d.buf)
	return nil
}

// MaxRefreshRate returns the highest frame rate the strip is advertised to
// sustain, in Hz. It is not enforced.
func (d *Dev) MaxRefreshRate() int {
	return d.opts.MaxRefreshRate
}

// Stats returns the counters since the device was created.
func (d *Dev) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Write accepts a stream of raw pixels, 3 bytes each, already in the wire
// channel order of the strip, and sends it as one frame.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, ErrLength
	}
	img := &strip.Image{Pix: pixels, Stride: len(pixels), Rect: image.Rect(0, 0, len(pixels)/3, 1)}
	if err := d.ShowPixels(strip.NewSource(img, 0, strip.OrderRGB, 255)); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// ColorModel implements display.Drawer. There's no surprise, it is
// color.NRGBAModel.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.opts.NumPixels, 1)
}

// Draw implements display.Drawer.
//
// The strip keeps its own copy of the pixels so a Draw over part of the
// bounds leaves the other LEDs as they were. The whole strip is sent every
// time.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return ErrHalted
	}
	dst = dst.Intersect(d.Bounds())
	if dst.Empty() {
		return nil
	}
	if d.img == nil {
		d.img = strip.NewImage(d.Bounds())
	}
	draw.Draw(d.img, dst, src, sp, draw.Src)
	return d.ShowPixels(strip.NewSource(d.img, 0, d.opts.Order, 255))
}

// Halt turns off every LED of the strip and releases the frame buffer.
//
// After calling Halt, the device refuses further frames.
func (d *Dev) Halt() error {
	if !d.mu.TryLock() {
		return ErrBusy
	}
	defer d.mu.Unlock()
	if d.halted {
		return nil
	}
	var err error
	if d.c != nil {
		blank := strip.NewImage(d.Bounds())
		err = d.show(d.session(), strip.NewSource(blank, 0, strip.OrderRGB, 255))
	}
	d.halted = true
	d.buf = nil
	d.img = nil
	return err
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("clockless.Dev{%s, %d LEDs}", d.opts.Frequency, d.opts.NumPixels)
}

var _ display.Drawer = &Dev{}
