package strip

// Source walks one row of an Image and hands out brightness scaled channel
// bytes in wire order. It is single pass: once Has(1) reports false, call
// Reset before handing it to the driver again.
//
// Source satisfies clockless.PixelSource.
type Source struct {
	img        *Image
	row        int // byte offset of the row in img.Pix
	order      [3]int
	brightness uint8
	dither     bool

	pos, end int // current and last pixel offset in the row, in bytes

	// Temporal dithering state, one lane per wire channel.
	cycle uint8
	d, e  [3]uint8
}

// NewSource returns a Source over row y of img.
//
// brightness scales every channel; 255 passes the bytes through unchanged.
func NewSource(img *Image, y int, o Order, brightness uint8) *Source {
	s := &Source{
		img:        img,
		order:      o.Channels(),
		brightness: brightness,
	}
	if y >= img.Rect.Min.Y && y < img.Rect.Max.Y {
		s.row = (y - img.Rect.Min.Y) * img.Stride
		s.end = s.row + 3*img.Rect.Dx()
	}
	s.Reset()
	return s
}

// SetDithering enables temporal dithering of the brightness scaling error.
//
// Dithering has no effect at full brightness since there is no rounding
// error to spread.
func (s *Source) SetDithering(on bool) {
	s.dither = on
	s.initDithering()
}

// Reset rewinds the source to the first pixel and advances the dithering
// cycle to the next frame.
func (s *Source) Reset() {
	s.pos = s.row
	s.cycle++
	s.initDithering()
}

// Size returns the number of pixels left.
func (s *Source) Size() int {
	return (s.end - s.pos) / 3
}

// Has reports whether at least n more pixels remain.
func (s *Source) Has(n int) bool {
	return s.Size() >= n
}

// LoadAndScale0 returns the first wire channel of the current pixel.
func (s *Source) LoadAndScale0() byte {
	return s.load(0)
}

// LoadAndScale1 returns the second wire channel of the current pixel.
func (s *Source) LoadAndScale1() byte {
	return s.load(1)
}

// LoadAndScale2 returns the third wire channel of the current pixel.
func (s *Source) LoadAndScale2() byte {
	return s.load(2)
}

// AdvanceData moves to the next pixel.
func (s *Source) AdvanceData() {
	if s.pos < s.end {
		s.pos += 3
	}
}

// StepDithering flips the dithering offsets between consecutive pixels.
func (s *Source) StepDithering() {
	for i := range s.d {
		s.d[i] = s.e[i] - s.d[i]
	}
}

func (s *Source) load(lane int) byte {
	if s.pos >= s.end {
		return 0
	}
	b := s.img.Pix[s.pos+s.order[lane]]
	if s.dither && s.brightness != 255 {
		b = qadd8(b, s.d[lane])
	}
	return scale8(b, s.brightness)
}

// initDithering seeds the per-lane offsets from the frame cycle. The 3 low
// bits of the cycle are bit reversed so consecutive frames land far apart.
func (s *Source) initDithering() {
	if !s.dither || s.brightness == 255 {
		s.d = [3]uint8{}
		s.e = [3]uint8{}
		return
	}
	r := s.cycle & 7
	var q uint8
	if r&1 != 0 {
		q |= 0x80
	}
	if r&2 != 0 {
		q |= 0x40
	}
	if r&4 != 0 {
		q |= 0x20
	}
	q += 0x10
	for i := range s.e {
		var e uint8
		if s.brightness != 0 {
			e = uint8(min(256/uint16(s.brightness)+1, 255))
		}
		d := scale8(q, e)
		if d != 0 {
			d--
		}
		if e != 0 {
			e--
		}
		s.d[i] = d
		s.e[i] = e
	}
}

// scale8 returns v * scale / 256 with 255 mapping v to itself.
func scale8(v, scale uint8) uint8 {
	return uint8((uint16(v) * (1 + uint16(scale))) >> 8)
}

// qadd8 adds with saturation at 255.
func qadd8(a, b uint8) uint8 {
	if s := uint16(a) + uint16(b); s < 256 {
		return uint8(s)
	}
	return 255
}
