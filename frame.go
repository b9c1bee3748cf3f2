package clockless

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// bitsPerPixel is the number of output bytes per pixel: 3 channels of 8
// bits, one pattern byte per bit.
const bitsPerPixel = 3 * 8

// frameSize returns the buffer length for pixels LEDs and reset trailing
// zero bytes.
func frameSize(pixels, reset int) int {
	return pixels*bitsPerPixel + reset
}

// allocate is the default buffer allocator. A length make cannot satisfy is
// reported as an error instead of a panic.
func allocate(n int) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, errors.Errorf("%v", r)
		}
	}()
	return make([]byte, n), nil
}

// resize makes d.buf exactly n bytes long, reusing it when it already is.
//
// On reallocation the reset tail is zeroed and the pixel area is left for
// encodeFrame to overwrite. On failure d.buf is dropped so no stale buffer
// is ever sent.
func (d *Dev) resize(n int) error {
	if d.buf != nil && len(d.buf) == n {
		return nil
	}
	old := len(d.buf)
	d.buf = nil
	if d.opts.MaxBufferSize > 0 && n > d.opts.MaxBufferSize {
		return errors.Wrapf(ErrAllocation, "%d bytes over the %d bytes limit", n, d.opts.MaxBufferSize)
	}
	b, err := d.alloc(n)
	if err != nil {
		return errors.Wrapf(ErrAllocation, "%d bytes: %v", n, err)
	}
	if len(b) != n {
		return errors.Wrapf(ErrAllocation, "got %d bytes, want %d", len(b), n)
	}
	clear(b[n-d.opts.ResetLength:])
	d.buf = b
	d.stats.Allocations++
	d.log.WithFields(logrus.Fields{"old": old, "new": n}).Debug("clockless: frame buffer allocated")
	return nil
}

// buildFrame sizes the buffer for src and encodes every pixel into it.
func (d *Dev) buildFrame(src PixelSource) error {
	pixels := src.Size()
	if err := d.resize(frameSize(pixels, d.opts.ResetLength)); err != nil {
		return err
	}
	want := pixels * bitsPerPixel
	if n, err := d.encodeFrame(d.buf[:want], src); err != nil {
		return err
	} else if n != want {
		return errors.Wrapf(ErrFrameSize, "got %d of %d pixels", n/bitsPerPixel, pixels)
	}
	return nil
}

// encodeFrame walks src and writes the patterns of each channel byte into
// dst. It returns the number of bytes written.
func (d *Dev) encodeFrame(dst []byte, src PixelSource) (int, error) {
	e := d.opts.Encoding
	cur := 0
	for src.Has(1) {
		if cur+bitsPerPixel > len(dst) {
			return cur, errors.Wrapf(ErrFrameSize, "more than %d pixels", len(dst)/bitsPerPixel)
		}
		e.Encode(dst[cur:], src.LoadAndScale0())
		e.Encode(dst[cur+8:], src.LoadAndScale1())
		e.Encode(dst[cur+16:], src.LoadAndScale2())
		cur += bitsPerPixel
		src.AdvanceData()
		src.StepDithering()
	}
	return cur, nil
}
