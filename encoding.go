package clockless

import (
	"math/bits"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/physic"
)

// Encoding is the pair of 8-bit pulse patterns that stand for one protocol
// bit when shifted out MSB first at the calibrated clock frequency.
//
// The patterns are only meaningful together with the frequency they were
// computed for. Changing either means recomputing both, see Calibrate.
type Encoding struct {
	One  byte // Long high pulse
	Zero byte // Short high pulse
}

// DefaultEncoding is the WS2812 encoding at 6.4MHz.
//
// One is 5 clocks high (781ns) and 3 low, zero is 1 clock high (156ns)
// and 7 low.
var DefaultEncoding = Encoding{One: 0xF8, Zero: 0x80}

// Encode writes the 8 patterns for b into dst, most significant bit first.
//
// dst must be at least 8 bytes long.
func (e Encoding) Encode(dst []byte, b byte) {
	_ = dst[7]
	for i := 0; i < 8; i++ {
		if b&(0x80>>i) != 0 {
			dst[i] = e.One
		} else {
			dst[i] = e.Zero
		}
	}
}

// Decode is the inverse of Encode. It fails if src is shorter than 8 bytes
// or holds a byte that is neither pattern.
func (e Encoding) Decode(src []byte) (byte, error) {
	if len(src) < 8 {
		return 0, errors.Errorf("clockless: need 8 bytes to decode, got %d", len(src))
	}
	var b byte
	for i, p := range src[:8] {
		switch p {
		case e.One:
			b |= 0x80 >> i
		case e.Zero:
		default:
			return 0, errors.Errorf("clockless: byte %d (0x%02X) is not a pulse pattern", i, p)
		}
	}
	return b, nil
}

// Pulses returns the high and low durations of both patterns when shifted
// out at f.
func (e Encoding) Pulses(f physic.Frequency) (oneHigh, oneLow, zeroHigh, zeroLow time.Duration) {
	p := f.Period()
	one := bits.OnesCount8(e.One)
	zero := bits.OnesCount8(e.Zero)
	return time.Duration(one) * p, time.Duration(8-one) * p, time.Duration(zero) * p, time.Duration(8-zero) * p
}

func (e Encoding) validate() error {
	if e.One == e.Zero {
		return errors.New("clockless: one and zero patterns must differ")
	}
	if e.Zero&0x80 == 0 || e.One&0x80 == 0 {
		return errors.New("clockless: pulse patterns must start high")
	}
	if bits.OnesCount8(e.One) <= bits.OnesCount8(e.Zero) {
		return errors.New("clockless: one pattern must stay high longer than zero pattern")
	}
	return nil
}

// Timing is the three-phase bit timing of a clockless protocol.
//
// A one bit is high for T1+T2 then low for T3. A zero bit is high for T1
// then low for T2+T3.
type Timing struct {
	T1 time.Duration
	T2 time.Duration
	T3 time.Duration
}

// Bit returns the duration of one protocol bit.
func (t Timing) Bit() time.Duration {
	return t.T1 + t.T2 + t.T3
}

// Timings of common LED chips.
var (
	WS2812 = Timing{T1: 250 * time.Nanosecond, T2: 625 * time.Nanosecond, T3: 375 * time.Nanosecond}
	SK6812 = Timing{T1: 300 * time.Nanosecond, T2: 300 * time.Nanosecond, T3: 600 * time.Nanosecond}
)

// nsHz is one nanosecond times one hertz in physic.Frequency units.
const nsHz = int64(time.Second/time.Nanosecond) * int64(physic.Hertz)

// Calibrate computes the encoding reproducing t when shifted out at f.
//
// Each high time is truncated to whole clock periods. f must be low enough
// for one bit to fit in 8 clocks and high enough for the zero pulse to last
// at least one clock.
func Calibrate(t Timing, f physic.Frequency) (Encoding, error) {
	if f <= 0 {
		return Encoding{}, errors.Errorf("clockless: invalid frequency %s", f)
	}
	if t.T1 <= 0 || t.T2 <= 0 || t.T3 <= 0 {
		return Encoding{}, errors.Errorf("clockless: invalid timing %v/%v/%v", t.T1, t.T2, t.T3)
	}
	if int64(t.Bit())*int64(f) > 8*nsHz {
		return Encoding{}, errors.Errorf("clockless: a %v bit does not fit in 8 clocks at %s", t.Bit(), f)
	}
	one := highClocks(t.T1+t.T2, f)
	zero := highClocks(t.T1, f)
	if zero == 0 {
		return Encoding{}, errors.Errorf("clockless: %v zero pulse is shorter than one clock at %s", t.T1, f)
	}
	if one >= 8 {
		return Encoding{}, errors.Errorf("clockless: %v one pulse leaves no low time at %s", t.T1+t.T2, f)
	}
	if one == zero {
		return Encoding{}, errors.Errorf("clockless: %s is too slow to tell one from zero", f)
	}
	return Encoding{One: pattern(one), Zero: pattern(zero)}, nil
}

// highClocks returns the number of whole clock periods in d.
func highClocks(d time.Duration, f physic.Frequency) int {
	return int(int64(d) * int64(f) / nsHz)
}

// pattern returns a byte with its n most significant bits set.
func pattern(n int) byte {
	return byte(uint16(0xFF00) >> n)
}
