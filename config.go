package clockless

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/spi"

	"periph.io/x/devices/v3/clockless/strip"
)

// fileOpts is the YAML form of Opts. Absent keys keep their DefaultOpts
// value.
type fileOpts struct {
	DataPin        string      `yaml:"data_pin"`
	Frequency      string      `yaml:"frequency"` // e.g. "6.4MHz"
	Mode           *int        `yaml:"mode"`      // 0 to 3
	Timing         *fileTiming `yaml:"timing"`
	One            *uint8      `yaml:"one"`
	Zero           *uint8      `yaml:"zero"`
	ResetLength    *int        `yaml:"reset_length"`
	MaxRefreshRate *int        `yaml:"max_refresh_rate"`
	NumPixels      *int        `yaml:"num_pixels"`
	Order          string      `yaml:"order"` // e.g. "GRB"
	MaxBufferSize  *int        `yaml:"max_buffer_size"`
}

// fileTiming holds durations such as "250ns".
type fileTiming struct {
	T1 string `yaml:"t1"`
	T2 string `yaml:"t2"`
	T3 string `yaml:"t3"`
}

// LoadOptsFile reads a YAML configuration file, see LoadOpts.
func LoadOptsFile(path string) (*Opts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "clockless: failed to read config file")
	}
	defer f.Close()
	return LoadOpts(f)
}

// LoadOpts decodes a YAML configuration on top of DefaultOpts:
//
//	data_pin: GPIO10
//	frequency: 6.4MHz
//	mode: 0
//	timing: {t1: 250ns, t2: 625ns, t3: 375ns}
//	reset_length: 10
//	max_refresh_rate: 400
//	num_pixels: 60
//	order: GRB
//
// timing derives the encoding with Calibrate at the configured frequency;
// one and zero set the patterns directly instead. Giving both is an error.
// An empty document yields DefaultOpts.
func LoadOpts(r io.Reader) (*Opts, error) {
	var f fileOpts
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "clockless: failed to parse config")
	}
	opts := DefaultOpts
	if err := f.apply(&opts); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, errors.Wrap(err, "clockless: invalid configuration")
	}
	return &opts, nil
}

func (f *fileOpts) apply(o *Opts) error {
	if f.DataPin != "" {
		o.DataPin = f.DataPin
	}
	if f.Frequency != "" {
		if err := o.Frequency.Set(f.Frequency); err != nil {
			return errors.Wrap(err, "clockless: frequency")
		}
	}
	if f.Mode != nil {
		if *f.Mode < 0 || *f.Mode > 3 {
			return errors.Errorf("clockless: mode must be 0 to 3, got %d", *f.Mode)
		}
		o.Mode = spi.Mode(*f.Mode)
	}
	switch {
	case f.Timing != nil && (f.One != nil || f.Zero != nil):
		return errors.New("clockless: timing and one/zero patterns are exclusive")
	case f.Timing != nil:
		t, err := f.Timing.parse()
		if err != nil {
			return err
		}
		if o.Encoding, err = Calibrate(t, o.Frequency); err != nil {
			return err
		}
	default:
		if f.One != nil {
			o.Encoding.One = *f.One
		}
		if f.Zero != nil {
			o.Encoding.Zero = *f.Zero
		}
	}
	if f.ResetLength != nil {
		o.ResetLength = *f.ResetLength
	}
	if f.MaxRefreshRate != nil {
		o.MaxRefreshRate = *f.MaxRefreshRate
	}
	if f.NumPixels != nil {
		o.NumPixels = *f.NumPixels
	}
	if f.Order != "" {
		v, err := strip.ParseOrder(f.Order)
		if err != nil {
			return err
		}
		o.Order = v
	}
	if f.MaxBufferSize != nil {
		o.MaxBufferSize = *f.MaxBufferSize
	}
	return nil
}

func (f *fileTiming) parse() (Timing, error) {
	var t Timing
	for _, p := range []struct {
		name string
		s    string
		d    *time.Duration
	}{{"t1", f.T1, &t.T1}, {"t2", f.T2, &t.T2}, {"t3", f.T3, &t.T3}} {
		v, err := time.ParseDuration(p.s)
		if err != nil {
			return Timing{}, errors.Wrapf(err, "clockless: timing.%s", p.name)
		}
		*p.d = v
	}
	return t, nil
}
