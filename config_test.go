package clockless

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"periph.io/x/devices/v3/clockless/strip"
)

func TestLoadOptsEmpty(t *testing.T) {
	o, err := LoadOpts(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadOpts() error = %v", err)
	}
	if o.Frequency != DefaultOpts.Frequency || o.Encoding != DefaultOpts.Encoding || o.ResetLength != 10 {
		t.Errorf("LoadOpts(\"\") = %+v, want DefaultOpts", o)
	}
}

func TestLoadOpts(t *testing.T) {
	const doc = `
data_pin: GPIO10
frequency: 6.4MHz
mode: 0
timing:
  t1: 300ns
  t2: 300ns
  t3: 600ns
reset_length: 40
max_refresh_rate: 200
num_pixels: 144
order: rgb
max_buffer_size: 65536
`
	o, err := LoadOpts(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadOpts() error = %v", err)
	}
	if o.DataPin != "GPIO10" {
		t.Errorf("DataPin = %q", o.DataPin)
	}
	if o.Frequency != 6400*physic.KiloHertz {
		t.Errorf("Frequency = %s", o.Frequency)
	}
	if o.Mode != spi.Mode0 {
		t.Errorf("Mode = %v", o.Mode)
	}
	if o.Encoding != (Encoding{One: 0xE0, Zero: 0x80}) {
		t.Errorf("Encoding = %+v, want SK6812 calibration", o.Encoding)
	}
	if o.ResetLength != 40 || o.MaxRefreshRate != 200 || o.NumPixels != 144 || o.MaxBufferSize != 65536 {
		t.Errorf("LoadOpts() = %+v", o)
	}
	if o.Order != strip.OrderRGB {
		t.Errorf("Order = %v, want RGB", o.Order)
	}
}

func TestLoadOptsPatterns(t *testing.T) {
	o, err := LoadOpts(strings.NewReader("one: 252\nzero: 192\n"))
	if err != nil {
		t.Fatalf("LoadOpts() error = %v", err)
	}
	if o.Encoding != (Encoding{One: 0xFC, Zero: 0xC0}) {
		t.Errorf("Encoding = %+v", o.Encoding)
	}
}

func TestLoadOptsErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "colour_order: GRB\n"},
		{"bad frequency", "frequency: fast\n"},
		{"bad mode", "mode: 7\n"},
		{"bad order", "order: RGBW\n"},
		{"bad duration", "timing: {t1: 250, t2: 625ns, t3: 375ns}\n"},
		{"timing and patterns", "timing: {t1: 250ns, t2: 625ns, t3: 375ns}\none: 248\n"},
		{"uncalibratable", "frequency: 20MHz\ntiming: {t1: 250ns, t2: 625ns, t3: 375ns}\n"},
		{"invalid patterns", "one: 128\nzero: 248\n"},
		{"negative reset", "reset_length: -1\n"},
		{"not yaml", "{{\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadOpts(strings.NewReader(tt.doc)); err == nil {
				t.Errorf("LoadOpts(%q) succeeded", tt.doc)
			}
		})
	}
}

func TestLoadOptsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strip.yaml")
	if err := os.WriteFile(path, []byte("num_pixels: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := LoadOptsFile(path)
	if err != nil {
		t.Fatalf("LoadOptsFile() error = %v", err)
	}
	if o.NumPixels != 8 {
		t.Errorf("NumPixels = %d, want 8", o.NumPixels)
	}

	if _, err := LoadOptsFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadOptsFile() of a missing file succeeded")
	}
}
