// Package clockless drives clockless addressable LED strips via SPI.
//
// Clockless LEDs (WS2812, WS2812B, SK6812 and their clones) have no clock
// line: each bit is a high pulse followed by a low pulse on the data line,
// and only the length of the high pulse tells a one from a zero. This driver
// emulates those pulses with the MOSI line of an ordinary SPI port. Every
// protocol bit is sent as one SPI byte whose leading ones form the high
// pulse:
//
//	Protocol bit   SPI byte @ 6.4MHz   High     Low
//	1              0xF8 (11111000)     781ns    469ns
//	0              0x80 (10000000)     156ns    1094ns
//
// A pixel is 3 channels of 8 bits, so 24 SPI bytes. A frame is the pixels
// followed by a run of zero bytes that holds the line low long enough for the
// LEDs to latch.
//
// This driver implements the display.Drawer interface from periph.io.
//
// # Hardware Connection
//
//	Strip Pin → System Pin
//	GND       → GND
//	5V        → 5V supply (not the SBC 5V pin for long strips)
//	DIN       → SPI Data (MOSI), through a 3.3V to 5V level shifter
//
// The SPI clock and chip select pins are not used by the strip.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"image"
//		"image/color"
//
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/clockless"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		p, _ := spireg.Open("")
//		defer p.Close()
//
//		opts := clockless.DefaultOpts
//		opts.NumPixels = 60
//		dev, _ := clockless.NewSPI(p, &opts)
//		defer dev.Halt()
//
//		img := image.NewNRGBA(dev.Bounds())
//		img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
//		dev.Draw(dev.Bounds(), img, image.Point{})
//	}
//
// # Pixel Sources
//
// ShowPixels consumes a PixelSource, the last stage of a pixel pipeline that
// already applied channel order, brightness, gamma and dithering. Package
// strip provides one over an in-memory image. Draw and Write use it.
//
// # Timing
//
// The encoding only reproduces the protocol timing at the frequency it was
// computed for. Nothing checks this at run time: a mismatch yields a
// waveform the LEDs misread. Always set Opts.Frequency and Opts.Encoding
// together, for instance with Calibrate:
//
//	enc, err := clockless.Calibrate(clockless.SK6812, 6400*physic.KiloHertz)
//
// The SPI transfer must not pause mid frame for longer than the latch time
// of the LEDs. Frames larger than the maximum transfer size of the port are
// sent as one multi packet transaction.
//
// # Frame Buffer
//
// The encoded frame is 24 bytes per pixel plus the reset tail. The buffer
// is kept between frames of the same size and reallocated when the pixel
// count changes. Opts.MaxBufferSize caps it; a frame over the cap is skipped
// with ErrAllocation.
//
// # Datasheet
//
// https://github.com/cpldcpu/light_ws2812/tree/master/Datasheets
package clockless
