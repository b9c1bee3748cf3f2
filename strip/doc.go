// Package strip provides an 8-bit RGB image format for addressable LED strips
// and a single-pass pixel source that feeds one row of it to a clockless
// driver, channel by channel.
//
// Each pixel is stored as three bytes, R then G then B. The wire order the
// LED chips expect (GRB for WS2812) is applied by Source, not by Image:
//
//	Pixels: 0            1
//	Values: (255,0,128)  (1,2,3)
//	Pix:    FF 00 80     01 02 03
//
// This package provides:
//
// - RGB: an opaque 24-bit color type
// - RGBModel: a color model for converting standard Go colors to RGB
// - Image: an image.Image and draw.Image implementation
// - Order: the channel order of a strip
// - Source: the per-frame iterator consumed by clockless.Dev.ShowPixels
//
// Example usage:
//
//	img := strip.NewImage(image.Rect(0, 0, 60, 1))
//	img.SetRGB(0, 0, strip.RGB{R: 255})
//	src := strip.NewSource(img, 0, strip.GRB, 128)
//	err := dev.ShowPixels(src)
package strip
