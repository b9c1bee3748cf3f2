package strip

import (
	"image"
	"image/color"
)

// RGB represents an opaque 24-bit color.
type RGB struct {
	R, G, B uint8
}

// RGBA converts the RGB color to standard RGBA.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xFFFF
}

// toRGB converts any color.Color to RGB.
//
// Alpha is applied, not discarded: a half transparent white becomes a half
// lit LED.
func toRGB(c color.Color) color.Color {
	if v, ok := c.(RGB); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// RGBModel converts colors to RGB.
var RGBModel = color.ModelFunc(toRGB)

// Image is an in-memory image of RGB pixels, three bytes per pixel.
type Image struct {
	Pix    []byte          // Pixel data, R G B per pixel
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewImage creates a new Image with the specified bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 3*w*h),
		Stride: 3 * w,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return RGBModel
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.RGBAt(x, y)
}

// RGBAt returns the RGB color of the pixel at (x, y).
func (p *Image) RGBAt(x, y int) RGB {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return RGB{}
	}
	i := p.pixOffset(x, y)
	return RGB{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2]}
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB(x, y, RGBModel.Convert(c).(RGB))
}

// SetRGB sets the pixel at (x, y) without color conversion.
func (p *Image) SetRGB(x, y int, c RGB) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.pixOffset(x, y)
	p.Pix[i] = c.R
	p.Pix[i+1] = c.G
	p.Pix[i+2] = c.B
}

// Opaque reports that the image has no transparent pixel.
func (p *Image) Opaque() bool {
	return true
}

// pixOffset returns the offset of the R byte of the pixel at (x, y).
func (p *Image) pixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}
