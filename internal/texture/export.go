package texture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Average returns the mean colour of an opaque raster.
func Average(img *image.RGBA) colorful.Color {
	b := img.Bounds()
	n := float64(b.Dx() * b.Dy())
	if n == 0 {
		return colorful.Color{}
	}
	var r, g, bl float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			r += float64(c.R)
			g += float64(c.G)
			bl += float64(c.B)
		}
	}
	return colorful.Color{R: r / n / 255, G: g / n / 255, B: bl / n / 255}
}

// Sample returns the colour at texture coordinates (u, v). u wraps around
// the sphere; v is clamped to [0, 1].
func Sample(img *image.RGBA, u, v float64) colorful.Color {
	b := img.Bounds()
	u -= math.Floor(u)
	v = math.Max(0, math.Min(1, v))
	x := b.Min.X + min(int(u*float64(b.Dx())), b.Dx()-1)
	y := b.Min.Y + min(int(v*float64(b.Dy())), b.Dy()-1)
	c := img.RGBAAt(x, y)
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
