package texture

import (
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
)

func TestFillRectCoversPixelCentres(t *testing.T) {
	c := NewCanvas(4, 4)
	c.FillRect(1, 1, 2, 2, Hex("#FFFFFF"))

	img := c.Image()
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(2, 2))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(3, 3))
}

func TestFillClipsToBounds(t *testing.T) {
	c := NewCanvas(3, 3)
	c.FillCircle(-10, -10, 100, Hex("#00FF00"))
	c.FillRect(-5, -5, 50, 50, Hex("#00FF00"))

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, uint8(255), c.Image().RGBAAt(x, y).G)
		}
	}
}

func TestSourceOverBlend(t *testing.T) {
	c := NewCanvas(1, 1)
	c.FillRect(0, 0, 1, 1, Hex("#000000"))
	c.FillRect(0, 0, 1, 1, RGBA(255, 255, 255, 0.5))

	px := c.Image().RGBAAt(0, 0)
	assert.InDelta(t, 128, int(px.R), 1)
	assert.Equal(t, uint8(255), px.A)
}

func TestFillEllipseRotation(t *testing.T) {
	// A 6×1 ellipse rotated 90° becomes vertical.
	c := NewCanvas(15, 15)
	c.FillEllipse(7.5, 7.5, 6, 1, 3.141592653589793/2, Hex("#FFFFFF"))

	img := c.Image()
	assert.Equal(t, uint8(255), img.RGBAAt(7, 2).A, "top of vertical ellipse")
	assert.Equal(t, uint8(0), img.RGBAAt(2, 7).A, "left side stays empty")
}

func TestFillEllipseDegenerate(t *testing.T) {
	c := NewCanvas(4, 4)
	c.FillEllipse(2, 2, 0, 3, 0, Hex("#FFFFFF"))
	for _, v := range c.Image().Pix {
		assert.Zero(t, v)
	}
}

func TestRadialGradientStops(t *testing.T) {
	red := colorful.Color{R: 1}
	blue := colorful.Color{B: 1}
	g := RadialGradient{CX: 0, CY: 0, R: 10, Stops: []Stop{{0, red, 1}, {1, blue, 0}}}

	col, a := g.At(0, 0)
	assert.Equal(t, red, col)
	assert.Equal(t, 1.0, a)

	col, a = g.At(5, 0)
	assert.InDelta(t, 0.5, col.R, 1e-9)
	assert.InDelta(t, 0.5, col.B, 1e-9)
	assert.InDelta(t, 0.5, a, 1e-9)

	col, a = g.At(30, 0)
	assert.Equal(t, blue, col)
	assert.Zero(t, a)
}

func TestRadialGradientSupportLimitsFill(t *testing.T) {
	c := NewCanvas(20, 20)
	white := colorful.Color{R: 1, G: 1, B: 1}
	c.FillRect(0, 0, 20, 20, RadialGradient{CX: 3, CY: 3, R: 2, Stops: []Stop{{0, white, 1}, {1, white, 0}}})

	assert.NotZero(t, c.Image().RGBAAt(3, 3).A)
	assert.Zero(t, c.Image().RGBAAt(15, 15).A)
}
