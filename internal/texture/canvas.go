// Package texture synthesizes procedural surface rasters for the rendered
// bodies. No image assets are loaded; every texture is drawn from a recipe
// and a random source.
package texture

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Paint yields a colour and an alpha in [0,1] for a point on the canvas.
type Paint interface {
	At(x, y float64) (colorful.Color, float64)
}

// Solid is a uniform colour with constant alpha.
type Solid struct {
	Color colorful.Color
	Alpha float64
}

// At implements Paint.
func (s Solid) At(_, _ float64) (colorful.Color, float64) {
	return s.Color, s.Alpha
}

// RGBA builds a Solid from 8-bit channels and a float alpha, mirroring the
// rgba() notation.
func RGBA(r, g, b float64, a float64) Solid {
	return Solid{Color: rgb(r, g, b), Alpha: a}
}

// Hex builds an opaque Solid from a "#RRGGBB" string.
func Hex(s string) Solid {
	return Solid{Color: mustHex(s), Alpha: 1}
}

func rgb(r, g, b float64) colorful.Color {
	return colorful.Color{R: r / 255, G: g / 255, B: b / 255}.Clamped()
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("texture: bad colour " + s)
	}
	return c
}

// Stop is one colour stop of a gradient.
type Stop struct {
	Offset float64 // 0..1 along the gradient radius
	Color  colorful.Color
	Alpha  float64
}

// RadialGradient interpolates its stops from the centre (offset 0) to
// radius R (offset 1). Points beyond R take the last stop.
type RadialGradient struct {
	CX, CY, R float64
	Stops     []Stop
}

// At implements Paint.
func (g RadialGradient) At(x, y float64) (colorful.Color, float64) {
	if len(g.Stops) == 0 {
		return colorful.Color{}, 0
	}
	t := 1.0
	if g.R > 0 {
		t = math.Hypot(x-g.CX, y-g.CY) / g.R
	}
	first, last := g.Stops[0], g.Stops[len(g.Stops)-1]
	if t <= first.Offset {
		return first.Color, first.Alpha
	}
	if t >= last.Offset {
		return last.Color, last.Alpha
	}
	for i := 1; i < len(g.Stops); i++ {
		a, b := g.Stops[i-1], g.Stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color, b.Alpha
		}
		f := (t - a.Offset) / span
		return a.Color.BlendRgb(b.Color, f), a.Alpha + (b.Alpha-a.Alpha)*f
	}
	return last.Color, last.Alpha
}

// support returns the region outside of which the gradient is fully
// transparent, if there is one.
func (g RadialGradient) support() (image.Rectangle, bool) {
	if len(g.Stops) == 0 || g.Stops[len(g.Stops)-1].Alpha > 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(
		int(math.Floor(g.CX-g.R)), int(math.Floor(g.CY-g.R)),
		int(math.Ceil(g.CX+g.R))+1, int(math.Ceil(g.CY+g.R))+1,
	), true
}

// Canvas is an immediate-mode drawing surface over an RGBA raster. Shapes
// cover the pixels whose centres fall inside them and are composited
// source-over.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas allocates a transparent w×h canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Image returns the backing raster.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// FillRect paints the axis-aligned rectangle at (x, y) of size w×h.
func (c *Canvas) FillRect(x, y, w, h float64, p Paint) {
	area := image.Rect(int(math.Floor(x)), int(math.Floor(y)), int(math.Ceil(x+w)), int(math.Ceil(y+h)))
	c.fill(area, p, func(px, py float64) bool {
		return px >= x && px < x+w && py >= y && py < y+h
	})
}

// FillCircle paints a disc of radius r centred at (cx, cy).
func (c *Canvas) FillCircle(cx, cy, r float64, p Paint) {
	c.FillEllipse(cx, cy, r, r, 0, p)
}

// FillEllipse paints an ellipse with radii rx, ry rotated by rotation
// radians about its centre.
func (c *Canvas) FillEllipse(cx, cy, rx, ry, rotation float64, p Paint) {
	if rx <= 0 || ry <= 0 {
		return
	}
	extent := math.Max(rx, ry)
	area := image.Rect(
		int(math.Floor(cx-extent)), int(math.Floor(cy-extent)),
		int(math.Ceil(cx+extent))+1, int(math.Ceil(cy+extent))+1,
	)
	cos, sin := math.Cos(rotation), math.Sin(rotation)
	c.fill(area, p, func(px, py float64) bool {
		dx, dy := px-cx, py-cy
		u := (dx*cos + dy*sin) / rx
		v := (-dx*sin + dy*cos) / ry
		return u*u+v*v <= 1
	})
}

func (c *Canvas) fill(area image.Rectangle, p Paint, inside func(px, py float64) bool) {
	area = area.Intersect(c.img.Bounds())
	if g, ok := p.(RadialGradient); ok {
		if sup, ok := g.support(); ok {
			area = area.Intersect(sup)
		}
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			if !inside(px, py) {
				continue
			}
			col, a := p.At(px, py)
			c.blend(x, y, col, a)
		}
	}
}

// blend composites col at alpha a over the premultiplied pixel at (x, y).
func (c *Canvas) blend(x, y int, col colorful.Color, a float64) {
	if a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	col = col.Clamped()
	dst := c.img.RGBAAt(x, y)
	inv := 1 - a
	c.img.SetRGBA(x, y, color.RGBA{
		R: channel(col.R*255*a + float64(dst.R)*inv),
		G: channel(col.G*255*a + float64(dst.G)*inv),
		B: channel(col.B*255*a + float64(dst.B)*inv),
		A: channel(255*a + float64(dst.A)*inv),
	})
}

func channel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
