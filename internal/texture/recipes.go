package texture

import (
	"fmt"
	"math"
)

// Recipe names one procedural texture.
type Recipe string

const (
	Sun      Recipe = "sun"
	Earth    Recipe = "earth"
	Mars     Recipe = "mars"
	Jupiter  Recipe = "jupiter"
	Asteroid Recipe = "asteroid"
)

// Recipes returns every known recipe in roster order.
func Recipes() []Recipe {
	return []Recipe{Sun, Earth, Mars, Jupiter, Asteroid}
}

// ParseRecipe resolves a recipe name.
func ParseRecipe(s string) (Recipe, error) {
	r := Recipe(s)
	if _, ok := recipes[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRecipe, s)
	}
	return r, nil
}

// ReferenceSize is the raster edge the recipe's feature sizes are tuned
// for. Other sizes scale features proportionally.
func (r Recipe) ReferenceSize() int {
	if r == Asteroid {
		return 256
	}
	return 512
}

type drawFunc func(c *Canvas, rng Source, w, h, s float64)

var recipes = map[Recipe]drawFunc{
	Sun:      drawSun,
	Earth:    drawEarth,
	Mars:     drawMars,
	Jupiter:  drawJupiter,
	Asteroid: drawAsteroid,
}

const granuleCount = 200

func drawSun(c *Canvas, rng Source, w, h, s float64) {
	c.FillRect(0, 0, w, h, RadialGradient{
		CX: w / 2, CY: h / 2, R: w / 2,
		Stops: []Stop{
			{0, mustHex("#FFFF88"), 1},
			{0.5, mustHex("#FFD700"), 1},
			{0.8, mustHex("#FFA500"), 1},
			{1, mustHex("#FF8C00"), 1},
		},
	})

	// Granulation: soft translucent glows.
	glow := rgb(255, 200, 100)
	for i := 0; i < granuleCount; i++ {
		x := rng.Float64() * w
		y := rng.Float64() * h
		radius := (rng.Float64()*15 + 5) * s
		opacity := rng.Float64() * 0.3
		c.FillRect(0, 0, w, h, RadialGradient{
			CX: x, CY: y, R: radius,
			Stops: []Stop{{0, glow, opacity}, {1, glow, 0}},
		})
	}
}

func drawEarth(c *Canvas, rng Source, w, h, s float64) {
	c.FillRect(0, 0, w, h, Hex("#0066CC"))

	land := Hex("#228B22")
	for i := 0; i < 50; i++ {
		x := rng.Float64() * w
		y := rng.Float64() * h
		rx := (rng.Float64()*80 + 40) * s
		ry := (rng.Float64()*60 + 30) * s
		c.FillEllipse(x, y, rx, ry, rng.Float64()*math.Pi, land)
	}

	white := rgb(255, 255, 255)
	capStops := []Stop{{0, white, 0.9}, {1, white, 0}}
	c.FillRect(0, 0, w, h/4, RadialGradient{CX: w / 2, CY: 0, R: h / 4, Stops: capStops})
	c.FillRect(0, h*3/4, w, h/4, RadialGradient{CX: w / 2, CY: h, R: h / 4, Stops: capStops})
}

func drawMars(c *Canvas, rng Source, w, h, s float64) {
	c.FillRect(0, 0, w, h, Hex("#CD5C5C"))

	for i := 0; i < 80; i++ {
		x := rng.Float64() * w
		y := rng.Float64() * h
		radius := (rng.Float64()*20 + 5) * s
		c.FillCircle(x, y, radius, RGBA(100, 50, 50, rng.Float64()*0.4))
	}

	// Dust storms
	for i := 0; i < 40; i++ {
		x := rng.Float64() * w
		y := rng.Float64() * h
		radius := (rng.Float64()*30 + 10) * s
		c.FillCircle(x, y, radius, RGBA(220, 180, 150, rng.Float64()*0.3))
	}

	ice := rgb(255, 240, 240)
	c.FillRect(0, 0, w, h/5, RadialGradient{
		CX: w / 2, CY: 0, R: h / 5,
		Stops: []Stop{{0, ice, 0.8}, {1, ice, 0}},
	})
}

const jupiterBands = 15

func drawJupiter(c *Canvas, rng Source, w, h, s float64) {
	c.FillRect(0, 0, w, h, Hex("#C88B3A"))

	bandHeight := h / jupiterBands
	for i := 0; i < jupiterBands; i++ {
		y := float64(i) / jupiterBands * h
		var p Solid
		if i%2 == 0 {
			p = RGBA(220, 180, 140, 0.3+rng.Float64()*0.2)
		} else {
			p = RGBA(140, 100, 70, 0.2+rng.Float64()*0.2)
		}
		c.FillRect(0, y, w, bandHeight, p)
	}

	// Great Red Spot
	spotX, spotY := w*0.4, h*0.4
	c.FillEllipse(spotX, spotY, 50*s, 35*s, 0, RadialGradient{
		CX: spotX, CY: spotY, R: 40 * s,
		Stops: []Stop{
			{0, rgb(200, 80, 60), 0.8},
			{0.7, rgb(180, 100, 80), 0.5},
			{1, rgb(180, 100, 80), 0},
		},
	})

	storm := rgb(255, 240, 220)
	for i := 0; i < 20; i++ {
		x := rng.Float64() * w
		y := rng.Float64() * h
		radius := (rng.Float64()*15 + 5) * s
		opacity := rng.Float64() * 0.4
		c.FillCircle(x, y, radius, RadialGradient{
			CX: x, CY: y, R: radius,
			Stops: []Stop{{0, storm, opacity}, {1, storm, 0}},
		})
	}
}

func drawAsteroid(c *Canvas, rng Source, w, h, s float64) {
	c.FillRect(0, 0, w, h, Hex("#777777"))

	for i := 0; i < 50; i++ {
		x := rng.Float64() * w
		y := rng.Float64() * h
		radius := (rng.Float64()*10 + 2) * s
		c.FillCircle(x, y, radius, RGBA(50, 50, 50, rng.Float64()*0.5+0.3))
	}

	// Speckles stay pixel-sized regardless of raster size.
	for i := 0; i < 100; i++ {
		x := rng.Float64() * w
		y := rng.Float64() * h
		size := rng.Float64()*2 + 1
		r := 120 + rng.Float64()*50
		g := 100 + rng.Float64()*40
		b := 90 + rng.Float64()*40
		c.FillRect(x, y, size, size, RGBA(r, g, b, 0.5))
	}
}
