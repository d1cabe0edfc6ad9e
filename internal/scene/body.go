// Package scene builds and owns the renderable solar system: textured
// bodies, orbit polylines, starfield, lights, camera rig and labels.
package scene

import (
	"iter"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/texture"
)

// BodyID identifies a body in the roster.
type BodyID string

const (
	Sun      BodyID = "sun"
	Earth    BodyID = "earth"
	Mars     BodyID = "mars"
	Jupiter  BodyID = "jupiter"
	Asteroid BodyID = "asteroid"
)

// Display radii in scene units. Not to scale, but ordered
// sun > jupiter > earth > mars > asteroid.
var Sizes = map[BodyID]float64{
	Sun:      0.20,
	Jupiter:  0.10,
	Earth:    0.035,
	Mars:     0.025,
	Asteroid: 0.015,
}

// TextureSpec selects the recipe and raster size for a body's surface.
type TextureSpec struct {
	Recipe texture.Recipe
	Width  int
	Height int
}

// CelestialBody is the static definition of one rendered body.
//
// A body with neither Elements nor Circular stays at the origin.
type CelestialBody struct {
	ID            BodyID
	Label         string // empty for unlabeled bodies
	DisplayRadius float64
	Texture       TextureSpec
	Elements      *astro.Elements      // full Keplerian orbit
	Circular      *astro.CircularOrbit // simplified circular orbit
	AxialTiltDeg  float64
	Spin          astro.Vec3 // rotation increment per tick (radians, per axis)
	OrbitColor    colorful.Color
}

// PositionAt returns the body's heliocentric position at Julian Day jd.
func (b CelestialBody) PositionAt(jd float64) astro.Vec3 {
	switch {
	case b.Elements != nil:
		return astro.PositionAt(*b.Elements, jd)
	case b.Circular != nil:
		return b.Circular.PositionAt(jd)
	default:
		return astro.Vec3{}
	}
}

// Orbits reports whether the body has an orbit to draw.
func (b CelestialBody) Orbits() bool {
	return b.Elements != nil || b.Circular != nil
}

// Path yields the closed orbit polyline, segments+1 points. Fixed bodies
// yield nothing.
func (b CelestialBody) Path(segments int) iter.Seq[astro.Vec3] {
	switch {
	case b.Elements != nil:
		return astro.OrbitPath(*b.Elements, segments)
	case b.Circular != nil:
		return b.Circular.Path(segments)
	default:
		return func(func(astro.Vec3) bool) {}
	}
}

// AsteroidLabel is the display name of the modeled asteroid.
const AsteroidLabel = "333005 Haberle"

// DefaultRoster returns the fixed body roster with the asteroid on el.
// textureSize is the raster edge for the planets and the Sun; the
// asteroid uses half of it.
func DefaultRoster(el astro.Elements, textureSize int) []CelestialBody {
	if textureSize < 1 {
		textureSize = 512
	}
	small := max(textureSize/2, 1)
	earth, mars, jupiter := astro.EarthOrbit, astro.MarsOrbit, astro.JupiterOrbit

	return []CelestialBody{
		{
			ID:            Sun,
			DisplayRadius: Sizes[Sun],
			Texture:       TextureSpec{texture.Sun, textureSize, textureSize},
			Spin:          astro.Vec3{Y: 0.0005},
		},
		{
			ID:            Earth,
			Label:         "Earth",
			DisplayRadius: Sizes[Earth],
			Texture:       TextureSpec{texture.Earth, textureSize, textureSize},
			Circular:      &earth,
			AxialTiltDeg:  23.5,
			Spin:          astro.Vec3{Y: 0.002},
			OrbitColor:    mustHex("#4A90E2"),
		},
		{
			ID:            Mars,
			Label:         "Mars",
			DisplayRadius: Sizes[Mars],
			Texture:       TextureSpec{texture.Mars, textureSize, textureSize},
			Circular:      &mars,
			AxialTiltDeg:  25.2,
			Spin:          astro.Vec3{Y: 0.0019},
			OrbitColor:    mustHex("#CD5C5C"),
		},
		{
			ID:            Jupiter,
			Label:         "Jupiter",
			DisplayRadius: Sizes[Jupiter],
			Texture:       TextureSpec{texture.Jupiter, textureSize, textureSize},
			Circular:      &jupiter,
			AxialTiltDeg:  3.1,
			Spin:          astro.Vec3{Y: 0.004},
			OrbitColor:    mustHex("#D4A76A"),
		},
		{
			ID:            Asteroid,
			Label:         AsteroidLabel,
			DisplayRadius: Sizes[Asteroid],
			Texture:       TextureSpec{texture.Asteroid, small, small},
			Elements:      &el,
			Spin:          astro.Vec3{X: 0.005, Y: 0.01},
			OrbitColor:    mustHex("#FF6B35"),
		},
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("scene: bad colour " + s)
	}
	return c
}
