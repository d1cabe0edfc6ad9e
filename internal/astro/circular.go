package astro

import (
	"iter"
	"math"
)

// CircularOrbit is a simplified planet orbit: a circle of fixed radius in
// the ecliptic, traversed at a constant angular rate from angle 0 at J2000.
type CircularOrbit struct {
	RadiusAU       float64 `yaml:"radius_au" json:"radius_au"`
	RateDegPerDay  float64 `yaml:"rate_deg_per_day" json:"rate_deg_per_day"`
	HeightAU       float64 `yaml:"height_au" json:"height_au"`             // constant offset along Y
	InclinationDeg float64 `yaml:"inclination_deg" json:"inclination_deg"` // drawn path only
}

// Simplified orbits for the context planets.
var (
	EarthOrbit   = CircularOrbit{RadiusAU: 1.0, RateDegPerDay: 0.01720279}
	MarsOrbit    = CircularOrbit{RadiusAU: 1.52, RateDegPerDay: 0.00914, HeightAU: 0.03, InclinationDeg: 1.85}
	JupiterOrbit = CircularOrbit{RadiusAU: 5.2, RateDegPerDay: 0.00145}
)

// Angle returns the orbit angle in radians at Julian Day jd.
func (c CircularOrbit) Angle(jd float64) float64 {
	return DaysSinceJ2000(jd) * c.RateDegPerDay * math.Pi / 180
}

// PositionAt returns the body position at Julian Day jd.
func (c CircularOrbit) PositionAt(jd float64) Vec3 {
	a := c.Angle(jd)
	return Vec3{
		X: c.RadiusAU * math.Cos(a),
		Y: c.HeightAU,
		Z: c.RadiusAU * math.Sin(a),
	}
}

// Elements returns the equivalent element set used to draw the path.
func (c CircularOrbit) Elements() Elements {
	return Elements{A: c.RadiusAU, I: c.InclinationDeg}
}

// Path returns the drawn orbit for the circle.
func (c CircularOrbit) Path(segments int) iter.Seq[Vec3] {
	return OrbitPath(c.Elements(), segments)
}
