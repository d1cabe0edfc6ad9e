package astro

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidElements is returned when an element set cannot describe a
// bound elliptical orbit.
var ErrInvalidElements = errors.New("invalid orbital elements")

// Elements is a Keplerian element set for one body.
//
// Angles are in degrees, distances in AU. Only elliptical orbits
// (0 <= E < 1) are supported.
type Elements struct {
	A                  float64 `yaml:"a" json:"a"`                                         // Semi-major axis (AU)
	E                  float64 `yaml:"e" json:"e"`                                         // Eccentricity
	I                  float64 `yaml:"i" json:"i"`                                         // Inclination (deg)
	ArgPerihelion      float64 `yaml:"arg_perihelion" json:"arg_perihelion"`               // ω (deg)
	AscendingNode      float64 `yaml:"ascending_node" json:"ascending_node"`               // Ω (deg)
	MeanAnomalyAtEpoch float64 `yaml:"mean_anomaly_at_epoch" json:"mean_anomaly_at_epoch"` // M0 (deg)
	MeanMotion         float64 `yaml:"mean_motion" json:"mean_motion"`                     // n (deg/day)
	EpochJD            float64 `yaml:"epoch_jd" json:"epoch_jd"`
}

// Haberle returns the element set for asteroid 333005 Haberle.
func Haberle() Elements {
	return Elements{
		A:                  3.1347518,
		E:                  0.0600504,
		I:                  17.31772,
		ArgPerihelion:      74.45764,
		AscendingNode:      165.56543,
		MeanAnomalyAtEpoch: 133.58151,
		MeanMotion:         0.17758210,
		EpochJD:            2460600.5,
	}
}

// Validate reports whether the element set describes an elliptical orbit.
func (el Elements) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"a", el.A}, {"e", el.E}, {"i", el.I},
		{"arg_perihelion", el.ArgPerihelion}, {"ascending_node", el.AscendingNode},
		{"mean_anomaly_at_epoch", el.MeanAnomalyAtEpoch}, {"mean_motion", el.MeanMotion},
		{"epoch_jd", el.EpochJD},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidElements, f.name)
		}
	}
	if el.A <= 0 {
		return fmt.Errorf("%w: a must be positive, got %g", ErrInvalidElements, el.A)
	}
	if el.E < 0 || el.E >= 1 {
		return fmt.Errorf("%w: e must be in [0,1), got %g", ErrInvalidElements, el.E)
	}
	return nil
}

// Perihelion returns the closest approach distance a(1-e) in AU.
func (el Elements) Perihelion() float64 {
	return el.A * (1 - el.E)
}

// Aphelion returns the farthest distance a(1+e) in AU.
func (el Elements) Aphelion() float64 {
	return el.A * (1 + el.E)
}

// PeriodDays returns the orbital period implied by the mean motion.
func (el Elements) PeriodDays() float64 {
	if el.MeanMotion == 0 {
		return math.Inf(1)
	}
	return 360 / el.MeanMotion
}

// orientation holds the precomputed rotation from the orbital plane into
// the scene frame.
type orientation struct {
	cosW, sinW float64
	cosO, sinO float64
	cosI, sinI float64
}

func newOrientation(argPerihelionDeg, ascendingNodeDeg, inclinationDeg float64) orientation {
	w := degToRad(argPerihelionDeg)
	o := degToRad(ascendingNodeDeg)
	i := degToRad(inclinationDeg)
	return orientation{
		cosW: math.Cos(w), sinW: math.Sin(w),
		cosO: math.Cos(o), sinO: math.Sin(o),
		cosI: math.Cos(i), sinI: math.Sin(i),
	}
}

// apply rotates orbital-plane coordinates by ω, then by i and Ω
// (Rz(Ω)·Rx(i)·Rz(ω)). The ecliptic result (X, Y, Z) is returned in the
// scene frame as (X, Z, Y).
func (o orientation) apply(xo, yo float64) Vec3 {
	// Rotate within the orbital plane by the argument of perihelion.
	xp := xo*o.cosW - yo*o.sinW
	yp := xo*o.sinW + yo*o.cosW

	// Tilt by inclination about the line of nodes.
	yi := yp * o.cosI
	zi := yp * o.sinI

	// Rotate the line of nodes to the ascending node longitude.
	xe := xp*o.cosO - yi*o.sinO
	ye := xp*o.sinO + yi*o.cosO

	return Vec3{X: xe, Y: zi, Z: ye}
}
