package astro

import "math"

// KeplerIterations is the fixed-point iteration budget for solving
// Kepler's equation. It is accurate for the low eccentricities modeled
// here (e < 0.1); convergence is not checked and degrades as e
// approaches 1.
const KeplerIterations = 10

// KeplerState is the intermediate result of a Kepler solve.
type KeplerState struct {
	MeanAnomalyDeg float64 // M at the requested time (degrees, unnormalized)
	Eccentric      float64 // E (radians)
	TrueAnomaly    float64 // ν (radians)
	Radius         float64 // r (AU)
	Position       Vec3    // heliocentric scene-frame position (AU)
}

// Solve propagates el to Julian Day jd.
func Solve(el Elements, jd float64) KeplerState {
	daysSinceEpoch := jd - el.EpochJD
	mDeg := el.MeanAnomalyAtEpoch + el.MeanMotion*daysSinceEpoch
	m := degToRad(mDeg)

	e := el.E
	ecc := m
	for i := 0; i < KeplerIterations; i++ {
		ecc = m + e*math.Sin(ecc)
	}

	nu := 2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(ecc/2),
		math.Sqrt(1-e)*math.Cos(ecc/2),
	)

	r := el.A * (1 - e*math.Cos(ecc))
	pos := newOrientation(el.ArgPerihelion, el.AscendingNode, el.I).
		apply(r*math.Cos(nu), r*math.Sin(nu))

	return KeplerState{
		MeanAnomalyDeg: mDeg,
		Eccentric:      ecc,
		TrueAnomaly:    nu,
		Radius:         r,
		Position:       pos,
	}
}

// PositionAt returns the heliocentric position in AU of a body on el at
// Julian Day jd.
func PositionAt(el Elements, jd float64) Vec3 {
	return Solve(el, jd).Position
}
