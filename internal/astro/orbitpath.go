package astro

import (
	"iter"
	"math"
	"slices"
)

// DefaultOrbitSegments is the number of segments used to draw one orbit.
const DefaultOrbitSegments = 256

// OrbitPath returns the static ellipse of el as segments+1 points with
// true anomaly uniform over [0, 2π]. The last point repeats the first so
// the loop is closed exactly. Segment counts below 1 use
// DefaultOrbitSegments.
func OrbitPath(el Elements, segments int) iter.Seq[Vec3] {
	if segments < 1 {
		segments = DefaultOrbitSegments
	}
	return func(yield func(Vec3) bool) {
		rot := newOrientation(el.ArgPerihelion, el.AscendingNode, el.I)
		p := el.A * (1 - el.E*el.E)

		var first Vec3
		for j := 0; j <= segments; j++ {
			if j == segments {
				yield(first)
				return
			}
			nu := float64(j) / float64(segments) * 2 * math.Pi
			r := p / (1 + el.E*math.Cos(nu))
			pt := rot.apply(r*math.Cos(nu), r*math.Sin(nu))
			if j == 0 {
				first = pt
			}
			if !yield(pt) {
				return
			}
		}
	}
}

// OrbitPoints collects OrbitPath into a slice.
func OrbitPoints(el Elements, segments int) []Vec3 {
	return slices.Collect(OrbitPath(el, segments))
}
