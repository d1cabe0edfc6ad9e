package astro

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the Julian Day of the J2000.0 epoch (2000-01-01 12:00 TT).
const J2000 = 2451545.0

// JulianDay returns the Julian Day for a wall-clock instant, computed from
// its UTC date and time components.
func JulianDay(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// TimeFromJulianDay converts a Julian Day back to a UTC time.
func TimeFromJulianDay(jd float64) time.Time {
	return julian.JDToTime(jd).UTC()
}

// DaysSinceJ2000 returns the elapsed days between J2000 and jd.
func DaysSinceJ2000(jd float64) float64 {
	return jd - J2000
}
