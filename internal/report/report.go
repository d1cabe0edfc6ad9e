// Package report captures a point-in-time view of the scene for headless
// output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
)

// Snapshot is the JSON-serializable state of every body at one instant.
type Snapshot struct {
	Time            time.Time       `json:"time"`
	JD              float64         `json:"jd"`
	Bodies          []BodyReport    `json:"bodies"`
	AsteroidEarthAU float64         `json:"asteroid_earth_au"`
	Asteroid        *AsteroidReport `json:"asteroid,omitempty"`
}

// BodyReport describes one body.
type BodyReport struct {
	ID            string     `json:"id"`
	Label         string     `json:"label,omitempty"`
	Position      [3]float64 `json:"position_au"` // scene frame
	HelioAU       float64    `json:"helio_au"`
	EarthAU       float64    `json:"earth_au"`
	EarthKm       float64    `json:"earth_km"`
	LightTime     float64    `json:"light_time_seconds"` // from Earth
	EclipticLon   float64    `json:"ecliptic_lon_deg"`
	EclipticLat   float64    `json:"ecliptic_lat_deg"`
	Elongation    float64    `json:"elongation_deg"` // Sun–Earth–body angle
	OrbitalPeriod float64    `json:"period_days,omitempty"`
}

// AsteroidReport carries the Kepler solution for the asteroid.
type AsteroidReport struct {
	Elements     astro.Elements `json:"elements"`
	Epoch        time.Time      `json:"epoch"`
	MeanAnomaly  float64        `json:"mean_anomaly_deg"`
	EccAnomaly   float64        `json:"eccentric_anomaly_rad"`
	TrueAnomaly  float64        `json:"true_anomaly_rad"`
	Perihelion   float64        `json:"perihelion_au"`
	Aphelion     float64        `json:"aphelion_au"`
	DaysSinceJ2k float64        `json:"days_since_j2000"`
}

// Build computes body positions at t. The scene's render state is not
// touched.
func Build(s *scene.Scene, t time.Time) *Snapshot {
	jd := astro.JulianDay(t)
	snap := &Snapshot{Time: t.UTC(), JD: jd}
	if s == nil {
		return snap
	}

	var earth astro.Vec3
	if m, ok := s.Mesh(scene.Earth); ok {
		earth = m.Body.PositionAt(jd)
	}

	for _, m := range s.Meshes {
		b := m.Body
		p := b.PositionAt(jd)
		d := p.DistanceTo(earth)
		br := BodyReport{
			ID:          string(b.ID),
			Label:       b.Label,
			Position:    [3]float64{p.X, p.Y, p.Z},
			HelioAU:     p.Norm(),
			EarthAU:     d,
			EarthKm:     astro.AUToKm(d),
			LightTime:   astro.LightTimeFromAU(d),
			EclipticLon: astro.EclipticLongitude(p),
			EclipticLat: astro.EclipticLatitude(p),
			Elongation:  astro.Elongation(earth, p),
		}
		switch {
		case b.Elements != nil:
			br.OrbitalPeriod = b.Elements.PeriodDays()
		case b.Circular != nil && b.Circular.RateDegPerDay > 0:
			br.OrbitalPeriod = 360 / b.Circular.RateDegPerDay
		}
		snap.Bodies = append(snap.Bodies, br)

		if b.ID == scene.Asteroid && b.Elements != nil {
			k := astro.Solve(*b.Elements, jd)
			snap.AsteroidEarthAU = d
			snap.Asteroid = &AsteroidReport{
				Elements:     *b.Elements,
				Epoch:        astro.TimeFromJulianDay(b.Elements.EpochJD),
				MeanAnomaly:  k.MeanAnomalyDeg,
				EccAnomaly:   k.Eccentric,
				TrueAnomaly:  k.TrueAnomaly,
				Perihelion:   b.Elements.Perihelion(),
				Aphelion:     b.Elements.Aphelion(),
				DaysSinceJ2k: astro.DaysSinceJ2000(jd),
			}
		}
	}
	return snap
}

// WriteJSON writes the snapshot as indented JSON.
func (s *Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteSummaryTable writes a text table of the snapshot.
func (s *Snapshot) WriteSummaryTable(w io.Writer) {
	fmt.Fprintf(w, "Orrery @ %s (JD %.5f)\n", s.Time.Format(time.RFC3339), s.JD)
	fmt.Fprintln(w, strings.Repeat("─", 86))

	if len(s.Bodies) == 0 {
		fmt.Fprintln(w, "No bodies")
		return
	}

	fmt.Fprintf(w, "%-16s %9s %9s %10s %8s %7s %7s %10s\n",
		"Body", "Sun AU", "Earth AU", "Light", "Lon", "Lat", "Elong", "Period d")
	fmt.Fprintln(w, strings.Repeat("─", 86))

	for _, b := range s.Bodies {
		name := b.Label
		if name == "" {
			name = b.ID
		}
		period := "-"
		if b.OrbitalPeriod > 0 {
			period = fmt.Sprintf("%.1f", b.OrbitalPeriod)
		}
		fmt.Fprintf(w, "%-16s %9.3f %9.3f %10s %7.2f° %6.2f° %6.1f° %10s\n",
			truncateStr(name, 16),
			b.HelioAU,
			b.EarthAU,
			astro.FormatLightTime(b.LightTime),
			b.EclipticLon,
			b.EclipticLat,
			b.Elongation,
			period,
		)
	}

	if a := s.Asteroid; a != nil {
		fmt.Fprintf(w, "\nAsteroid: M=%.3f° ν=%.3f° q=%.4f AU Q=%.4f AU\n",
			a.MeanAnomaly, a.TrueAnomaly*180/math.Pi, a.Perihelion, a.Aphelion)
	}
	fmt.Fprintf(w, "Distance to Earth: %.2f AU\n", s.AsteroidEarthAU)
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
