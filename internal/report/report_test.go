package report

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/texture"
)

var at = time.Date(2024, 10, 17, 0, 0, 0, 0, time.UTC)

func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.Build(context.Background(), scene.Options{StarCount: -1},
		scene.DefaultRoster(astro.Haberle(), 8), texture.NewSeededFactory(1))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return s
}

func TestBuild(t *testing.T) {
	snap := Build(testScene(t), at)

	if len(snap.Bodies) != 5 {
		t.Fatalf("Bodies count = %d, want 5", len(snap.Bodies))
	}
	if math.Abs(snap.JD-2460600.5) > 1e-9 {
		t.Errorf("JD = %v, want 2460600.5", snap.JD)
	}

	byID := make(map[string]BodyReport)
	for _, b := range snap.Bodies {
		byID[b.ID] = b
	}

	if sun := byID["sun"]; sun.HelioAU != 0 {
		t.Errorf("sun HelioAU = %v, want 0", sun.HelioAU)
	}
	if earth := byID["earth"]; earth.EarthAU != 0 || math.Abs(earth.HelioAU-1) > 1e-12 {
		t.Errorf("earth = %+v, want 1 AU from Sun and 0 from itself", earth)
	}

	ast := byID["asteroid"]
	if ast.HelioAU < 2.947 || ast.HelioAU > 3.323 {
		t.Errorf("asteroid HelioAU = %v, outside apsides", ast.HelioAU)
	}
	if ast.EarthAU != snap.AsteroidEarthAU {
		t.Errorf("AsteroidEarthAU = %v, body row says %v", snap.AsteroidEarthAU, ast.EarthAU)
	}
	if math.Abs(ast.LightTime-ast.EarthAU*499.005) > 1e-9 {
		t.Errorf("LightTime = %v, want %v", ast.LightTime, ast.EarthAU*499.005)
	}
	if ast.Elongation < 0 || ast.Elongation > 180 {
		t.Errorf("asteroid Elongation = %v, want 0..180", ast.Elongation)
	}
	if math.Abs(ast.OrbitalPeriod-360/astro.Haberle().MeanMotion) > 1e-9 {
		t.Errorf("OrbitalPeriod = %v", ast.OrbitalPeriod)
	}

	if snap.Asteroid == nil {
		t.Fatal("Asteroid report missing")
	}
	if d := snap.Asteroid.Epoch.Sub(time.Date(2024, 10, 17, 0, 0, 0, 0, time.UTC)); d.Abs() > time.Second {
		t.Errorf("Epoch = %v, want 2024-10-17", snap.Asteroid.Epoch)
	}
	if math.Abs(ast.EarthKm-ast.EarthAU*astro.AU) > 1e-3 {
		t.Errorf("EarthKm = %v, want %v", ast.EarthKm, ast.EarthAU*astro.AU)
	}
	if math.Abs(snap.Asteroid.MeanAnomaly-133.58151) > 1e-9 {
		t.Errorf("MeanAnomaly = %v, want epoch value 133.58151", snap.Asteroid.MeanAnomaly)
	}
}

func TestBuildLeavesSceneAlone(t *testing.T) {
	s := testScene(t)
	m, _ := s.Mesh(scene.Asteroid)
	before := m.State

	Build(s, at.Add(400*24*time.Hour))

	if m.State != before {
		t.Errorf("render state changed: %+v -> %+v", before, m.State)
	}
}

func TestBuildNilScene(t *testing.T) {
	snap := Build(nil, at)
	if len(snap.Bodies) != 0 {
		t.Errorf("Bodies should be empty for nil scene")
	}
	if !snap.Time.Equal(at) {
		t.Errorf("Time = %v, want %v", snap.Time, at)
	}
}

func TestWriteJSON(t *testing.T) {
	snap := Build(testScene(t), at)

	var buf bytes.Buffer
	if err := snap.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var decoded Snapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(decoded.Bodies) != len(snap.Bodies) {
		t.Errorf("decoded %d bodies, want %d", len(decoded.Bodies), len(snap.Bodies))
	}
	if !strings.Contains(buf.String(), `"asteroid_earth_au"`) {
		t.Error("JSON missing asteroid_earth_au")
	}
}

func TestWriteSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	Build(testScene(t), at).WriteSummaryTable(&buf)
	out := buf.String()

	for _, want := range []string{"Orrery @ 2024-10-17T00:00:00Z", "Earth", "Jupiter", "333005 Haberle", "sun", "Distance to Earth:"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummaryTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	Build(nil, at).WriteSummaryTable(&buf)
	if !strings.Contains(buf.String(), "No bodies") {
		t.Errorf("empty summary = %q", buf.String())
	}
}

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Earth", 16, "Earth"},
		{"333005 Haberle long name", 16, "333005 Haberle.."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncateStr(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateStr(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
