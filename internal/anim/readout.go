package anim

import (
	"fmt"
	"time"

	"github.com/litescript/ls-orrery/internal/scene"
)

// Readout holds the HUD values for one frame.
type Readout struct {
	Time       time.Time
	JD         float64
	DistanceAU float64 // asteroid to Earth
}

func newReadout(t time.Time, jd float64, s *scene.Scene) Readout {
	r := Readout{Time: t, JD: jd}
	earth, ok1 := s.State(scene.Earth)
	ast, ok2 := s.State(scene.Asteroid)
	if ok1 && ok2 {
		r.DistanceAU = ast.Position.DistanceTo(earth.Position)
	}
	return r
}

// DateLine formats the date readout.
func (r Readout) DateLine() string {
	return "Date: " + r.Time.Format("2006-01-02")
}

// DistanceLine formats the asteroid–Earth distance readout.
func (r Readout) DistanceLine() string {
	return fmt.Sprintf("Distance to Earth: %.2f AU", r.DistanceAU)
}
