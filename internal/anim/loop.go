// Package anim drives the per-frame update of the scene.
package anim

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/scene"
)

var (
	// ErrHalted is returned by Tick once a previous frame has faulted.
	ErrHalted = errors.New("animation loop halted")
	// ErrFrameFault wraps a panic recovered from a frame.
	ErrFrameFault = errors.New("frame fault")
)

// State is the lifecycle state of a Loop.
type State int

const (
	Idle State = iota
	Running
	Halted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// Observer receives per-frame outcomes.
type Observer interface {
	FrameRendered(elapsed time.Duration, distanceAU float64)
	FrameFaulted(err error)
}

// Loop advances the scene one frame per Tick. A Loop is owned by a single
// goroutine; it does no locking.
type Loop struct {
	scene    *scene.Scene
	renderer scene.Renderer
	now      func() time.Time
	log      *logging.Logger
	obs      Observer

	order   []*scene.Mesh
	state   State
	frames  uint64
	readout Readout
	fault   error
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the wall clock. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// WithLogger sets the logger for frame faults.
func WithLogger(log *logging.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// WithObserver registers an observer for frame outcomes.
func WithObserver(o Observer) Option {
	return func(l *Loop) { l.obs = o }
}

// New creates an idle loop for s rendered by r.
func New(s *scene.Scene, r scene.Renderer, opts ...Option) (*Loop, error) {
	if s == nil {
		return nil, fmt.Errorf("nil scene: %w", scene.ErrMissingAnchor)
	}
	if err := scene.CheckRenderer(r); err != nil {
		return nil, err
	}
	l := &Loop{
		scene:    s,
		renderer: r,
		now:      time.Now,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}

	// Circular planets first, then Kepler bodies, then fixed bodies.
	l.order = slices.Clone(s.Meshes)
	slices.SortStableFunc(l.order, func(a, b *scene.Mesh) int {
		return updateRank(a.Body) - updateRank(b.Body)
	})
	return l, nil
}

func updateRank(b scene.CelestialBody) int {
	switch {
	case b.Circular != nil:
		return 0
	case b.Elements != nil:
		return 1
	default:
		return 2
	}
}

// State returns the loop's lifecycle state.
func (l *Loop) State() State { return l.state }

// Frames returns the number of completed frames.
func (l *Loop) Frames() uint64 { return l.frames }

// Readout returns the HUD values from the last completed frame.
func (l *Loop) Readout() Readout { return l.readout }

// Err returns the fault that halted the loop, if any.
func (l *Loop) Err() error { return l.fault }

// Scene returns the driven scene.
func (l *Loop) Scene() *scene.Scene { return l.scene }

// Tick runs one frame. Any panic or renderer error halts the loop and is
// returned; later calls return ErrHalted.
func (l *Loop) Tick() (err error) {
	if l.state == Halted {
		return ErrHalted
	}
	l.state = Running
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: frame %d: %v", ErrFrameFault, l.frames, r)
		}
		if err != nil {
			l.halt(err)
		}
	}()

	s := l.scene
	s.Controls.Update()

	t := l.now()
	jd := astro.JulianDay(t)

	for _, m := range l.order {
		m.State.Position = m.Body.PositionAt(jd)
		m.State.Rotation = m.State.Rotation.Add(m.Body.Spin)
	}

	l.readout = newReadout(t, jd, s)

	s.Labels.Update(s.State, s.Camera)

	if err := l.renderer.Render(s); err != nil {
		return fmt.Errorf("render frame %d: %w", l.frames, err)
	}

	l.frames++
	if l.obs != nil {
		l.obs.FrameRendered(time.Since(start), l.readout.DistanceAU)
	}
	return nil
}

func (l *Loop) halt(err error) {
	l.state = Halted
	l.fault = err
	l.log.Error("animation halted: %v", err)
	if l.obs != nil {
		l.obs.FrameFaulted(err)
	}
}

// Resize updates the camera aspect and the renderer viewport.
func (l *Loop) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	l.scene.Camera.SetViewport(w, h)
	l.renderer.Resize(w, h)
}

// ResetCamera restores the initial camera pose.
func (l *Loop) ResetCamera() {
	l.scene.ResetCamera()
}

// SetElements swaps the asteroid's orbital elements.
func (l *Loop) SetElements(el astro.Elements) error {
	if err := l.scene.SetElements(el); err != nil {
		return fmt.Errorf("set elements: %w", err)
	}
	l.log.Info("asteroid elements updated: a=%.4f e=%.4f i=%.3f", el.A, el.E, el.I)
	return nil
}
