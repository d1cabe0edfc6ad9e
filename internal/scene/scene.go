package scene

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/texture"
)

// RenderState is the per-frame transform of a body.
type RenderState struct {
	Position astro.Vec3
	Rotation astro.Vec3 // Euler XYZ, radians
}

// Glow is a translucent shell drawn around a mesh.
type Glow struct {
	Scale   float64
	Opacity float64
	Color   colorful.Color
}

// Mesh is a textured sphere for one body.
type Mesh struct {
	Body     CelestialBody
	State    RenderState
	Texture  *image.RGBA
	Average  colorful.Color // mean texture colour, used when the sphere is too small to shade
	Emissive bool           // unlit; the Sun
	Glow     *Glow
}

// OrbitLine is a closed polyline tracing a body's orbit.
type OrbitLine struct {
	Body    BodyID
	Points  []astro.Vec3
	Color   colorful.Color
	Opacity float64
}

// LightKind distinguishes ambient from point lights.
type LightKind int

const (
	AmbientLight LightKind = iota
	PointLight
)

// Light is a scene light.
type Light struct {
	Kind      LightKind
	Color     colorful.Color
	Intensity float64
	Position  astro.Vec3
}

// Starfield is the static background point cloud.
type Starfield struct {
	Points  []astro.Vec3
	Color   colorful.Color
	Visible bool
}

// Options configures Build. Zero fields take the defaults; a negative
// Damping disables damping and a negative StarCount disables stars.
type Options struct {
	FOV            float64
	Near, Far      float64
	Aspect         float64
	CameraPosition astro.Vec3

	Damping     float64
	MinDistance float64
	MaxDistance float64

	StarCount     int
	StarExtent    float64 // cube edge length
	OrbitSegments int

	// Rand places the stars; nil uses the global generator.
	Rand texture.Source
}

// DefaultOptions returns the standard view setup.
func DefaultOptions() Options {
	return Options{
		FOV:            60,
		Near:           0.1,
		Far:            1000,
		Aspect:         16.0 / 9.0,
		CameraPosition: astro.Vec3{X: 6, Y: 4, Z: 6},
		Damping:        0.05,
		MinDistance:    2,
		MaxDistance:    50,
		StarCount:      5000,
		StarExtent:     100,
		OrbitSegments:  astro.DefaultOrbitSegments,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FOV <= 0 {
		o.FOV = d.FOV
	}
	if o.Near <= 0 {
		o.Near = d.Near
	}
	if o.Far <= o.Near {
		o.Far = d.Far
	}
	if o.Aspect <= 0 {
		o.Aspect = d.Aspect
	}
	if o.CameraPosition == (astro.Vec3{}) {
		o.CameraPosition = d.CameraPosition
	}
	switch {
	case o.Damping == 0:
		o.Damping = d.Damping
	case o.Damping < 0:
		o.Damping = 0
	}
	if o.MinDistance <= 0 {
		o.MinDistance = d.MinDistance
	}
	if o.MaxDistance < o.MinDistance {
		o.MaxDistance = d.MaxDistance
	}
	switch {
	case o.StarCount == 0:
		o.StarCount = d.StarCount
	case o.StarCount < 0:
		o.StarCount = 0
	}
	if o.StarExtent <= 0 {
		o.StarExtent = d.StarExtent
	}
	if o.OrbitSegments < 1 {
		o.OrbitSegments = d.OrbitSegments
	}
	return o
}

// Scene is the complete renderable world.
type Scene struct {
	Background colorful.Color
	Camera     *Camera
	Controls   *OrbitControls
	Lights     []Light
	Stars      Starfield
	Orbits     []*OrbitLine
	Meshes     []*Mesh // roster order
	Labels     *LabelTracker

	segments int
	byID     map[BodyID]*Mesh
}

// RequiredBodies lists the bodies every roster must contain.
var RequiredBodies = []BodyID{Sun, Earth, Mars, Jupiter, Asteroid}

// Build assembles the scene for roster, drawing textures from factory.
func Build(ctx context.Context, opts Options, roster []CelestialBody, factory *texture.Factory) (*Scene, error) {
	opts = opts.withDefaults()

	for _, id := range RequiredBodies {
		if !slices.ContainsFunc(roster, func(b CelestialBody) bool { return b.ID == id }) {
			return nil, fmt.Errorf("roster has no %s: %w", id, ErrMissingAnchor)
		}
	}
	reqs := make([]texture.Request, 0, len(roster))
	for _, b := range roster {
		if b.Elements != nil {
			if err := b.Elements.Validate(); err != nil {
				return nil, fmt.Errorf("body %s: %w", b.ID, err)
			}
		}
		reqs = append(reqs, texture.Request{Recipe: b.Texture.Recipe, Width: b.Texture.Width, Height: b.Texture.Height})
	}

	if factory == nil {
		factory = texture.NewFactory(nil)
	}
	textures, err := factory.GenerateAll(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("generate textures: %w", err)
	}

	cam := NewCamera(opts.FOV, opts.Aspect, opts.Near, opts.Far)
	cam.Position = opts.CameraPosition

	s := &Scene{
		Background: mustHex("#000814"),
		Camera:     cam,
		Controls:   NewOrbitControls(cam, astro.Vec3{}, opts.Damping, opts.MinDistance, opts.MaxDistance),
		Lights: []Light{
			{Kind: AmbientLight, Color: mustHex("#404040"), Intensity: 0.5},
			{Kind: PointLight, Color: mustHex("#FFFFFF"), Intensity: 2.5},
		},
		Stars:    newStarfield(opts.StarCount, opts.StarExtent, opts.Rand),
		Labels:   NewLabelTracker(),
		segments: opts.OrbitSegments,
		byID:     make(map[BodyID]*Mesh, len(roster)),
	}

	for i, b := range roster {
		tex := textures[i]
		m := &Mesh{
			Body:    b,
			Texture: tex,
			Average: texture.Average(tex),
			State: RenderState{
				Position: b.PositionAt(astro.J2000),
				Rotation: astro.Vec3{Z: b.AxialTiltDeg * math.Pi / 180},
			},
		}
		if b.ID == Sun {
			m.Emissive = true
			m.Glow = &Glow{Scale: 1.15, Opacity: 0.4, Color: mustHex("#FFAA00")}
		}
		s.Meshes = append(s.Meshes, m)
		s.byID[b.ID] = m

		if b.Orbits() {
			s.Orbits = append(s.Orbits, &OrbitLine{
				Body:    b.ID,
				Points:  orbitPoints(b, s.segments),
				Color:   b.OrbitColor,
				Opacity: 0.6,
			})
		}
		if b.Label != "" {
			s.Labels.Add(b.Label, b.ID, DefaultLabelOffset)
		}
	}
	s.Labels.Update(s.State, cam)

	return s, nil
}

func orbitPoints(b CelestialBody, segments int) []astro.Vec3 {
	return slices.Collect(b.Path(segments))
}

func newStarfield(n int, extent float64, src texture.Source) Starfield {
	next := rand.Float64
	if src != nil {
		next = src.Float64
	}
	pts := make([]astro.Vec3, n)
	for i := range pts {
		pts[i] = astro.Vec3{
			X: (next() - 0.5) * extent,
			Y: (next() - 0.5) * extent,
			Z: (next() - 0.5) * extent,
		}
	}
	return Starfield{Points: pts, Color: colorful.Color{R: 1, G: 1, B: 1}, Visible: true}
}

// Mesh returns the mesh for id.
func (s *Scene) Mesh(id BodyID) (*Mesh, bool) {
	m, ok := s.byID[id]
	return m, ok
}

// State returns the current render state of id. It is the lookup the
// label tracker uses.
func (s *Scene) State(id BodyID) (RenderState, bool) {
	m, ok := s.byID[id]
	if !ok {
		return RenderState{}, false
	}
	return m.State, true
}

// Orbit returns the orbit line for id.
func (s *Scene) Orbit(id BodyID) (*OrbitLine, bool) {
	for _, o := range s.Orbits {
		if o.Body == id {
			return o, true
		}
	}
	return nil, false
}

// SetElements replaces the asteroid's orbital elements and rebuilds its
// orbit line. Other orbits are untouched.
func (s *Scene) SetElements(el astro.Elements) error {
	if err := el.Validate(); err != nil {
		return err
	}
	m, ok := s.byID[Asteroid]
	if !ok {
		return fmt.Errorf("no asteroid in scene: %w", ErrMissingAnchor)
	}
	m.Body.Elements = &el
	if o, ok := s.Orbit(Asteroid); ok {
		o.Points = astro.OrbitPoints(el, s.segments)
	}
	return nil
}

// ResetCamera restores the initial camera position and target.
func (s *Scene) ResetCamera() {
	s.Controls.Reset()
}
