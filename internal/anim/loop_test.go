package anim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/texture"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedTime = time.Date(2024, 10, 17, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func newTestScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.Build(context.Background(), scene.Options{StarCount: -1},
		scene.DefaultRoster(astro.Haberle(), 8), texture.NewSeededFactory(1))
	require.NoError(t, err)
	return s
}

type failingRenderer struct {
	scene.Discard
	failAt int
	err    error
}

func (f *failingRenderer) Render(s *scene.Scene) error {
	if f.Frames == f.failAt {
		return f.err
	}
	return f.Discard.Render(s)
}

type panickingRenderer struct{ scene.Discard }

func (*panickingRenderer) Render(*scene.Scene) error {
	panic("texture upload lost")
}

type countingObserver struct {
	frames   int
	faults   int
	lastDist float64
}

func (o *countingObserver) FrameRendered(_ time.Duration, d float64) {
	o.frames++
	o.lastDist = d
}

func (o *countingObserver) FrameFaulted(error) { o.faults++ }

func TestNewRequiresRenderer(t *testing.T) {
	_, err := New(newTestScene(t), nil)
	assert.ErrorIs(t, err, scene.ErrMissingAnchor)

	_, err = New(nil, &scene.Discard{})
	assert.ErrorIs(t, err, scene.ErrMissingAnchor)
}

func TestLabelsTrackBodiesEveryTick(t *testing.T) {
	s := newTestScene(t)
	r := &scene.Discard{}
	clock := fixedTime
	loop, err := New(s, r, WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	for i := range 100 {
		clock = fixedTime.Add(time.Duration(i) * 24 * time.Hour)
		require.NoError(t, loop.Tick())

		for _, l := range s.Labels.Labels() {
			st, ok := s.State(l.Body)
			require.True(t, ok)
			want := st.Position.Add(astro.Vec3{Y: 0.2})
			if l.Position != want {
				t.Fatalf("tick %d: %s label at %+v, want %+v", i, l.Text, l.Position, want)
			}
			if l.Orientation != s.Camera.Orientation {
				t.Fatalf("tick %d: %s label not facing camera", i, l.Text)
			}
		}
	}
	assert.Equal(t, 100, r.Frames)
	assert.Equal(t, uint64(100), loop.Frames())
	assert.Equal(t, Running, loop.State())
}

func TestTickPositionsAndSpin(t *testing.T) {
	s := newTestScene(t)
	loop, err := New(s, &scene.Discard{}, WithClock(fixedClock))
	require.NoError(t, err)
	assert.Equal(t, Idle, loop.State())

	for range 10 {
		require.NoError(t, loop.Tick())
	}

	jd := astro.JulianDay(fixedTime)
	earth, _ := s.Mesh(scene.Earth)
	assert.Equal(t, astro.EarthOrbit.PositionAt(jd), earth.State.Position)
	assert.InDelta(t, 10*0.002, earth.State.Rotation.Y, 1e-12)
	assert.InDelta(t, 23.5*math.Pi/180, earth.State.Rotation.Z, 1e-12, "tilt preserved")

	ast, _ := s.Mesh(scene.Asteroid)
	assert.Equal(t, astro.PositionAt(astro.Haberle(), jd), ast.State.Position)
	assert.InDelta(t, 10*0.01, ast.State.Rotation.Y, 1e-12)
	assert.InDelta(t, 10*0.005, ast.State.Rotation.X, 1e-12)

	sun, _ := s.Mesh(scene.Sun)
	assert.Equal(t, astro.Vec3{}, sun.State.Position)
	assert.InDelta(t, 10*0.0005, sun.State.Rotation.Y, 1e-12)
}

func TestReadout(t *testing.T) {
	s := newTestScene(t)
	obs := &countingObserver{}
	loop, err := New(s, &scene.Discard{}, WithClock(fixedClock), WithObserver(obs))
	require.NoError(t, err)
	require.NoError(t, loop.Tick())

	r := loop.Readout()
	assert.Equal(t, "Date: 2024-10-17", r.DateLine())
	assert.InDelta(t, 2460600.5, r.JD, 1e-9)

	jd := astro.JulianDay(fixedTime)
	want := astro.PositionAt(astro.Haberle(), jd).DistanceTo(astro.EarthOrbit.PositionAt(jd))
	assert.Equal(t, want, r.DistanceAU)
	assert.Equal(t, obs.lastDist, r.DistanceAU)
	assert.Regexp(t, `^Distance to Earth: \d+\.\d{2} AU$`, r.DistanceLine())
	assert.Equal(t, 1, obs.frames)
}

func TestRendererErrorHalts(t *testing.T) {
	boom := errors.New("surface lost")
	r := &failingRenderer{failAt: 3, err: boom}
	obs := &countingObserver{}
	loop, err := New(newTestScene(t), r, WithClock(fixedClock), WithObserver(obs))
	require.NoError(t, err)

	for range 3 {
		require.NoError(t, loop.Tick())
	}
	err = loop.Tick()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Halted, loop.State())
	assert.ErrorIs(t, loop.Err(), boom)

	assert.ErrorIs(t, loop.Tick(), ErrHalted)
	assert.Equal(t, 3, r.Frames)
	assert.Equal(t, 3, obs.frames)
	assert.Equal(t, 1, obs.faults)
}

func TestPanicHalts(t *testing.T) {
	loop, err := New(newTestScene(t), &panickingRenderer{}, WithClock(fixedClock))
	require.NoError(t, err)

	err = loop.Tick()
	assert.ErrorIs(t, err, ErrFrameFault)
	assert.Contains(t, err.Error(), "texture upload lost")
	assert.Equal(t, Halted, loop.State())
	assert.ErrorIs(t, loop.Tick(), ErrHalted)
}

func TestResize(t *testing.T) {
	s := newTestScene(t)
	r := &scene.Discard{}
	loop, err := New(s, r)
	require.NoError(t, err)

	loop.Resize(120, 40)
	assert.Equal(t, 3.0, s.Camera.Aspect)
	assert.Equal(t, 120, r.Width)
	assert.Equal(t, 40, r.Height)

	loop.Resize(0, 40)
	assert.Equal(t, 120, r.Width, "zero size ignored")
}

func TestResetCamera(t *testing.T) {
	s := newTestScene(t)
	loop, err := New(s, &scene.Discard{}, WithClock(fixedClock))
	require.NoError(t, err)

	s.Controls.Rotate(1, 0.2)
	for range 20 {
		require.NoError(t, loop.Tick())
	}
	loop.ResetCamera()
	assert.InDelta(t, 0, s.Camera.Position.DistanceTo(astro.Vec3{X: 6, Y: 4, Z: 6}), 1e-9)
}

func TestSetElements(t *testing.T) {
	s := newTestScene(t)
	loop, err := New(s, &scene.Discard{}, WithClock(fixedClock))
	require.NoError(t, err)

	el := astro.Haberle()
	el.E = 0.3
	require.NoError(t, loop.SetElements(el))
	require.NoError(t, loop.Tick())

	ast, _ := s.Mesh(scene.Asteroid)
	assert.Equal(t, astro.PositionAt(el, astro.JulianDay(fixedTime)), ast.State.Position)

	el.E = 2
	assert.ErrorIs(t, loop.SetElements(el), astro.ErrInvalidElements)
}

// signalRenderer closes reached once it has drawn n frames.
type signalRenderer struct {
	scene.Discard
	n       int
	reached chan struct{}
}

func (r *signalRenderer) Render(s *scene.Scene) error {
	_ = r.Discard.Render(s)
	if r.Frames == r.n {
		close(r.reached)
	}
	return nil
}

func TestRunStopsOnCancel(t *testing.T) {
	r := &signalRenderer{n: 3, reached: make(chan struct{})}
	loop, err := New(newTestScene(t), r, WithClock(fixedClock))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, loop, time.Millisecond) }()

	select {
	case <-r.reached:
	case <-time.After(5 * time.Second):
		t.Fatal("driver did not reach 3 frames")
	}
	cancel()
	assert.NoError(t, <-done)
	assert.GreaterOrEqual(t, loop.Frames(), uint64(3))
}

func TestRunReturnsFault(t *testing.T) {
	boom := errors.New("context lost")
	loop, err := New(newTestScene(t), &failingRenderer{failAt: 2, err: boom}, WithClock(fixedClock))
	require.NoError(t, err)

	err = Run(context.Background(), loop, time.Millisecond)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Halted, loop.State())
}

func TestRunCanceledBeforeStart(t *testing.T) {
	loop, err := New(newTestScene(t), &scene.Discard{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, Run(ctx, loop, 0))
	assert.Equal(t, Idle, loop.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "halted", Halted.String())
}
