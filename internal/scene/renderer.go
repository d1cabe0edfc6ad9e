package scene

import "errors"

var (
	// ErrEnvironmentUnsupported is returned when the host cannot draw
	// frames at all.
	ErrEnvironmentUnsupported = errors.New("rendering environment unsupported")
	// ErrMissingAnchor is returned when there is no surface to attach
	// the renderer output to.
	ErrMissingAnchor = errors.New("render surface missing")
)

// Renderer draws a scene onto some output surface.
type Renderer interface {
	Render(s *Scene) error
	Resize(width, height int)
}

// Prober is implemented by renderers that can verify their surface
// before the first frame.
type Prober interface {
	Probe() error
}

// CheckRenderer verifies r is usable.
func CheckRenderer(r Renderer) error {
	if r == nil {
		return ErrMissingAnchor
	}
	if p, ok := r.(Prober); ok {
		return p.Probe()
	}
	return nil
}

// Discard is a renderer that only counts frames. It backs headless runs.
type Discard struct {
	Frames        int
	Width, Height int
}

func (d *Discard) Render(*Scene) error {
	d.Frames++
	return nil
}

func (d *Discard) Resize(w, h int) {
	d.Width, d.Height = w, h
}
