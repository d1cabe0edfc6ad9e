package scene

import "github.com/litescript/ls-orrery/internal/astro"

// DefaultLabelOffset places labels just above their body.
var DefaultLabelOffset = astro.Vec3{Y: 0.2}

// Label is a camera-facing text sprite attached to a body.
type Label struct {
	Text   string
	Body   BodyID
	Offset astro.Vec3

	Position    astro.Vec3
	Orientation Quat
	// DepthTest false keeps labels visible through bodies.
	DepthTest bool
	ScaleX    float64
	ScaleY    float64
}

// LabelTracker keeps labels glued to their bodies. Labels refer to bodies
// by ID only; a label whose body is gone is left where it was.
type LabelTracker struct {
	labels  []*Label
	visible bool
}

// NewLabelTracker returns an empty, visible tracker.
func NewLabelTracker() *LabelTracker {
	return &LabelTracker{visible: true}
}

// Add registers a label for body and returns it.
func (lt *LabelTracker) Add(text string, body BodyID, offset astro.Vec3) *Label {
	l := &Label{
		Text:        text,
		Body:        body,
		Offset:      offset,
		Orientation: IdentityQuat,
		ScaleX:      2,
		ScaleY:      0.5,
	}
	lt.labels = append(lt.labels, l)
	return l
}

// Labels returns the registered labels in insertion order.
func (lt *LabelTracker) Labels() []*Label { return lt.labels }

// Find returns the label attached to body.
func (lt *LabelTracker) Find(body BodyID) (*Label, bool) {
	for _, l := range lt.labels {
		if l.Body == body {
			return l, true
		}
	}
	return nil, false
}

// Visible reports whether labels should be drawn.
func (lt *LabelTracker) Visible() bool { return lt.visible }

// SetVisible shows or hides all labels.
func (lt *LabelTracker) SetVisible(v bool) { lt.visible = v }

// Update moves each label to its body's position plus offset and turns
// it to face the camera.
func (lt *LabelTracker) Update(lookup func(BodyID) (RenderState, bool), cam *Camera) {
	for _, l := range lt.labels {
		st, ok := lookup(l.Body)
		if !ok {
			continue
		}
		l.Position = st.Position.Add(l.Offset)
		if cam != nil {
			l.Orientation = cam.Orientation
		}
	}
}
