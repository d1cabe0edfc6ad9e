package scene

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

const minPolar = 1e-6

// OrbitControls orbits, pans and dollies a camera around a target point.
// Input accumulates into pending deltas that Update applies; with
// damping enabled each Update consumes only a fraction of the pending
// motion, so the camera eases to rest over several frames.
type OrbitControls struct {
	camera *Camera

	Target        astro.Vec3
	EnableDamping bool
	DampingFactor float64
	MinDistance   float64
	MaxDistance   float64

	dTheta, dPhi float64
	pan          astro.Vec3
	scale        float64

	homePosition astro.Vec3
	homeTarget   astro.Vec3
}

// NewOrbitControls attaches controls to cam and records the camera's
// current position and target as the reset pose.
func NewOrbitControls(cam *Camera, target astro.Vec3, damping, minDist, maxDist float64) *OrbitControls {
	oc := &OrbitControls{
		camera:        cam,
		Target:        target,
		EnableDamping: damping > 0,
		DampingFactor: damping,
		MinDistance:   minDist,
		MaxDistance:   maxDist,
		scale:         1,
		homePosition:  cam.Position,
		homeTarget:    target,
	}
	cam.LookAt(target)
	return oc
}

// Camera returns the controlled camera.
func (oc *OrbitControls) Camera() *Camera { return oc.camera }

// Rotate queues an orbit of dTheta radians around the vertical axis and
// dPhi radians toward the pole.
func (oc *OrbitControls) Rotate(dTheta, dPhi float64) {
	oc.dTheta += dTheta
	oc.dPhi += dPhi
}

// Pan queues a translation of camera and target along the view plane.
// dx and dy are fractions of the current viewing distance.
func (oc *OrbitControls) Pan(dx, dy float64) {
	dist := oc.Distance()
	right := oc.camera.Orientation.Rotate(astro.Vec3{X: 1})
	up := oc.camera.Orientation.Rotate(astro.Vec3{Y: 1})
	oc.pan = oc.pan.Add(right.Scale(dx * dist)).Add(up.Scale(dy * dist))
}

// Dolly scales the viewing distance by factor. Values above 1 move the
// camera away from the target.
func (oc *OrbitControls) Dolly(factor float64) {
	if factor > 0 {
		oc.scale *= factor
	}
}

// Distance returns the current camera-to-target distance.
func (oc *OrbitControls) Distance() float64 {
	return oc.camera.Position.DistanceTo(oc.Target)
}

// Update applies pending input, clamps the result and re-aims the
// camera. It reports whether the camera moved.
func (oc *OrbitControls) Update() bool {
	cam := oc.camera
	before := cam.Position

	offset := cam.Position.Sub(oc.Target)
	radius := offset.Norm()
	theta := math.Atan2(offset.X, offset.Z)
	phi := 0.0
	if radius > 0 {
		phi = math.Acos(math.Max(-1, math.Min(1, offset.Y/radius)))
	}

	f := 1.0
	if oc.EnableDamping {
		f = oc.DampingFactor
	}
	theta += oc.dTheta * f
	phi += oc.dPhi * f
	phi = math.Max(minPolar, math.Min(math.Pi-minPolar, phi))

	radius *= oc.scale
	radius = math.Max(oc.MinDistance, math.Min(oc.MaxDistance, radius))

	oc.Target = oc.Target.Add(oc.pan.Scale(f))

	sinPhi := math.Sin(phi)
	offset = astro.Vec3{
		X: radius * sinPhi * math.Sin(theta),
		Y: radius * math.Cos(phi),
		Z: radius * sinPhi * math.Cos(theta),
	}
	cam.Position = oc.Target.Add(offset)
	cam.LookAt(oc.Target)

	if oc.EnableDamping {
		oc.dTheta *= 1 - f
		oc.dPhi *= 1 - f
		oc.pan = oc.pan.Scale(1 - f)
	} else {
		oc.dTheta, oc.dPhi = 0, 0
		oc.pan = astro.Vec3{}
	}
	oc.scale = 1

	return cam.Position.DistanceTo(before) > 1e-12
}

// Reset restores the recorded pose and drops pending input.
func (oc *OrbitControls) Reset() {
	oc.camera.Position = oc.homePosition
	oc.Target = oc.homeTarget
	oc.dTheta, oc.dPhi = 0, 0
	oc.pan = astro.Vec3{}
	oc.scale = 1
	oc.Update()
}
