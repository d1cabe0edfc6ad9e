package scene

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// Quat is a unit quaternion describing an orientation.
type Quat struct {
	W, X, Y, Z float64
}

// IdentityQuat is the orientation that leaves vectors unchanged.
var IdentityQuat = Quat{W: 1}

// Conj returns the inverse rotation of a unit quaternion.
func (q Quat) Conj() Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v astro.Vec3) astro.Vec3 {
	u := astro.Vec3{X: q.X, Y: q.Y, Z: q.Z}
	// v' = v + 2w(u×v) + 2u×(u×v)
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// quatFromAxes builds the rotation whose local x, y, z axes map to the
// given orthonormal basis.
func quatFromAxes(x, y, z astro.Vec3) Quat {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		return Quat{W: 0.25 / s, X: (m21 - m12) * s, Y: (m02 - m20) * s, Z: (m10 - m01) * s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		return Quat{W: (m21 - m12) / s, X: 0.25 * s, Y: (m01 + m10) / s, Z: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		return Quat{W: (m02 - m20) / s, X: (m01 + m10) / s, Y: 0.25 * s, Z: (m12 + m21) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		return Quat{W: (m10 - m01) / s, X: (m02 + m20) / s, Y: (m12 + m21) / s, Z: 0.25 * s}
	}
}

// Camera is a perspective camera looking down its local -Z axis.
type Camera struct {
	FOV         float64 // vertical field of view (degrees)
	Aspect      float64 // width / height
	Near, Far   float64
	Position    astro.Vec3
	Up          astro.Vec3
	Orientation Quat
}

// NewCamera returns a camera at the origin with +Y up.
func NewCamera(fov, aspect, near, far float64) *Camera {
	return &Camera{
		FOV:         fov,
		Aspect:      aspect,
		Near:        near,
		Far:         far,
		Up:          astro.Vec3{Y: 1},
		Orientation: IdentityQuat,
	}
}

// LookAt orients the camera toward target, keeping Up as close to
// vertical as possible.
func (c *Camera) LookAt(target astro.Vec3) {
	back := c.Position.Sub(target).Normalized()
	if back == (astro.Vec3{}) {
		return
	}
	right := c.Up.Cross(back)
	if right.Norm() < 1e-12 {
		// Looking straight along Up; nudge to a stable axis.
		right = astro.Vec3{Z: 1}.Cross(back)
	}
	right = right.Normalized()
	up := back.Cross(right)
	c.Orientation = quatFromAxes(right, up, back)
}

// SetViewport updates the aspect ratio for a w×h viewport.
func (c *Camera) SetViewport(w, h int) {
	if w > 0 && h > 0 {
		c.Aspect = float64(w) / float64(h)
	}
}

// Forward returns the viewing direction.
func (c *Camera) Forward() astro.Vec3 {
	return c.Orientation.Rotate(astro.Vec3{Z: -1})
}

// focal returns 1/tan(fov/2).
func (c *Camera) focal() float64 {
	return 1 / math.Tan(c.FOV*math.Pi/360)
}

// Project maps a world point to normalized device coordinates in
// [-1, 1]. depth is the distance along the view axis. ok is false for
// points outside the near/far range.
func (c *Camera) Project(p astro.Vec3) (x, y, depth float64, ok bool) {
	v := c.Orientation.Conj().Rotate(p.Sub(c.Position))
	depth = -v.Z
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	f := c.focal()
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return f / aspect * v.X / depth, f * v.Y / depth, depth, true
}

// ProjectedRadius returns the NDC height of a sphere of radius r seen at
// depth.
func (c *Camera) ProjectedRadius(r, depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return c.focal() * r / depth
}
