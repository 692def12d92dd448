// Package geom provides the small amount of vector math the simulation needs.
// The world is Y-up; "horizontal" always means the XZ plane.
package geom

import "math"

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

// Vec3 is a 3D vector.
type Vec3 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

// Up is the world up axis.
var Up = Vec3{Y: 1}

// V returns a vector from components.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (a Vec3) Add(b Vec3) Vec3        { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3        { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3   { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64     { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len() float64           { return math.Sqrt(a.Dot(a)) }
func (a Vec3) Horizontal() Vec3       { return Vec3{X: a.X, Z: a.Z} }
func (a Vec3) HorizontalLen() float64 { return math.Hypot(a.X, a.Z) }

// IsZero reports whether the vector is shorter than Epsilon.
func (a Vec3) IsZero() bool { return a.Len() < Epsilon }

// Normalize returns the unit vector in the direction of a, or the zero vector
// when a has no length.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l < Epsilon {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// Dist returns the euclidean distance between two points.
func Dist(a, b Vec3) float64 { return a.Sub(b).Len() }

// HorizontalDist returns the distance between two points ignoring height.
func HorizontalDist(a, b Vec3) float64 { return a.Sub(b).HorizontalLen() }

// Forward returns the horizontal unit direction for a yaw (radians about +Y).
// Yaw 0 faces +Z.
func Forward(yaw float64) Vec3 {
	return Vec3{X: math.Sin(yaw), Z: math.Cos(yaw)}
}

// Right returns the horizontal unit direction 90 degrees clockwise of Forward
// when viewed from above.
func Right(yaw float64) Vec3 {
	return Vec3{X: math.Cos(yaw), Z: -math.Sin(yaw)}
}

// Yaw returns the yaw that faces along the horizontal part of dir.
// A zero direction yields 0.
func Yaw(dir Vec3) float64 {
	if dir.HorizontalLen() < Epsilon {
		return 0
	}
	return math.Atan2(dir.X, dir.Z)
}

// WrapAngle maps an angle into (-Pi, Pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// AngleBetween returns the absolute horizontal angle between a facing yaw and
// the direction from origin to target. Coincident points return 0.
func AngleBetween(facing float64, origin, target Vec3) float64 {
	to := target.Sub(origin)
	if to.HorizontalLen() < Epsilon {
		return 0
	}
	return math.Abs(WrapAngle(Yaw(to) - facing))
}

// ClosestPointOnSegment returns the point on segment [a,b] closest to p.
// A degenerate segment returns a.
func ClosestPointOnSegment(a, b, p Vec3) Vec3 {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den < Epsilon {
		return a
	}
	t := p.Sub(a).Dot(ab) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Deg converts degrees to radians.
func Deg(d float64) float64 { return d * math.Pi / 180 }
