// Package physics integrates the rigid-capsule movement of a single actor.
// Step is a pure function: it reads the previous PhysicsState and returns the
// next one without touching anything else.
package physics

import (
	"math"

	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/types"
)

// Ground is the walkable surface beneath the arena.
type Ground interface {
	HeightAt(x, z float64) float64
	NormalAt(x, z float64) geom.Vec3
}

// FlatGround is a horizontal plane at a fixed height.
type FlatGround struct {
	Height float64
}

func (g FlatGround) HeightAt(x, z float64) float64   { return g.Height }
func (g FlatGround) NormalAt(x, z float64) geom.Vec3 { return geom.Up }

// PlaneGround is an inclined plane passing through Origin.
type PlaneGround struct {
	Origin geom.Vec3
	Normal geom.Vec3
}

// HeightAt solves the plane equation for y. A vertical plane has no height
// and reports the origin's.
func (g PlaneGround) HeightAt(x, z float64) float64 {
	n := g.Normal.Normalize()
	if math.Abs(n.Y) < geom.Epsilon {
		return g.Origin.Y
	}
	return g.Origin.Y - (n.X*(x-g.Origin.X)+n.Z*(z-g.Origin.Z))/n.Y
}

func (g PlaneGround) NormalAt(x, z float64) geom.Vec3 {
	n := g.Normal.Normalize()
	if n.IsZero() {
		return geom.Up
	}
	return n
}

// GroundFor builds the ground described by an arena definition. A missing or
// vertical-up normal yields flat ground.
func GroundFor(a types.ArenaDef) Ground {
	n := a.GroundNormal.Normalize()
	if n.IsZero() || (n.X == 0 && n.Z == 0) {
		return FlatGround{Height: a.GroundHeight}
	}
	return PlaneGround{Origin: geom.V(0, a.GroundHeight, 0), Normal: n}
}

// Capsule is the collision shape of an actor. Position is at its feet; the
// axis runs straight up. A height of at most twice the radius collapses the
// axis to a point, making the capsule a sphere.
type Capsule struct {
	Radius float64
	Height float64
}

func (c Capsule) axis(feet geom.Vec3) (geom.Vec3, geom.Vec3) {
	lo := feet.Add(geom.Up.Scale(c.Radius))
	top := c.Height - c.Radius
	if top < c.Radius {
		top = c.Radius
	}
	return lo, feet.Add(geom.Up.Scale(top))
}

// Resolver advances physics states with a fixed tuning.
type Resolver struct {
	Tuning     types.PhysicsTuning
	WorldFloor float64
}

// ClampDelta bounds a frame delta to [0, max]. NaN, infinite and negative
// deltas become 0.
func ClampDelta(dt, max float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return 0
	}
	if max > 0 && dt > max {
		return max
	}
	return dt
}

// Step integrates one tick. input is the desired horizontal velocity; its Y
// component is ignored. Obstacles are resolved independently in slice order.
func (r Resolver) Step(ps types.PhysicsState, input geom.Vec3, body Capsule, obstacles []types.Sphere, ground Ground, dt float64) types.PhysicsState {
	t := r.Tuning
	dt = ClampDelta(dt, t.MaxStep)
	out := ps

	hasInput := input.HorizontalLen() >= geom.Epsilon
	if hasInput {
		out.Velocity.X = input.X
		out.Velocity.Z = input.Z
	}

	gh := ground.HeightAt(out.Position.X, out.Position.Z)
	out.Grounded = out.Position.Y-gh <= t.StepHeight && out.Velocity.Y <= 0
	out.Sliding = false

	if out.Grounded {
		if out.Velocity.Y < 0 {
			out.Velocity.Y = 0
		}
		out.Position.Y = gh
		n := ground.NormalAt(out.Position.X, out.Position.Z)
		out.GroundNormal = n
		slope := math.Acos(geom.Clamp(n.Y, -1, 1))
		if slope > t.SlopeLimit {
			downhill := n.Horizontal().Normalize()
			if along := out.Velocity.Dot(downhill); along < t.SlideSpeed {
				out.Velocity = out.Velocity.Add(downhill.Scale(t.SlideSpeed - along))
			}
			out.Sliding = true
		}
	} else {
		out.GroundNormal = geom.Up
		out.Velocity.Y -= t.Gravity * dt
		if t.TerminalVelocity > 0 && out.Velocity.Y < -t.TerminalVelocity {
			out.Velocity.Y = -t.TerminalVelocity
		}
	}

	if !hasInput {
		f := math.Exp(-t.Damping * dt)
		out.Velocity.X *= f
		out.Velocity.Z *= f
	}

	out.Position = out.Position.Add(out.Velocity.Scale(dt))

	for _, ob := range obstacles {
		out.Position, out.Velocity = pushOut(out.Position, out.Velocity, body, ob)
	}

	// Land on the surface rather than sinking through it.
	if h := ground.HeightAt(out.Position.X, out.Position.Z); out.Position.Y < h && out.Velocity.Y <= 0 {
		out.Position.Y = h
		out.Velocity.Y = 0
		out.Grounded = true
	}

	if out.Position.Y < r.WorldFloor {
		out.Position.Y = r.WorldFloor
		if out.Velocity.Y < 0 {
			out.Velocity.Y = 0
		}
		out.Grounded = true
	}
	return out
}

// pushOut separates a capsule from one sphere obstacle.
func pushOut(pos, vel geom.Vec3, body Capsule, ob types.Sphere) (geom.Vec3, geom.Vec3) {
	a, b := body.axis(pos)
	c := geom.ClosestPointOnSegment(a, b, ob.Center)
	delta := c.Sub(ob.Center)
	dist := delta.Len()
	pen := body.Radius + ob.Radius - dist
	if pen <= 0 {
		return pos, vel
	}

	n := delta.Normalize()
	if n.IsZero() {
		// Axis passes through the centre; separate horizontally, else upward.
		n = pos.Sub(ob.Center).Horizontal().Normalize()
		if n.IsZero() {
			n = geom.Up
		}
	}
	pos = pos.Add(n.Scale(pen))
	if vn := vel.Dot(n); vn < 0 {
		vel = vel.Sub(n.Scale(vn))
	}
	return pos, vel
}
