// Package combat holds the hit test and health bookkeeping shared by the
// player and enemies. Nothing here knows which side is attacking.
package combat

import (
	"math"

	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/types"
)

// ArcTolerance widens every angular hit test slightly.
var ArcTolerance = geom.Deg(10)

// Strike is one attack attempt in world space.
type Strike struct {
	Origin  geom.Vec3
	Facing  float64
	Reach   float64
	HalfArc float64 // radians either side of Facing
	Radial  bool    // area attack: radius only, no angle test
}

// Target is the part of a defender a hit test reads.
type Target struct {
	Position geom.Vec3
	Radius   float64
}

// TargetOf returns the hit-test view of an actor.
func TargetOf(a *types.Actor) Target {
	return Target{Position: a.Physics.Position, Radius: a.Radius}
}

// InReach reports whether the target's body lies within the strike's reach,
// measured in the horizontal plane.
func InReach(s Strike, t Target) bool {
	return geom.HorizontalDist(s.Origin, t.Position) <= s.Reach+t.Radius
}

// Resolve is the single hit test used for both directions of combat.
func Resolve(s Strike, t Target) bool {
	if !InReach(s, t) {
		return false
	}
	if s.Radial {
		return true
	}
	return geom.AngleBetween(s.Facing, s.Origin, t.Position) <= s.HalfArc+ArcTolerance
}

// Outcome reports what a damage application did.
type Outcome struct {
	Applied  float64
	Defeated bool // true only on the application that defeated the actor
}

// ApplyDamage removes health, clamping to [0, MaxHealth]. A defeated actor
// ignores further damage, so the defeat fires exactly once.
func ApplyDamage(a *types.Actor, amount float64) Outcome {
	if a.Defeated || math.IsNaN(amount) || amount <= 0 {
		return Outcome{}
	}
	applied := math.Min(amount, a.Health)
	a.Health -= applied
	if a.Health <= 0 {
		a.Health = 0
		a.Defeated = true
		return Outcome{Applied: applied, Defeated: true}
	}
	return Outcome{Applied: applied}
}

// Heal restores health up to MaxHealth and returns the amount restored.
func Heal(a *types.Actor, amount float64) float64 {
	if a.Defeated || math.IsNaN(amount) || amount <= 0 {
		return 0
	}
	before := a.Health
	a.Health = math.Min(a.MaxHealth, a.Health+amount)
	return a.Health - before
}
