// Package weapon runs weapon swings and the hit tests and damage rolls they
// produce.
package weapon

import (
	"math"

	"github.com/nathoo/arpgcore/engine/combat"
	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/types"
)

// Variance is the half-width of the uniform damage roll.
const Variance = 0.1

// Rand is the slice of the deterministic generator hit rolls draw from.
type Rand interface {
	RangeFloat(min, max float64) float64
	Chance(p float64) bool
}

// Modifiers scale a roll on behalf of the attacker (combo, buffs).
type Modifiers struct {
	Multiplier float64 // 0 means 1
	Flat       float64
}

// Hit is the outcome of a hit test.
type Hit struct {
	Hit      bool
	Damage   float64
	Critical bool
	Stagger  bool
	Heavy    bool
}

// ArcFor returns the arc a swing kind uses.
func ArcFor(w *types.WeaponStats, kind types.SwingKind) types.Arc {
	if kind == types.SwingHeavy {
		return w.Heavy
	}
	return w.Light
}

// HalfSpan returns half the angular width of an arc.
func HalfSpan(a types.Arc) float64 {
	return math.Abs(a.EndAngle-a.StartAngle) / 2
}

// StartSwing begins a swing. It is a no-op returning false while a swing is
// already in progress.
func StartSwing(s *types.SwingState, w *types.WeaponStats, kind types.SwingKind) bool {
	if s.Active {
		return false
	}
	arc := ArcFor(w, kind)
	*s = types.SwingState{
		Active:      true,
		Kind:        kind,
		ArcAngle:    arc.StartAngle,
		InHitWindow: inWindow(arc, 0),
	}
	return true
}

// UpdateSwing advances an active swing by dt. A swing that reaches the end of
// its arc resets to idle.
func UpdateSwing(s *types.SwingState, w *types.WeaponStats, dt float64) {
	if !s.Active {
		return
	}
	arc := ArcFor(w, s.Kind)
	speed := w.Speed
	if speed <= 0 {
		speed = 1
	}
	dur := arc.Duration / speed
	if dur <= 0 {
		*s = types.SwingState{}
		return
	}
	s.Progress += dt / dur
	if s.Progress >= 1 {
		*s = types.SwingState{}
		return
	}
	s.ArcAngle = arc.StartAngle + (arc.EndAngle-arc.StartAngle)*s.Progress
	s.InHitWindow = inWindow(arc, s.Progress)
}

func inWindow(a types.Arc, p float64) bool {
	return p >= a.HitStart && p <= a.HitEnd
}

// SwingDuration is how long a swing lasts in seconds.
func SwingDuration(w *types.WeaponStats, kind types.SwingKind) float64 {
	speed := w.Speed
	if speed <= 0 {
		speed = 1
	}
	return ArcFor(w, kind).Duration / speed
}

// CheckWeaponHit tests the current swing against a target. It only evaluates
// inside the hit window and at most once per swing: a successful hit latches
// HasHit until the swing ends.
func CheckWeaponHit(r Rand, s *types.SwingState, w *types.WeaponStats, mods Modifiers, origin geom.Vec3, facing float64, target combat.Target) Hit {
	if !s.Active || !s.InHitWindow || s.HasHit {
		return Hit{}
	}
	h := GenerateAttack(r, w, s.Kind, mods, origin, facing, target)
	if h.Hit {
		s.HasHit = true
	}
	return h
}

// GenerateAttack runs the geometric test for one swing kind and, on a hit,
// rolls damage, critical and stagger. Draws are consumed only on a hit.
func GenerateAttack(r Rand, w *types.WeaponStats, kind types.SwingKind, mods Modifiers, origin geom.Vec3, facing float64, target combat.Target) Hit {
	strike := combat.Strike{
		Origin:  origin,
		Facing:  facing,
		Reach:   w.Range,
		HalfArc: HalfSpan(ArcFor(w, kind)),
	}
	if !combat.Resolve(strike, target) {
		return Hit{}
	}

	heavy := kind == types.SwingHeavy
	dmg := w.BaseDamage
	if heavy {
		dmg *= w.HeavyMultiplier
	}
	dmg *= 1 + r.RangeFloat(-Variance, Variance)

	crit := r.Chance(w.CritChance)
	if crit {
		dmg *= w.CritMultiplier
	}
	if mods.Multiplier != 0 {
		dmg *= mods.Multiplier
	}
	dmg += mods.Flat

	stagger := heavy
	if !heavy {
		stagger = r.Chance(w.StaggerPower)
	}

	return Hit{
		Hit:      true,
		Damage:   math.Max(0, math.Round(dmg)),
		Critical: crit,
		Stagger:  stagger,
		Heavy:    heavy,
	}
}
