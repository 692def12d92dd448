// Package skill resolves cooldown-gated abilities and simulates the
// projectiles and area effects they leave in the world.
package skill

import (
	"math"

	"github.com/nathoo/arpgcore/engine/combat"
	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/types"
)

const (
	ProjectileSpeed  = 20.0
	ProjectileRadius = 0.3
	LevelBonus       = 0.2
	Variance         = 0.1
)

// Rand is the slice of the deterministic generator skill rolls draw from.
type Rand interface {
	RangeFloat(min, max float64) float64
}

// Cast is the product of a successful skill use. Exactly one of Projectile,
// Area, Buff or Cone is set, according to the skill's kind.
type Cast struct {
	Skill      string
	Kind       types.SkillKind
	Projectile *types.Projectile
	Area       *types.AreaEffect
	Buff       *types.Buff
	Cone       *combat.Strike
	Damage     float64 // cone damage, applied by the caller
}

// CanUse reports whether a skill is ready and affordable. The reason is one
// of the rejection codes in types when it is not.
func CanUse(def *types.SkillDef, p *types.PlayerState) (bool, string) {
	if def == nil {
		return false, types.ReasonUnknownSkill
	}
	slot, ok := p.Skills[def.ID]
	if !ok {
		return false, types.ReasonUnknownSkill
	}
	if slot.Cooldown > 0 {
		return false, types.ReasonCooldown
	}
	switch def.Resource {
	case types.ResourceStamina:
		if p.Stamina < def.Cost {
			return false, types.ReasonInsufficientStamina
		}
	default:
		if p.Mana < def.Cost {
			return false, types.ReasonInsufficientMana
		}
	}
	return true, ""
}

// Damage scales a skill's base damage by level and rolls variance.
func Damage(r Rand, def *types.SkillDef, level int) float64 {
	if level < 1 {
		level = 1
	}
	d := def.Damage * (1 + LevelBonus*float64(level-1))
	d *= 1 + r.RangeFloat(-Variance, Variance)
	return math.Max(0, math.Round(d))
}

// Use casts a skill for the player. On rejection the player is untouched and
// the reason is returned. newID supplies ids for spawned world objects.
func Use(r Rand, def *types.SkillDef, p *types.PlayerState, newID func() string) (Cast, string) {
	if ok, reason := CanUse(def, p); !ok {
		return Cast{}, reason
	}

	slot := p.Skills[def.ID]
	slot.Cooldown = def.Cooldown
	p.Skills[def.ID] = slot
	if def.Resource == types.ResourceStamina {
		p.Stamina -= def.Cost
	} else {
		p.Mana -= def.Cost
	}

	c := Cast{Skill: def.ID, Kind: def.Kind}
	origin := p.Physics.Position
	switch def.Kind {
	case types.SkillProjectile:
		radius := def.Radius
		if radius <= 0 {
			radius = ProjectileRadius
		}
		proj := NewProjectile(newID(), p.ID, types.FactionPlayer, def.ID, origin, p.Facing,
			ProjectileSpeed, def.Range, radius, Damage(r, def, slot.Level), false)
		c.Projectile = &proj
	case types.SkillArea:
		c.Area = &types.AreaEffect{
			ID:           newID(),
			Owner:        p.ID,
			Faction:      types.FactionPlayer,
			Source:       def.ID,
			Position:     origin.Add(geom.Forward(p.Facing).Scale(def.Range)),
			Radius:       def.Radius,
			Damage:       Damage(r, def, slot.Level),
			Remaining:    def.Duration,
			TickInterval: def.TickInterval,
		}
	case types.SkillSelfBuff:
		c.Buff = &types.Buff{
			Attack:    def.AttackBuff,
			Defense:   def.DefenseBuff,
			Remaining: def.Duration,
		}
	case types.SkillCone:
		c.Cone = &combat.Strike{
			Origin:  origin,
			Facing:  p.Facing,
			Reach:   def.Range,
			HalfArc: def.ConeAngle / 2,
		}
		c.Damage = Damage(r, def, slot.Level)
	}
	return c, ""
}

// NewProjectile launches a projectile along a facing. Its lifetime is the
// time needed to cover rng at speed.
func NewProjectile(id, owner string, faction types.Faction, source string, origin geom.Vec3, facing, speed, rng, radius, damage float64, heavy bool) types.Projectile {
	life := 0.0
	if speed > 0 {
		life = rng / speed
	}
	return types.Projectile{
		ID:       id,
		Owner:    owner,
		Faction:  faction,
		Source:   source,
		Position: origin,
		Velocity: geom.Forward(facing).Scale(speed),
		Radius:   radius,
		Damage:   damage,
		Heavy:    heavy,
		Lifetime: life,
	}
}

// TickCooldowns counts every skill cooldown down by dt.
func TickCooldowns(p *types.PlayerState, dt float64) {
	for id, slot := range p.Skills {
		if slot.Cooldown > 0 {
			slot.Cooldown = math.Max(0, slot.Cooldown-dt)
			p.Skills[id] = slot
		}
	}
}

// Body is a potential victim of a projectile or area effect.
type Body struct {
	ID      string
	Faction types.Faction
	Target  combat.Target
}

// Impact is one damage application produced by Advance.
type Impact struct {
	Owner  string
	Source string
	Target string
	Damage float64
	Heavy  bool
}

// World is the set of live projectiles and area effects.
type World struct {
	Projectiles []types.Projectile
	Areas       []types.AreaEffect
}

// Advance moves projectiles and ticks areas by dt. Impacts are returned in
// creation order, projectiles before areas. A projectile stops at its first
// victim; bodies are tested in slice order. Expired projectile ids are
// returned separately.
func Advance(w World, bodies []Body, dt float64) (World, []Impact, []string) {
	var (
		next    World
		impacts []Impact
		expired []string
	)

	for _, p := range w.Projectiles {
		from := p.Position
		p.Position = p.Position.Add(p.Velocity.Scale(dt))
		p.Lifetime -= dt

		hit := false
		for _, b := range bodies {
			if b.Faction == p.Faction {
				continue
			}
			closest := geom.ClosestPointOnSegment(from, p.Position, b.Target.Position)
			if combat.Resolve(combat.Strike{Origin: closest, Reach: p.Radius, Radial: true}, b.Target) {
				impacts = append(impacts, Impact{Owner: p.Owner, Source: p.Source, Target: b.ID, Damage: p.Damage, Heavy: p.Heavy})
				hit = true
				break
			}
		}
		switch {
		case hit:
		case p.Lifetime <= 0:
			expired = append(expired, p.ID)
		default:
			next.Projectiles = append(next.Projectiles, p)
		}
	}

	for _, a := range w.Areas {
		a.NextTick -= dt
		if a.NextTick <= 0 {
			strike := combat.Strike{Origin: a.Position, Reach: a.Radius, Radial: true}
			for _, b := range bodies {
				if b.Faction != a.Faction && combat.Resolve(strike, b.Target) {
					impacts = append(impacts, Impact{Owner: a.Owner, Source: a.Source, Target: b.ID, Damage: a.Damage})
				}
			}
			if a.TickInterval > 0 {
				a.NextTick = a.TickInterval
			} else {
				// Single pulse: push the next tick past the end of the effect.
				a.NextTick = a.Remaining + 1
			}
		}
		a.Remaining -= dt
		if a.Remaining > 0 {
			next.Areas = append(next.Areas, a)
		}
	}

	return next, impacts, expired
}
