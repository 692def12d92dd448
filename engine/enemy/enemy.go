// Package enemy implements the per-enemy AI state machine. Each update
// evaluates at most one transition, drives the enemy's movement intent and
// emits attacks for the engine to resolve against the player.
package enemy

import (
	"math"

	"github.com/nathoo/arpgcore/engine/combat"
	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/engine/physics"
	"github.com/nathoo/arpgcore/engine/skill"
	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/types"
)

const (
	arriveDistance   = 0.3
	wanderSpeedScale = 0.5
	holdFraction     = 0.9 // stop closing in at this fraction of attack range
	projectileRadius = 0.3
)

// Rand is the slice of the deterministic generator the AI draws from.
type Rand interface {
	RangeFloat(min, max float64) float64
	RangeInt(min, max int) int
	WeightedSelect(weights []int) int
}

// Target is what an enemy perceives of the player.
type Target struct {
	Position geom.Vec3
	Alive    bool
}

// Transition records one FSM state change.
type Transition struct {
	From, To types.AIState
}

// Emission is an attack leaving an enemy this tick. Exactly one of Strike or
// Projectile is set.
type Emission struct {
	Enemy      string
	Pattern    types.AttackPattern
	Strike     *combat.Strike
	Projectile *types.Projectile
}

// Output is what one enemy update produced.
type Output struct {
	Transition *Transition
	Emission   *Emission
}

// Brain advances enemies against a fixed catalog and arena.
type Brain struct {
	Defs      *state.Defs
	Physics   physics.Resolver
	Ground    physics.Ground
	Obstacles []types.Sphere
}

// New builds a brain for the catalog's arena.
func New(defs *state.Defs) *Brain {
	return &Brain{
		Defs:      defs,
		Physics:   physics.Resolver{Tuning: defs.Physics, WorldFloor: defs.Arena.WorldFloor},
		Ground:    physics.GroundFor(defs.Arena),
		Obstacles: defs.Arena.Obstacles,
	}
}

// Update advances one enemy by dt: FSM first, then physics.
func (b *Brain) Update(e *types.EnemyState, target Target, dt float64, r Rand, newID func() string) Output {
	if e.Defeated {
		return Output{}
	}
	a := b.Defs.Archetype(e.Archetype)
	if a == nil {
		return Output{}
	}

	out := b.think(e, a, target, dt, r, newID)
	SyncFlags(e)

	body := physics.Capsule{Radius: e.Radius, Height: b.Defs.Physics.CapsuleHeight}
	e.Physics = b.Physics.Step(e.Physics, e.Move, body, b.Obstacles, b.Ground, dt)
	return out
}

func (b *Brain) think(e *types.EnemyState, a *types.EnemyArchetype, target Target, dt float64, r Rand, newID func() string) Output {
	var out Output
	pos := e.Physics.Position
	dist := geom.HorizontalDist(pos, target.Position)
	inAggro := target.Alive && dist <= e.AggroRange

	e.AttackCooldown = math.Max(0, e.AttackCooldown-dt)
	e.StateTimer -= dt
	e.StateElapsed += dt
	e.Move = geom.Vec3{}

	transition := func(to types.AIState, timer float64) {
		out.Transition = enter(e, to, timer)
	}

	switch e.AI {
	case types.AIIdle:
		switch {
		case inAggro:
			transition(types.AIChase, 0)
		case e.StateTimer <= 0:
			angle := r.RangeFloat(0, 2*math.Pi)
			radius := r.RangeFloat(0, a.WanderRadius)
			transition(types.AIWander, a.WanderTime)
			wt := e.Home.Add(geom.Forward(angle).Scale(radius))
			e.WanderTarget = &wt
		}

	case types.AIWander:
		switch {
		case inAggro:
			transition(types.AIChase, 0)
		case e.WanderTarget == nil || geom.HorizontalDist(pos, *e.WanderTarget) < arriveDistance || e.StateTimer <= 0:
			transition(types.AIIdle, r.RangeFloat(a.IdleMin, a.IdleMax))
		default:
			dir := e.WanderTarget.Sub(pos).Horizontal().Normalize()
			e.Move = dir.Scale(e.MoveSpeed * wanderSpeedScale)
			e.Facing = geom.Yaw(dir)
		}

	case types.AIChase:
		switch {
		case !inAggro:
			transition(types.AIIdle, r.RangeFloat(a.IdleMin, a.IdleMax))
		case a.RetreatDistance > 0 && dist < a.RetreatDistance && e.AttackCooldown > 0:
			transition(types.AIRetreat, a.RetreatTime)
		case dist <= e.AttackRange && e.AttackCooldown <= 0 && len(a.Patterns) > 0:
			id := a.Patterns[r.WeightedSelect(patternWeights(a))]
			p := b.Defs.Pattern(id)
			if p == nil {
				break
			}
			face(e, target.Position)
			transition(types.AITelegraph, p.Telegraph)
			e.CurrentAttack = id
		default:
			face(e, target.Position)
			if dist > e.AttackRange*holdFraction {
				e.Move = geom.Forward(e.Facing).Scale(e.MoveSpeed)
			}
		}

	case types.AITelegraph:
		p := b.Defs.Pattern(e.CurrentAttack)
		if target.Alive {
			face(e, target.Position)
		}
		if p == nil {
			transition(types.AIRecover, 0)
			break
		}
		if e.StateTimer <= 0 {
			transition(types.AIAttack, p.Windup+p.Execute)
			e.HitEmitted = false
		}

	case types.AIAttack:
		p := b.Defs.Pattern(e.CurrentAttack)
		if p == nil {
			transition(types.AIRecover, 0)
			break
		}
		// StateElapsed was reset on entry, so it is time spent attacking.
		elapsed := e.StateElapsed
		if elapsed >= p.Windup && elapsed < p.Windup+p.Execute {
			switch p.Movement {
			case types.MoveCharge:
				e.Move = geom.Forward(e.Facing).Scale(p.MoveSpeed)
			case types.MoveRetreat:
				e.Move = geom.Forward(e.Facing).Scale(-p.MoveSpeed)
			}
		}
		if !e.HitEmitted && elapsed >= p.Windup {
			e.HitEmitted = true
			out.Emission = emit(e, p, newID)
		}
		if e.StateTimer <= 0 {
			transition(types.AIRecover, p.Recovery)
			e.AttackCooldown = r.RangeFloat(a.CooldownMin, a.CooldownMax)
		}

	case types.AIRecover:
		if e.StateTimer <= 0 {
			transition(types.AIChase, 0)
			e.CurrentAttack = ""
		}

	case types.AIStagger:
		// Stagger overrides everything until its timer runs out.
		if e.StateTimer <= 0 {
			transition(types.AIRecover, a.StaggerRecovery)
		}

	case types.AIRetreat:
		switch {
		case !target.Alive || dist >= a.SafeDistance || e.StateTimer <= 0:
			transition(types.AIChase, 0)
		default:
			face(e, target.Position)
			away := pos.Sub(target.Position).Horizontal().Normalize()
			if away.IsZero() {
				away = geom.Forward(e.Facing).Scale(-1)
			}
			e.Move = away.Scale(e.MoveSpeed)
		}
	}

	// Whatever state the tick ends in, a pursuer knows where the player is.
	if target.Alive && pursuing(e.AI) {
		track(e, target.Position)
	}
	return out
}

// patternWeights returns the archetype's pattern weights, or equal weights
// when none are set.
func patternWeights(a *types.EnemyArchetype) []int {
	if len(a.PatternWeights) == len(a.Patterns) {
		return a.PatternWeights
	}
	w := make([]int, len(a.Patterns))
	for i := range w {
		w[i] = 1
	}
	return w
}

// enter switches state and resets the per-state bookkeeping.
func enter(e *types.EnemyState, to types.AIState, timer float64) *Transition {
	t := &Transition{From: e.AI, To: to}
	e.AI = to
	e.StateTimer = timer
	e.StateElapsed = 0
	if to != types.AIWander {
		e.WanderTarget = nil
	}
	if !pursuing(to) {
		e.LastKnownPlayer = nil
	}
	return t
}

func pursuing(s types.AIState) bool {
	return s == types.AIChase || s == types.AITelegraph || s == types.AIAttack
}

func face(e *types.EnemyState, p geom.Vec3) {
	if to := p.Sub(e.Physics.Position); to.HorizontalLen() >= geom.Epsilon {
		e.Facing = geom.Yaw(to)
	}
}

func track(e *types.EnemyState, p geom.Vec3) {
	if !pursuing(e.AI) {
		return
	}
	lk := p
	e.LastKnownPlayer = &lk
}

func emit(e *types.EnemyState, p *types.AttackPattern, newID func() string) *Emission {
	em := &Emission{Enemy: e.ID, Pattern: *p}
	pos := e.Physics.Position
	switch {
	case p.Projectile:
		proj := skill.NewProjectile(newID(), e.ID, types.FactionEnemy, p.ID, pos, e.Facing,
			p.ProjectileSpeed, p.Range, projectileRadius, p.Damage, p.Heavy)
		em.Projectile = &proj
	case p.AreaRadius > 0:
		em.Strike = &combat.Strike{Origin: pos, Reach: p.AreaRadius, Radial: true}
	default:
		em.Strike = &combat.Strike{Origin: pos, Facing: e.Facing, Reach: p.Range, HalfArc: p.Arc / 2}
	}
	return em
}

// Stagger forces an enemy into the stagger state, interrupting any attack.
// A parry or heavy hit during telegraph or attack also rolls a fresh attack
// cooldown. Restaggering extends the timer rather than stacking it.
func Stagger(e *types.EnemyState, a *types.EnemyArchetype, r Rand) *Transition {
	if e.Defeated {
		return nil
	}
	if e.AI == types.AIStagger {
		e.StateTimer = math.Max(e.StateTimer, a.StaggerTime)
		return nil
	}
	if e.AI == types.AITelegraph || e.AI == types.AIAttack {
		e.AttackCooldown = r.RangeFloat(a.CooldownMin, a.CooldownMax)
	}
	e.CurrentAttack = ""
	e.HitEmitted = false
	e.Move = geom.Vec3{}
	e.Physics.Velocity.X = 0
	e.Physics.Velocity.Z = 0
	e.Flags.Staggered = true
	return enter(e, types.AIStagger, a.StaggerTime)
}

// ApplyDamage applies damage to an enemy. A defeated enemy stops moving and
// clears its attack.
func ApplyDamage(e *types.EnemyState, amount float64) combat.Outcome {
	o := combat.ApplyDamage(&e.Actor, amount)
	if o.Defeated {
		e.Flags = types.CombatFlags{}
		e.CurrentAttack = ""
		e.Move = geom.Vec3{}
		e.Physics.Velocity = geom.Vec3{}
		e.LastKnownPlayer = nil
		e.WanderTarget = nil
	}
	return o
}

// SyncFlags derives the shared combat flags from the FSM state.
func SyncFlags(e *types.EnemyState) {
	if e.Defeated {
		return
	}
	e.Flags.Staggered = e.AI == types.AIStagger
	e.Flags.Attacking = e.AI == types.AIAttack
}
