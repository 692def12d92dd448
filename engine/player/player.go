// Package player implements the player controller state machine and the
// player's damage intake.
//
// Each tick runs in a fixed order: dodge, attack (and skill casts), block,
// movement, stamina regeneration, buff decay, then collision resolution.
package player

import (
	"math"

	"github.com/nathoo/arpgcore/engine/combat"
	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/engine/physics"
	"github.com/nathoo/arpgcore/engine/skill"
	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/engine/weapon"
	"github.com/nathoo/arpgcore/types"
)

// LookSensitivity converts pointer X deltas to radians of facing.
const LookSensitivity = 0.005

// Rand is the slice of the deterministic generator the controller needs.
type Rand interface {
	RangeFloat(min, max float64) float64
}

// Controller advances the player against a fixed catalog and arena.
type Controller struct {
	Defs      *state.Defs
	Physics   physics.Resolver
	Ground    physics.Ground
	Obstacles []types.Sphere
}

// New builds a controller for the catalog's arena.
func New(defs *state.Defs) *Controller {
	return &Controller{
		Defs:      defs,
		Physics:   physics.Resolver{Tuning: defs.Physics, WorldFloor: defs.Arena.WorldFloor},
		Ground:    physics.GroundFor(defs.Arena),
		Obstacles: defs.Arena.Obstacles,
	}
}

// Output is what one player update produced besides its own state.
type Output struct {
	Actions []types.ActionResult
	Cast    *skill.Cast
}

func (o *Output) add(r types.ActionResult) {
	o.Actions = append(o.Actions, r)
}

// Update advances the player by one tick.
func (c *Controller) Update(p *types.PlayerState, in types.Intent, dt float64, r Rand, newID func() string) Output {
	var out Output
	t := &c.Defs.Player

	if p.Defeated {
		for _, a := range requested(in) {
			out.add(types.ActionResult{Action: a, Reason: types.ReasonDefeated})
		}
		return out
	}

	if p.Flags.Staggered {
		p.StaggerTimer -= dt
		if p.StaggerTimer <= 0 {
			p.StaggerTimer = 0
			p.Flags.Staggered = false
		}
	}

	// Dodge.
	if p.Flags.Dodging {
		p.DodgeTimer -= dt
		if p.DodgeTimer <= 0 {
			EndDodge(p)
		}
	}
	p.DodgeCooldown = countdown(p.DodgeCooldown, dt)
	if in.Dodge {
		out.add(TryDodge(p, t))
	}

	// Attack.
	w := c.Defs.Weapon(p.Weapon)
	p.AttackCooldown = countdown(p.AttackCooldown, dt)
	p.AttackTimer = countdown(p.AttackTimer, dt)
	p.LungeTimer = countdown(p.LungeTimer, dt)
	p.ComboTimer += dt
	if p.Combo != 0 && t.ComboResetTime > 0 && p.ComboTimer >= t.ComboResetTime {
		p.Combo = 0
	}
	if w != nil {
		weapon.UpdateSwing(&p.Swing, w, dt)
	}
	p.Flags.Attacking = p.Swing.Active
	switch {
	case in.LightAttack:
		out.add(TryAttack(p, t, w, types.SwingLight))
	case in.HeavyAttack:
		out.add(TryAttack(p, t, w, types.SwingHeavy))
	}

	skill.TickCooldowns(p, dt)
	if in.Skill != "" {
		res, cast := c.trySkill(p, in.Skill, r, newID)
		out.add(res)
		out.Cast = cast
	}

	// Block.
	if res, ok := UpdateBlock(p, t, in.Block, dt); ok {
		out.add(res)
	}

	// Movement.
	move, sprinting := c.movement(p, t, in, dt)

	// Stamina and mana.
	if !sprinting && !p.Flags.Blocking && !p.Flags.Dodging && !p.Flags.Attacking {
		p.Stamina += t.StaminaRegen * dt
	}
	p.Mana += t.ManaRegen * dt
	p.Stamina = geom.Clamp(p.Stamina, 0, p.MaxStamina)
	p.Mana = geom.Clamp(p.Mana, 0, p.MaxMana)

	// Buff decay.
	if p.Buff.Remaining > 0 {
		p.Buff.Remaining -= dt
		if p.Buff.Remaining <= 0 {
			p.Buff = types.Buff{}
		}
	}

	// Collision.
	body := physics.Capsule{Radius: p.Radius, Height: c.Defs.Physics.CapsuleHeight}
	p.Physics = c.Physics.Step(p.Physics, move, body, c.Obstacles, c.Ground, dt)
	return out
}

func requested(in types.Intent) []types.Action {
	var acts []types.Action
	if in.Dodge {
		acts = append(acts, types.ActionDodge)
	}
	if in.LightAttack {
		acts = append(acts, types.ActionLightAttack)
	} else if in.HeavyAttack {
		acts = append(acts, types.ActionHeavyAttack)
	}
	if in.Skill != "" {
		acts = append(acts, types.ActionSkill)
	}
	return acts
}

func countdown(v, dt float64) float64 {
	return math.Max(0, v-dt)
}

// TryDodge starts a dodge if allowed. A rejected dodge leaves the player
// untouched.
func TryDodge(p *types.PlayerState, t *types.PlayerTuning) types.ActionResult {
	res := types.ActionResult{Action: types.ActionDodge}
	switch {
	case p.Flags.Staggered:
		res.Reason = types.ReasonStaggered
	case p.Flags.Dodging || p.Flags.Attacking:
		res.Reason = types.ReasonBusy
	case p.DodgeCooldown > 0:
		res.Reason = types.ReasonCooldown
	case p.Stamina < t.DodgeStaminaCost:
		res.Reason = types.ReasonInsufficientStamina
	default:
		p.Stamina -= t.DodgeStaminaCost
		p.Flags.Dodging = true
		p.Flags.Invulnerable = true
		p.Flags.Blocking = false
		p.ParryWindow = 0
		p.DodgeTimer = t.DodgeDuration
		p.DodgeCooldown = t.DodgeCooldown
		res.Success = true
	}
	return res
}

// EndDodge clears the dodge's invulnerability and stops the actor.
func EndDodge(p *types.PlayerState) {
	p.Flags.Dodging = false
	p.Flags.Invulnerable = false
	p.DodgeTimer = 0
	p.Physics.Velocity.X = 0
	p.Physics.Velocity.Z = 0
}

// TryAttack starts a light or heavy attack if allowed.
func TryAttack(p *types.PlayerState, t *types.PlayerTuning, w *types.WeaponStats, kind types.SwingKind) types.ActionResult {
	action, cost, cooldown := types.ActionLightAttack, t.LightStaminaCost, t.LightCooldown
	if kind == types.SwingHeavy {
		action, cost, cooldown = types.ActionHeavyAttack, t.HeavyStaminaCost, t.HeavyCooldown
	}
	res := types.ActionResult{Action: action}
	switch {
	case p.Flags.Staggered:
		res.Reason = types.ReasonStaggered
	case w == nil, p.Flags.Attacking || p.Flags.Dodging || p.Flags.Blocking:
		res.Reason = types.ReasonBusy
	case p.AttackCooldown > 0:
		res.Reason = types.ReasonCooldown
	case p.Stamina < cost:
		res.Reason = types.ReasonInsufficientStamina
	default:
		if !weapon.StartSwing(&p.Swing, w, kind) {
			res.Reason = types.ReasonBusy
			return res
		}
		if kind == types.SwingLight {
			p.AttackMultiplier = 1 + float64(p.Combo)*t.ComboBonus
			steps := t.ComboSteps
			if steps <= 0 {
				steps = 1
			}
			p.Combo = (p.Combo + 1) % steps
			p.ComboTimer = 0
			p.LungeTimer = t.LungeDuration
		} else {
			p.AttackMultiplier = 1
			p.Combo = 0
		}
		p.Stamina -= cost
		p.AttackCooldown = cooldown
		p.AttackTimer = weapon.SwingDuration(w, kind)
		p.Flags.Attacking = true
		res.Success = true
	}
	return res
}

func (c *Controller) trySkill(p *types.PlayerState, id string, r Rand, newID func() string) (types.ActionResult, *skill.Cast) {
	res := types.ActionResult{Action: types.ActionSkill, Detail: id}
	switch {
	case p.Flags.Staggered:
		res.Reason = types.ReasonStaggered
		return res, nil
	case p.Flags.Dodging || p.Flags.Attacking:
		res.Reason = types.ReasonBusy
		return res, nil
	}
	cast, reason := skill.Use(r, c.Defs.Skill(id), p, newID)
	if reason != "" {
		res.Reason = reason
		return res, nil
	}
	if cast.Buff != nil {
		p.Buff = *cast.Buff
	}
	res.Success = true
	return res, &cast
}

// UpdateBlock runs the block phase. Block is a held stance: it engages on
// the first tick it is allowed and opens the parry window, then drains
// stamina until released or exhausted. The boolean reports whether the
// returned result carries news (a block starting).
func UpdateBlock(p *types.PlayerState, t *types.PlayerTuning, held bool, dt float64) (types.ActionResult, bool) {
	if !held {
		if p.Flags.Blocking {
			p.Flags.Blocking = false
			p.ParryWindow = 0
		}
		return types.ActionResult{}, false
	}

	started := false
	if !p.Flags.Blocking {
		if p.Flags.Staggered || p.Flags.Dodging || p.Flags.Attacking || p.Stamina <= 0 {
			return types.ActionResult{}, false
		}
		p.Flags.Blocking = true
		p.ParryWindow = t.ParryWindowTicks
		started = true
	} else if p.ParryWindow > 0 {
		p.ParryWindow--
	}

	p.Stamina -= t.BlockDrain * dt
	if p.Stamina <= 0 {
		p.Stamina = 0
		p.Flags.Blocking = false
		p.ParryWindow = 0
	}
	return types.ActionResult{Action: types.ActionBlock, Success: true}, started
}

// movement returns the desired horizontal velocity for this tick and
// whether sprint drained stamina.
func (c *Controller) movement(p *types.PlayerState, t *types.PlayerTuning, in types.Intent, dt float64) (geom.Vec3, bool) {
	switch {
	case p.Flags.Staggered:
		return geom.Vec3{}, false
	case p.Flags.Dodging:
		return geom.Forward(p.Facing).Scale(t.DodgeSpeed), false
	case p.Flags.Attacking:
		if p.LungeTimer > 0 {
			return geom.Forward(p.Facing).Scale(t.LungeSpeed), false
		}
		return geom.Vec3{}, false
	}

	dir := WishDir(in)
	if dir.IsZero() {
		if in.PointerDX != 0 {
			p.Facing = geom.WrapAngle(p.Facing + in.PointerDX*LookSensitivity)
		}
		return geom.Vec3{}, false
	}

	speed := t.MoveSpeed
	sprinting := false
	if in.Sprint && !p.Flags.Blocking && p.Stamina > 0 {
		speed *= t.SprintMultiplier
		p.Stamina -= t.SprintDrain * dt
		sprinting = true
	}
	p.Facing = geom.Yaw(dir)
	return dir.Scale(speed), sprinting
}

// WishDir converts movement flags into a camera-relative world direction of
// unit length, or zero when the flags cancel out.
func WishDir(in types.Intent) geom.Vec3 {
	var fwd, side float64
	if in.Forward {
		fwd++
	}
	if in.Back {
		fwd--
	}
	if in.Right {
		side++
	}
	if in.Left {
		side--
	}
	v := geom.Forward(in.CameraYaw).Scale(fwd).Add(geom.Right(in.CameraYaw).Scale(side))
	return v.Normalize()
}

// DamageResult reports how an incoming hit was absorbed.
type DamageResult struct {
	Actual   float64
	Parried  bool
	Blocked  bool
	Defeated bool
}

// ApplyDamage runs the player's damage intake: i-frames negate, an open
// parry window negates and signals a parry, a plain block reduces damage and
// drains stamina, and otherwise the defense buff is subtracted with a floor
// of 1 while a buff is active.
func ApplyDamage(p *types.PlayerState, raw float64, t *types.PlayerTuning) DamageResult {
	if math.IsNaN(raw) || raw < 0 {
		raw = 0
	}
	if p.Defeated || p.Flags.Invulnerable {
		return DamageResult{}
	}
	if p.Flags.Blocking && p.ParryWindow > 0 {
		return DamageResult{Parried: true}
	}

	var dmg float64
	blocked := false
	switch {
	case p.Flags.Blocking:
		dmg = raw * t.BlockReduction
		blocked = true
		p.Stamina = math.Max(0, p.Stamina-raw*t.BlockStaminaRatio)
		if p.Stamina == 0 {
			p.Flags.Blocking = false
			p.ParryWindow = 0
		}
	case p.Buff.Remaining > 0 && p.Buff.Defense > 0 && raw > 0:
		dmg = math.Max(1, raw-p.Buff.Defense)
	default:
		dmg = raw
	}

	o := combat.ApplyDamage(&p.Actor, dmg)
	if o.Defeated {
		clearCombat(p)
	}
	return DamageResult{Actual: o.Applied, Blocked: blocked, Defeated: o.Defeated}
}

// Stagger interrupts the player. Dodging players cannot be staggered.
func Stagger(p *types.PlayerState, t *types.PlayerTuning) bool {
	if p.Defeated || p.Flags.Invulnerable {
		return false
	}
	p.Swing = types.SwingState{}
	p.Flags.Attacking = false
	p.Flags.Blocking = false
	p.ParryWindow = 0
	p.LungeTimer = 0
	p.Flags.Staggered = true
	p.StaggerTimer = t.StaggerTime
	p.Physics.Velocity.X = 0
	p.Physics.Velocity.Z = 0
	return true
}

// Modifiers returns the damage modifiers of the player's current attack.
func Modifiers(p *types.PlayerState) weapon.Modifiers {
	m := weapon.Modifiers{Multiplier: p.AttackMultiplier}
	if p.Buff.Remaining > 0 {
		m.Flat = p.Buff.Attack
	}
	return m
}

func clearCombat(p *types.PlayerState) {
	p.Flags = types.CombatFlags{}
	p.Swing = types.SwingState{}
	p.ParryWindow = 0
	p.Physics.Velocity = geom.Vec3{}
}
