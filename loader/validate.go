package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validMovements = map[types.Movement]bool{
	types.MoveStationary: true,
	types.MoveCharge:     true,
	types.MoveRetreat:    true,
}

var validSkillKinds = map[types.SkillKind]bool{
	types.SkillProjectile: true,
	types.SkillArea:       true,
	types.SkillSelfBuff:   true,
	types.SkillCone:       true,
}

// validate checks the compiled defs for referential integrity and sane
// tuning. Warnings are returned even when validation passes. Catalog maps
// are walked in sorted order so messages are stable.
func validate(defs *state.Defs) ([]string, error) {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.errorf("Game.title is required")
	}

	validatePhysics(defs.Physics, ve)
	validatePlayer(defs, ve)
	validateArena(defs, ve)

	for _, id := range state.SortedKeys(defs.Weapons) {
		validateWeapon(defs.Weapons[id], ve)
	}
	for _, id := range state.SortedKeys(defs.Patterns) {
		validatePattern(defs.Patterns[id], ve)
	}
	for _, id := range state.SortedKeys(defs.Skills) {
		validateSkill(defs.Skills[id], ve)
	}

	used := map[string]bool{}
	for _, id := range state.SortedKeys(defs.Archetypes) {
		a := defs.Archetypes[id]
		validateArchetype(a, defs, ve)
		for _, p := range a.Patterns {
			used[p] = true
		}
	}
	for _, id := range state.SortedKeys(defs.Patterns) {
		if !used[id] {
			ve.warnf("pattern %q is not used by any enemy", id)
		}
	}
	if len(defs.Arena.Spawns) == 0 {
		ve.warnf("arena has no spawns")
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validatePhysics(p types.PhysicsTuning, ve *ValidationError) {
	if p.MaxStep <= 0 {
		ve.errorf("physics max_step must be positive")
	}
	if p.Gravity < 0 || p.TerminalVelocity < 0 || p.StepHeight < 0 || p.Damping < 0 || p.CapsuleHeight < 0 {
		ve.errorf("physics tuning must not be negative")
	}
	if p.SlopeLimit <= 0 {
		ve.errorf("physics slope_limit must be positive")
	}
}

func validatePlayer(defs *state.Defs, ve *ValidationError) {
	t := defs.Player
	if t.MaxHealth <= 0 {
		ve.errorf("player health must be positive")
	}
	if t.MaxStamina < 0 || t.MaxMana < 0 {
		ve.errorf("player stamina and mana must not be negative")
	}
	if t.Radius <= 0 {
		ve.errorf("player radius must be positive")
	}
	if t.DodgeDuration <= 0 {
		ve.errorf("player dodge_duration must be positive")
	}
	if t.ComboSteps < 1 {
		ve.errorf("player combo_steps must be at least 1")
	}
	if t.BlockReduction < 0 || t.BlockReduction > 1 {
		ve.errorf("player block_reduction must be within [0, 1]")
	}
	if _, ok := defs.Weapons[t.Weapon]; !ok {
		ve.errorf("player weapon %q is not defined", t.Weapon)
	}
	for _, s := range t.Skills {
		if _, ok := defs.Skills[s]; !ok {
			ve.errorf("player skill %q is not defined", s)
		}
	}
}

func validateArena(defs *state.Defs, ve *ValidationError) {
	a := defs.Arena
	if a.GroundNormal.Y <= 0 {
		ve.errorf("arena ground normal must point up")
	}
	for i, o := range a.Obstacles {
		if o.Radius <= 0 {
			ve.errorf("arena obstacle %d has non-positive radius", i+1)
		}
	}
	for i, sp := range a.Spawns {
		if _, ok := defs.Archetypes[sp.Archetype]; !ok {
			ve.errorf("arena spawn %d references undefined enemy %q", i+1, sp.Archetype)
		}
	}
}

func validateArc(owner, kind string, a types.Arc, ve *ValidationError) {
	if a.Duration <= 0 {
		ve.errorf("weapon %q %s arc duration must be positive", owner, kind)
	}
	if a.HitStart < 0 || a.HitEnd > 1 || a.HitStart > a.HitEnd {
		ve.errorf("weapon %q %s hit window [%g, %g] must lie within [0, 1]", owner, kind, a.HitStart, a.HitEnd)
	}
	if a.EndAngle < a.StartAngle {
		ve.errorf("weapon %q %s arc ends before it starts", owner, kind)
	}
}

func validateWeapon(w types.WeaponStats, ve *ValidationError) {
	if w.BaseDamage < 0 {
		ve.errorf("weapon %q damage must not be negative", w.ID)
	}
	if w.Range <= 0 {
		ve.errorf("weapon %q range must be positive", w.ID)
	}
	if w.Speed <= 0 {
		ve.errorf("weapon %q speed must be positive", w.ID)
	}
	if w.CritChance < 0 || w.CritChance > 1 {
		ve.errorf("weapon %q crit_chance must be within [0, 1]", w.ID)
	}
	if w.StaggerPower < 0 || w.StaggerPower > 1 {
		ve.errorf("weapon %q stagger_power must be within [0, 1]", w.ID)
	}
	validateArc(w.ID, "light", w.Light, ve)
	validateArc(w.ID, "heavy", w.Heavy, ve)
}

func validatePattern(p types.AttackPattern, ve *ValidationError) {
	if p.Telegraph < 0 || p.Windup < 0 || p.Execute < 0 || p.Recovery < 0 {
		ve.errorf("pattern %q phase durations must not be negative", p.ID)
	}
	if p.Windup+p.Execute <= 0 {
		ve.errorf("pattern %q needs a positive windup or execute time", p.ID)
	}
	if p.Damage < 0 {
		ve.errorf("pattern %q damage must not be negative", p.ID)
	}
	if !validMovements[p.Movement] {
		ve.errorf("pattern %q has unknown movement %q", p.ID, p.Movement)
	}
	switch {
	case p.Projectile:
		if p.ProjectileSpeed <= 0 {
			ve.errorf("pattern %q projectile_speed must be positive", p.ID)
		}
	case p.AreaRadius > 0:
	default:
		if p.Range <= 0 || p.Arc <= 0 {
			ve.errorf("pattern %q melee attacks need a positive range and arc", p.ID)
		}
	}
}

func validateSkill(s types.SkillDef, ve *ValidationError) {
	if !validSkillKinds[s.Kind] {
		ve.errorf("skill %q has unknown kind %q", s.ID, s.Kind)
	}
	if s.Resource != types.ResourceMana && s.Resource != types.ResourceStamina {
		ve.errorf("skill %q has unknown resource %q", s.ID, s.Resource)
	}
	if s.Cooldown < 0 || s.Cost < 0 {
		ve.errorf("skill %q cooldown and cost must not be negative", s.ID)
	}
	switch s.Kind {
	case types.SkillArea:
		if s.Radius <= 0 || s.Duration <= 0 {
			ve.errorf("skill %q area needs a positive radius and duration", s.ID)
		}
	case types.SkillSelfBuff:
		if s.Duration <= 0 {
			ve.errorf("skill %q buff needs a positive duration", s.ID)
		}
	case types.SkillCone:
		if s.ConeAngle <= 0 || s.Range <= 0 {
			ve.errorf("skill %q cone needs a positive angle and range", s.ID)
		}
	case types.SkillProjectile:
		if s.Range <= 0 {
			ve.errorf("skill %q projectile needs a positive range", s.ID)
		}
	}
}

func validateArchetype(a types.EnemyArchetype, defs *state.Defs, ve *ValidationError) {
	if a.MaxHealth <= 0 {
		ve.errorf("enemy %q health must be positive", a.ID)
	}
	if a.Radius <= 0 {
		ve.errorf("enemy %q radius must be positive", a.ID)
	}
	if a.CooldownMin > a.CooldownMax || a.IdleMin > a.IdleMax {
		ve.errorf("enemy %q has a min above its max", a.ID)
	}
	if a.StaggerTime <= 0 {
		ve.errorf("enemy %q stagger_time must be positive", a.ID)
	}
	if a.StaggerRecovery < 0 {
		ve.errorf("enemy %q stagger_recovery must not be negative", a.ID)
	}
	if len(a.PatternWeights) > 0 {
		if len(a.PatternWeights) != len(a.Patterns) {
			ve.errorf("enemy %q has %d pattern_weights for %d patterns", a.ID, len(a.PatternWeights), len(a.Patterns))
		}
		for _, w := range a.PatternWeights {
			if w <= 0 {
				ve.errorf("enemy %q pattern_weights must be positive", a.ID)
				break
			}
		}
	}
	if a.RetreatDistance > 0 && a.SafeDistance < a.RetreatDistance {
		ve.errorf("enemy %q safe_distance must be at least retreat_distance", a.ID)
	}
	if len(a.Patterns) == 0 {
		ve.warnf("enemy %q has no attack patterns", a.ID)
	}
	for _, p := range a.Patterns {
		if _, ok := defs.Patterns[p]; !ok {
			ve.errorf("enemy %q references undefined pattern %q", a.ID, p)
		}
	}
}
