package state

import (
	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/types"
)

// DefaultPhysics is the capsule tuning used when content supplies none.
func DefaultPhysics() types.PhysicsTuning {
	return types.PhysicsTuning{
		MaxStep:          0.05,
		Gravity:          25,
		TerminalVelocity: 50,
		StepHeight:       0.3,
		SlopeLimit:       geom.Deg(45),
		SlideSpeed:       4,
		Damping:          10,
		CapsuleHeight:    1.8,
	}
}

// DefaultPlayer is the stock player controller tuning.
func DefaultPlayer() types.PlayerTuning {
	return types.PlayerTuning{
		MaxHealth:  100,
		MaxStamina: 100,
		MaxMana:    50,
		Radius:     0.5,
		Weapon:     "basicSword",
		Skills:     []string{"firebolt", "quake", "warcry", "cleave"},

		MoveSpeed:         5,
		SprintMultiplier:  1.6,
		SprintDrain:       15,
		StaminaRegen:      20,
		ManaRegen:         5,
		DodgeStaminaCost:  20,
		DodgeDuration:     0.3,
		DodgeCooldown:     0.8,
		DodgeSpeed:        12,
		LightStaminaCost:  10,
		HeavyStaminaCost:  25,
		LightCooldown:     0.4,
		HeavyCooldown:     0.9,
		LungeSpeed:        4,
		LungeDuration:     0.1,
		ComboSteps:        3,
		ComboBonus:        0.15,
		ComboResetTime:    1.0,
		ParryWindowTicks:  12,
		BlockDrain:        5,
		BlockReduction:    0.3,
		BlockStaminaRatio: 0.5,
		StaggerTime:       0.5,
	}
}

// DefaultDefs returns the built-in arena used when no content directory is
// configured: one sword, four skills, three enemy archetypes.
func DefaultDefs() *Defs {
	return &Defs{
		Game:    types.GameDef{Title: "Ember Keep", Version: "0.1.0"},
		Physics: DefaultPhysics(),
		Player:  DefaultPlayer(),
		Arena: types.ArenaDef{
			GroundNormal: geom.Up,
			WorldFloor:   -10,
			Obstacles: []types.Sphere{
				{Center: geom.V(6, 1, 6), Radius: 1.2},
				{Center: geom.V(-5, 1, 8), Radius: 1},
			},
			Spawns: []types.SpawnDef{
				{Archetype: "grunt", Position: geom.V(0, 0, 10)},
				{Archetype: "grunt", Position: geom.V(4, 0, 12)},
				{Archetype: "archer", Position: geom.V(-8, 0, 14)},
			},
		},
		Weapons: map[string]types.WeaponStats{
			"basicSword": {
				ID: "basicSword", Name: "Basic Sword",
				BaseDamage: 15, HeavyMultiplier: 2, Range: 2.5, Speed: 1,
				CritChance: 0.1, CritMultiplier: 1.5, StaggerPower: 0.2,
				Light: types.Arc{StartAngle: geom.Deg(-45), EndAngle: geom.Deg(45), Duration: 0.4, HitStart: 0.3, HitEnd: 0.7},
				Heavy: types.Arc{StartAngle: geom.Deg(-60), EndAngle: geom.Deg(60), Duration: 0.8, HitStart: 0.4, HitEnd: 0.7},
			},
			"greataxe": {
				ID: "greataxe", Name: "Greataxe",
				BaseDamage: 24, HeavyMultiplier: 2.2, Range: 3, Speed: 0.8,
				CritChance: 0.05, CritMultiplier: 2, StaggerPower: 0.4,
				Light: types.Arc{StartAngle: geom.Deg(-50), EndAngle: geom.Deg(50), Duration: 0.6, HitStart: 0.35, HitEnd: 0.7},
				Heavy: types.Arc{StartAngle: geom.Deg(-75), EndAngle: geom.Deg(75), Duration: 1.1, HitStart: 0.45, HitEnd: 0.75},
			},
		},
		Patterns: map[string]types.AttackPattern{
			"slash": {
				ID: "slash", Telegraph: 0.5, Windup: 0.3, Execute: 0.3, Recovery: 0.6,
				Damage: 10, Range: 2, Arc: geom.Deg(90), Movement: types.MoveStationary,
			},
			"charge": {
				ID: "charge", Telegraph: 0.7, Windup: 0.4, Execute: 0.5, Recovery: 1,
				Damage: 18, Range: 4, Arc: geom.Deg(60), Movement: types.MoveCharge, MoveSpeed: 10, Heavy: true,
			},
			"slam": {
				ID: "slam", Telegraph: 0.8, Windup: 0.5, Execute: 0.3, Recovery: 1.2,
				Damage: 22, Range: 3, AreaRadius: 3, Movement: types.MoveStationary, Heavy: true,
			},
			"arrow": {
				ID: "arrow", Telegraph: 0.6, Windup: 0.3, Execute: 0.2, Recovery: 0.8,
				Damage: 8, Range: 12, Projectile: true, ProjectileSpeed: 15, Movement: types.MoveStationary,
			},
		},
		Skills: map[string]types.SkillDef{
			"firebolt": {
				ID: "firebolt", Name: "Firebolt", Kind: types.SkillProjectile,
				Cooldown: 1, Cost: 10, Resource: types.ResourceMana, Damage: 20, Range: 14,
			},
			"quake": {
				ID: "quake", Name: "Quake", Kind: types.SkillArea,
				Cooldown: 6, Cost: 25, Resource: types.ResourceMana, Damage: 8, Range: 3,
				Radius: 2.5, Duration: 2, TickInterval: 0.5,
			},
			"warcry": {
				ID: "warcry", Name: "Warcry", Kind: types.SkillSelfBuff,
				Cooldown: 12, Cost: 20, Resource: types.ResourceStamina, Duration: 6,
				AttackBuff: 5, DefenseBuff: 4,
			},
			"cleave": {
				ID: "cleave", Name: "Cleave", Kind: types.SkillCone,
				Cooldown: 3, Cost: 15, Resource: types.ResourceStamina, Damage: 14, Range: 3,
				ConeAngle: geom.Deg(120),
			},
		},
		Archetypes: map[string]types.EnemyArchetype{
			"grunt": {
				ID: "grunt", Name: "Grunt", MaxHealth: 40, Radius: 0.5,
				AggroRange: 15, AttackRange: 2, MoveSpeed: 3, Patterns: []string{"slash"},
				CooldownMin: 1, CooldownMax: 2, IdleMin: 1, IdleMax: 3,
				WanderRadius: 4, WanderTime: 3, StaggerTime: 0.6, StaggerRecovery: 0.3,
			},
			"brute": {
				ID: "brute", Name: "Brute", MaxHealth: 90, Radius: 0.8,
				AggroRange: 12, AttackRange: 3.5, MoveSpeed: 2.5, Patterns: []string{"slam", "charge"},
				CooldownMin: 2, CooldownMax: 3.5, IdleMin: 1.5, IdleMax: 3,
				WanderRadius: 3, WanderTime: 4, StaggerTime: 0.4, StaggerRecovery: 0.5,
				PatternWeights: []int{2, 1},
			},
			"archer": {
				ID: "archer", Name: "Archer", MaxHealth: 30, Radius: 0.45,
				AggroRange: 18, AttackRange: 10, MoveSpeed: 3.5, Patterns: []string{"arrow"},
				CooldownMin: 1.5, CooldownMax: 2.5, IdleMin: 1, IdleMax: 2,
				WanderRadius: 5, WanderTime: 3, StaggerTime: 0.7, StaggerRecovery: 0.3,
				RetreatDistance: 5, SafeDistance: 8, RetreatTime: 2,
			},
		},
	}
}
