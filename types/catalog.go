package types

import "github.com/nathoo/arpgcore/engine/geom"

// Arc is one named swing of a weapon. Angles are radians relative to facing;
// the hit window is a normalized sub-range of the swing's progress.
type Arc struct {
	StartAngle float64
	EndAngle   float64
	Duration   float64 // seconds at weapon speed 1
	HitStart   float64
	HitEnd     float64
}

// WeaponStats is read-only catalog data for a weapon type.
type WeaponStats struct {
	ID              string
	Name            string
	BaseDamage      float64
	HeavyMultiplier float64
	Range           float64
	Speed           float64
	CritChance      float64
	CritMultiplier  float64
	StaggerPower    float64 // chance a light hit staggers
	Light           Arc
	Heavy           Arc
}

// Movement is how an attacker moves while an attack pattern executes.
type Movement string

const (
	MoveStationary Movement = "stationary"
	MoveCharge     Movement = "charge"
	MoveRetreat    Movement = "retreat"
)

// AttackPattern is read-only catalog data describing one enemy attack.
type AttackPattern struct {
	ID              string
	Telegraph       float64
	Windup          float64
	Execute         float64
	Recovery        float64
	Damage          float64
	Range           float64
	Arc             float64 // full angular span, radians
	AreaRadius      float64 // > 0 makes the pattern a pure radius check
	Projectile      bool
	ProjectileSpeed float64
	Movement        Movement
	MoveSpeed       float64 // charge burst or retreat speed
	Heavy           bool
}

// SkillKind is the targeting mode of a skill.
type SkillKind string

const (
	SkillProjectile SkillKind = "projectile"
	SkillArea       SkillKind = "area"
	SkillSelfBuff   SkillKind = "self_buff"
	SkillCone       SkillKind = "cone"
)

// Resource is what a skill consumes.
type Resource string

const (
	ResourceMana    Resource = "mana"
	ResourceStamina Resource = "stamina"
)

// SkillDef is read-only catalog data for a skill.
type SkillDef struct {
	ID           string
	Name         string
	Kind         SkillKind
	Cooldown     float64
	Cost         float64
	Resource     Resource
	Damage       float64
	Range        float64
	Radius       float64
	Duration     float64
	TickInterval float64
	ConeAngle    float64 // full angular span, radians
	AttackBuff   float64
	DefenseBuff  float64
}

// EnemyArchetype is read-only catalog data used to spawn enemies.
type EnemyArchetype struct {
	ID              string
	Name            string
	MaxHealth       float64
	Radius          float64
	AggroRange      float64
	AttackRange     float64
	MoveSpeed       float64
	Patterns        []string
	PatternWeights  []int // parallel to Patterns; empty means equal odds
	CooldownMin     float64
	CooldownMax     float64
	IdleMin         float64
	IdleMax         float64
	WanderRadius    float64
	WanderTime      float64
	StaggerTime     float64
	StaggerRecovery float64 // recover time after a stagger ends
	RetreatDistance float64 // 0 disables retreat
	SafeDistance    float64
	RetreatTime     float64
}

// PlayerTuning is the player controller configuration.
type PlayerTuning struct {
	MaxHealth  float64
	MaxStamina float64
	MaxMana    float64
	Radius     float64
	Weapon     string
	Skills     []string

	MoveSpeed         float64
	SprintMultiplier  float64
	SprintDrain       float64 // stamina per second
	StaminaRegen      float64 // per second
	ManaRegen         float64 // per second
	DodgeStaminaCost  float64
	DodgeDuration     float64
	DodgeCooldown     float64
	DodgeSpeed        float64
	LightStaminaCost  float64
	HeavyStaminaCost  float64
	LightCooldown     float64
	HeavyCooldown     float64
	LungeSpeed        float64
	LungeDuration     float64
	ComboSteps        int
	ComboBonus        float64 // multiplier added per combo step
	ComboResetTime    float64
	ParryWindowTicks  int
	BlockDrain        float64 // stamina per second while blocking
	BlockReduction    float64 // fraction of damage taken while blocking
	BlockStaminaRatio float64 // stamina lost per point of raw blocked damage
	StaggerTime       float64
}

// Sphere is a static spherical collision obstacle.
type Sphere struct {
	Center geom.Vec3
	Radius float64
}

// SpawnDef places an enemy when a session starts.
type SpawnDef struct {
	Archetype string
	Position  geom.Vec3
}

// ArenaDef is the static world geometry the core simulates against.
type ArenaDef struct {
	GroundHeight float64
	GroundNormal geom.Vec3
	WorldFloor   float64
	PlayerStart  geom.Vec3
	Obstacles    []Sphere
	Spawns       []SpawnDef
}

// PhysicsTuning configures the capsule resolver.
type PhysicsTuning struct {
	MaxStep          float64
	Gravity          float64
	TerminalVelocity float64
	StepHeight       float64
	SlopeLimit       float64 // radians
	SlideSpeed       float64
	Damping          float64
	CapsuleHeight    float64
}

// GameDef holds content metadata.
type GameDef struct {
	Title   string
	Version string
	Seed    int64
}
