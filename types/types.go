// Package types defines the shared data structures for the arpgcore simulation.
// This package contains only type definitions and their wire names; all
// behavior lives under engine/.
package types

import (
	"time"

	"github.com/nathoo/arpgcore/engine/geom"
)

// Intent is the per-tick input snapshot supplied by the input source.
// It is treated as immutable for the duration of one tick.
type Intent struct {
	Forward     bool    `json:"forward,omitempty"`
	Back        bool    `json:"back,omitempty"`
	Left        bool    `json:"left,omitempty"`
	Right       bool    `json:"right,omitempty"`
	Sprint      bool    `json:"sprint,omitempty"`
	Dodge       bool    `json:"dodge,omitempty"`
	LightAttack bool    `json:"light_attack,omitempty"`
	HeavyAttack bool    `json:"heavy_attack,omitempty"`
	Block       bool    `json:"block,omitempty"`
	Skill       string  `json:"skill,omitempty"` // skill id to cast this tick
	CameraYaw   float64 `json:"camera_yaw,omitempty"`
	PointerDX   float64 `json:"pointer_dx,omitempty"`
	PointerDY   float64 `json:"pointer_dy,omitempty"`
}

// PhysicsState is the rigid-capsule state owned by exactly one actor.
type PhysicsState struct {
	Position     geom.Vec3 `json:"position" msgpack:"position"`
	Velocity     geom.Vec3 `json:"velocity" msgpack:"velocity"`
	Grounded     bool      `json:"grounded" msgpack:"grounded"`
	GroundNormal geom.Vec3 `json:"ground_normal" msgpack:"ground_normal"`
	Sliding      bool      `json:"sliding" msgpack:"sliding"`
}

// CombatFlags is the closed set of transient combat flags.
type CombatFlags struct {
	Attacking    bool `json:"attacking" msgpack:"attacking"`
	Dodging      bool `json:"dodging" msgpack:"dodging"`
	Blocking     bool `json:"blocking" msgpack:"blocking"`
	Staggered    bool `json:"staggered" msgpack:"staggered"`
	Invulnerable bool `json:"invulnerable" msgpack:"invulnerable"`
}

// Actor is the state shared by the player and every enemy.
type Actor struct {
	ID        string       `json:"id" msgpack:"id"`
	Physics   PhysicsState `json:"physics" msgpack:"physics"`
	Facing    float64      `json:"facing" msgpack:"facing"` // radians about +Y
	Health    float64      `json:"health" msgpack:"health"`
	MaxHealth float64      `json:"max_health" msgpack:"max_health"`
	Radius    float64      `json:"radius" msgpack:"radius"`
	Flags     CombatFlags  `json:"flags" msgpack:"flags"`
	Defeated  bool         `json:"defeated" msgpack:"defeated"`
}

// SwingKind selects one of a weapon's two arcs.
type SwingKind string

const (
	SwingLight SwingKind = "light"
	SwingHeavy SwingKind = "heavy"
)

// SwingState is the transient per-actor weapon swing record.
type SwingState struct {
	Active      bool      `json:"active" msgpack:"active"`
	Kind        SwingKind `json:"kind,omitempty" msgpack:"kind"`
	Progress    float64   `json:"progress" msgpack:"progress"`
	ArcAngle    float64   `json:"arc_angle" msgpack:"arc_angle"`
	InHitWindow bool      `json:"in_hit_window" msgpack:"in_hit_window"`
	HasHit      bool      `json:"has_hit" msgpack:"has_hit"`
}

// Buff is a temporary attack/defense modifier.
type Buff struct {
	Attack    float64 `json:"attack" msgpack:"attack"`
	Defense   float64 `json:"defense" msgpack:"defense"`
	Remaining float64 `json:"remaining" msgpack:"remaining"`
}

// SkillSlot is the runtime state of one learned skill.
type SkillSlot struct {
	Level    int     `json:"level" msgpack:"level"`
	Cooldown float64 `json:"cooldown" msgpack:"cooldown"`
}

// PlayerState refines Actor with the player's resources and timers.
type PlayerState struct {
	Actor

	Stamina    float64 `json:"stamina" msgpack:"stamina"`
	MaxStamina float64 `json:"max_stamina" msgpack:"max_stamina"`
	Mana       float64 `json:"mana" msgpack:"mana"`
	MaxMana    float64 `json:"max_mana" msgpack:"max_mana"`

	Combo      int     `json:"combo" msgpack:"combo"`
	ComboTimer float64 `json:"combo_timer" msgpack:"combo_timer"` // time since the last light attack

	AttackCooldown float64 `json:"attack_cooldown" msgpack:"attack_cooldown"`
	AttackTimer    float64 `json:"attack_timer" msgpack:"attack_timer"`
	DodgeCooldown  float64 `json:"dodge_cooldown" msgpack:"dodge_cooldown"`
	DodgeTimer     float64 `json:"dodge_timer" msgpack:"dodge_timer"`
	LungeTimer     float64 `json:"lunge_timer" msgpack:"lunge_timer"`
	StaggerTimer   float64 `json:"stagger_timer" msgpack:"stagger_timer"`
	ParryWindow    int     `json:"parry_window" msgpack:"parry_window"` // ticks

	// AttackMultiplier is the combo/heavy multiplier of the attack in progress.
	AttackMultiplier float64 `json:"attack_multiplier" msgpack:"attack_multiplier"`

	Buff   Buff                 `json:"buff" msgpack:"buff"`
	Swing  SwingState           `json:"swing" msgpack:"swing"`
	Weapon string               `json:"weapon" msgpack:"weapon"`
	Skills map[string]SkillSlot `json:"skills" msgpack:"skills"`
}

// AIState is the enemy FSM state. Exactly one is active per enemy.
type AIState uint8

const (
	AIIdle AIState = iota
	AIWander
	AIChase
	AITelegraph
	AIAttack
	AIRecover
	AIStagger
	AIRetreat
)

// EnemyState refines Actor with the AI state machine data.
type EnemyState struct {
	Actor

	Archetype      string     `json:"archetype" msgpack:"archetype"`
	AI             AIState    `json:"ai" msgpack:"ai"`
	StateTimer     float64    `json:"state_timer" msgpack:"state_timer"`
	StateElapsed   float64    `json:"state_elapsed" msgpack:"state_elapsed"`
	CurrentAttack  string     `json:"current_attack,omitempty" msgpack:"current_attack"`
	HitEmitted     bool       `json:"hit_emitted" msgpack:"hit_emitted"`
	AttackCooldown float64    `json:"attack_cooldown" msgpack:"attack_cooldown"`
	AggroRange     float64    `json:"aggro_range" msgpack:"aggro_range"`
	AttackRange    float64    `json:"attack_range" msgpack:"attack_range"`
	MoveSpeed      float64    `json:"move_speed" msgpack:"move_speed"`
	Home           geom.Vec3  `json:"home" msgpack:"home"`
	WanderTarget   *geom.Vec3 `json:"wander_target,omitempty" msgpack:"wander_target"`
	// LastKnownPlayer is set only while pursuing (chase, telegraph, attack).
	LastKnownPlayer *geom.Vec3 `json:"last_known_player,omitempty" msgpack:"last_known_player"`
	// Move is the desired horizontal velocity chosen by the FSM this tick.
	Move geom.Vec3 `json:"move" msgpack:"move"`
}

// Faction identifies which side owns a projectile or area effect.
type Faction string

const (
	FactionPlayer Faction = "player"
	FactionEnemy  Faction = "enemy"
)

// Projectile is a moving damage source.
type Projectile struct {
	ID       string    `json:"id" msgpack:"id"`
	Owner    string    `json:"owner" msgpack:"owner"`
	Faction  Faction   `json:"faction" msgpack:"faction"`
	Source   string    `json:"source" msgpack:"source"` // skill or pattern id
	Position geom.Vec3 `json:"position" msgpack:"position"`
	Velocity geom.Vec3 `json:"velocity" msgpack:"velocity"`
	Radius   float64   `json:"radius" msgpack:"radius"`
	Damage   float64   `json:"damage" msgpack:"damage"`
	Heavy    bool      `json:"heavy,omitempty" msgpack:"heavy"`
	Lifetime float64   `json:"lifetime" msgpack:"lifetime"` // seconds remaining
}

// AreaEffect is a stationary periodic damage source.
type AreaEffect struct {
	ID           string    `json:"id" msgpack:"id"`
	Owner        string    `json:"owner" msgpack:"owner"`
	Faction      Faction   `json:"faction" msgpack:"faction"`
	Source       string    `json:"source" msgpack:"source"`
	Position     geom.Vec3 `json:"position" msgpack:"position"`
	Radius       float64   `json:"radius" msgpack:"radius"`
	Damage       float64   `json:"damage" msgpack:"damage"` // per tick
	Remaining    float64   `json:"remaining" msgpack:"remaining"`
	TickInterval float64   `json:"tick_interval" msgpack:"tick_interval"`
	NextTick     float64   `json:"next_tick" msgpack:"next_tick"`
}

// State is the complete mutable simulation state. It is plain data so that
// snapshots can be serialized and resumed.
type State struct {
	Tick        int64        `json:"tick" msgpack:"tick"`
	Time        float64      `json:"time" msgpack:"time"`
	Seed        int64        `json:"seed" msgpack:"seed"`
	RNGPosition int64        `json:"rng_position" msgpack:"rng_position"`
	NextID      int          `json:"next_id" msgpack:"next_id"`
	Player      PlayerState  `json:"player" msgpack:"player"`
	Enemies     []EnemyState `json:"enemies" msgpack:"enemies"`
	Projectiles []Projectile `json:"projectiles" msgpack:"projectiles"`
	Areas       []AreaEffect `json:"areas" msgpack:"areas"`
}

// EventType names a simulation event.
type EventType string

const (
	EventHit               EventType = "hit"
	EventParried           EventType = "parried"
	EventBlocked           EventType = "blocked"
	EventStagger           EventType = "stagger"
	EventDefeated          EventType = "defeated"
	EventSkillCast         EventType = "skill_cast"
	EventActionRejected    EventType = "action_rejected"
	EventStateChange       EventType = "state_change"
	EventSpawn             EventType = "spawn"
	EventProjectileExpired EventType = "projectile_expired"
	EventRespawn           EventType = "respawn"
)

// Event is emitted by the simulation during a tick.
type Event struct {
	Type     EventType `json:"type"`
	Tick     int64     `json:"tick"`
	Source   string    `json:"source,omitempty"`
	Target   string    `json:"target,omitempty"`
	Amount   float64   `json:"amount,omitempty"`
	Critical bool      `json:"critical,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Action names a player action that can be rejected.
type Action string

const (
	ActionDodge       Action = "dodge"
	ActionLightAttack Action = "light_attack"
	ActionHeavyAttack Action = "heavy_attack"
	ActionBlock       Action = "block"
	ActionSkill       Action = "skill"
)

// Rejection reasons. A rejected action is a normal outcome, not an error.
const (
	ReasonCooldown            = "cooldown"
	ReasonInsufficientStamina = "insufficient_stamina"
	ReasonInsufficientMana    = "insufficient_mana"
	ReasonBusy                = "busy"
	ReasonStaggered           = "staggered"
	ReasonUnknownSkill        = "unknown_skill"
	ReasonDefeated            = "defeated"
)

// ActionResult reports the outcome of an attempted player action.
type ActionResult struct {
	Action  Action `json:"action"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Result is the output of a single simulation tick.
type Result struct {
	Tick    int64          `json:"tick"`
	Events  []Event        `json:"events,omitempty"`
	Actions []ActionResult `json:"actions,omitempty"`
	// WallTime is telemetry from the injected clock; it never feeds gameplay.
	WallTime time.Time `json:"wall_time"`
}
