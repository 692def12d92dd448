// Package engine provides the Step() orchestrator that wires the player
// controller, enemy AI, weapons, skills and combat resolution into a single
// fixed-order tick.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nathoo/arpgcore/engine/combat"
	"github.com/nathoo/arpgcore/engine/enemy"
	"github.com/nathoo/arpgcore/engine/events"
	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/engine/physics"
	"github.com/nathoo/arpgcore/engine/player"
	"github.com/nathoo/arpgcore/engine/save"
	"github.com/nathoo/arpgcore/engine/skill"
	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/engine/weapon"
	"github.com/nathoo/arpgcore/types"
)

var (
	ErrUnknownArchetype = errors.New("unknown enemy archetype")
	ErrUnknownEnemy     = errors.New("unknown enemy")
)

// Engine holds the game definitions and mutable state. It is not safe for
// concurrent use.
type Engine struct {
	Defs  *state.Defs
	State *types.State
	RNG   *RNG

	player  *player.Controller
	brain   *enemy.Brain
	bus     events.Bus
	log     *slog.Logger
	now     func() time.Time
	seed    int64
	pending []types.Event // spawn/respawn events raised between ticks
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock sets the wall clock used for Result.WallTime. It never feeds
// gameplay.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSeed overrides the catalog's seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// New creates a new engine from definitions.
func New(defs *state.Defs, opts ...Option) *Engine {
	e := &Engine{
		Defs:   defs,
		player: player.New(defs),
		brain:  enemy.New(defs),
		log:    slog.New(slog.DiscardHandler),
		now:    time.Now,
		seed:   defs.Game.Seed,
	}
	for _, o := range opts {
		o(e)
	}
	e.State = state.NewState(defs)
	e.State.Seed = e.seed
	e.RNG = NewRNG(e.seed)
	e.log.Info("engine ready", "game", defs.Game.Title, "seed", e.seed, "enemies", len(e.State.Enemies))
	return e
}

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = RestoreRNG(seed, position)
}

// Subscribe registers an observer for one event type.
func (e *Engine) Subscribe(t types.EventType, h events.Handler) {
	e.bus.Subscribe(t, h)
}

// SubscribeAll registers an observer for every event.
func (e *Engine) SubscribeAll(h events.Handler) {
	e.bus.SubscribeAll(h)
}

func (e *Engine) idFunc(prefix string) func() string {
	return func() string { return state.NextID(e.State, prefix) }
}

// Step advances the simulation by one tick and returns the result.
func (e *Engine) Step(in types.Intent, dt float64) types.Result {
	s := e.State
	p := &s.Player
	dt = physics.ClampDelta(dt, e.Defs.Physics.MaxStep)

	c := events.NewCollector(s.Tick)
	for _, ev := range e.pending {
		c.Emit(ev)
	}
	e.pending = nil
	result := types.Result{Tick: s.Tick}

	// 1. Player controller.
	out := e.player.Update(p, in, dt, e.RNG, e.idFunc(in.Skill))
	result.Actions = out.Actions
	for _, a := range out.Actions {
		if !a.Success {
			c.Emit(types.Event{
				Type:   types.EventActionRejected,
				Source: state.PlayerID,
				Detail: string(a.Action) + ": " + a.Reason,
			})
		}
	}
	cast := out.Cast
	if cast != nil {
		c.Emit(types.Event{Type: types.EventSkillCast, Source: state.PlayerID, Detail: cast.Skill})
		if cast.Projectile != nil {
			s.Projectiles = append(s.Projectiles, *cast.Projectile)
		}
		if cast.Area != nil {
			s.Areas = append(s.Areas, *cast.Area)
		}
	}

	// 2. Enemy FSMs, all of them before any hit resolution.
	target := enemy.Target{Position: p.Physics.Position, Alive: !p.Defeated}
	var emissions []*enemy.Emission
	for i := range s.Enemies {
		en := &s.Enemies[i]
		o := e.brain.Update(en, target, dt, e.RNG, e.idFunc("proj"))
		if o.Transition != nil {
			e.stateChange(c, en.ID, o.Transition)
		}
		if o.Emission != nil {
			emissions = append(emissions, o.Emission)
		}
	}

	// 3. Player swing vs enemies, in spawn order. A swing lands once.
	if w := e.Defs.Weapon(p.Weapon); w != nil && !p.Defeated {
		mods := player.Modifiers(p)
		for i := range s.Enemies {
			en := &s.Enemies[i]
			if en.Defeated {
				continue
			}
			h := weapon.CheckWeaponHit(e.RNG, &p.Swing, w, mods, p.Physics.Position, p.Facing, combat.TargetOf(&en.Actor))
			if h.Hit {
				e.hitEnemy(c, en, state.PlayerID, w.ID, h.Damage, h.Critical, h.Stagger)
				break
			}
		}
	}
	if cast != nil && cast.Cone != nil {
		for i := range s.Enemies {
			en := &s.Enemies[i]
			if !en.Defeated && combat.Resolve(*cast.Cone, combat.TargetOf(&en.Actor)) {
				e.hitEnemy(c, en, state.PlayerID, cast.Skill, cast.Damage, false, false)
			}
		}
	}

	// 4. Enemy attacks vs the player, in spawn order.
	for _, em := range emissions {
		if em.Projectile != nil {
			s.Projectiles = append(s.Projectiles, *em.Projectile)
			continue
		}
		if p.Defeated || !combat.Resolve(*em.Strike, combat.TargetOf(&p.Actor)) {
			continue
		}
		e.hitPlayer(c, em.Enemy, em.Pattern.ID, em.Pattern.Damage, em.Pattern.Heavy, true)
	}

	// 5. Projectiles, then area effects, in creation order.
	bodies := make([]skill.Body, 0, len(s.Enemies)+1)
	if !p.Defeated {
		bodies = append(bodies, skill.Body{ID: state.PlayerID, Faction: types.FactionPlayer, Target: combat.TargetOf(&p.Actor)})
	}
	for i := range s.Enemies {
		if en := &s.Enemies[i]; !en.Defeated {
			bodies = append(bodies, skill.Body{ID: en.ID, Faction: types.FactionEnemy, Target: combat.TargetOf(&en.Actor)})
		}
	}
	world, impacts, expired := skill.Advance(skill.World{Projectiles: s.Projectiles, Areas: s.Areas}, bodies, dt)
	s.Projectiles = world.Projectiles
	s.Areas = world.Areas
	if s.Projectiles == nil {
		s.Projectiles = []types.Projectile{}
	}
	if s.Areas == nil {
		s.Areas = []types.AreaEffect{}
	}
	for _, im := range impacts {
		if im.Target == state.PlayerID {
			e.hitPlayer(c, im.Owner, im.Source, im.Damage, im.Heavy, false)
			continue
		}
		if i := state.FindEnemy(s, im.Target); i >= 0 && !s.Enemies[i].Defeated {
			e.hitEnemy(c, &s.Enemies[i], im.Owner, im.Source, im.Damage, false, im.Heavy)
		}
	}
	for _, id := range expired {
		c.Emit(types.Event{Type: types.EventProjectileExpired, Source: id})
	}

	// 6. Bookkeeping.
	s.RNGPosition = e.RNG.Position()
	s.Tick++
	s.Time += dt

	result.Events = c.Events()
	result.WallTime = e.now()
	e.bus.Dispatch(result.Events)
	return result
}

// hitEnemy applies damage from the player side. Staggering hits interrupt
// the enemy unless the hit defeated it.
func (e *Engine) hitEnemy(c *events.Collector, en *types.EnemyState, source, what string, dmg float64, crit, stagger bool) {
	o := enemy.ApplyDamage(en, dmg)
	c.Emit(types.Event{
		Type:     types.EventHit,
		Source:   source,
		Target:   en.ID,
		Amount:   o.Applied,
		Critical: crit,
		Detail:   what,
	})
	if o.Defeated {
		c.Emit(types.Event{Type: types.EventDefeated, Source: source, Target: en.ID})
		e.log.Info("enemy defeated", "enemy", en.ID, "by", what, "tick", c.Tick)
		return
	}
	if stagger {
		e.staggerEnemy(c, en)
	}
}

func (e *Engine) staggerEnemy(c *events.Collector, en *types.EnemyState) {
	a := e.Defs.Archetype(en.Archetype)
	if a == nil {
		return
	}
	if tr := enemy.Stagger(en, a, e.RNG); tr != nil {
		c.Emit(types.Event{Type: types.EventStagger, Target: en.ID})
		e.stateChange(c, en.ID, tr)
	}
	enemy.SyncFlags(en)
}

// hitPlayer runs an enemy-side hit through the player's defenses. Only a
// parried melee attack staggers its attacker.
func (e *Engine) hitPlayer(c *events.Collector, source, what string, raw float64, heavy, melee bool) {
	p := &e.State.Player
	invulnerable := p.Flags.Invulnerable
	r := player.ApplyDamage(p, raw, &e.Defs.Player)

	switch {
	case invulnerable:
		return
	case r.Parried:
		c.Emit(types.Event{Type: types.EventParried, Source: state.PlayerID, Target: source, Detail: what})
		if i := state.FindEnemy(e.State, source); melee && i >= 0 {
			e.staggerEnemy(c, &e.State.Enemies[i])
		}
		return
	case r.Blocked:
		c.Emit(types.Event{Type: types.EventBlocked, Source: source, Target: state.PlayerID, Amount: r.Actual, Detail: what})
	default:
		c.Emit(types.Event{Type: types.EventHit, Source: source, Target: state.PlayerID, Amount: r.Actual, Detail: what})
	}

	if r.Defeated {
		c.Emit(types.Event{Type: types.EventDefeated, Source: source, Target: state.PlayerID})
		e.log.Info("player defeated", "by", source, "tick", c.Tick)
		return
	}
	if heavy && !r.Blocked && r.Actual > 0 && player.Stagger(p, &e.Defs.Player) {
		c.Emit(types.Event{Type: types.EventStagger, Source: source, Target: state.PlayerID})
	}
}

func (e *Engine) stateChange(c *events.Collector, id string, tr *enemy.Transition) {
	c.Emit(types.Event{
		Type:   types.EventStateChange,
		Source: id,
		Detail: tr.From.String() + "->" + tr.To.String(),
	})
	e.log.Debug("state change", "enemy", id, "from", tr.From, "to", tr.To, "tick", c.Tick)
}

// SpawnEnemy adds an enemy of the given archetype and returns its id. The
// spawn event is reported with the next tick.
func (e *Engine) SpawnEnemy(archetype string, pos geom.Vec3) (string, error) {
	a := e.Defs.Archetype(archetype)
	if a == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownArchetype, archetype)
	}
	id := state.NextID(e.State, a.ID)
	e.State.Enemies = append(e.State.Enemies, state.NewEnemy(a, id, pos))
	e.pending = append(e.pending, types.Event{Type: types.EventSpawn, Target: id, Detail: a.ID})
	e.log.Info("enemy spawned", "enemy", id, "archetype", a.ID)
	return id, nil
}

// Despawn removes an enemy, typically after its death has been presented.
func (e *Engine) Despawn(id string) error {
	i := state.FindEnemy(e.State, id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownEnemy, id)
	}
	e.State.Enemies = append(e.State.Enemies[:i], e.State.Enemies[i+1:]...)
	return nil
}

// Respawn resets the player to defaults at the arena start.
func (e *Engine) Respawn() {
	e.State.Player = state.NewPlayer(e.Defs)
	e.pending = append(e.pending, types.Event{Type: types.EventRespawn, Target: state.PlayerID})
	e.log.Info("player respawned", "tick", e.State.Tick)
}

// Snapshot encodes the current state.
func (e *Engine) Snapshot(f save.Format) ([]byte, error) {
	return save.Encode(e.State, e.Defs, f)
}

// Restore replaces the state with a snapshot and repositions the RNG so the
// run continues exactly where the snapshot was taken.
func (e *Engine) Restore(data []byte, f save.Format) error {
	snap, err := save.Decode(data, f)
	if err != nil {
		return err
	}
	if snap.Game != e.Defs.Game.Title {
		e.log.Warn("snapshot from another game", "snapshot", snap.Game, "game", e.Defs.Game.Title)
	}
	save.Apply(e.State, snap)
	e.RestoreRNG(e.State.Seed, e.State.RNGPosition)
	e.pending = nil
	return nil
}
