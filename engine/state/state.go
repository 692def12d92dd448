// Package state holds the immutable content catalog and builds fresh
// simulation state from it.
package state

import (
	"fmt"
	"sort"

	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/types"
)

// PlayerID is the actor id of the single player.
const PlayerID = "player"

// Defs holds the immutable game definitions loaded from Lua or built in.
type Defs struct {
	Game       types.GameDef
	Arena      types.ArenaDef
	Physics    types.PhysicsTuning
	Player     types.PlayerTuning
	Weapons    map[string]types.WeaponStats
	Patterns   map[string]types.AttackPattern
	Skills     map[string]types.SkillDef
	Archetypes map[string]types.EnemyArchetype
}

// Weapon returns the weapon with the given id, or nil.
func (d *Defs) Weapon(id string) *types.WeaponStats {
	w, ok := d.Weapons[id]
	if !ok {
		return nil
	}
	return &w
}

// Pattern returns the attack pattern with the given id, or nil.
func (d *Defs) Pattern(id string) *types.AttackPattern {
	p, ok := d.Patterns[id]
	if !ok {
		return nil
	}
	return &p
}

// Skill returns the skill with the given id, or nil.
func (d *Defs) Skill(id string) *types.SkillDef {
	s, ok := d.Skills[id]
	if !ok {
		return nil
	}
	return &s
}

// Archetype returns the enemy archetype with the given id, or nil.
func (d *Defs) Archetype(id string) *types.EnemyArchetype {
	a, ok := d.Archetypes[id]
	if !ok {
		return nil
	}
	return &a
}

// SortedKeys returns a map's keys in ascending order. Catalog maps are never
// iterated directly where order can reach gameplay.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NextID allocates a deterministic id for a new world object.
func NextID(s *types.State, prefix string) string {
	s.NextID++
	return fmt.Sprintf("%s-%d", prefix, s.NextID)
}

// NewState creates a fresh simulation state: the player at the arena start
// and one enemy per arena spawn, in spawn-list order. Unknown archetypes in
// the spawn list are skipped; the loader rejects them earlier.
func NewState(defs *Defs) *types.State {
	s := &types.State{
		Player:      NewPlayer(defs),
		Enemies:     []types.EnemyState{},
		Projectiles: []types.Projectile{},
		Areas:       []types.AreaEffect{},
	}
	for _, sp := range defs.Arena.Spawns {
		a := defs.Archetype(sp.Archetype)
		if a == nil {
			continue
		}
		s.Enemies = append(s.Enemies, NewEnemy(a, NextID(s, a.ID), sp.Position))
	}
	return s
}

// NewPlayer returns the player with every field at its default.
func NewPlayer(defs *Defs) types.PlayerState {
	t := defs.Player
	skills := make(map[string]types.SkillSlot, len(t.Skills))
	for _, id := range t.Skills {
		skills[id] = types.SkillSlot{Level: 1}
	}
	return types.PlayerState{
		Actor: types.Actor{
			ID: PlayerID,
			Physics: types.PhysicsState{
				Position:     defs.Arena.PlayerStart,
				GroundNormal: geom.Up,
			},
			Health:    t.MaxHealth,
			MaxHealth: t.MaxHealth,
			Radius:    t.Radius,
		},
		Stamina:          t.MaxStamina,
		MaxStamina:       t.MaxStamina,
		Mana:             t.MaxMana,
		MaxMana:          t.MaxMana,
		AttackMultiplier: 1,
		Weapon:           t.Weapon,
		Skills:           skills,
	}
}

// NewEnemy returns a freshly spawned enemy resting at pos.
func NewEnemy(a *types.EnemyArchetype, id string, pos geom.Vec3) types.EnemyState {
	return types.EnemyState{
		Actor: types.Actor{
			ID: id,
			Physics: types.PhysicsState{
				Position:     pos,
				GroundNormal: geom.Up,
			},
			Health:    a.MaxHealth,
			MaxHealth: a.MaxHealth,
			Radius:    a.Radius,
		},
		Archetype:   a.ID,
		AI:          types.AIIdle,
		StateTimer:  a.IdleMin,
		AggroRange:  a.AggroRange,
		AttackRange: a.AttackRange,
		MoveSpeed:   a.MoveSpeed,
		Home:        pos,
	}
}

// FindEnemy returns the index of the enemy with the given id, or -1.
func FindEnemy(s *types.State, id string) int {
	for i := range s.Enemies {
		if s.Enemies[i].ID == id {
			return i
		}
	}
	return -1
}
