package state

import (
	"testing"

	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/types"
)

func TestNewState_SpawnsInOrder(t *testing.T) {
	defs := DefaultDefs()
	s := NewState(defs)

	if len(s.Enemies) != len(defs.Arena.Spawns) {
		t.Fatalf("expected %d enemies, got %d", len(defs.Arena.Spawns), len(s.Enemies))
	}
	want := []string{"grunt-1", "grunt-2", "archer-3"}
	for i, id := range want {
		if s.Enemies[i].ID != id {
			t.Errorf("enemy %d id = %q, want %q", i, s.Enemies[i].ID, id)
		}
		if s.Enemies[i].AI != types.AIIdle {
			t.Errorf("enemy %s should start idle", id)
		}
	}
	if s.NextID != 3 {
		t.Errorf("NextID = %d, want 3", s.NextID)
	}
}

func TestNewState_SkipsUnknownArchetype(t *testing.T) {
	defs := DefaultDefs()
	defs.Arena.Spawns = append(defs.Arena.Spawns, types.SpawnDef{Archetype: "dragon"})

	s := NewState(defs)
	if len(s.Enemies) != 3 {
		t.Errorf("expected unknown archetype to be skipped, got %d enemies", len(s.Enemies))
	}
}

func TestNewPlayer_Defaults(t *testing.T) {
	defs := DefaultDefs()
	p := NewPlayer(defs)

	if p.ID != PlayerID || p.Health != 100 || p.Stamina != 100 || p.Mana != 50 {
		t.Errorf("unexpected player defaults: %+v", p.Actor)
	}
	if p.Weapon != "basicSword" {
		t.Errorf("weapon = %q", p.Weapon)
	}
	for _, id := range defs.Player.Skills {
		if slot, ok := p.Skills[id]; !ok || slot.Level != 1 {
			t.Errorf("skill %q slot = %+v, %v", id, slot, ok)
		}
	}
	if p.Physics.GroundNormal != geom.Up {
		t.Errorf("ground normal = %v", p.Physics.GroundNormal)
	}
}

func TestLookups(t *testing.T) {
	defs := DefaultDefs()

	if w := defs.Weapon("basicSword"); w == nil || w.BaseDamage != 15 {
		t.Errorf("basicSword = %+v", w)
	}
	if defs.Weapon("nope") != nil || defs.Pattern("nope") != nil || defs.Skill("nope") != nil || defs.Archetype("nope") != nil {
		t.Error("unknown ids should return nil")
	}
}

func TestLookups_ReturnCopies(t *testing.T) {
	defs := DefaultDefs()
	w := defs.Weapon("basicSword")
	w.BaseDamage = 999

	if defs.Weapons["basicSword"].BaseDamage != 15 {
		t.Error("lookup exposed the catalog to mutation")
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]int{"c": 1, "a": 2, "b": 3})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("SortedKeys = %v", got)
	}
}

func TestFindEnemy(t *testing.T) {
	s := NewState(DefaultDefs())
	if i := FindEnemy(s, "grunt-2"); i != 1 {
		t.Errorf("FindEnemy(grunt-2) = %d, want 1", i)
	}
	if i := FindEnemy(s, "ghost"); i != -1 {
		t.Errorf("FindEnemy(ghost) = %d, want -1", i)
	}
}
