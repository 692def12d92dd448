package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/types"
)

func assertContains(t *testing.T, msgs []string, substr string) {
	t.Helper()
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return
		}
	}
	t.Errorf("expected a message containing %q, got %v", substr, msgs)
}

func TestValidate_DefaultDefs(t *testing.T) {
	warnings, err := validate(state.DefaultDefs())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *state.Defs)
		want   string
	}{
		{"empty title", func(d *state.Defs) { d.Game.Title = "" }, "title is required"},
		{"unknown weapon", func(d *state.Defs) { d.Player.Weapon = "spoon" }, `weapon "spoon"`},
		{"unknown skill", func(d *state.Defs) { d.Player.Skills = append(d.Player.Skills, "meteor") }, `skill "meteor"`},
		{"unknown pattern", func(d *state.Defs) {
			a := d.Archetypes["grunt"]
			a.Patterns = []string{"bite"}
			d.Archetypes["grunt"] = a
		}, `undefined pattern "bite"`},
		{"hit window outside swing", func(d *state.Defs) {
			w := d.Weapons["basicSword"]
			w.Light.HitEnd = 1.2
			d.Weapons["basicSword"] = w
		}, "hit window"},
		{"inverted hit window", func(d *state.Defs) {
			w := d.Weapons["basicSword"]
			w.Heavy.HitStart, w.Heavy.HitEnd = 0.8, 0.2
			d.Weapons["basicSword"] = w
		}, "hit window"},
		{"zero swing duration", func(d *state.Defs) {
			w := d.Weapons["greataxe"]
			w.Light.Duration = 0
			d.Weapons["greataxe"] = w
		}, "duration must be positive"},
		{"crit chance", func(d *state.Defs) {
			w := d.Weapons["basicSword"]
			w.CritChance = 1.5
			d.Weapons["basicSword"] = w
		}, "crit_chance"},
		{"unknown movement", func(d *state.Defs) {
			p := d.Patterns["slash"]
			p.Movement = "teleport"
			d.Patterns["slash"] = p
		}, `unknown movement "teleport"`},
		{"projectile without speed", func(d *state.Defs) {
			p := d.Patterns["arrow"]
			p.ProjectileSpeed = 0
			d.Patterns["arrow"] = p
		}, "projectile_speed"},
		{"instant pattern", func(d *state.Defs) {
			p := d.Patterns["slash"]
			p.Windup, p.Execute = 0, 0
			d.Patterns["slash"] = p
		}, "positive windup or execute"},
		{"unknown skill kind", func(d *state.Defs) {
			s := d.Skills["quake"]
			s.Kind = "summon"
			d.Skills["quake"] = s
		}, `unknown kind "summon"`},
		{"area without radius", func(d *state.Defs) {
			s := d.Skills["quake"]
			s.Radius = 0
			d.Skills["quake"] = s
		}, "positive radius and duration"},
		{"unknown resource", func(d *state.Defs) {
			s := d.Skills["firebolt"]
			s.Resource = "rage"
			d.Skills["firebolt"] = s
		}, `unknown resource "rage"`},
		{"weights count", func(d *state.Defs) {
			a := d.Archetypes["brute"]
			a.PatternWeights = []int{1}
			d.Archetypes["brute"] = a
		}, "1 pattern_weights for 2 patterns"},
		{"zero weight", func(d *state.Defs) {
			a := d.Archetypes["brute"]
			a.PatternWeights = []int{3, 0}
			d.Archetypes["brute"] = a
		}, "pattern_weights must be positive"},
		{"negative stagger recovery", func(d *state.Defs) {
			a := d.Archetypes["grunt"]
			a.StaggerRecovery = -1
			d.Archetypes["grunt"] = a
		}, "stagger_recovery"},
		{"min above max", func(d *state.Defs) {
			a := d.Archetypes["brute"]
			a.CooldownMin = 5
			d.Archetypes["brute"] = a
		}, "min above its max"},
		{"safe distance", func(d *state.Defs) {
			a := d.Archetypes["archer"]
			a.SafeDistance = 2
			d.Archetypes["archer"] = a
		}, "safe_distance"},
		{"spawn of unknown enemy", func(d *state.Defs) {
			d.Arena.Spawns = append(d.Arena.Spawns, types.SpawnDef{Archetype: "dragon"})
		}, `undefined enemy "dragon"`},
		{"ground normal", func(d *state.Defs) { d.Arena.GroundNormal.Y = 0 }, "point up"},
		{"max step", func(d *state.Defs) { d.Physics.MaxStep = 0 }, "max_step"},
		{"block reduction", func(d *state.Defs) { d.Player.BlockReduction = 2 }, "block_reduction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := state.DefaultDefs()
			tt.mutate(defs)
			_, err := validate(defs)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			assertContains(t, ve.Errors, tt.want)
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	defs := state.DefaultDefs()
	defs.Patterns["unused"] = types.AttackPattern{
		ID: "unused", Windup: 0.1, Range: 1, Arc: 1, Movement: types.MoveStationary,
	}
	defs.Arena.Spawns = nil

	warnings, err := validate(defs)
	if err != nil {
		t.Fatalf("warnings alone must not fail validation: %v", err)
	}
	assertContains(t, warnings, `pattern "unused"`)
	assertContains(t, warnings, "no spawns")
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []string{"a", "b"}}
	if got := ve.Error(); !strings.Contains(got, "2 error(s)") || !strings.Contains(got, "\n  b") {
		t.Errorf("Error() = %q", got)
	}
}
