package enemy

import (
	"fmt"
	"testing"

	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/types"
)

const dt = 1.0 / 60

// lowRand always returns the bottom of the requested range.
type lowRand struct{}

func (lowRand) RangeFloat(min, max float64) float64 { return min }
func (lowRand) RangeInt(min, max int) int           { return min }
func (lowRand) WeightedSelect(weights []int) int    { return 0 }

// lastRand picks the last option of every weighted choice and records the
// weights it was offered.
type lastRand struct {
	lowRand
	offered [][]int
}

func (r *lastRand) WeightedSelect(weights []int) int {
	r.offered = append(r.offered, weights)
	return len(weights) - 1
}

func ids() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("fx-%d", n)
	}
}

func setup(archetype string) (*Brain, *types.EnemyState) {
	defs := state.DefaultDefs()
	defs.Arena.Obstacles = nil
	e := state.NewEnemy(defs.Archetype(archetype), archetype+"-1", geom.Vec3{})
	return New(defs), &e
}

func at(z float64) Target {
	return Target{Position: geom.V(0, 0, z), Alive: true}
}

func TestIdle_AggroRange(t *testing.T) {
	b, e := setup("grunt")
	if e.AggroRange != 15 {
		t.Fatalf("aggro range = %v, want 15", e.AggroRange)
	}

	b.Update(e, at(20), dt, lowRand{}, ids())
	if e.AI != types.AIIdle {
		t.Fatalf("state = %v with player at 20, want idle", e.AI)
	}

	out := b.Update(e, at(10), dt, lowRand{}, ids())
	if e.AI != types.AIChase {
		t.Fatalf("state = %v with player at 10, want chase", e.AI)
	}
	if out.Transition == nil || out.Transition.From != types.AIIdle || out.Transition.To != types.AIChase {
		t.Errorf("transition = %+v", out.Transition)
	}
	if e.LastKnownPlayer == nil || *e.LastKnownPlayer != geom.V(0, 0, 10) {
		t.Errorf("last known player = %v", e.LastKnownPlayer)
	}
}

func TestEnterChase_TracksPlayer(t *testing.T) {
	tests := []struct {
		from types.AIState
	}{
		{types.AIIdle},
		{types.AIWander},
		{types.AIRecover},
		{types.AIRetreat},
	}
	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			b, e := setup("grunt")
			e.AI = tt.from
			e.StateTimer = dt / 2
			e.AttackCooldown = 5
			if tt.from == types.AIWander {
				wt := geom.V(3, 0, 0)
				e.WanderTarget = &wt
			}

			out := b.Update(e, at(10), dt, lowRand{}, ids())
			if e.AI != types.AIChase {
				t.Fatalf("state = %v, want chase", e.AI)
			}
			if out.Transition == nil || out.Transition.From != tt.from {
				t.Errorf("transition = %+v", out.Transition)
			}
			if e.LastKnownPlayer == nil || *e.LastKnownPlayer != geom.V(0, 0, 10) {
				t.Errorf("last known player = %v, want (0, 0, 10)", e.LastKnownPlayer)
			}
		})
	}
}

func TestChase_PicksWeightedPattern(t *testing.T) {
	b, e := setup("brute")
	e.AI = types.AIChase
	r := &lastRand{}

	b.Update(e, at(2), dt, r, ids())
	if e.AI != types.AITelegraph || e.CurrentAttack != "charge" {
		t.Fatalf("state = %v attack = %q, want telegraph charge", e.AI, e.CurrentAttack)
	}
	if len(r.offered) != 1 || len(r.offered[0]) != 2 || r.offered[0][0] != 2 || r.offered[0][1] != 1 {
		t.Errorf("weights offered = %v, want [[2 1]]", r.offered)
	}

	b, e = setup("grunt")
	e.AI = types.AIChase
	r = &lastRand{}
	b.Update(e, at(1), dt, r, ids())
	if len(r.offered) != 1 || len(r.offered[0]) != 1 || r.offered[0][0] != 1 {
		t.Errorf("unweighted archetype offered %v, want equal weights", r.offered)
	}
}

func TestIdle_WandersOnTimer(t *testing.T) {
	b, e := setup("grunt")
	for i := 0; i < 70 && e.AI == types.AIIdle; i++ {
		b.Update(e, at(50), dt, lowRand{}, ids())
	}
	if e.AI != types.AIWander || e.WanderTarget == nil {
		t.Fatalf("state = %v target = %v, want wander with a target", e.AI, e.WanderTarget)
	}
	if e.LastKnownPlayer != nil {
		t.Error("last known player must be nil outside pursuit")
	}
}

func TestWander_ToChaseMidWander(t *testing.T) {
	b, e := setup("grunt")
	e.AI = types.AIWander
	e.StateTimer = 3
	wt := geom.V(4, 0, 0)
	e.WanderTarget = &wt

	b.Update(e, at(30), dt, lowRand{}, ids())
	if e.AI != types.AIWander || e.Move.IsZero() {
		t.Fatalf("should keep wandering towards the target, state %v move %v", e.AI, e.Move)
	}
	b.Update(e, at(8), dt, lowRand{}, ids())
	if e.AI != types.AIChase || e.WanderTarget != nil {
		t.Errorf("state = %v target = %v, want chase with cleared target", e.AI, e.WanderTarget)
	}
}

func TestChase_LeavesAggro(t *testing.T) {
	b, e := setup("grunt")
	e.AI = types.AIChase

	b.Update(e, at(5), dt, lowRand{}, ids())
	if e.AI != types.AIChase || e.Physics.Position.Z <= 0 {
		t.Fatalf("should close distance: state %v pos %v", e.AI, e.Physics.Position)
	}
	b.Update(e, at(40), dt, lowRand{}, ids())
	if e.AI != types.AIIdle || e.LastKnownPlayer != nil {
		t.Errorf("state = %v last known = %v, want idle with no target", e.AI, e.LastKnownPlayer)
	}
}

func TestChase_ReturnsIdleWhenTargetDead(t *testing.T) {
	b, e := setup("grunt")
	e.AI = types.AIChase

	b.Update(e, Target{Position: geom.V(0, 0, 1), Alive: false}, dt, lowRand{}, ids())
	if e.AI != types.AIIdle {
		t.Errorf("state = %v, want idle", e.AI)
	}
}

func TestAttackCycle_EmitsOnce(t *testing.T) {
	b, e := setup("grunt")
	e.AI = types.AIChase
	slash := b.Defs.Patterns["slash"]

	b.Update(e, at(1.5), dt, lowRand{}, ids())
	if e.AI != types.AITelegraph || e.CurrentAttack != "slash" {
		t.Fatalf("state = %v attack = %q, want telegraph slash", e.AI, e.CurrentAttack)
	}

	emissions := 0
	seen := map[types.AIState]bool{}
	for i := 0; i < 200 && e.AI != types.AIChase; i++ {
		out := b.Update(e, at(1.5), dt, lowRand{}, ids())
		seen[e.AI] = true
		if out.Emission != nil {
			emissions++
			if out.Emission.Strike == nil || out.Emission.Pattern.ID != "slash" {
				t.Fatalf("emission = %+v", out.Emission)
			}
			if e.StateElapsed < slash.Windup {
				t.Errorf("emitted before the windup boundary at %.3f", e.StateElapsed)
			}
		}
	}
	if emissions != 1 {
		t.Errorf("emitted %d hits in one attack, want exactly 1", emissions)
	}
	for _, s := range []types.AIState{types.AIAttack, types.AIRecover, types.AIChase} {
		if !seen[s] {
			t.Errorf("attack cycle never reached %v", s)
		}
	}
	if e.CurrentAttack != "" {
		t.Errorf("current attack = %q after recover, want cleared", e.CurrentAttack)
	}
	if e.AttackCooldown <= 0 {
		t.Error("a cooldown should be rolled after attacking")
	}
}

func TestChargeAttack_MovesForward(t *testing.T) {
	b, e := setup("brute")
	e.AI = types.AIAttack
	e.CurrentAttack = "charge"
	charge := b.Defs.Patterns["charge"]
	e.StateTimer = charge.Windup + charge.Execute
	e.StateElapsed = charge.Windup

	b.Update(e, at(3), dt, lowRand{}, ids())
	if e.Move.HorizontalLen() != charge.MoveSpeed {
		t.Errorf("charge move = %v, want speed %v", e.Move, charge.MoveSpeed)
	}
}

func TestProjectilePattern_SpawnsProjectile(t *testing.T) {
	b, e := setup("archer")
	e.AI = types.AIAttack
	e.CurrentAttack = "arrow"
	arrow := b.Defs.Patterns["arrow"]
	e.StateTimer = arrow.Windup + arrow.Execute
	e.StateElapsed = arrow.Windup

	out := b.Update(e, at(9), dt, lowRand{}, ids())
	if out.Emission == nil || out.Emission.Projectile == nil {
		t.Fatalf("expected a projectile emission, got %+v", out.Emission)
	}
	p := out.Emission.Projectile
	if p.Faction != types.FactionEnemy || p.Owner != e.ID || p.Damage != arrow.Damage {
		t.Errorf("projectile = %+v", p)
	}
}

func TestAreaPattern_IsRadial(t *testing.T) {
	b, e := setup("brute")
	e.AI = types.AIAttack
	e.CurrentAttack = "slam"
	slam := b.Defs.Patterns["slam"]
	e.StateTimer = slam.Windup + slam.Execute
	e.StateElapsed = slam.Windup

	out := b.Update(e, at(2), dt, lowRand{}, ids())
	if out.Emission == nil || out.Emission.Strike == nil || !out.Emission.Strike.Radial {
		t.Fatalf("slam should emit a radial strike, got %+v", out.Emission)
	}
}

func TestStagger_OverridesTransitions(t *testing.T) {
	b, e := setup("grunt")
	e.AI = types.AITelegraph
	e.CurrentAttack = "slash"
	e.StateTimer = 0.01

	tr := Stagger(e, b.Defs.Archetype("grunt"), lowRand{})
	if tr == nil || tr.To != types.AIStagger {
		t.Fatalf("transition = %+v", tr)
	}
	if e.CurrentAttack != "" || e.AttackCooldown <= 0 {
		t.Errorf("stagger should clear the attack and roll a cooldown: %q %v", e.CurrentAttack, e.AttackCooldown)
	}

	stagger := b.Defs.Archetypes["grunt"].StaggerTime
	elapsed := 0.0
	for elapsed+dt < stagger-1e-9 {
		out := b.Update(e, at(1), dt, lowRand{}, ids())
		elapsed += dt
		if e.AI != types.AIStagger {
			t.Fatalf("left stagger after %.3fs, want %.3fs", elapsed, stagger)
		}
		if out.Emission != nil || !e.Move.IsZero() {
			t.Fatal("staggered enemy acted")
		}
		if !e.Flags.Staggered {
			t.Fatal("staggered flag not set")
		}
	}
	for i := 0; i < 3 && e.AI == types.AIStagger; i++ {
		b.Update(e, at(1), dt, lowRand{}, ids())
	}
	if e.AI != types.AIRecover {
		t.Errorf("state = %v after stagger, want recover", e.AI)
	}
	if want := b.Defs.Archetypes["grunt"].StaggerRecovery; e.StateTimer != want {
		t.Errorf("recover timer = %v, want stagger recovery %v", e.StateTimer, want)
	}
	if e.Flags.Staggered {
		t.Error("staggered flag should clear")
	}
}

func TestStagger_DefeatedIgnored(t *testing.T) {
	b, e := setup("grunt")
	ApplyDamage(e, 1000)
	if Stagger(e, b.Defs.Archetype("grunt"), lowRand{}) != nil || e.AI == types.AIStagger {
		t.Error("defeated enemy should not stagger")
	}
	if out := b.Update(e, at(1), dt, lowRand{}, ids()); out != (Output{}) {
		t.Error("defeated enemy should not update")
	}
}

func TestRetreat(t *testing.T) {
	b, e := setup("archer")
	e.AI = types.AIChase
	e.AttackCooldown = 1

	b.Update(e, at(3), dt, lowRand{}, ids())
	if e.AI != types.AIRetreat {
		t.Fatalf("state = %v, want retreat when close with attack on cooldown", e.AI)
	}
	b.Update(e, at(3), dt, lowRand{}, ids())
	if e.Move.Z >= 0 {
		t.Errorf("retreat should move away from the player, move %v", e.Move)
	}
	b.Update(e, at(20), dt, lowRand{}, ids())
	if e.AI != types.AIChase {
		t.Errorf("state = %v at safe distance, want chase", e.AI)
	}
}

func TestUpdate_AtMostOneTransitionPerTick(t *testing.T) {
	b, e := setup("grunt")
	positions := []float64{20, 10, 1.5, 1.5, 30, 3, 1, 1, 1, 40}

	for i := 0; i < 600; i++ {
		before := e.AI
		out := b.Update(e, at(positions[(i/60)%len(positions)]), dt, lowRand{}, ids())
		if out.Transition == nil && e.AI != before {
			t.Fatalf("tick %d: state changed %v -> %v without a transition", i, before, e.AI)
		}
		if out.Transition != nil && (out.Transition.From != before || out.Transition.To != e.AI) {
			t.Fatalf("tick %d: transition %+v does not match %v -> %v", i, out.Transition, before, e.AI)
		}
		if e.LastKnownPlayer != nil && !pursuing(e.AI) {
			t.Fatalf("tick %d: last known player set in %v", i, e.AI)
		}
	}
}

func TestApplyDamage_ClearsOnDefeat(t *testing.T) {
	_, e := setup("grunt")
	e.AI = types.AIAttack
	e.CurrentAttack = "slash"

	o := ApplyDamage(e, 40)
	if !o.Defeated || e.CurrentAttack != "" || e.Health != 0 {
		t.Errorf("outcome=%+v attack=%q health=%v", o, e.CurrentAttack, e.Health)
	}
	if again := ApplyDamage(e, 40); again.Defeated {
		t.Error("defeat fired twice")
	}
}
