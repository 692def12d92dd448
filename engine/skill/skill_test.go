package skill

import (
	"fmt"
	"math"
	"testing"

	"github.com/nathoo/arpgcore/engine/combat"
	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/types"
)

type zeroRand struct{}

func (zeroRand) RangeFloat(min, max float64) float64 { return 0 }

func ids() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("fx%d", n)
	}
}

func testPlayer() *types.PlayerState {
	return &types.PlayerState{
		Actor:      types.Actor{ID: "player", Health: 100, MaxHealth: 100},
		Stamina:    100,
		MaxStamina: 100,
		Mana:       50,
		MaxMana:    50,
		Skills: map[string]types.SkillSlot{
			"firebolt": {Level: 1},
			"quake":    {Level: 1},
			"warcry":   {Level: 1},
			"cleave":   {Level: 3},
		},
	}
}

var (
	firebolt = &types.SkillDef{ID: "firebolt", Kind: types.SkillProjectile, Cooldown: 1, Cost: 10, Resource: types.ResourceMana, Damage: 20, Range: 10}
	quake    = &types.SkillDef{ID: "quake", Kind: types.SkillArea, Cooldown: 5, Cost: 30, Resource: types.ResourceMana, Damage: 8, Range: 3, Radius: 2, Duration: 1, TickInterval: 0.5}
	warcry   = &types.SkillDef{ID: "warcry", Kind: types.SkillSelfBuff, Cooldown: 10, Cost: 20, Resource: types.ResourceStamina, Duration: 6, AttackBuff: 5, DefenseBuff: 3}
	cleave   = &types.SkillDef{ID: "cleave", Kind: types.SkillCone, Cooldown: 2, Cost: 15, Resource: types.ResourceStamina, Damage: 10, Range: 3, ConeAngle: geom.Deg(90)}
)

func TestCanUse_Reasons(t *testing.T) {
	tests := []struct {
		name   string
		def    *types.SkillDef
		mutate func(p *types.PlayerState)
		want   string
	}{
		{"ready", firebolt, func(p *types.PlayerState) {}, ""},
		{"unknown", nil, func(p *types.PlayerState) {}, types.ReasonUnknownSkill},
		{"not learned", firebolt, func(p *types.PlayerState) { delete(p.Skills, "firebolt") }, types.ReasonUnknownSkill},
		{"cooldown", firebolt, func(p *types.PlayerState) { p.Skills["firebolt"] = types.SkillSlot{Level: 1, Cooldown: 0.2} }, types.ReasonCooldown},
		{"no mana", firebolt, func(p *types.PlayerState) { p.Mana = 5 }, types.ReasonInsufficientMana},
		{"no stamina", warcry, func(p *types.PlayerState) { p.Stamina = 19 }, types.ReasonInsufficientStamina},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPlayer()
			tt.mutate(p)
			ok, reason := CanUse(tt.def, p)
			if reason != tt.want || ok != (tt.want == "") {
				t.Errorf("CanUse = (%v, %q), want reason %q", ok, reason, tt.want)
			}
		})
	}
}

func TestUse_Projectile(t *testing.T) {
	p := testPlayer()
	p.Facing = math.Pi / 2

	c, reason := Use(zeroRand{}, firebolt, p, ids())
	if reason != "" {
		t.Fatalf("rejected: %s", reason)
	}
	if c.Projectile == nil || c.Area != nil || c.Buff != nil || c.Cone != nil {
		t.Fatalf("expected only a projectile, got %+v", c)
	}
	pr := c.Projectile
	if math.Abs(pr.Velocity.X-ProjectileSpeed) > 1e-9 || math.Abs(pr.Velocity.Z) > 1e-9 {
		t.Errorf("velocity = %v, want +X at speed 20", pr.Velocity)
	}
	if pr.Lifetime != 0.5 {
		t.Errorf("lifetime = %v, want range/speed = 0.5", pr.Lifetime)
	}
	if pr.Damage != 20 || pr.Faction != types.FactionPlayer {
		t.Errorf("projectile = %+v", pr)
	}
	if p.Mana != 40 || p.Skills["firebolt"].Cooldown != 1 {
		t.Errorf("mana=%v cooldown=%v after cast", p.Mana, p.Skills["firebolt"].Cooldown)
	}
}

func TestUse_RejectedLeavesPlayerUntouched(t *testing.T) {
	p := testPlayer()
	p.Mana = 5
	if _, reason := Use(zeroRand{}, firebolt, p, ids()); reason != types.ReasonInsufficientMana {
		t.Fatalf("reason = %q", reason)
	}
	if p.Mana != 5 || p.Skills["firebolt"].Cooldown != 0 {
		t.Error("rejected cast spent resources")
	}
}

func TestUse_AreaBuffCone(t *testing.T) {
	p := testPlayer()

	c, _ := Use(zeroRand{}, quake, p, ids())
	if c.Area == nil || c.Area.Position != geom.V(0, 0, 3) || c.Area.Remaining != 1 {
		t.Errorf("area = %+v", c.Area)
	}

	c, _ = Use(zeroRand{}, warcry, p, ids())
	if c.Buff == nil || *c.Buff != (types.Buff{Attack: 5, Defense: 3, Remaining: 6}) {
		t.Errorf("buff = %+v", c.Buff)
	}
	if p.Stamina != 80 {
		t.Errorf("stamina = %v, want 80", p.Stamina)
	}

	c, _ = Use(zeroRand{}, cleave, p, ids())
	if c.Cone == nil || c.Cone.HalfArc != geom.Deg(45) {
		t.Fatalf("cone = %+v", c.Cone)
	}
	if c.Damage != 14 {
		t.Errorf("level 3 cone damage = %v, want 10*1.4 = 14", c.Damage)
	}
}

func TestDamage_LevelScaling(t *testing.T) {
	tests := []struct {
		level int
		want  float64
	}{
		{0, 20},
		{1, 20},
		{2, 24},
		{5, 36},
	}
	for _, tt := range tests {
		if got := Damage(zeroRand{}, firebolt, tt.level); got != tt.want {
			t.Errorf("level %d damage = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestTickCooldowns(t *testing.T) {
	p := testPlayer()
	p.Skills["quake"] = types.SkillSlot{Level: 1, Cooldown: 0.03}

	TickCooldowns(p, 0.05)
	if cd := p.Skills["quake"].Cooldown; cd != 0 {
		t.Errorf("cooldown = %v, want clamped to 0", cd)
	}
}

func enemy(id string, x, z float64) Body {
	return Body{ID: id, Faction: types.FactionEnemy, Target: combat.Target{Position: geom.V(x, 0, z), Radius: 0.5}}
}

func TestAdvance_ProjectileHitsFirstBodyAndIsRemoved(t *testing.T) {
	proj := NewProjectile("fx1", "player", types.FactionPlayer, "firebolt", geom.Vec3{}, 0, 20, 10, 0.3, 12, false)
	w := World{Projectiles: []types.Projectile{proj}}
	bodies := []Body{enemy("e1", 0, 0.8), enemy("e2", 0, 0.9)}

	next, impacts, expired := Advance(w, bodies, 0.05)
	if len(impacts) != 1 || impacts[0].Target != "e1" || impacts[0].Damage != 12 {
		t.Fatalf("impacts = %+v, want one hit on e1", impacts)
	}
	if len(next.Projectiles) != 0 || len(expired) != 0 {
		t.Errorf("projectile should be consumed, got %+v / %v", next.Projectiles, expired)
	}
}

func TestAdvance_ProjectileIgnoresOwnFaction(t *testing.T) {
	proj := NewProjectile("fx1", "player", types.FactionPlayer, "firebolt", geom.Vec3{}, 0, 20, 10, 0.3, 12, false)
	ally := Body{ID: "player", Faction: types.FactionPlayer, Target: combat.Target{Position: geom.V(0, 0, 0.5), Radius: 0.5}}

	next, impacts, _ := Advance(World{Projectiles: []types.Projectile{proj}}, []Body{ally}, 0.05)
	if len(impacts) != 0 || len(next.Projectiles) != 1 {
		t.Errorf("projectile hit its own faction: %+v", impacts)
	}
}

func TestAdvance_ProjectileDoesNotTunnel(t *testing.T) {
	proj := NewProjectile("fx1", "player", types.FactionPlayer, "firebolt", geom.Vec3{}, 0, 200, 100, 0.1, 5, false)
	_, impacts, _ := Advance(World{Projectiles: []types.Projectile{proj}}, []Body{enemy("e1", 0, 5)}, 0.05)
	if len(impacts) != 1 {
		t.Error("fast projectile passed through a target inside its path")
	}
}

func TestAdvance_ProjectileExpires(t *testing.T) {
	proj := NewProjectile("fx1", "player", types.FactionPlayer, "firebolt", geom.Vec3{}, 0, 20, 2, 0.3, 12, false)
	w := World{Projectiles: []types.Projectile{proj}}

	var expired []string
	for i := 0; i < 2; i++ {
		w, _, expired = Advance(w, nil, 0.05)
		if i == 0 && len(expired) != 0 {
			t.Fatal("projectile expired early")
		}
	}
	if len(expired) != 1 || expired[0] != "fx1" || len(w.Projectiles) != 0 {
		t.Errorf("expected fx1 to expire after 0.1s, got %v", expired)
	}
}

func TestAdvance_AreaTicksPeriodically(t *testing.T) {
	area := types.AreaEffect{ID: "fx1", Faction: types.FactionPlayer, Position: geom.Vec3{}, Radius: 2, Damage: 8, Remaining: 0.27, TickInterval: 0.1}
	w := World{Areas: []types.AreaEffect{area}}
	bodies := []Body{enemy("e1", 1, 0), enemy("far", 10, 0)}

	total := 0
	for i := 0; i < 10; i++ {
		var impacts []Impact
		w, impacts, _ = Advance(w, bodies, 0.05)
		for _, im := range impacts {
			if im.Target != "e1" {
				t.Fatalf("area hit out-of-range body %s", im.Target)
			}
			total++
		}
	}
	if total != 3 {
		t.Errorf("area ticked %d times over 0.27s at 0.1s interval, want 3", total)
	}
	if len(w.Areas) != 0 {
		t.Error("area should expire")
	}
}
