// Package loader loads Lua content (weapons, attack patterns, skills, enemy
// archetypes, player tuning, arena) into Go structs at startup. The Lua VM
// is discarded after loading, so no Lua runs during simulation.
package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/arpgcore/engine"
	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/types"
)

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or def if missing.
func getNumber(tbl *lua.LTable, key string, def float64) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// getDegrees reads an angle authored in degrees and returns radians.
func getDegrees(tbl *lua.LTable, key string, def float64) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return geom.Deg(float64(n))
	}
	return def
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns an array field of strings.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	out := make([]string, 0, arr.MaxN())
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

func getInts(tbl *lua.LTable, key string) []int {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	out := make([]int, 0, arr.MaxN())
	for i := 1; i <= arr.MaxN(); i++ {
		if n, ok := arr.RawGetInt(i).(lua.LNumber); ok {
			out = append(out, int(n))
		}
	}
	return out
}

// toVec reads {x=, y=, z=} or positional {x, y, z} starting at index first.
func toVec(tbl *lua.LTable, first int) geom.Vec3 {
	if tbl == nil {
		return geom.Vec3{}
	}
	pos := func(key string, i int) float64 {
		if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
			return float64(n)
		}
		if n, ok := tbl.RawGetInt(first + i).(lua.LNumber); ok {
			return float64(n)
		}
		return 0
	}
	return geom.V(pos("x", 0), pos("y", 1), pos("z", 2))
}

// compile converts all collected Lua data into a Defs struct. Sections the
// content leaves out fall back to the built-in tuning.
func compile(coll *collector) (*state.Defs, error) {
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs := &state.Defs{
		Game:       compileGame(coll.game),
		Physics:    compilePhysics(coll.physics),
		Player:     compilePlayer(coll.player),
		Arena:      compileArena(coll.arena),
		Weapons:    map[string]types.WeaponStats{},
		Patterns:   map[string]types.AttackPattern{},
		Skills:     map[string]types.SkillDef{},
		Archetypes: map[string]types.EnemyArchetype{},
	}

	for _, raw := range coll.weapons {
		if _, dup := defs.Weapons[raw.id]; dup {
			return nil, fmt.Errorf("duplicate weapon %q", raw.id)
		}
		defs.Weapons[raw.id] = compileWeapon(raw)
	}
	for _, raw := range coll.patterns {
		if _, dup := defs.Patterns[raw.id]; dup {
			return nil, fmt.Errorf("duplicate pattern %q", raw.id)
		}
		defs.Patterns[raw.id] = compilePattern(raw)
	}
	for _, raw := range coll.skills {
		if _, dup := defs.Skills[raw.id]; dup {
			return nil, fmt.Errorf("duplicate skill %q", raw.id)
		}
		defs.Skills[raw.id] = compileSkill(raw)
	}
	for _, raw := range coll.enemies {
		if _, dup := defs.Archetypes[raw.id]; dup {
			return nil, fmt.Errorf("duplicate enemy %q", raw.id)
		}
		defs.Archetypes[raw.id] = compileEnemy(raw)
	}
	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	g := types.GameDef{
		Title:   getString(tbl, "title"),
		Version: getString(tbl, "version"),
	}
	switch v := tbl.RawGetString("seed").(type) {
	case lua.LNumber:
		g.Seed = int64(v)
	case lua.LString:
		g.Seed = engine.SeedFromString(string(v))
	}
	return g
}

func compilePhysics(tbl *lua.LTable) types.PhysicsTuning {
	p := state.DefaultPhysics()
	if tbl == nil {
		return p
	}
	p.MaxStep = getNumber(tbl, "max_step", p.MaxStep)
	p.Gravity = getNumber(tbl, "gravity", p.Gravity)
	p.TerminalVelocity = getNumber(tbl, "terminal_velocity", p.TerminalVelocity)
	p.StepHeight = getNumber(tbl, "step_height", p.StepHeight)
	p.SlopeLimit = getDegrees(tbl, "slope_limit", p.SlopeLimit)
	p.SlideSpeed = getNumber(tbl, "slide_speed", p.SlideSpeed)
	p.Damping = getNumber(tbl, "damping", p.Damping)
	p.CapsuleHeight = getNumber(tbl, "capsule_height", p.CapsuleHeight)
	return p
}

func compilePlayer(tbl *lua.LTable) types.PlayerTuning {
	t := state.DefaultPlayer()
	if tbl == nil {
		return t
	}
	t.MaxHealth = getNumber(tbl, "health", t.MaxHealth)
	t.MaxStamina = getNumber(tbl, "stamina", t.MaxStamina)
	t.MaxMana = getNumber(tbl, "mana", t.MaxMana)
	t.Radius = getNumber(tbl, "radius", t.Radius)
	if w := getString(tbl, "weapon"); w != "" {
		t.Weapon = w
	}
	if getTable(tbl, "skills") != nil {
		t.Skills = getStrings(tbl, "skills")
	}

	t.MoveSpeed = getNumber(tbl, "move_speed", t.MoveSpeed)
	t.SprintMultiplier = getNumber(tbl, "sprint_multiplier", t.SprintMultiplier)
	t.SprintDrain = getNumber(tbl, "sprint_drain", t.SprintDrain)
	t.StaminaRegen = getNumber(tbl, "stamina_regen", t.StaminaRegen)
	t.ManaRegen = getNumber(tbl, "mana_regen", t.ManaRegen)

	t.DodgeStaminaCost = getNumber(tbl, "dodge_cost", t.DodgeStaminaCost)
	t.DodgeDuration = getNumber(tbl, "dodge_duration", t.DodgeDuration)
	t.DodgeCooldown = getNumber(tbl, "dodge_cooldown", t.DodgeCooldown)
	t.DodgeSpeed = getNumber(tbl, "dodge_speed", t.DodgeSpeed)

	t.LightStaminaCost = getNumber(tbl, "light_cost", t.LightStaminaCost)
	t.HeavyStaminaCost = getNumber(tbl, "heavy_cost", t.HeavyStaminaCost)
	t.LightCooldown = getNumber(tbl, "light_cooldown", t.LightCooldown)
	t.HeavyCooldown = getNumber(tbl, "heavy_cooldown", t.HeavyCooldown)
	t.LungeSpeed = getNumber(tbl, "lunge_speed", t.LungeSpeed)
	t.LungeDuration = getNumber(tbl, "lunge_duration", t.LungeDuration)
	t.ComboSteps = int(getNumber(tbl, "combo_steps", float64(t.ComboSteps)))
	t.ComboBonus = getNumber(tbl, "combo_bonus", t.ComboBonus)
	t.ComboResetTime = getNumber(tbl, "combo_reset", t.ComboResetTime)

	t.ParryWindowTicks = int(getNumber(tbl, "parry_ticks", float64(t.ParryWindowTicks)))
	t.BlockDrain = getNumber(tbl, "block_drain", t.BlockDrain)
	t.BlockReduction = getNumber(tbl, "block_reduction", t.BlockReduction)
	t.BlockStaminaRatio = getNumber(tbl, "block_stamina_ratio", t.BlockStaminaRatio)
	t.StaggerTime = getNumber(tbl, "stagger_time", t.StaggerTime)
	return t
}

func compileArena(tbl *lua.LTable) types.ArenaDef {
	a := types.ArenaDef{GroundNormal: geom.Up, WorldFloor: -10}
	if tbl == nil {
		return a
	}
	a.WorldFloor = getNumber(tbl, "floor", a.WorldFloor)
	a.PlayerStart = toVec(getTable(tbl, "start"), 1)
	if g := getTable(tbl, "ground"); g != nil {
		a.GroundHeight = getNumber(g, "height", 0)
		if n := getTable(g, "normal"); n != nil {
			a.GroundNormal = toVec(n, 1)
		}
	}

	if obs := getTable(tbl, "obstacles"); obs != nil {
		for i := 1; i <= obs.MaxN(); i++ {
			o, ok := obs.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			r := getNumber(o, "r", 0)
			if n, ok := o.RawGetInt(4).(lua.LNumber); ok {
				r = float64(n)
			}
			a.Obstacles = append(a.Obstacles, types.Sphere{Center: toVec(o, 1), Radius: r})
		}
	}

	// Spawns are {"grunt", x, y, z} or {archetype = "grunt", x = ..., ...}.
	if sp := getTable(tbl, "spawns"); sp != nil {
		for i := 1; i <= sp.MaxN(); i++ {
			s, ok := sp.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			arch := getString(s, "archetype")
			first := 1
			if name, ok := s.RawGetInt(1).(lua.LString); ok {
				arch = string(name)
				first = 2
			}
			a.Spawns = append(a.Spawns, types.SpawnDef{Archetype: arch, Position: toVec(s, first)})
		}
	}
	return a
}

func compileArc(tbl *lua.LTable) types.Arc {
	if tbl == nil {
		return types.Arc{}
	}
	return types.Arc{
		StartAngle: getDegrees(tbl, "from", 0),
		EndAngle:   getDegrees(tbl, "to", 0),
		Duration:   getNumber(tbl, "duration", 0),
		HitStart:   getNumber(tbl, "hit_start", 0),
		HitEnd:     getNumber(tbl, "hit_end", 1),
	}
}

func compileWeapon(raw rawDef) types.WeaponStats {
	tbl := raw.table
	return types.WeaponStats{
		ID:              raw.id,
		Name:            getString(tbl, "name"),
		BaseDamage:      getNumber(tbl, "damage", 0),
		HeavyMultiplier: getNumber(tbl, "heavy_multiplier", 2),
		Range:           getNumber(tbl, "range", 0),
		Speed:           getNumber(tbl, "speed", 1),
		CritChance:      getNumber(tbl, "crit_chance", 0),
		CritMultiplier:  getNumber(tbl, "crit_multiplier", 1.5),
		StaggerPower:    getNumber(tbl, "stagger_power", 0),
		Light:           compileArc(getTable(tbl, "light")),
		Heavy:           compileArc(getTable(tbl, "heavy")),
	}
}

func compilePattern(raw rawDef) types.AttackPattern {
	tbl := raw.table
	movement := types.Movement(getString(tbl, "movement"))
	if movement == "" {
		movement = types.MoveStationary
	}
	return types.AttackPattern{
		ID:              raw.id,
		Telegraph:       getNumber(tbl, "telegraph", 0),
		Windup:          getNumber(tbl, "windup", 0),
		Execute:         getNumber(tbl, "execute", 0),
		Recovery:        getNumber(tbl, "recovery", 0),
		Damage:          getNumber(tbl, "damage", 0),
		Range:           getNumber(tbl, "range", 0),
		Arc:             getDegrees(tbl, "arc", 0),
		AreaRadius:      getNumber(tbl, "area_radius", 0),
		Projectile:      getBool(tbl, "projectile", false),
		ProjectileSpeed: getNumber(tbl, "projectile_speed", 0),
		Movement:        movement,
		MoveSpeed:       getNumber(tbl, "move_speed", 0),
		Heavy:           getBool(tbl, "heavy", false),
	}
}

func compileSkill(raw rawDef) types.SkillDef {
	tbl := raw.table
	resource := types.Resource(getString(tbl, "resource"))
	if resource == "" {
		resource = types.ResourceMana
	}
	return types.SkillDef{
		ID:           raw.id,
		Name:         getString(tbl, "name"),
		Kind:         types.SkillKind(getString(tbl, "kind")),
		Cooldown:     getNumber(tbl, "cooldown", 0),
		Cost:         getNumber(tbl, "cost", 0),
		Resource:     resource,
		Damage:       getNumber(tbl, "damage", 0),
		Range:        getNumber(tbl, "range", 0),
		Radius:       getNumber(tbl, "radius", 0),
		Duration:     getNumber(tbl, "duration", 0),
		TickInterval: getNumber(tbl, "tick_interval", 0),
		ConeAngle:    getDegrees(tbl, "cone_angle", 0),
		AttackBuff:   getNumber(tbl, "attack_buff", 0),
		DefenseBuff:  getNumber(tbl, "defense_buff", 0),
	}
}

func compileEnemy(raw rawDef) types.EnemyArchetype {
	tbl := raw.table
	return types.EnemyArchetype{
		ID:              raw.id,
		Name:            getString(tbl, "name"),
		MaxHealth:       getNumber(tbl, "health", 0),
		Radius:          getNumber(tbl, "radius", 0.5),
		AggroRange:      getNumber(tbl, "aggro_range", 0),
		AttackRange:     getNumber(tbl, "attack_range", 0),
		MoveSpeed:       getNumber(tbl, "move_speed", 0),
		Patterns:        getStrings(tbl, "patterns"),
		PatternWeights:  getInts(tbl, "pattern_weights"),
		CooldownMin:     getNumber(tbl, "cooldown_min", 1),
		CooldownMax:     getNumber(tbl, "cooldown_max", 2),
		IdleMin:         getNumber(tbl, "idle_min", 1),
		IdleMax:         getNumber(tbl, "idle_max", 3),
		WanderRadius:    getNumber(tbl, "wander_radius", 0),
		WanderTime:      getNumber(tbl, "wander_time", 3),
		StaggerTime:     getNumber(tbl, "stagger_time", 0.5),
		StaggerRecovery: getNumber(tbl, "stagger_recovery", 0.3),
		RetreatDistance: getNumber(tbl, "retreat_distance", 0),
		SafeDistance:    getNumber(tbl, "safe_distance", 0),
		RetreatTime:     getNumber(tbl, "retreat_time", 0),
	}
}
