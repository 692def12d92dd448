package tui

import (
	"math"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/arpgcore/engine"
	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/types"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string { return ansi.ReplaceAllString(s, "") }

func testDefs() *state.Defs {
	defs := state.DefaultDefs()
	defs.Arena.Spawns = nil
	return defs
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	defs := testDefs()
	m := New(engine.New(defs), defs, Options{Dt: 1.0 / 60, SaveDir: t.TempDir()})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func ticks(m Model, n int) Model {
	for i := 0; i < n; i++ {
		next, _ := m.Update(tickMsg(time.Time{}))
		m = next.(Model)
	}
	return m
}

func logText(m Model) string {
	var b strings.Builder
	for _, l := range m.log {
		b.WriteString(l.text)
		b.WriteByte('\n')
	}
	return b.String()
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"t12    grunt-1 hits player with slash for 10.0", 24,
			"t12 grunt-1 hits player\nwith slash for 10.0"},
		{"", 80, ""},
		{"a b c d e", 3, "a b\nc d\ne"},
		{"剣剣 剣剣", 4, "剣剣\n剣剣"},
	}
	for _, tt := range tests {
		if got := wordWrap(tt.text, tt.width); got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHistory(t *testing.T) {
	h := newHistory(2)
	if _, ok := h.older(); ok {
		t.Error("expected nothing on empty history")
	}

	h.push("forward x10")
	h.push("forward x10") // repeat skipped
	h.push("/state")
	h.push("skill firebolt") // evicts the oldest

	want := []string{"skill firebolt", "/state", "/state"}
	for i, w := range want {
		if got, ok := h.older(); !ok || got != w {
			t.Errorf("older #%d = %q, want %q", i, got, w)
		}
	}
	if got, ok := h.newer(); !ok || got != "skill firebolt" {
		t.Errorf("newer = %q, want skill firebolt", got)
	}
	if _, ok := h.newer(); ok {
		t.Error("expected a fresh line past the newest entry")
	}
}

func TestFacingGlyph(t *testing.T) {
	tests := []struct {
		yaw  float64
		want rune
	}{
		{0, '↑'},
		{math.Pi / 2, '→'},
		{-math.Pi / 2, '←'},
		{math.Pi, '↓'},
		{geom.Deg(40), '↗'},
	}
	for _, tt := range tests {
		if got := facingGlyph(tt.yaw); got != tt.want {
			t.Errorf("facingGlyph(%v) = %c, want %c", tt.yaw, got, tt.want)
		}
	}
}

func TestRenderArena(t *testing.T) {
	defs := testDefs()
	defs.Arena.Obstacles = []types.Sphere{{Center: geom.V(-4, 0, 0), Radius: 0.4}}
	s := state.NewState(defs)
	s.Enemies = append(s.Enemies,
		state.NewEnemy(defs.Archetype("grunt"), "grunt-1", geom.V(0, 0, 3)),
		state.NewEnemy(defs.Archetype("archer"), "archer-2", geom.V(2, 0, 0)),
	)
	s.Enemies[1].AI = types.AITelegraph
	s.Projectiles = append(s.Projectiles, types.Projectile{ID: "arrow-3", Position: geom.V(0, 0, -2)})

	rows := strings.Split(plain(renderArena(s, defs, 21, 11)), "\n")
	if len(rows) != 11 {
		t.Fatalf("rows = %d, want 11", len(rows))
	}
	at := func(x, y int) rune { return []rune(rows[y])[x] }

	if got := at(10, 5); got != '@' {
		t.Errorf("centre = %c, want @", got)
	}
	if got := at(10, 4); got != '↑' {
		t.Errorf("facing marker = %c, want ↑", got)
	}
	if got := at(10, 2); got != 'g' {
		t.Errorf("grunt cell = %c, want g", got)
	}
	if got := at(14, 5); got != 'A' {
		t.Errorf("telegraphing archer = %c, want A", got)
	}
	if got := at(10, 7); got != '*' {
		t.Errorf("projectile cell = %c, want *", got)
	}
	if got := at(2, 5); got != '#' {
		t.Errorf("obstacle cell = %c, want #", got)
	}
	if got := at(0, 0); got != '·' {
		t.Errorf("floor cell = %c, want ·", got)
	}

	if renderArena(s, defs, 2, 2) != "" {
		t.Error("expected nothing for a tiny panel")
	}
}

func TestModel_TickSteps(t *testing.T) {
	m := newTestModel(t)
	m = ticks(m, 5)
	if got := m.engine.State.Tick; got != 5 {
		t.Errorf("tick = %d, want 5", got)
	}
}

func TestModel_PauseAndSingleStep(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("p"))
	m = ticks(m, 5)
	if m.engine.State.Tick != 0 {
		t.Fatal("paused model should not step on ticks")
	}
	m = press(t, m, runes("."), runes("."))
	if m.engine.State.Tick != 2 {
		t.Errorf("tick = %d after two single steps, want 2", m.engine.State.Tick)
	}
	if !strings.Contains(plain(m.renderModeLine()), "PAUSED") {
		t.Error("mode line should show the pause")
	}
}

func TestModel_HeldKeyDecays(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("w"))
	m = ticks(m, holdTicks)
	moved := m.engine.State.Player.Physics.Position.Z
	if moved <= 0 {
		t.Fatalf("expected forward movement, z = %v", moved)
	}
	m = ticks(m, 1)
	if m.held[holdForward] != 0 {
		t.Error("hold should have expired")
	}
	if in := m.intent(); in.Forward {
		t.Error("expired hold should not move the player")
	}
}

func TestModel_OneShotActions(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("1"))
	if m.pending.Skill != m.defs.Player.Skills[0] {
		t.Fatalf("pending skill = %q", m.pending.Skill)
	}
	m = ticks(m, 1)
	if m.pending != (types.Intent{}) {
		t.Error("one-shot input should clear after a tick")
	}
	if !strings.Contains(logText(m), "player casts "+m.defs.Player.Skills[0]) {
		t.Errorf("expected cast in log:\n%s", logText(m))
	}

	m = press(t, m, runes("e"))
	if math.Abs(m.yaw-geom.Deg(yawStep)) > 1e-9 {
		t.Errorf("yaw = %v after one turn", m.yaw)
	}
}

func TestModel_CommandMode(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.commandMode {
		t.Fatal("tab should open the command line")
	}
	m = press(t, m, runes("w"))
	if m.held[holdForward] != 0 {
		t.Error("keys in command mode go to the input, not the player")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.commandMode {
		t.Error("esc should return to play")
	}
}

func TestModel_ScriptQueue(t *testing.T) {
	m := newTestModel(t)
	if m.submit("forward x3") {
		t.Fatal("intent line must not quit")
	}
	if len(m.queue) != 1 {
		t.Fatalf("queue = %d lines", len(m.queue))
	}
	m = ticks(m, 3)
	if len(m.queue) != 0 {
		t.Error("queue should drain after its repeat count")
	}
	if m.engine.State.Player.Physics.Position.Z <= 0 {
		t.Error("queued forward should move the player")
	}

	m.submit("g")
	if len(m.queue) != 1 {
		t.Error("again should re-queue the last line")
	}

	m.submit("jump")
	if !strings.Contains(logText(m), "Parse error") {
		t.Error("expected a parse error in the log")
	}
}

func TestModel_MetaCommands(t *testing.T) {
	m := newTestModel(t)

	m.submit("/spawn grunt 0 5")
	if len(m.engine.State.Enemies) != 1 {
		t.Fatal("spawn should go through the shared runner")
	}
	if !strings.Contains(logText(m), "[Spawned grunt-1 at (0.0, 0.0, 5.0).]") {
		t.Errorf("expected runner output in log:\n%s", logText(m))
	}

	m.submit("/state")
	if !strings.Contains(logText(m), "grunt-1") || !strings.Contains(logText(m), "STATE") {
		t.Error("expected the state table")
	}

	m.submit("/trace")
	if !m.trace {
		t.Error("/trace should enable state change lines")
	}
	m = ticks(m, 1)
	if !strings.Contains(logText(m), "idle->chase") {
		t.Error("expected a state change with trace on")
	}

	m.submit("/pause")
	if !m.paused {
		t.Error("/pause should pause")
	}

	m.submit("/clear")
	if len(m.log) != 0 {
		t.Error("/clear should empty the log")
	}

	if !m.submit("/quit") {
		t.Error("/quit should end the program")
	}
}

func TestModel_View(t *testing.T) {
	defs := testDefs()
	m := New(engine.New(defs), defs, Options{})
	if m.View() != "Loading..." {
		t.Error("expected loading screen before the first resize")
	}

	m = newTestModel(t)
	out := plain(m.View())
	for _, want := range []string{"@", "HP", "ST", "MP", "T:0", "play (tab"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
