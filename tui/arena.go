package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/types"
)

// cellsPerUnit is the horizontal zoom: two terminal columns per world unit
// keeps the map roughly square in a typical font.
const cellsPerUnit = 2

// glyph is one map cell before styling.
type glyph struct {
	r     rune
	style lipgloss.Style
}

// arenaGrid is a top-down view centred on the player. +X is right and +Z
// is up, matching the player's camera-relative controls at yaw 0.
type arenaGrid struct {
	w, h   int
	center geom.Vec3
	cells  [][]glyph
}

func newArenaGrid(w, h int, center geom.Vec3) *arenaGrid {
	g := &arenaGrid{w: w, h: h, center: center, cells: make([][]glyph, h)}
	for y := range g.cells {
		row := make([]glyph, w)
		for x := range row {
			row[x] = glyph{'·', styleFloor}
		}
		g.cells[y] = row
	}
	return g
}

// cell converts a world position to grid coordinates.
func (g *arenaGrid) cell(p geom.Vec3) (int, int, bool) {
	x := g.w/2 + int(math.Round((p.X-g.center.X)*cellsPerUnit))
	y := g.h/2 - int(math.Round(p.Z-g.center.Z))
	return x, y, x >= 0 && x < g.w && y >= 0 && y < g.h
}

func (g *arenaGrid) set(p geom.Vec3, gl glyph) {
	if x, y, ok := g.cell(p); ok {
		g.cells[y][x] = gl
	}
}

// disc fills every cell whose centre lies within radius of c.
func (g *arenaGrid) disc(c geom.Vec3, radius float64, gl glyph) {
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			wp := geom.V(
				g.center.X+float64(x-g.w/2)/cellsPerUnit,
				c.Y,
				g.center.Z+float64(g.h/2-y),
			)
			if geom.HorizontalDist(wp, c) <= radius {
				g.cells[y][x] = gl
			}
		}
	}
}

func (g *arenaGrid) String() string {
	var b strings.Builder
	for y, row := range g.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			b.WriteString(c.style.Render(string(c.r)))
		}
	}
	return b.String()
}

// enemyGlyph picks the letter for an enemy: the archetype initial,
// capitalised while it is winding up or swinging.
func enemyGlyph(en *types.EnemyState) glyph {
	r := '?'
	if en.Archetype != "" {
		r = []rune(en.Archetype)[0]
	}
	switch {
	case en.Defeated:
		return glyph{'x', styleCorpse}
	case en.AI == types.AITelegraph || en.AI == types.AIAttack:
		return glyph{toUpper(r), styleThreat}
	default:
		return glyph{r, styleEnemy}
	}
}

func toUpper(r rune) rune {
	return []rune(strings.ToUpper(string(r)))[0]
}

// facingGlyph is drawn next to the player to show which way they face.
func facingGlyph(yaw float64) rune {
	arrows := []rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}
	i := int(math.Round(geom.WrapAngle(yaw)/(math.Pi/4))) % 8
	if i < 0 {
		i += 8
	}
	return arrows[i]
}

// renderArena draws the arena layers in order: obstacles, area effects,
// corpses, live enemies, projectiles, then the player on top.
func renderArena(s *types.State, defs *state.Defs, w, h int) string {
	if w < 3 || h < 3 {
		return ""
	}
	p := &s.Player
	g := newArenaGrid(w, h, p.Physics.Position)

	for _, o := range defs.Arena.Obstacles {
		g.disc(o.Center, o.Radius, glyph{'#', styleObstacle})
	}
	for _, a := range s.Areas {
		g.disc(a.Position, a.Radius, glyph{'░', styleArea})
	}
	for i := range s.Enemies {
		if s.Enemies[i].Defeated {
			g.set(s.Enemies[i].Physics.Position, enemyGlyph(&s.Enemies[i]))
		}
	}
	for i := range s.Enemies {
		if !s.Enemies[i].Defeated {
			g.set(s.Enemies[i].Physics.Position, enemyGlyph(&s.Enemies[i]))
		}
	}
	for _, pr := range s.Projectiles {
		g.set(pr.Position, glyph{'*', styleProjectile})
	}

	pg := glyph{'@', stylePlayer}
	if p.Defeated {
		pg = glyph{'X', styleDefeat}
	}
	g.set(p.Physics.Position, pg)
	g.set(p.Physics.Position.Add(geom.Forward(p.Facing).Scale(1)), glyph{facingGlyph(p.Facing), stylePlayer})
	return g.String()
}
