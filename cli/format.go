package cli

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/types"
)

// FormatEvent renders one event as a single log line.
func FormatEvent(ev types.Event) string {
	var msg string
	switch ev.Type {
	case types.EventHit:
		msg = fmt.Sprintf("%s hits %s with %s for %.1f", ev.Source, ev.Target, ev.Detail, ev.Amount)
		if ev.Critical {
			msg += " (critical)"
		}
	case types.EventParried:
		msg = fmt.Sprintf("%s parries %s's %s", ev.Source, ev.Target, ev.Detail)
	case types.EventBlocked:
		msg = fmt.Sprintf("%s blocks %s's %s, takes %.1f", ev.Target, ev.Source, ev.Detail, ev.Amount)
	case types.EventStagger:
		msg = fmt.Sprintf("%s is staggered", ev.Target)
	case types.EventDefeated:
		msg = fmt.Sprintf("%s is defeated", ev.Target)
		if ev.Source != "" {
			msg += " by " + ev.Source
		}
	case types.EventSkillCast:
		msg = fmt.Sprintf("%s casts %s", ev.Source, ev.Detail)
	case types.EventActionRejected:
		msg = fmt.Sprintf("%s rejected (%s)", ev.Source, ev.Detail)
	case types.EventStateChange:
		msg = fmt.Sprintf("%s %s", ev.Source, ev.Detail)
	case types.EventSpawn:
		msg = fmt.Sprintf("%s spawns (%s)", ev.Target, ev.Detail)
	case types.EventProjectileExpired:
		msg = fmt.Sprintf("%s expires", ev.Source)
	case types.EventRespawn:
		msg = fmt.Sprintf("%s respawns", ev.Target)
	default:
		msg = fmt.Sprintf("%s %s %s %s", ev.Type, ev.Source, ev.Target, ev.Detail)
	}
	return fmt.Sprintf("t%-5d %s", ev.Tick, msg)
}

// FormatVec renders a position with one decimal.
func FormatVec(v geom.Vec3) string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", v.X, v.Y, v.Z)
}

// StateTable renders the player and every enemy as an aligned table.
func StateTable(s *types.State) []string {
	rows := [][]string{{"ID", "STATE", "HP", "POSITION"}}

	p := &s.Player
	pstate := "alive"
	switch {
	case p.Defeated:
		pstate = "defeated"
	case p.Flags.Staggered:
		pstate = "staggered"
	case p.Flags.Dodging:
		pstate = "dodging"
	case p.Flags.Attacking:
		pstate = fmt.Sprintf("attacking %.2fs", p.AttackTimer)
	case p.Flags.Blocking:
		pstate = "blocking"
	}
	rows = append(rows, []string{
		p.ID, pstate,
		fmt.Sprintf("%.0f/%.0f", p.Health, p.MaxHealth),
		FormatVec(p.Physics.Position),
	})
	for _, en := range s.Enemies {
		st := en.AI.String()
		if en.Defeated {
			st = "defeated"
		}
		rows = append(rows, []string{
			en.ID, st,
			fmt.Sprintf("%.0f/%.0f", en.Health, en.MaxHealth),
			FormatVec(en.Physics.Position),
		})
	}
	return alignRows(rows)
}

// alignRows pads each column to its widest cell in display columns.
func alignRows(rows [][]string) []string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		out = append(out, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
	return out
}
