package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/arpgcore/engine/geom"
)

// meter renders "HP 80/100" as a short bar when there is room.
func meter(label string, cur, max float64, cells int) string {
	if max <= 0 {
		return fmt.Sprintf("%s -", label)
	}
	if cells <= 0 {
		return fmt.Sprintf("%s %.0f/%.0f", label, cur, max)
	}
	filled := int(geom.Clamp(cur/max, 0, 1)*float64(cells) + 0.5)
	return fmt.Sprintf("%s %s%s %.0f", label,
		strings.Repeat("█", filled), strings.Repeat("░", cells-filled), cur)
}

// skillSummary lists the player's skills with remaining cooldowns.
func (m Model) skillSummary() string {
	p := &m.engine.State.Player
	parts := make([]string, 0, len(m.defs.Player.Skills))
	for i, id := range m.defs.Player.Skills {
		slot, ok := p.Skills[id]
		if !ok {
			continue
		}
		label := fmt.Sprintf("%d:%s", i+1, id)
		if slot.Cooldown > 0 {
			label += fmt.Sprintf("(%.1f)", slot.Cooldown)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}

// renderStatusBar produces a full-width inverted status line with the
// player's resources on the left and the clock on the right.
func (m Model) renderStatusBar() string {
	s := m.engine.State
	p := &s.Player

	cells := 0
	if m.width >= 100 {
		cells = 8
	}
	left := " " + strings.Join([]string{
		meter("HP", p.Health, p.MaxHealth, cells),
		meter("ST", p.Stamina, p.MaxStamina, cells),
		meter("MP", p.Mana, p.MaxMana, cells),
	}, " | ")
	if p.Combo > 0 {
		left += fmt.Sprintf(" | combo %d", p.Combo)
	}
	if p.Buff.Remaining > 0 {
		left += fmt.Sprintf(" | buff %.1fs", p.Buff.Remaining)
	}

	right := fmt.Sprintf("T:%d %.1fs ", s.Tick, s.Time)
	if skills := m.skillSummary(); skills != "" {
		candidate := skills + " | " + right
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// renderModeLine shows pause and input mode hints above the command line.
func (m Model) renderModeLine() string {
	var tags []string
	if m.paused {
		tags = append(tags, stylePaused.Render(" PAUSED "))
	}
	if m.commandMode {
		tags = append(tags, styleSystem.Render("command (esc to play)"))
	} else {
		tags = append(tags, styleSystem.Render("play (tab for commands, ? for keys)"))
	}
	if len(m.queue) > 0 {
		tags = append(tags, styleSystem.Render(fmt.Sprintf("script %d line(s)", len(m.queue))))
	}
	return strings.Join(tags, "  ")
}
