package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/arpgcore/types"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleMapBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	stylePlayer     = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	styleEnemy      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	styleThreat     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleCorpse     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleProjectile = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleArea       = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	styleObstacle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleFloor      = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleDefense = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))

	styleDefeat = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleRejected = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	stylePaused = lipgloss.NewStyle().
			Background(lipgloss.Color("178")).
			Foreground(lipgloss.Color("16")).
			Bold(true)
)

// lineKind identifies the type of a log line for styling.
type lineKind int

const (
	kindPlain lineKind = iota
	kindDamage
	kindDefense
	kindDefeat
	kindRejected
	kindSystem
	kindInput
	kindTrace
)

// eventKind maps an event to the style of its log line.
func eventKind(ev types.Event) lineKind {
	switch ev.Type {
	case types.EventHit, types.EventStagger:
		return kindDamage
	case types.EventParried, types.EventBlocked:
		return kindDefense
	case types.EventDefeated:
		return kindDefeat
	case types.EventActionRejected:
		return kindRejected
	case types.EventStateChange:
		return kindTrace
	default:
		return kindPlain
	}
}

// classifyLine guesses the kind of a line of command output.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "> "):
		return kindInput
	default:
		return kindPlain
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindDamage:
		return styleDamage.Render(line)
	case kindDefense:
		return styleDefense.Render(line)
	case kindDefeat:
		return styleDefeat.Render(line)
	case kindRejected:
		return styleRejected.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindInput:
		return stylePlayerInput.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return line
	}
}
