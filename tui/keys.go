package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
)

// holdTicks is how long a movement or block key counts as held after a
// press. Terminals report presses and auto-repeat but no releases, so a held
// key is one that keeps repeating within this window.
const holdTicks = 8

// yawStep is the camera rotation per turn key press, in degrees.
const yawStep = 15

// keyMap holds the play-mode bindings.
type keyMap struct {
	Forward   key.Binding
	Back      key.Binding
	Left      key.Binding
	Right     key.Binding
	Sprint    key.Binding
	Dodge     key.Binding
	Light     key.Binding
	Heavy     key.Binding
	Block     key.Binding
	TurnLeft  key.Binding
	TurnRight key.Binding
	Skills    []key.Binding
	Pause     key.Binding
	Step      key.Binding
	Command   key.Binding
	Play      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	k := keyMap{
		Forward:   key.NewBinding(key.WithKeys("w", "up"), key.WithHelp("w/↑", "forward")),
		Back:      key.NewBinding(key.WithKeys("s", "down"), key.WithHelp("s/↓", "back")),
		Left:      key.NewBinding(key.WithKeys("a", "left"), key.WithHelp("a/←", "strafe left")),
		Right:     key.NewBinding(key.WithKeys("d", "right"), key.WithHelp("d/→", "strafe right")),
		Sprint:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "toggle sprint")),
		Dodge:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "dodge")),
		Light:     key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "light attack")),
		Heavy:     key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "heavy attack")),
		Block:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "block (tap to parry)")),
		TurnLeft:  key.NewBinding(key.WithKeys("q"), key.WithHelp("q", fmt.Sprintf("turn camera -%d°", yawStep))),
		TurnRight: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", fmt.Sprintf("turn camera +%d°", yawStep))),
		Pause:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Step:      key.NewBinding(key.WithKeys("."), key.WithHelp(".", "single tick while paused")),
		Command:   key.NewBinding(key.WithKeys("tab", "/", ":"), key.WithHelp("tab", "command line")),
		Play:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to play")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "keys")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
	for i := 1; i <= 4; i++ {
		n := fmt.Sprint(i)
		k.Skills = append(k.Skills, key.NewBinding(key.WithKeys(n), key.WithHelp(n, "skill "+n)))
	}
	return k
}

// helpLines describes every binding, one per line.
func (k keyMap) helpLines() []string {
	all := []key.Binding{
		k.Forward, k.Back, k.Left, k.Right, k.Sprint, k.Dodge,
		k.Light, k.Heavy, k.Block, k.TurnLeft, k.TurnRight,
	}
	all = append(all, k.Skills...)
	all = append(all, k.Pause, k.Step, k.Command, k.Play, k.Help, k.Quit)

	lines := []string{"Keys:"}
	for _, b := range all {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("  %-8s %s", h.Key, h.Desc))
	}
	lines = append(lines, "  pgup/pgdn scroll the log")
	return lines
}

// viewportKeyMap leaves only paging enabled; every other key drives play.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
