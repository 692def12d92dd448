package tui

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/nathoo/arpgcore/cli"
	"github.com/nathoo/arpgcore/engine"
	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/engine/parser"
	"github.com/nathoo/arpgcore/engine/save"
	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/types"
)

// maxLogLines bounds the event log kept for the viewport.
const maxLogLines = 500

// held movement and block keys, indexed into Model.held.
const (
	holdForward = iota
	holdBack
	holdLeft
	holdRight
	holdBlock
	numHolds
)

// logLine stores an unstyled log line with its classification, so the log
// can be re-wrapped when the terminal is resized.
type logLine struct {
	text string
	kind lineKind
}

// Options configures the viewer.
type Options struct {
	Dt      float64 // seconds per tick
	SaveDir string
	Format  save.Format
}

// Model is the Bubble Tea model for the live viewer.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs
	runner *cli.CLI      // executes shared meta commands
	out    *bytes.Buffer // runner output, drained after each command
	keys   keyMap

	viewport viewport.Model
	input    textinput.Model
	history  *history
	log      []logLine

	dt       float64
	interval time.Duration

	held     [numHolds]int
	pending  types.Intent // one-shot actions for the next tick
	sprint   bool
	yaw      float64
	queue    []parser.Line
	lastLine *parser.Line

	width, height int
	mapW, mapH    int
	ready         bool
	paused        bool
	commandMode   bool
	trace         bool
	quitting      bool
}

// tickMsg drives the fixed-step loop.
type tickMsg time.Time

// New creates a viewer model wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs, opts Options) Model {
	if opts.Dt <= 0 {
		opts.Dt = 1.0 / 60
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt
	ti.Placeholder = "forward x30, skill firebolt, /help"

	var out bytes.Buffer
	runner := cli.New(eng, defs)
	runner.Out = &out
	runner.Dt = opts.Dt
	if opts.SaveDir != "" {
		runner.SaveDir = opts.SaveDir
	}
	if opts.Format != "" {
		runner.Format = opts.Format
	}

	m := Model{
		engine:   eng,
		defs:     defs,
		runner:   runner,
		out:      &out,
		keys:     defaultKeyMap(),
		input:    ti,
		history:  newHistory(100),
		dt:       opts.Dt,
		interval: time.Duration(opts.Dt * float64(time.Second)),
	}
	m.appendLines(kindSystem, fmt.Sprintf("[%s %s (seed %d). Press ? for keys.]",
		defs.Game.Title, defs.Game.Version, eng.State.Seed))
	return m
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs, opts Options) error {
	p := tea.NewProgram(New(eng, defs, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages (ticks, key presses, window resize).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		if !m.paused {
			m.advance()
		}
		return m, m.tick()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.commandMode {
			return m.updateCommand(msg)
		}
		return m.updatePlay(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// resize lays out the arena panel on the left and the log on the right.
func (m *Model) resize(w, h int) {
	m.width, m.height = w, h

	bodyH := max(h-3, 3) // status bar, mode line, input
	mapOuterW := w * 3 / 5
	m.mapW = max(mapOuterW-2, 3)
	m.mapH = max(bodyH-2, 3)
	logW := max(w-mapOuterW-1, 10)

	if !m.ready {
		m.viewport = viewport.New(logW, bodyH)
		m.viewport.KeyMap = viewportKeyMap()
		m.ready = true
	} else {
		m.viewport.Width = logW
		m.viewport.Height = bodyH
	}
	m.input.Width = max(w-4, 10)
	m.refreshViewport()
}

func (m Model) updatePlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Forward):
		m.held[holdForward] = holdTicks
		m.held[holdBack] = 0
	case key.Matches(msg, k.Back):
		m.held[holdBack] = holdTicks
		m.held[holdForward] = 0
	case key.Matches(msg, k.Left):
		m.held[holdLeft] = holdTicks
		m.held[holdRight] = 0
	case key.Matches(msg, k.Right):
		m.held[holdRight] = holdTicks
		m.held[holdLeft] = 0
	case key.Matches(msg, k.Block):
		m.held[holdBlock] = holdTicks
	case key.Matches(msg, k.Sprint):
		m.sprint = !m.sprint
	case key.Matches(msg, k.Dodge):
		m.pending.Dodge = true
	case key.Matches(msg, k.Light):
		m.pending.LightAttack = true
	case key.Matches(msg, k.Heavy):
		m.pending.HeavyAttack = true
	case key.Matches(msg, k.TurnLeft):
		m.yaw = geom.WrapAngle(m.yaw - geom.Deg(yawStep))
	case key.Matches(msg, k.TurnRight):
		m.yaw = geom.WrapAngle(m.yaw + geom.Deg(yawStep))
	case key.Matches(msg, k.Pause):
		m.paused = !m.paused
	case key.Matches(msg, k.Step):
		if m.paused {
			m.advance()
		}
	case key.Matches(msg, k.Help):
		m.appendLines(kindSystem, k.helpLines()...)
	case key.Matches(msg, k.Command):
		m.commandMode = true
		if msg.String() == "/" {
			m.input.SetValue("/")
			m.input.CursorEnd()
		}
		return m, m.input.Focus()
	case msg.String() == "pgup" || msg.String() == "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	default:
		for i, b := range k.Skills {
			if key.Matches(msg, b) && i < len(m.defs.Player.Skills) {
				m.pending.Skill = m.defs.Player.Skills[i]
			}
		}
	}
	return m, nil
}

func (m Model) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commandMode = false
		m.input.Blur()
		return m, nil

	case "enter":
		line := strings.TrimSpace(m.input.Value())
		m.input.SetValue("")
		if m.submit(line) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case "up":
		if prev, ok := m.history.older(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}
		return m, nil

	case "down":
		next, _ := m.history.newer()
		m.input.SetValue(next)
		m.input.CursorEnd()
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs one command line. Intent lines are queued and play out over
// the following ticks. Returns true on /quit.
func (m *Model) submit(line string) bool {
	if line == "" {
		return false
	}
	m.history.push(line)
	m.appendLines(kindInput, "> "+line)

	lower := strings.ToLower(line)
	if lower == "again" || lower == "g" {
		if m.lastLine == nil {
			m.appendLines(kindSystem, "[Nothing to repeat.]")
			return false
		}
		m.queue = append(m.queue, *m.lastLine)
		return false
	}

	parsed, err := parser.Parse(line)
	if err != nil {
		m.appendLines(kindSystem, fmt.Sprintf("[Parse error: %v]", err))
		return false
	}
	if parsed.Meta != "" {
		return m.meta(parsed.Meta)
	}
	if !parsed.Blank() {
		m.lastLine = &parsed
		m.queue = append(m.queue, parsed)
	}
	return false
}

// meta handles viewer-only commands and hands the rest to the shared runner.
func (m *Model) meta(input string) bool {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/pause":
		m.paused = !m.paused
		return false
	case "/keys":
		m.appendLines(kindSystem, m.keys.helpLines()...)
		return false
	case "/trace":
		m.trace = !m.trace
	case "/clear":
		m.log = nil
		m.refreshViewport()
		return false
	}

	quit := m.runner.Meta(input)
	m.drainRunner()
	return quit
}

// drainRunner moves the runner's printed output into the log.
func (m *Model) drainRunner() {
	text := strings.TrimRight(m.out.String(), "\n")
	m.out.Reset()
	if text == "" {
		return
	}
	for _, l := range strings.Split(text, "\n") {
		m.appendLines(classifyLine(l), l)
	}
}

// intent builds this tick's input from held keys, one-shot presses, and
// the head of the script queue.
func (m *Model) intent() types.Intent {
	in := m.pending
	in.CameraYaw = m.yaw
	in.Sprint = m.sprint
	in.Forward = m.held[holdForward] > 0
	in.Back = m.held[holdBack] > 0
	in.Left = m.held[holdLeft] > 0
	in.Right = m.held[holdRight] > 0
	in.Block = m.held[holdBlock] > 0

	if len(m.queue) > 0 {
		q := &m.queue[0]
		s := q.Intent
		in.Forward = in.Forward || s.Forward
		in.Back = in.Back || s.Back
		in.Left = in.Left || s.Left
		in.Right = in.Right || s.Right
		in.Sprint = in.Sprint || s.Sprint
		in.Dodge = in.Dodge || s.Dodge
		in.LightAttack = in.LightAttack || s.LightAttack
		in.HeavyAttack = in.HeavyAttack || s.HeavyAttack
		in.Block = in.Block || s.Block
		if s.Skill != "" {
			in.Skill = s.Skill
		}
		if s.CameraYaw != 0 {
			m.yaw = s.CameraYaw
			in.CameraYaw = m.yaw
		}
		in.PointerDX += s.PointerDX
		in.PointerDY += s.PointerDY

		q.Repeat--
		if q.Repeat <= 0 {
			m.queue = m.queue[1:]
		}
	}
	return in
}

// advance steps the engine once and logs the result.
func (m *Model) advance() {
	res := m.engine.Step(m.intent(), m.dt)
	m.pending = types.Intent{}
	for i := range m.held {
		if m.held[i] > 0 {
			m.held[i]--
		}
	}

	for _, ev := range res.Events {
		if ev.Type == types.EventStateChange && !m.trace {
			continue
		}
		m.appendLines(eventKind(ev), cli.FormatEvent(ev))
	}
}

// appendLines adds lines to the log and refreshes the viewport.
func (m *Model) appendLines(kind lineKind, lines ...string) {
	for _, l := range lines {
		m.log = append(m.log, logLine{text: l, kind: kind})
	}
	if over := len(m.log) - maxLogLines; over > 0 {
		m.log = m.log[over:]
	}
	m.refreshViewport()
}

// refreshViewport re-wraps and re-styles the log at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(m.viewport.Width, 10)

	styled := make([]string, 0, len(m.log))
	for _, l := range m.log {
		styled = append(styled, renderLineKind(wordWrap(l.text, width), l.kind))
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within width display columns, breaking at
// word boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		wLen := runewidth.StringWidth(word)
		switch {
		case i == 0:
			lineLen = wLen
		case lineLen+1+wLen > width:
			b.WriteByte('\n')
			lineLen = wLen
		default:
			b.WriteByte(' ')
			lineLen += 1 + wLen
		}
		b.WriteString(word)
	}
	return b.String()
}

// View renders the arena and log side by side above the status bar, the
// mode line, and the command line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	arena := styleMapBorder.Render(renderArena(m.engine.State, m.defs, m.mapW, m.mapH))
	body := lipgloss.JoinHorizontal(lipgloss.Top, arena, " ", m.viewport.View())
	return body + "\n" + m.renderStatusBar() + "\n" + m.renderModeLine() + "\n" + m.input.View()
}
