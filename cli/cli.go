// Package cli runs the simulation headless from an intent script or an
// interactive line-by-line session, and dispatches meta commands.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nathoo/arpgcore/engine"
	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/engine/parser"
	"github.com/nathoo/arpgcore/engine/save"
	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/types"
)

// CLI feeds parsed intent lines to the engine and prints the events.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Format    save.Format
	Dt        float64
	Trace     bool // also print enemy state changes and a player summary
	EchoInput bool // echo each input line after the prompt (for script playback)
	Strict    bool // stop at the first bad line instead of reporting it
	lastLine  *parser.Line
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Engine:  eng,
		Defs:    defs,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".arpgcore", "snapshots"),
		Format:  save.FormatJSON,
		Dt:      1.0 / 60,
	}
}

// Run reads lines until EOF or /quit. Each line is either a meta command or
// an intent held for one or more ticks.
func (c *CLI) Run() error {
	c.printSystem(fmt.Sprintf("%s %s (seed %d)", c.Defs.Game.Title, c.Defs.Game.Version, c.Engine.State.Seed))

	scanner := bufio.NewScanner(c.In)
	n := 0
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		n++
		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// "again" / "g" repeats the last intent line.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastLine == nil {
				c.printLine("Nothing to repeat.")
				continue
			}
			c.simulate(*c.lastLine)
			continue
		}

		line, err := parser.Parse(input)
		if err != nil {
			if c.Strict {
				return fmt.Errorf("line %d: %w", n, err)
			}
			c.printSystem(fmt.Sprintf("Parse error: %v", err))
			continue
		}
		if line.Meta != "" {
			if c.Meta(line.Meta) {
				return nil // /quit
			}
			continue
		}
		if line.Blank() {
			continue
		}
		c.lastLine = &line
		c.simulate(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	c.printSystem(fmt.Sprintf("Stopped at tick %d (%.2fs).", c.Engine.State.Tick, c.Engine.State.Time))
	return nil
}

// simulate holds the line's intent for its repeat count.
func (c *CLI) simulate(line parser.Line) {
	for i := 0; i < line.Repeat; i++ {
		c.printResult(c.Engine.Step(line.Intent, c.Dt))
	}
	if c.Trace {
		c.printTrace()
	}
}

// Meta dispatches one meta command. Returns true if the run should end.
func (c *CLI) Meta(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/spawn":
		c.cmdSpawn(args)

	case "/despawn":
		if err := c.Engine.Despawn(arg); err != nil {
			c.printSystem(fmt.Sprintf("Despawn failed: %v", err))
		} else {
			c.printSystem(fmt.Sprintf("Removed %s.", arg))
		}

	case "/respawn":
		c.Engine.Respawn()
		c.printSystem("Player respawned.")

	case "/help":
		c.cmdHelp()

	case "/state":
		for _, row := range StateTable(c.Engine.State) {
			c.printLine(row)
		}

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

// snapshotPath resolves a save name. A name with a known extension picks
// its own format; otherwise the configured format's extension is appended.
func (c *CLI) snapshotPath(name string) (string, save.Format) {
	if name == "" {
		name = "quicksave"
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".msgpack", ".mp", ".msgp":
		return filepath.Join(c.SaveDir, name), save.FormatFromPath(name)
	}
	return filepath.Join(c.SaveDir, name+c.Format.Ext()), c.Format
}

func (c *CLI) cmdSave(name string) {
	path, f := c.snapshotPath(name)

	data, err := c.Engine.Snapshot(f)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Saved tick %d to %s.", c.Engine.State.Tick, filepath.Base(path)))
}

func (c *CLI) cmdLoad(name string) {
	path, f := c.snapshotPath(name)

	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if err := c.Engine.Restore(data, f); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Loaded %s (tick %d).", filepath.Base(path), c.Engine.State.Tick))
}

// cmdSpawn handles "/spawn <archetype> [x z | x y z]". Without a position
// the enemy appears at the first arena spawn point, or the origin.
func (c *CLI) cmdSpawn(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: /spawn <archetype> [x z | x y z]")
		return
	}
	nums := make([]float64, 0, 3)
	for _, a := range args[1:] {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			c.printSystem(fmt.Sprintf("Spawn failed: bad coordinate %q", a))
			return
		}
		nums = append(nums, v)
	}

	var pos geom.Vec3
	switch len(nums) {
	case 0:
		if len(c.Defs.Arena.Spawns) > 0 {
			pos = c.Defs.Arena.Spawns[0].Position
		}
	case 2:
		pos = geom.V(nums[0], c.Defs.Arena.GroundHeight, nums[1])
	case 3:
		pos = geom.V(nums[0], nums[1], nums[2])
	default:
		c.printSystem("Usage: /spawn <archetype> [x z | x y z]")
		return
	}

	id, err := c.Engine.SpawnEnemy(args[0], pos)
	if err != nil {
		c.printSystem(fmt.Sprintf("Spawn failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Spawned %s at %s.", id, FormatVec(pos)))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]       Save a snapshot (default: quicksave)",
		"  /load [name]       Load a snapshot (default: quicksave)",
		"  /spawn <id> [x z]  Spawn an enemy",
		"  /despawn <id>      Remove an enemy",
		"  /respawn           Reset the player",
		"  /state             Show actors",
		"  /trace             Toggle trace output",
		"  /help              Show this help",
		"  /quit              Exit",
		"",
		"Intents (held for one tick unless repeated):",
		"  forward back left right (w s a d)   Move relative to the camera",
		"  sprint dodge light heavy block      Actions",
		"  skill <id>                          Cast a skill",
		"  yaw <deg>                           Set the camera yaw",
		"  look <dx> <dy>                      Pointer delta",
		"  x<N>                                Hold for N ticks",
		"  wait <N>                            Do nothing for N ticks",
		"  again (g)                           Repeat the last line",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printTrace() {
	s := c.Engine.State
	p := &s.Player
	c.printLine(fmt.Sprintf("[trace] tick %d  hp %.0f  stamina %.0f  mana %.0f  pos %s",
		s.Tick, p.Health, p.Stamina, p.Mana, FormatVec(p.Physics.Position)))
}

func (c *CLI) printResult(result types.Result) {
	for _, ev := range result.Events {
		if ev.Type == types.EventStateChange && !c.Trace {
			continue
		}
		c.printLine(FormatEvent(ev))
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
