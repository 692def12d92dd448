// arpgcore runs the deterministic action-RPG combat simulation, either in a
// live terminal viewer or headless from an intent script.
// Usage: arpgcore [flags] [content_directory]
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/nathoo/arpgcore/cli"
	"github.com/nathoo/arpgcore/config"
	"github.com/nathoo/arpgcore/engine"
	"github.com/nathoo/arpgcore/engine/save"
	"github.com/nathoo/arpgcore/engine/state"
	"github.com/nathoo/arpgcore/loader"
	"github.com/nathoo/arpgcore/logging"
	"github.com/nathoo/arpgcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = `Usage: arpgcore [flags] [content_directory]

Without a content directory the built-in catalog is used.

Flags:
  --version             print the version and exit
  --config <file>       config file (json, yaml or toml)
  --seed <n|text>       override the seed; text is hashed
  --script <file>       run an intent script headless and exit
  --plain               line-based session instead of the viewer
  --trace               print enemy state changes and a player summary
  --load <snapshot>     resume from a snapshot file
  --save-format <f>     json or msgpack
  --log-level <level>   debug, info, warn or error
  --log-file <file>     write logs to a file (the viewer discards them otherwise)
`

// options are the command-line settings layered over the config file.
type options struct {
	configPath string
	contentDir string
	script     string
	snapshot   string
	logFile    string
	plain      bool
	trace      bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	overrides := map[string]string{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		value := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			i++
			return args[i], nil
		}

		switch arg {
		case "--version":
			fmt.Printf("arpgcore %s (commit %s, built %s)\n", version, commit, date)
			return nil
		case "-h", "--help":
			fmt.Print(usage)
			return nil
		case "--plain":
			opts.plain = true
		case "--trace":
			opts.trace = true
		case "--config", "--seed", "--script", "--load", "--save-format", "--log-level", "--log-file":
			v, err := value()
			if err != nil {
				return err
			}
			switch arg {
			case "--config":
				opts.configPath = v
			case "--script":
				opts.script = v
			case "--load":
				opts.snapshot = v
			case "--log-file":
				opts.logFile = v
			default:
				overrides[arg] = v
			}
		default:
			if opts.contentDir != "" {
				return fmt.Errorf("unexpected argument %q\n\n%s", arg, usage)
			}
			opts.contentDir = arg
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, overrides); err != nil {
		return err
	}
	if opts.contentDir != "" {
		cfg.ContentDir = opts.contentDir
	}

	interactive := opts.script == "" && !opts.plain && isTerminal()
	logOut, closeLog, err := logWriter(opts.logFile, interactive)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logging.Setup(logOut, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	defs := state.DefaultDefs()
	if cfg.ContentDir != "" {
		defs, err = loader.Load(cfg.ContentDir)
		if err != nil {
			return fmt.Errorf("loading content: %w", err)
		}
	}
	defs.Physics.MaxStep = cfg.MaxStep

	engOpts := []engine.Option{engine.WithLogger(log)}
	if cfg.SeedString != "" || cfg.Seed != 0 {
		engOpts = append(engOpts, engine.WithSeed(cfg.ResolveSeed()))
	}
	eng := engine.New(defs, engOpts...)

	if opts.snapshot != "" {
		data, err := os.ReadFile(opts.snapshot)
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}
		if err := eng.Restore(data, save.FormatFromPath(opts.snapshot)); err != nil {
			return fmt.Errorf("restoring snapshot: %w", err)
		}
	}

	newCLI := func(in io.Reader) *cli.CLI {
		c := cli.New(eng, defs)
		c.In = in
		c.SaveDir = cfg.SaveDir
		c.Format = cfg.SnapshotFormat()
		c.Dt = cfg.Dt()
		c.Trace = opts.trace
		return c
	}

	// Script mode: echo each line and stop at the first bad one.
	if opts.script != "" {
		f, err := os.Open(opts.script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := newCLI(f)
		c.EchoInput = true
		c.Strict = true
		return c.Run()
	}

	if !interactive {
		return newCLI(os.Stdin).Run()
	}

	return tui.Run(eng, defs, tui.Options{
		Dt:      cfg.Dt(),
		SaveDir: cfg.SaveDir,
		Format:  cfg.SnapshotFormat(),
	})
}

// applyOverrides layers flag values over the loaded config.
func applyOverrides(cfg *config.Config, overrides map[string]string) error {
	if v, ok := overrides["--seed"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed, cfg.SeedString = n, ""
		} else {
			cfg.SeedString = v
		}
	}
	if v, ok := overrides["--save-format"]; ok {
		cfg.SaveFormat = v
	}
	if v, ok := overrides["--log-level"]; ok {
		cfg.LogLevel = v
	}
	return cfg.Validate()
}

// logWriter picks the log destination. The viewer owns the terminal, so
// without a log file its logs are dropped.
func logWriter(path string, interactive bool) (io.Writer, func(), error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return f, func() { f.Close() }, nil
	}
	if interactive {
		return io.Discard, func() {}, nil
	}
	return os.Stderr, func() {}, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
