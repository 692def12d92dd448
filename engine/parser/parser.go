// Package parser converts intent-script lines into per-tick Intents.
// Intentionally dumb: whitespace-separated tokens, no grammar beyond that.
//
// A line lists the flags held for the tick ("forward sprint light"), an
// optional repeat count ("x30"), or "wait N" for N empty ticks. "#" starts a
// comment. Lines beginning with "/" are meta commands and are returned
// verbatim for the front end to handle.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nathoo/arpgcore/engine/geom"
	"github.com/nathoo/arpgcore/types"
)

var flagAliases = map[string]string{
	"w":       "forward",
	"fwd":     "forward",
	"s":       "back",
	"a":       "left",
	"d":       "right",
	"run":     "sprint",
	"roll":    "dodge",
	"attack":  "light",
	"atk":     "light",
	"strike":  "light",
	"smash":   "heavy",
	"guard":   "block",
	"parry":   "block",
	"cast":    "skill",
	"turn":    "yaw",
	"pointer": "look",
}

// Line is one parsed script line.
type Line struct {
	Intent types.Intent
	Repeat int    // number of ticks the intent is held, at least 1
	Meta   string // non-empty for "/" commands
}

// Blank reports whether the line carries nothing to simulate.
func (l Line) Blank() bool {
	return l.Meta == "" && l.Repeat == 0
}

// Parse converts one script line. A blank or comment-only line returns a
// Line with Repeat 0.
func Parse(input string) (Line, error) {
	if i := strings.IndexByte(input, '#'); i >= 0 {
		input = input[:i]
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return Line{}, nil
	}
	if strings.HasPrefix(input, "/") {
		return Line{Meta: input}, nil
	}

	words := strings.Fields(strings.ToLower(input))
	line := Line{Repeat: 1}
	in := &line.Intent

	for i := 0; i < len(words); i++ {
		w := words[i]
		if alias, ok := flagAliases[w]; ok {
			w = alias
		}
		switch w {
		case "forward":
			in.Forward = true
		case "back":
			in.Back = true
		case "left":
			in.Left = true
		case "right":
			in.Right = true
		case "sprint":
			in.Sprint = true
		case "dodge":
			in.Dodge = true
		case "light":
			in.LightAttack = true
		case "heavy":
			in.HeavyAttack = true
		case "block":
			in.Block = true
		case "idle", "-":
		case "skill":
			if i+1 >= len(words) {
				return Line{}, fmt.Errorf("skill needs an id")
			}
			i++
			in.Skill = words[i]
		case "yaw":
			v, err := number(words, i+1, "yaw")
			if err != nil {
				return Line{}, err
			}
			i++
			in.CameraYaw = geom.Deg(v)
		case "look":
			dx, err := number(words, i+1, "look")
			if err != nil {
				return Line{}, err
			}
			dy, err := number(words, i+2, "look")
			if err != nil {
				return Line{}, err
			}
			i += 2
			in.PointerDX, in.PointerDY = dx, dy
		case "wait":
			n, err := count(words, i+1)
			if err != nil {
				return Line{}, err
			}
			i++
			line.Repeat = n
		default:
			if strings.HasPrefix(w, "x") && len(w) > 1 {
				n, err := strconv.Atoi(w[1:])
				if err != nil || n < 1 {
					return Line{}, fmt.Errorf("bad repeat %q", w)
				}
				line.Repeat = n
				continue
			}
			return Line{}, fmt.Errorf("unknown token %q", w)
		}
	}
	return line, nil
}

func number(words []string, i int, what string) (float64, error) {
	if i >= len(words) {
		return 0, fmt.Errorf("%s needs a number", what)
	}
	v, err := strconv.ParseFloat(words[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: bad number %q", what, words[i])
	}
	return v, nil
}

func count(words []string, i int) (int, error) {
	if i >= len(words) {
		return 0, fmt.Errorf("wait needs a tick count")
	}
	n, err := strconv.Atoi(words[i])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("wait: bad tick count %q", words[i])
	}
	return n, nil
}

// ParseScript parses a whole script, skipping blank lines. Errors carry the
// 1-based line number.
func ParseScript(r io.Reader) ([]Line, error) {
	var lines []Line
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		l, err := Parse(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if !l.Blank() {
			lines = append(lines, l)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return lines, nil
}
