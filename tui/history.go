// Package tui is the live Bubble Tea viewer: it steps the engine on a fixed
// tick, turns key presses into intents, and draws the arena, the player's
// resources, and an event log with a command line underneath.
package tui

// history keeps submitted command lines for up/down recall.
type history struct {
	lines []string
	limit int
	back  int // 0 when not browsing, otherwise how many entries back
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

// push records a line, skipping blanks and an immediate repeat.
func (h *history) push(line string) {
	h.back = 0
	if line == "" || (len(h.lines) > 0 && h.lines[len(h.lines)-1] == line) {
		return
	}
	h.lines = append(h.lines, line)
	if over := len(h.lines) - h.limit; over > 0 {
		h.lines = h.lines[over:]
	}
}

// older steps back one entry, stopping at the oldest.
func (h *history) older() (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	if h.back < len(h.lines) {
		h.back++
	}
	return h.lines[len(h.lines)-h.back], true
}

// newer steps forward; past the newest entry it returns to a fresh line.
func (h *history) newer() (string, bool) {
	if h.back <= 1 {
		h.back = 0
		return "", false
	}
	h.back--
	return h.lines[len(h.lines)-h.back], true
}
