package domain

// Direction is a unit step along one board axis.
type Direction struct {
	DR, DC int
}

// Directions lists the four axes in scan order: horizontal, vertical,
// diagonal down-right, diagonal down-left. The order decides which run is
// reported when several axes tie.
var Directions = [4]Direction{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

func (d Direction) step(p Position, k int) Position {
	return Position{Row: p.Row + d.DR*k, Col: p.Col + d.DC*k}
}

// RunResult is the maximal same-color run through an origin along one axis.
type RunResult struct {
	Length    int
	Positions []Position
}

// ScanRun walks from origin in both senses of d while cells hold s. The
// origin always counts, whatever the board holds there. Positions are
// ordered from the -d end to the +d end.
func ScanRun(b Board, origin Position, d Direction, s Stone) RunResult {
	want := StoneCell(s)
	var back []Position
	for k := 1; ; k++ {
		p := d.step(origin, -k)
		if c, ok := b.At(p); !ok || c != want {
			break
		}
		back = append(back, p)
	}
	run := make([]Position, 0, len(back)+1)
	for i := len(back) - 1; i >= 0; i-- {
		run = append(run, back[i])
	}
	run = append(run, origin)
	for k := 1; ; k++ {
		p := d.step(origin, k)
		if c, ok := b.At(p); !ok || c != want {
			break
		}
		run = append(run, p)
	}
	return RunResult{Length: len(run), Positions: run}
}

// Symbol classifies one cell of a window relative to the scanning stone.
type Symbol uint8

const (
	SymEmpty Symbol = iota
	SymSelf
	SymOpponent
	SymOffBoard
)

func (s Symbol) String() string {
	switch s {
	case SymSelf:
		return "S"
	case SymOpponent:
		return "O"
	case SymOffBoard:
		return "X"
	default:
		return "."
	}
}

// WindowRadius is the radius used by forbidden-move detection.
const WindowRadius = 4

// Window is a run of symbols along one axis, centred on an origin.
type Window []Symbol

func (w Window) String() string {
	buf := make([]byte, len(w))
	for i, s := range w {
		buf[i] = s.String()[0]
	}
	return string(buf)
}

// Center returns the index of the origin within w.
func (w Window) Center() int { return len(w) / 2 }

// WindowSymbols returns the 2*radius+1 symbols along d centred on origin.
func WindowSymbols(b Board, origin Position, d Direction, s Stone, radius int) Window {
	w := make(Window, 0, 2*radius+1)
	for k := -radius; k <= radius; k++ {
		c, ok := b.At(d.step(origin, k))
		switch {
		case !ok:
			w = append(w, SymOffBoard)
		case c == Empty:
			w = append(w, SymEmpty)
		case c == StoneCell(s):
			w = append(w, SymSelf)
		default:
			w = append(w, SymOpponent)
		}
	}
	return w
}
