package domain

import (
	"fmt"
	"strings"
)

// Board size limits.
const (
	MinBoardSize     = 5
	DefaultBoardSize = 15
)

// Stone is the color of a placed stone. Black always moves first.
type Stone uint8

const (
	Black Stone = iota + 1
	White
)

var stoneStrings = [...]string{"unknown", "black", "white"}

// ParseStone parses "black" or "white" (case-insensitive).
func ParseStone(s string) (Stone, error) {
	for i := Black; i <= White; i++ {
		if strings.EqualFold(s, stoneStrings[i]) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown stone %q", s)
}

func (s Stone) String() string {
	if s < Black || s > White {
		return stoneStrings[0]
	}
	return stoneStrings[s]
}

// Opponent returns the other color.
func (s Stone) Opponent() Stone {
	if s == Black {
		return White
	}
	return Black
}

func (s Stone) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stone) UnmarshalText(text []byte) error {
	v, err := ParseStone(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Cell represents a board cell state: Empty or the cell of one stone.
type Cell uint8

const Empty Cell = 0

// StoneCell returns the cell occupied by s.
func StoneCell(s Stone) Cell { return Cell(s) }

// Stone reports the stone occupying the cell, if any.
func (c Cell) Stone() (Stone, bool) {
	if c == Empty {
		return 0, false
	}
	return Stone(c), true
}

// Position is a 0-indexed row/column pair.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// Board is an immutable N×N grid stored row-major. The zero Board has no
// cells, so every position is out of bounds on it.
type Board struct {
	n     int
	cells []Cell
}

// NewBoard returns an empty n×n board.
func NewBoard(n int) (Board, error) {
	if n < MinBoardSize {
		return Board{}, ErrBoardSize
	}
	return Board{n: n, cells: make([]Cell, n*n)}, nil
}

// ParseBoard builds a board from text rows where '.' is empty, 'B' black and
// 'W' white. All rows must have the same length as the number of rows.
func ParseBoard(rows ...string) (Board, error) {
	b, err := NewBoard(len(rows))
	if err != nil {
		return Board{}, err
	}
	for r, row := range rows {
		if len(row) != b.n {
			return Board{}, fmt.Errorf("row %d: want %d cells, got %d", r, b.n, len(row))
		}
		for c := 0; c < len(row); c++ {
			switch row[c] {
			case '.':
			case 'B', 'b':
				b.cells[r*b.n+c] = StoneCell(Black)
			case 'W', 'w':
				b.cells[r*b.n+c] = StoneCell(White)
			default:
				return Board{}, fmt.Errorf("row %d col %d: invalid cell %q", r, c, row[c])
			}
		}
	}
	return b, nil
}

// Size returns N.
func (b Board) Size() int { return b.n }

// Contains reports whether p lies on the board.
func (b Board) Contains(p Position) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < b.n && p.Col < b.n
}

// At returns the cell at p. ok is false when p is off the board.
func (b Board) At(p Position) (c Cell, ok bool) {
	if !b.Contains(p) {
		return Empty, false
	}
	return b.cells[p.Row*b.n+p.Col], true
}

// With returns a copy of b with s placed at p. The receiver is not modified.
func (b Board) With(p Position, s Stone) Board {
	cells := make([]Cell, len(b.cells))
	copy(cells, b.cells)
	if b.Contains(p) {
		cells[p.Row*b.n+p.Col] = StoneCell(s)
	}
	return Board{n: b.n, cells: cells}
}

// Full reports whether every cell is occupied.
func (b Board) Full() bool {
	for _, c := range b.cells {
		if c == Empty {
			return false
		}
	}
	return true
}

// Count returns the number of occupied cells.
func (b Board) Count() int {
	n := 0
	for _, c := range b.cells {
		if c != Empty {
			n++
		}
	}
	return n
}

// Rows returns a copy of the board as a slice of rows.
func (b Board) Rows() [][]Cell {
	rows := make([][]Cell, b.n)
	for r := range rows {
		rows[r] = make([]Cell, b.n)
		copy(rows[r], b.cells[r*b.n:(r+1)*b.n])
	}
	return rows
}

func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.n; r++ {
		for c := 0; c < b.n; c++ {
			switch s, _ := b.cells[r*b.n+c].Stone(); s {
			case Black:
				sb.WriteByte('B')
			case White:
				sb.WriteByte('W')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
