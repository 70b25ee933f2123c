package domain

import "errors"

// Errors returned by domain operations.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("cell occupied")
	ErrGameOver    = errors.New("game over")
	ErrBoardSize   = errors.New("board size must be at least 5")

	ErrOverline    = errors.New("forbidden move: overline")
	ErrDoubleFour  = errors.New("forbidden move: double four")
	ErrDoubleThree = errors.New("forbidden move: double three")
)

// IsForbidden reports whether err is a Renju forbidden-move rejection.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrOverline) || errors.Is(err, ErrDoubleFour) || errors.Is(err, ErrDoubleThree)
}

// Game holds the current state of a match and commits accepted moves.
type Game struct {
	State
	Log []LogEntry
	// Forbidden is the last forbidden-move rejection, cleared by the next
	// attempt.
	Forbidden Reason
}

// New returns a new game with Black to move. A zero Size uses
// DefaultBoardSize.
func New(rules Rules) (Game, error) {
	if rules.Size == 0 {
		rules.Size = DefaultBoardSize
	}
	board, err := NewBoard(rules.Size)
	if err != nil {
		return Game{}, err
	}
	return Game{State: State{Board: board, Turn: Black, Rules: rules}}, nil
}

// Play attempts to play the current turn at row r, column c.
func (g *Game) Play(r, c int) error {
	d := ValidateMove(g.State, Position{Row: r, Col: c})
	g.Forbidden = ReasonNone
	if !d.Accepted {
		if !d.Reason.Silent() {
			g.Forbidden = d.Reason
		}
		return d.Reason.Err()
	}
	g.Board = d.Board
	g.Turn = d.Next
	g.Winner = d.Winner
	g.Draw = d.Draw
	g.Moves++
	g.Log = append(g.Log, d.Entry)
	return nil
}

// Reset starts over with the current rules updated by p.
func (g *Game) Reset(p RulesPatch) error {
	ng, err := New(p.Apply(g.Rules))
	if err != nil {
		return err
	}
	*g = ng
	return nil
}

// Clone returns a deep copy safe to hand to another goroutine.
func (g Game) Clone() Game {
	cp := g
	cp.Log = append([]LogEntry(nil), g.Log...)
	if g.Winner != nil {
		w := *g.Winner
		w.Positions = append([]Position(nil), g.Winner.Positions...)
		cp.Winner = &w
	}
	return cp
}
