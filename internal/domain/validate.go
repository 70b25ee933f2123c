package domain

// Rules are the ruleset parameters supplied with every move.
type Rules struct {
	Size         int  `json:"size"`
	EnforceRenju bool `json:"enforce_renju"`
}

// DefaultRules is a 15×15 board without Renju restrictions.
var DefaultRules = Rules{Size: DefaultBoardSize}

// Validate checks the board size.
func (r Rules) Validate() error {
	if r.Size < MinBoardSize {
		return ErrBoardSize
	}
	return nil
}

// RulesPatch is a partial Rules update. A zero Size or a nil EnforceRenju
// keeps the current value.
type RulesPatch struct {
	Size         int   `json:"size,omitempty"`
	EnforceRenju *bool `json:"enforce_renju,omitempty"`
}

// Apply returns r with the fields set in p.
func (p RulesPatch) Apply(r Rules) Rules {
	if p.Size != 0 {
		r.Size = p.Size
	}
	if p.EnforceRenju != nil {
		r.EnforceRenju = *p.EnforceRenju
	}
	return r
}

// Winner is the winning color and the run that won.
type Winner struct {
	Stone     Stone      `json:"stone"`
	Positions []Position `json:"positions"`
}

// LogEntry records one accepted move.
type LogEntry struct {
	Move  int      `json:"move"`
	Stone Stone    `json:"stone"`
	Pos   Position `json:"position"`
	Note  string   `json:"note,omitempty"`
}

// State is the caller-owned snapshot a move is validated against.
type State struct {
	Board  Board
	Turn   Stone
	Winner *Winner
	Draw   bool
	Moves  int
	Rules  Rules
}

// Over reports whether the game has a winner or is drawn.
func (s State) Over() bool { return s.Winner != nil || s.Draw }

// Reason is why a move was rejected.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonGameOver
	ReasonOutOfBounds
	ReasonOccupied
	ReasonOverline
	ReasonDoubleFour
	ReasonDoubleThree
)

var reasonStrings = [...]string{
	"none",
	"game over",
	"out of bounds",
	"cell occupied",
	"overline",
	"double four",
	"double three",
}

func (r Reason) String() string {
	if int(r) >= len(reasonStrings) {
		return "unknown"
	}
	return reasonStrings[r]
}

// Silent reports whether the rejection is structural and carries no
// forbidden-move message.
func (r Reason) Silent() bool {
	return r == ReasonGameOver || r == ReasonOutOfBounds || r == ReasonOccupied
}

// Err maps the reason to its sentinel error; nil for ReasonNone.
func (r Reason) Err() error {
	switch r {
	case ReasonGameOver:
		return ErrGameOver
	case ReasonOutOfBounds:
		return ErrOutOfBounds
	case ReasonOccupied:
		return ErrOccupied
	case ReasonOverline:
		return ErrOverline
	case ReasonDoubleFour:
		return ErrDoubleFour
	case ReasonDoubleThree:
		return ErrDoubleThree
	}
	return nil
}

func reasonFor(v Verdict) Reason {
	switch v {
	case Overline:
		return ReasonOverline
	case DoubleFour:
		return ReasonDoubleFour
	case DoubleThree:
		return ReasonDoubleThree
	}
	return ReasonNone
}

// Decision is the outcome of ValidateMove. When Accepted is false only
// Reason is meaningful and the caller keeps its state as is.
type Decision struct {
	Accepted bool
	Reason   Reason
	Board    Board
	Next     Stone
	Winner   *Winner
	Draw     bool
	Entry    LogEntry
}

func reject(r Reason) Decision { return Decision{Reason: r} }

// ValidateMove decides whether st.Turn may play at pos. It never modifies
// st; an accepted decision carries the new board for the caller to commit.
func ValidateMove(st State, pos Position) Decision {
	if st.Over() {
		return reject(ReasonGameOver)
	}
	if st.Board.Size() < MinBoardSize || !st.Board.Contains(pos) {
		return reject(ReasonOutOfBounds)
	}
	if c, _ := st.Board.At(pos); c != Empty {
		return reject(ReasonOccupied)
	}
	stone := st.Turn
	if stone != Black && stone != White {
		// black opens
		stone = Black
	}

	board := st.Board.With(pos, stone)
	win := DetectWin(board, pos, stone)

	if st.Rules.EnforceRenju && stone == Restricted {
		if v := classify(board, pos, stone, win.Longest); v != Legal {
			return reject(reasonFor(v))
		}
	}

	d := Decision{
		Accepted: true,
		Board:    board,
		Next:     stone.Opponent(),
		Entry:    LogEntry{Move: st.Moves + 1, Stone: stone, Pos: pos},
	}
	if win.Won() {
		d.Winner = &Winner{Stone: stone, Positions: win.Line}
		d.Entry.Note = "win"
	} else if board.Full() {
		d.Draw = true
		d.Entry.Note = "draw"
	}
	return d
}
