package domain

// Restricted is the color bound by Renju forbidden-move rules.
const Restricted = Black

// Verdict classifies a move under Renju restrictions.
type Verdict uint8

const (
	Legal Verdict = iota
	Overline
	DoubleFour
	DoubleThree
)

var verdictReasons = [...]string{
	"legal",
	"overline: six or more in a row is forbidden for black",
	"double four: two fours at once are forbidden for black",
	"double three: two open threes at once are forbidden for black",
}

// String returns the human-readable reason.
func (v Verdict) String() string {
	if int(v) >= len(verdictReasons) {
		return "unknown"
	}
	return verdictReasons[v]
}

// Shapes counts the four and open-three shapes formed through one origin.
type Shapes struct {
	Fours      int
	OpenThrees int
}

// CountShapes sums four and open-three shapes through origin over all four
// axes, using windows of radius WindowRadius.
func CountShapes(b Board, origin Position, s Stone) Shapes {
	var sh Shapes
	for _, d := range Directions {
		w := WindowSymbols(b, origin, d, s, WindowRadius)
		sh.Fours += countSegments(w, 5, isFour)
		sh.OpenThrees += countSegments(w, 5, isStraightOpenThree)
		sh.OpenThrees += countSegments(w, 6, isBrokenOpenThree)
	}
	return sh
}

// DetectForbidden reports DoubleFour or DoubleThree for the restricted color,
// Legal otherwise. It expects b to already hold s at origin and the move not
// to complete five; Classify handles overlines and fives.
func DetectForbidden(b Board, origin Position, s Stone) Verdict {
	if s != Restricted {
		return Legal
	}
	sh := CountShapes(b, origin, s)
	if sh.Fours >= 2 {
		return DoubleFour
	}
	if sh.OpenThrees >= 2 {
		return DoubleThree
	}
	return Legal
}

// Classify applies Renju precedence to a stone already placed at origin:
// a run of six or more is an overline, exactly five is always legal, and
// shorter runs go through DetectForbidden.
func Classify(b Board, origin Position, s Stone) Verdict {
	if s != Restricted {
		return Legal
	}
	return classify(b, origin, s, DetectWin(b, origin, s).Longest)
}

func classify(b Board, origin Position, s Stone, longest int) Verdict {
	switch {
	case longest > WinLength:
		return Overline
	case longest == WinLength:
		return Legal
	default:
		return DetectForbidden(b, origin, s)
	}
}
