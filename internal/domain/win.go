package domain

// WinLength is the run length that wins.
const WinLength = 5

// WinOutcome is the longest run through a placed stone. Line is set only
// when Longest reaches WinLength.
type WinOutcome struct {
	Longest int
	Line    []Position
}

// Won reports whether the outcome is a win.
func (w WinOutcome) Won() bool { return w.Longest >= WinLength }

// DetectWin scans all four axes through origin and returns the longest run.
// A strictly longer run replaces the recorded one; on a tie the earliest
// axis in Directions keeps its coordinates.
func DetectWin(b Board, origin Position, s Stone) WinOutcome {
	longest := 1
	var line []Position
	for _, d := range Directions {
		run := ScanRun(b, origin, d, s)
		if run.Length > longest {
			longest = run.Length
			line = run.Positions
		} else if run.Length == longest && line == nil {
			line = run.Positions
		}
	}
	out := WinOutcome{Longest: longest}
	if longest >= WinLength {
		out.Line = line
	}
	return out
}
