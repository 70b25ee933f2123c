package web

import (
	"errors"
	"net/http"

	"github.com/MarigoldJ/gomokuu/internal/app"
	"github.com/MarigoldJ/gomokuu/internal/domain"
	"golang.org/x/text/language"
)

// catalog holds the display texts for one language.
type catalog struct {
	forbidden   map[domain.Reason]string
	notYourTurn string
	spectator   string
	boardSize   string
	invalid     string
	toMove      map[domain.Stone]string
	wins        map[domain.Stone]string
	draw        string
	renju       string
}

var catalogs = []catalog{
	{
		forbidden: map[domain.Reason]string{
			domain.ReasonOverline:    "Overline (six or more in a row) is forbidden for black.",
			domain.ReasonDoubleFour:  "This move makes a double four, which is forbidden for black.",
			domain.ReasonDoubleThree: "This move makes a double three, which is forbidden for black.",
		},
		notYourTurn: "Not your turn",
		spectator:   "You are a spectator",
		boardSize:   "Board size must be at least 5",
		invalid:     "Invalid move",
		toMove:      map[domain.Stone]string{domain.Black: "Black to move", domain.White: "White to move"},
		wins:        map[domain.Stone]string{domain.Black: "Black wins", domain.White: "White wins"},
		draw:        "Draw",
		renju:       "Renju rules",
	},
	{
		forbidden: map[domain.Reason]string{
			domain.ReasonOverline:    "장목(6목 이상)은 흑의 금수입니다.",
			domain.ReasonDoubleFour:  "이 수는 흑의 쌍사(이중 사목) 금수입니다.",
			domain.ReasonDoubleThree: "이 수는 흑의 쌍삼 금수입니다.",
		},
		notYourTurn: "당신의 차례가 아닙니다",
		spectator:   "관전 중입니다",
		boardSize:   "보드 크기는 5 이상이어야 합니다",
		invalid:     "둘 수 없는 자리입니다",
		toMove:      map[domain.Stone]string{domain.Black: "흑 차례", domain.White: "백 차례"},
		wins:        map[domain.Stone]string{domain.Black: "흑 승리", domain.White: "백 승리"},
		draw:        "무승부",
		renju:       "렌주룰",
	},
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Korean})

// catalogFor picks the catalog matching the request's Accept-Language.
func catalogFor(r *http.Request) *catalog {
	if r == nil {
		return &catalogs[0]
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return &catalogs[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return &catalogs[0]
	}
	return &catalogs[idx]
}

// status describes the game for the board header.
func (c *catalog) status(g domain.Game) string {
	switch {
	case g.Winner != nil:
		return c.wins[g.Winner.Stone]
	case g.Draw:
		return c.draw
	default:
		return c.toMove[g.Turn]
	}
}

// errorText maps a play/reset error to display text. Structural rejections
// (occupied, out of bounds, game over) are silent.
func (c *catalog) errorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, app.ErrNotYourTurn):
		return c.notYourTurn
	case errors.Is(err, app.ErrNotAPlayer):
		return c.spectator
	case errors.Is(err, domain.ErrBoardSize):
		return c.boardSize
	case errors.Is(err, domain.ErrOverline):
		return c.forbidden[domain.ReasonOverline]
	case errors.Is(err, domain.ErrDoubleFour):
		return c.forbidden[domain.ReasonDoubleFour]
	case errors.Is(err, domain.ErrDoubleThree):
		return c.forbidden[domain.ReasonDoubleThree]
	case errors.Is(err, domain.ErrOccupied),
		errors.Is(err, domain.ErrOutOfBounds),
		errors.Is(err, domain.ErrGameOver):
		return ""
	default:
		return c.invalid
	}
}
