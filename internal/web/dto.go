package web

import (
	"strings"
	"time"

	"github.com/MarigoldJ/gomokuu/internal/app"
	"github.com/MarigoldJ/gomokuu/internal/domain"
)

// stateDTO is the JSON view of a game sent by /state and the websocket.
type stateDTO struct {
	ID        string            `json:"id"`
	Rules     domain.Rules      `json:"rules"`
	Board     []string          `json:"board"`
	Turn      domain.Stone      `json:"turn"`
	Winner    *domain.Winner    `json:"winner"`
	Draw      bool              `json:"draw"`
	Moves     int               `json:"moves"`
	Log       []domain.LogEntry `json:"log"`
	Forbidden string            `json:"forbidden,omitempty"`
	Seats     seatsDTO          `json:"seats"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type seatsDTO struct {
	Black bool `json:"black"`
	White bool `json:"white"`
}

func newStateDTO(gs app.GameState) stateDTO {
	g := gs.Game
	dto := stateDTO{
		ID:        gs.ID,
		Rules:     g.Rules,
		Board:     strings.Fields(g.Board.String()),
		Turn:      g.Turn,
		Winner:    g.Winner,
		Draw:      g.Draw,
		Moves:     g.Moves,
		Log:       g.Log,
		Seats:     seatsDTO{Black: gs.Black != "", White: gs.White != ""},
		UpdatedAt: gs.Updated,
	}
	if dto.Log == nil {
		dto.Log = []domain.LogEntry{}
	}
	if g.Forbidden != domain.ReasonNone {
		dto.Forbidden = g.Forbidden.String()
	}
	return dto
}

// commandDTO is an inbound websocket message. A reset without renju keeps
// the current setting.
type commandDTO struct {
	Action string `json:"action"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Size   int    `json:"size"`
	Renju  *bool  `json:"renju,omitempty"`
}

// errorDTO reports a rejected websocket command. Message is empty for
// silent rejections such as an occupied cell.
type errorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
