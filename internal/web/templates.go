package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/MarigoldJ/gomokuu/internal/app"
	"github.com/MarigoldJ/gomokuu/internal/domain"
	"github.com/google/uuid"
)

type templates struct {
	base  *template.Template
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"stoneSymbol": func(c domain.Cell) string {
			switch s, _ := c.Stone(); s {
			case domain.Black:
				return "●"
			case domain.White:
				return "○"
			default:
				return ""
			}
		},
		"stoneClass": func(c domain.Cell) string {
			s, ok := c.Stone()
			if !ok {
				return "empty"
			}
			return s.String()
		},
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Gomoku</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	// Define the board template within the same set so game can include it
	template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Gomoku</h1>
<form action="/game" method="post">
  <label>Size <input type="number" name="size" min="5" value="{{.Size}}"></label>
  <label><input type="checkbox" name="renju" value="on"{{if .Renju}} checked{{end}}> Renju</label>
  <button>Create</button>
</form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="board-stream" hx-sse="swap:board">{{template "board" .Board}}</div>
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board" class="board size-{{.Size}}">
  <div class="status">{{.Status}}{{if .Renju}} · {{.RenjuLabel}}{{end}}</div>
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  {{range .Rows}}
  <div class="row">
    {{range .}}
      <form hx-post="/game/{{.GameID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="r" value="{{.Row}}">
        <input type="hidden" name="c" value="{{.Col}}">
        <button type="submit" class="cell {{stoneClass .Cell}}{{if .Win}} win{{end}}">{{stoneSymbol .Cell}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post">
    <input type="number" name="size" min="5" value="{{.Size}}">
    <input type="hidden" name="renju" value="off">
    <label><input type="checkbox" name="renju" value="on"{{if .Renju}} checked{{end}}> Renju</label>
    <button type="submit">Reset</button>
  </form>
  <ol class="log">
    {{range .Log}}<li>{{.Stone}} {{.Pos}}{{if .Note}} ({{.Note}}){{end}}</li>{{end}}
  </ol>
</div>
`

type cellView struct {
	GameID string
	Row    int
	Col    int
	Cell   domain.Cell
	Win    bool
}

type boardView struct {
	ID         string
	Size       int
	Renju      bool
	RenjuLabel string
	Status     string
	Error      string
	Rows       [][]cellView
	Log        []domain.LogEntry
}

// newBoardView builds the template data for a board fragment. When errMsg
// is empty the game's last forbidden rejection, if any, is shown.
func newBoardView(gs app.GameState, cat *catalog, errMsg string) boardView {
	g := gs.Game
	win := make(map[domain.Position]bool)
	if g.Winner != nil {
		for _, p := range g.Winner.Positions {
			win[p] = true
		}
	}
	if errMsg == "" && g.Forbidden != domain.ReasonNone {
		errMsg = cat.forbidden[g.Forbidden]
	}
	rows := g.Board.Rows()
	view := boardView{
		ID:         gs.ID,
		Size:       g.Board.Size(),
		Renju:      g.Rules.EnforceRenju,
		RenjuLabel: cat.renju,
		Status:     cat.status(g),
		Error:      errMsg,
		Rows:       make([][]cellView, len(rows)),
		Log:        g.Log,
	}
	for r, row := range rows {
		view.Rows[r] = make([]cellView, len(row))
		for c, cell := range row {
			p := domain.Position{Row: r, Col: c}
			view.Rows[r][c] = cellView{GameID: gs.ID, Row: r, Col: c, Cell: cell, Win: win[p]}
		}
	}
	return view
}

const playerCookie = "player_id"

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if id := playerFromCookie(r); id != "" {
		return id
	}
	// Generate UUIDv4 for player ID
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: playerCookie, Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return v
}

func playerFromCookie(r *http.Request) string {
	if c, err := r.Cookie(playerCookie); err == nil {
		return c.Value
	}
	return ""
}
