package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/MarigoldJ/gomokuu/internal/app"
	"github.com/MarigoldJ/gomokuu/internal/domain"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	s := app.NewService()
	h := NewServer(s)
	return s, h
}

func postForm(t *testing.T, h http.Handler, path, player string, form url.Values, lang string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if player != "" {
		req.AddCookie(&http.Cookie{Name: playerCookie, Value: player})
	}
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func playForm(r, c int) url.Values {
	return url.Values{"r": {strconv.Itoa(r)}, "c": {strconv.Itoa(c)}}
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<form") || !strings.Contains(body, "action=\"/game\"") || !strings.Contains(body, "name=\"size\"") {
		t.Fatalf("index should contain create form; got body: %q", body)
	}
	if !strings.Contains(body, "<html>") || !strings.Contains(body, "htmx.org") {
		t.Fatalf("index should render the page layout; got body: %q", body)
	}
}

func TestCreateRedirectsToGame(t *testing.T) {
	svc, h := newTestServer(t)
	rr := postForm(t, h, "/game", "", url.Values{"size": {"9"}, "renju": {"on"}}, "")
	if rr.Code != http.StatusSeeOther && rr.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	loc := rr.Result().Header.Get("Location")
	if !strings.HasPrefix(loc, "/game/") {
		t.Fatalf("expected redirect to /game/{id}, got %q", loc)
	}
	gs, ok := svc.Get(strings.TrimPrefix(loc, "/game/"))
	if !ok || gs.Game.Board.Size() != 9 || !gs.Game.Rules.EnforceRenju {
		t.Fatalf("expected 9x9 renju game, got %+v", gs)
	}
}

func TestCreateRejectsSmallBoard(t *testing.T) {
	_, h := newTestServer(t)
	rr := postForm(t, h, "/game", "", url.Values{"size": {"4"}}, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGamePageSetsCookieAndAutoClaims(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.Rules{})

	req := httptest.NewRequest("GET", "/game/"+url.PathEscape(gs.ID), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var playerID string
	for _, c := range rr.Result().Cookies() {
		if c.Name == playerCookie {
			playerID = c.Value
			break
		}
	}
	if playerID == "" {
		t.Fatalf("expected player_id cookie to be set")
	}
	latest, ok := svc.Get(gs.ID)
	if !ok || latest.Black != playerID {
		t.Fatalf("expected auto-claim black; have black=%q white=%q pid=%q", latest.Black, latest.White, playerID)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "hx-ext=\"sse\"") || !strings.Contains(body, "/game/"+gs.ID+"/events") {
		t.Fatalf("expected SSE wiring in page; got body: %q", body)
	}
	if got := strings.Count(body, "class=\"cell "); got != 15*15 {
		t.Fatalf("expected 225 cells, got %d", got)
	}
	if !strings.Contains(body, "<html>") || !strings.Contains(body, "htmx.org") || !strings.Contains(body, "sse.js") {
		t.Fatalf("game page should load htmx and the sse extension; got body: %q", body)
	}
	if got := strings.Count(body, "id=\"board\""); got != 1 {
		t.Fatalf("expected a single #board element, got %d", got)
	}
}

func TestJoinEndpointReturnsBoardFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.Rules{})
	svc.Join(gs.ID, "p1")
	rr := postForm(t, h, "/game/"+gs.ID+"/join", "p2", url.Values{}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "id=\"board\"") {
		t.Fatalf("expected board fragment, got %q", rr.Body.String())
	}
	latest, _ := svc.Get(gs.ID)
	if latest.White != "p2" {
		t.Fatalf("expected white seat for p2, got black=%q white=%q", latest.Black, latest.White)
	}
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.Rules{})
	svc.Join(gs.ID, "p1")
	svc.Join(gs.ID, "p2")

	rr := postForm(t, h, "/game/"+gs.ID+"/play", "p1", playForm(7, 7), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "id=\"board\"") || !strings.Contains(body, "White to move") {
		t.Fatalf("expected board fragment with white to move, got %q", body)
	}
	latest, _ := svc.Get(gs.ID)
	if latest.Game.Moves != 1 {
		t.Fatalf("expected move applied, moves=%d", latest.Game.Moves)
	}

	rr = postForm(t, h, "/game/"+gs.ID+"/play", "p1", playForm(8, 8), "")
	if !strings.Contains(rr.Body.String(), "Not your turn") {
		t.Fatalf("expected turn error, got %q", rr.Body.String())
	}
	rr = postForm(t, h, "/game/"+gs.ID+"/play", "p2", playForm(7, 7), "")
	if strings.Contains(rr.Body.String(), "class=\"alert\"") {
		t.Fatalf("occupied cell should be silent, got %q", rr.Body.String())
	}
}

func TestPlayForbiddenMoveIsLocalized(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.Rules{EnforceRenju: true})
	svc.Join(gs.ID, "p1")
	svc.Join(gs.ID, "p2")
	moves := [][2]int{{7, 5}, {0, 0}, {7, 6}, {0, 2}, {5, 7}, {0, 4}, {6, 7}, {0, 6}}
	for i, m := range moves {
		player := "p1"
		if i%2 == 1 {
			player = "p2"
		}
		if _, err := svc.Play(gs.ID, player, m[0], m[1]); err != nil {
			t.Fatalf("move %d failed: %v", i, err)
		}
	}
	rr := postForm(t, h, "/game/"+gs.ID+"/play", "p1", playForm(7, 7), "ko-KR,ko;q=0.9,en;q=0.5")
	if !strings.Contains(rr.Body.String(), "쌍삼") {
		t.Fatalf("expected korean double three message, got %q", rr.Body.String())
	}
	rr = postForm(t, h, "/game/"+gs.ID+"/play", "p1", playForm(7, 7), "en-US")
	if !strings.Contains(rr.Body.String(), "double three") {
		t.Fatalf("expected english double three message, got %q", rr.Body.String())
	}
	latest, _ := svc.Get(gs.ID)
	if latest.Game.Moves != 8 {
		t.Fatalf("forbidden move should not be applied, moves=%d", latest.Game.Moves)
	}
}

func TestResetEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.Rules{})
	svc.Join(gs.ID, "p1")
	svc.Join(gs.ID, "p2")
	svc.Play(gs.ID, "p1", 7, 7)

	rr := postForm(t, h, "/game/"+gs.ID+"/reset", "p1", url.Values{"size": {"3"}}, "")
	if !strings.Contains(rr.Body.String(), "at least 5") {
		t.Fatalf("expected board size error, got %q", rr.Body.String())
	}
	rr = postForm(t, h, "/game/"+gs.ID+"/reset", "p2", url.Values{"size": {"9"}, "renju": {"on"}}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	latest, _ := svc.Get(gs.ID)
	if latest.Game.Moves != 0 || latest.Game.Board.Size() != 9 || !latest.Game.Rules.EnforceRenju {
		t.Fatalf("unexpected state after reset: %+v", latest.Game.State)
	}
	if got := strings.Count(rr.Body.String(), "class=\"cell "); got != 81 {
		t.Fatalf("expected 81 cells, got %d", got)
	}

	// size only keeps renju; the board form's hidden field turns it off
	rr = postForm(t, h, "/game/"+gs.ID+"/reset", "p1", url.Values{"size": {"11"}}, "")
	latest, _ = svc.Get(gs.ID)
	if rr.Code != http.StatusOK || latest.Game.Rules != (domain.Rules{Size: 11, EnforceRenju: true}) {
		t.Fatalf("size-only reset: code=%d rules=%+v", rr.Code, latest.Game.Rules)
	}
	postForm(t, h, "/game/"+gs.ID+"/reset", "p1", url.Values{"size": {"11"}, "renju": {"off"}}, "")
	latest, _ = svc.Get(gs.ID)
	if latest.Game.Rules.EnforceRenju {
		t.Fatalf("unchecked renju should turn it off: %+v", latest.Game.Rules)
	}
}

func TestStateEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.Rules{Size: 5})
	svc.Join(gs.ID, "p1")
	svc.Join(gs.ID, "p2")
	svc.Play(gs.ID, "p1", 2, 2)

	req := httptest.NewRequest("GET", "/game/"+gs.ID+"/state", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got struct {
		Board []string `json:"board"`
		Turn  string   `json:"turn"`
		Moves int      `json:"moves"`
		Log   []struct {
			Stone    string          `json:"stone"`
			Position domain.Position `json:"position"`
		} `json:"log"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Turn != "white" || got.Moves != 1 || len(got.Board) != 5 || got.Board[2] != "..B.." {
		t.Fatalf("unexpected state %+v", got)
	}
	if len(got.Log) != 1 || got.Log[0].Stone != "black" || got.Log[0].Position != (domain.Position{Row: 2, Col: 2}) {
		t.Fatalf("unexpected log %+v", got.Log)
	}

	req = httptest.NewRequest("GET", "/game/missing/state", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	rrCreate := postForm(t, h, "/game", "", url.Values{}, "")
	loc := rrCreate.Result().Header.Get("Location")
	if loc == "" {
		t.Fatalf("missing redirect location")
	}
	req := httptest.NewRequest("GET", loc+"/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	ct := rr.Result().Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/event-stream") {
		io.Copy(io.Discard, rr.Result().Body)
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
}

func TestWebsocketStream(t *testing.T) {
	svc, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()
	gs, _ := svc.CreateGame(domain.Rules{})
	svc.Join(gs.ID, "p1")
	svc.Join(gs.ID, "p2")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + gs.ID + "/ws"
	header := http.Header{}
	header.Set("Cookie", playerCookie+"=p1")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v (resp=%v)", err, resp)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var state struct {
		Moves int    `json:"moves"`
		Turn  string `json:"turn"`
	}
	if err := conn.ReadJSON(&state); err != nil || state.Moves != 0 || state.Turn != "black" {
		t.Fatalf("initial snapshot: %+v err=%v", state, err)
	}

	if err := conn.WriteJSON(commandDTO{Action: "play", Row: 7, Col: 7}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&state); err != nil || state.Moves != 1 || state.Turn != "white" {
		t.Fatalf("snapshot after move: %+v err=%v", state, err)
	}

	if err := conn.WriteJSON(commandDTO{Action: "play", Row: 8, Col: 8}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply errorDTO
	if err := conn.ReadJSON(&reply); err != nil || reply.Code != app.ErrNotYourTurn.Error() || reply.Message != "Not your turn" {
		t.Fatalf("expected turn error, got %+v err=%v", reply, err)
	}

	on := true
	svc.Reset(gs.ID, "p1", domain.RulesPatch{EnforceRenju: &on})
	if err := conn.ReadJSON(&state); err != nil || state.Moves != 0 {
		t.Fatalf("snapshot after renju reset: %+v err=%v", state, err)
	}
	if err := conn.WriteJSON(commandDTO{Action: "reset", Size: 19}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resetState struct {
		Rules domain.Rules `json:"rules"`
	}
	if err := conn.ReadJSON(&resetState); err != nil || resetState.Rules != (domain.Rules{Size: 19, EnforceRenju: true}) {
		t.Fatalf("size-only reset over websocket: %+v err=%v", resetState, err)
	}
}

func TestWebsocketUnknownGame(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/game/missing/ws", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
