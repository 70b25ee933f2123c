package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MarigoldJ/gomokuu/internal/app"
	"github.com/MarigoldJ/gomokuu/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var errUnknownAction = errors.New("unknown action")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// stream upgrades to a websocket that pushes a JSON snapshot after every
// change and accepts play/reset commands from the seated player.
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	pid := playerFromCookie(r)
	cat := catalogFor(r)
	log := h.log.With(zap.String("game_id", id))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	updates, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		return
	}
	defer unsub()

	replies := make(chan errorDTO, 4)
	go h.readCommands(ctx, cancel, conn, id, pid, cat, replies, log)

	send := func(v any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}
	sendState := func() error {
		gs, ok := h.svc.Get(id)
		if !ok {
			return app.ErrNotFound
		}
		return send(newStateDTO(*gs))
	}
	if err := sendState(); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			if err := sendState(); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case reply := <-replies:
			if err := send(reply); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readCommands applies inbound commands until the connection closes. It is
// the only reader of conn.
func (h *handlers) readCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn,
	id, pid string, cat *catalog, replies chan<- errorDTO, log *zap.Logger) {
	defer cancel()
	for {
		var cmd commandDTO
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		var err error
		switch cmd.Action {
		case "play":
			_, err = h.svc.Play(id, pid, cmd.Row, cmd.Col)
		case "reset":
			_, err = h.svc.Reset(id, pid, domain.RulesPatch{Size: cmd.Size, EnforceRenju: cmd.Renju})
		default:
			err = errUnknownAction
		}
		if err == nil {
			continue
		}
		select {
		case replies <- errorDTO{Code: err.Error(), Message: cat.errorText(err)}:
		case <-ctx.Done():
			return
		}
	}
}
