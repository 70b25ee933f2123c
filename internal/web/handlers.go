package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MarigoldJ/gomokuu/internal/app"
	"github.com/MarigoldJ/gomokuu/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       *zap.Logger
	heartbeat time.Duration
}

func (h *handlers) renderBoard(gs app.GameState, cat *catalog, errMsg string) []byte {
	return renderTemplate(h.tpl.board, "", newBoardView(gs, cat, errMsg))
}

// broadcastBoard renders fragments pushed to SSE subscribers.
func (h *handlers) broadcastBoard(gs app.GameState) []byte {
	return h.renderBoard(gs, &catalogs[0], "")
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// parseRules reads size and renju form values. A missing size is zero, which
// means "keep the default".
func parseRules(r *http.Request) (domain.Rules, error) {
	var rules domain.Rules
	if v := r.Form.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return rules, domain.ErrBoardSize
		}
		rules.Size = n
		if err := rules.Validate(); err != nil {
			return rules, err
		}
	}
	rules.EnforceRenju = truthy(r.Form.Get("renju"))
	return rules, nil
}

// parseRulesPatch reads a reset form. Fields that are not sent keep the
// game's current value. The board form sends a hidden renju=off ahead of
// the checkbox so an unchecked box still counts as set.
func parseRulesPatch(r *http.Request) (domain.RulesPatch, error) {
	var p domain.RulesPatch
	rules, err := parseRules(r)
	if err != nil {
		return p, err
	}
	p.Size = rules.Size
	if vals, ok := r.Form["renju"]; ok {
		on := false
		for _, v := range vals {
			on = on || truthy(v)
		}
		p.EnforceRenju = &on
	}
	return p, nil
}

func truthy(v string) bool {
	switch v {
	case "on", "true", "1":
		return true
	}
	return false
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Size  int
		Renju bool
	}{Size: h.svc.DefaultRules().Size, Renju: h.svc.DefaultRules().EnforceRenju}
	writeHTML(w, http.StatusOK, renderTemplate(h.tpl.index, "base", data))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	rules, err := parseRules(r)
	if err != nil {
		http.Error(w, catalogFor(r).errorText(err), http.StatusBadRequest)
		return
	}
	if r.Form.Get("renju") == "" && r.Form.Get("size") == "" {
		rules.EnforceRenju = h.svc.DefaultRules().EnforceRenju
	}
	gs, err := h.svc.CreateGame(rules)
	if err != nil {
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// ensure cookie and auto-claim seat
	pid := ensurePlayerCookie(w, r)
	_, _, _, _ = h.svc.Join(id, pid)

	gs, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	data := struct {
		ID    string
		Board boardView
	}{ID: gs.ID, Board: newBoardView(*gs, catalogFor(r), "")}
	// Render page with embedded board container
	writeHTML(w, http.StatusOK, renderTemplate(h.tpl.game, "base", data))
}

func (h *handlers) join(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_, _, gs, err := h.svc.Join(id, pid)
	if err != nil || gs == nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, catalogFor(r), ""))
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_ = r.ParseForm()
	ri, errR := strconv.Atoi(r.Form.Get("r"))
	ci, errC := strconv.Atoi(r.Form.Get("c"))
	if errR != nil || errC != nil {
		ri, ci = -1, -1
	}
	cat := catalogFor(r)
	gs, err := h.svc.Play(id, pid, ri, ci)
	if gs == nil {
		if g, ok := h.svc.Get(id); ok {
			gs = g
		}
	}
	if gs == nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, cat, cat.errorText(err)))
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_ = r.ParseForm()
	cat := catalogFor(r)
	patch, err := parseRulesPatch(r)
	var gs *app.GameState
	if err == nil {
		gs, err = h.svc.Reset(id, pid, patch)
	}
	if gs == nil {
		if g, ok := h.svc.Get(id); ok {
			gs = g
		}
	}
	if gs == nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, cat, cat.errorText(err)))
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newStateDTO(*gs)); err != nil {
		h.log.Warn("encode state", zap.String("game_id", gs.ID), zap.Error(err))
	}
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer unsub()
	// heartbeat ticker
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	// Initial flush of headers
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			// Emit board event; every payload line needs its own data field
			_, _ = io.WriteString(w, "event: board\n")
			for _, line := range strings.Split(string(b), "\n") {
				_, _ = fmt.Fprintf(w, "data: %s\n", line)
			}
			_, _ = io.WriteString(w, "\n")
			flusher.Flush()
		}
	}
}
