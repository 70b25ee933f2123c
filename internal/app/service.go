package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MarigoldJ/gomokuu/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Errors exposed by the service layer.
var (
	ErrNotFound    = errors.New("game not found")
	ErrNotYourTurn = errors.New("not your turn")
	ErrNotAPlayer  = errors.New("not a player")
)

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Game    domain.Game
	Black   string
	White   string
	Created time.Time
	Updated time.Time
}

// Seat returns the stone held by playerID, or false for spectators.
func (gs GameState) Seat(playerID string) (domain.Stone, bool) {
	switch {
	case playerID == "":
		return 0, false
	case gs.Black == playerID:
		return domain.Black, true
	case gs.White == playerID:
		return domain.White, true
	}
	return 0, false
}

func (gs *GameState) snapshot() GameState {
	cp := *gs
	cp.Game = gs.Game.Clone()
	return cp
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers. Moves on one game are serialised
// by the service mutex before they reach the rule engine.
type Service struct {
	mu     sync.Mutex
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	rules  domain.Rules
	log    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRenderer sets the broadcast renderer.
func WithRenderer(renderer func(GameState) []byte) Option {
	return func(s *Service) {
		if renderer != nil {
			s.render = renderer
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDefaultRules sets the rules used by CreateGame when none are given.
func WithDefaultRules(r domain.Rules) Option {
	return func(s *Service) { s.rules = r }
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService(opts ...Option) *Service {
	s := &Service{
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: func(gs GameState) []byte { return nil },
		rules:  domain.DefaultRules,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte, opts ...Option) *Service {
	return NewService(append([]Option{WithRenderer(renderer)}, opts...)...)
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(gs GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// DefaultRules returns the rules used for games created without explicit rules.
func (s *Service) DefaultRules() domain.Rules {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules
}

// CreateGame creates and registers a new game. A zero Size falls back to the
// service default size.
func (s *Service) CreateGame(rules domain.Rules) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rules.Size == 0 {
		rules.Size = s.rules.Size
	}
	g, err := domain.New(rules)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	now := time.Now()
	gs := &GameState{ID: id, Game: g, Created: now, Updated: now}
	s.games[id] = gs
	s.log.Info("game created",
		zap.String("game_id", id),
		zap.Int("size", g.Rules.Size),
		zap.Bool("renju", g.Rules.EnforceRenju),
	)
	cp := gs.snapshot()
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := gs.snapshot()
	return &cp, true
}

// Join assigns a seat to the player if available; returns false for spectators.
func (s *Service) Join(id, playerID string) (domain.Stone, bool, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return 0, false, nil, ErrNotFound
	}
	var side domain.Stone
	if playerID == "" {
		cp := gs.snapshot()
		return 0, false, &cp, nil
	}
	if gs.Black == "" || gs.Black == playerID {
		gs.Black = playerID
		side = domain.Black
	} else if gs.White == "" || gs.White == playerID {
		gs.White = playerID
		side = domain.White
	}
	gs.Updated = time.Now()
	cp := gs.snapshot()
	return side, side != 0, &cp, nil
}

// Play validates seat and turn, applies a move, updates timestamps, and broadcasts.
// Rejected moves return the domain error together with the unchanged state.
func (s *Service) Play(id, playerID string, r, c int) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	// Validate player is seated
	seat, ok := gs.Seat(playerID)
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	// Validate turn
	if seat != gs.Game.Turn {
		s.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	log := s.log.With(
		zap.String("game_id", id),
		zap.Stringer("stone", seat),
		zap.Int("row", r),
		zap.Int("col", c),
	)
	// Apply move
	if err := gs.Game.Play(r, c); err != nil {
		cp := gs.snapshot()
		// Forbidden rejections are shown to everyone watching the board.
		if gs.Game.Forbidden != domain.ReasonNone {
			s.broadcastLocked(id, s.render(cp))
		}
		s.mu.Unlock()
		log.Debug("move rejected", zap.Error(err))
		return &cp, err
	}
	gs.Updated = time.Now()

	cp := gs.snapshot()
	s.broadcastLocked(id, s.render(cp))
	s.mu.Unlock()

	fields := []zap.Field{zap.Int("move", cp.Game.Moves)}
	switch {
	case cp.Game.Winner != nil:
		log.Info("game won", fields...)
	case cp.Game.Draw:
		log.Info("game drawn", fields...)
	default:
		log.Debug("move accepted", fields...)
	}
	return &cp, nil
}

// Reset restarts a game with its rules updated by p. Only seated players
// may reset.
func (s *Service) Reset(id, playerID string, p domain.RulesPatch) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if _, ok := gs.Seat(playerID); !ok {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	if err := gs.Game.Reset(p); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gs.Updated = time.Now()
	cp := gs.snapshot()
	s.broadcastLocked(id, s.render(cp))
	s.mu.Unlock()

	s.log.Info("game reset",
		zap.String("game_id", id),
		zap.Int("size", cp.Game.Rules.Size),
		zap.Bool("renju", cp.Game.Rules.EnforceRenju),
	)
	return &cp, nil
}

// broadcastLocked fans out payload without blocking; slow subscribers are
// closed and dropped. s.mu must be held.
func (s *Service) broadcastLocked(id string, payload []byte) {
	set := s.subs[id]
	dropped := 0
	for sub := range set {
		select {
		case sub.ch <- payload:
		default:
			// drop slow subscriber
			sub.close()
			delete(set, sub)
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Debug("dropped slow subscribers", zap.String("game_id", id), zap.Int("count", dropped))
	}
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}
