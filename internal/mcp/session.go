package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	stdnet "net"
	"sync"

	"go.uber.org/zap"

	"github.com/peterkuimelis/gwentx/internal/bot"
	"github.com/peterkuimelis/gwentx/internal/game"
	"github.com/peterkuimelis/gwentx/internal/log"
	gwentnet "github.com/peterkuimelis/gwentx/internal/net"
)

// DecisionType identifies what kind of decision the match is waiting for.
type DecisionType string

const (
	DecisionChooseDecision DecisionType = "choose_decision"
	DecisionChooseCards    DecisionType = "choose_cards"
	DecisionChooseLane     DecisionType = "choose_lane"
	DecisionGameOver       DecisionType = "game_over"
)

// Opponent kinds accepted by start_game.
const (
	OpponentBot   = "bot"
	OpponentHuman = "human"
)

// PendingDecision represents a decision the match is waiting for.
type PendingDecision struct {
	Type       DecisionType             `json:"type"`
	Player     int                      `json:"player"`
	State      *game.View               `json:"state"`
	Options    []gwentnet.OptionView    `json:"options,omitempty"`
	Prompt     string                   `json:"prompt,omitempty"`
	Candidates []gwentnet.CandidateView `json:"candidates,omitempty"`
	Min        int                      `json:"min,omitempty"`
	Max        int                      `json:"max,omitempty"`
	Card       *game.CardView           `json:"card,omitempty"`
	Lanes      []string                 `json:"lanes,omitempty"`
}

// Response types sent back from MCP tools to the controller.

type DecisionResponse struct {
	Index int
}

type CardsResponse struct {
	Indices []int
}

type LaneResponse struct {
	Index int
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	MatchID  string               `json:"match_id,omitempty"`
	Events   []gwentnet.EventView `json:"events"`
	State    *game.View           `json:"state,omitempty"`
	Pending  *PendingView         `json:"pending,omitempty"`
	GameOver bool                 `json:"game_over"`
	Winner   int                  `json:"winner,omitempty"`
	Result   string               `json:"result,omitempty"`
	Port     string               `json:"port,omitempty"`
}

// PendingView is the pending decision as presented in the tool response JSON.
type PendingView struct {
	Type       DecisionType             `json:"type"`
	ForPlayer  string                   `json:"for_player"`
	Options    []gwentnet.OptionView    `json:"options,omitempty"`
	Prompt     string                   `json:"prompt,omitempty"`
	Candidates []gwentnet.CandidateView `json:"candidates,omitempty"`
	Min        int                      `json:"min,omitempty"`
	Max        int                      `json:"max,omitempty"`
	Card       *game.CardView           `json:"card,omitempty"`
	Lanes      []string                 `json:"lanes,omitempty"`
}

// SessionConfig describes the match an MCP session runs.
type SessionConfig struct {
	Catalog      *game.Catalog
	Rules        game.Rules
	AgentDeck    string // deck selector for the MCP seat
	AgentSide    int    // 0 or 1
	AgentName    string
	Opponent     string // OpponentBot or OpponentHuman
	OpponentDeck string // bot deck selector; a human picks theirs when joining
	Port         string // TCP port the human joins on
	Tuning       bot.Tuning
	Seed         int64
	Log          *zap.Logger
	Recorder     gwentnet.Recorder // optional
}

// GameSession holds the state of a single MCP game session.
type GameSession struct {
	match     *game.Match
	agentCtrl *MCPController
	humanCtrl *gwentnet.NetworkController
	agentSide int
	port      string

	listener  stdnet.Listener
	humanConn stdnet.Conn

	pendingCh chan *PendingDecision
	cancel    context.CancelFunc
	done      chan struct{}

	mu             sync.Mutex
	currentPending *PendingDecision
	lastView       *game.View
	events         []gwentnet.EventView
	gameOver       bool
	winner         int
	result         string
}

// NewGameSession creates a session and starts its match in the background. Against a human it
// listens on cfg.Port and blocks until they run `gwentx join`.
func NewGameSession(ctx context.Context, cfg SessionConfig) (*GameSession, error) {
	zl := cfg.Log
	if zl == nil {
		zl = zap.NewNop()
	}
	zl = zl.Named("mcp")
	if cfg.Catalog == nil {
		cfg.Catalog = game.DefaultCatalog()
	}
	if cfg.AgentSide != 0 && cfg.AgentSide != 1 {
		return nil, fmt.Errorf("agent side must be 0 or 1, got %d", cfg.AgentSide)
	}
	if cfg.AgentDeck == "" {
		cfg.AgentDeck = "1"
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Int63()
	}

	agentDeck, err := cfg.Catalog.Deck(cfg.AgentDeck)
	if err != nil {
		return nil, fmt.Errorf("load agent deck: %w", err)
	}
	if err := agentDeck.Validate(cfg.Rules); err != nil {
		return nil, err
	}

	sess := &GameSession{
		agentSide: cfg.AgentSide,
		port:      cfg.Port,
		pendingCh: make(chan *PendingDecision, 1),
		done:      make(chan struct{}),
		winner:    -1,
	}
	sess.agentCtrl = NewMCPController(cfg.AgentSide, sess)

	var opponent game.DecisionPolicy
	var oppDeck game.DeckList
	oppName := "Bot"
	switch cfg.Opponent {
	case "", OpponentBot:
		sel := cfg.OpponentDeck
		if sel == "" {
			sel = "2"
		}
		if oppDeck, err = cfg.Catalog.Deck(sel); err != nil {
			return nil, fmt.Errorf("load bot deck: %w", err)
		}
		opponent = bot.New(rand.New(rand.NewSource(cfg.Seed+1)), cfg.Tuning, zl)

	case OpponentHuman:
		join, err := sess.acceptHuman(ctx, cfg.Port)
		if err != nil {
			return nil, err
		}
		sel := join.Deck
		if sel == "" {
			sel = "2"
		}
		if oppDeck, err = cfg.Catalog.Deck(sel); err != nil {
			sess.closeConns()
			return nil, fmt.Errorf("load human deck: %w", err)
		}
		oppName = join.Name
		opponent = sess.humanCtrl

	default:
		return nil, fmt.Errorf("unknown opponent %q (want %s or %s)", cfg.Opponent, OpponentBot, OpponentHuman)
	}
	if err := oppDeck.Validate(cfg.Rules); err != nil {
		sess.closeConns()
		return nil, err
	}

	mcfg := game.MatchConfig{
		Rules:  cfg.Rules,
		Logger: log.NewZapLogger(zl),
		Log:    zl,
		Seed:   cfg.Seed,
	}
	mcfg.Players[cfg.AgentSide] = game.PlayerSetup{Name: cfg.AgentName, Deck: agentDeck}
	mcfg.Players[1-cfg.AgentSide] = game.PlayerSetup{Name: oppName, Deck: oppDeck}

	var ctrls [2]game.DecisionPolicy
	ctrls[cfg.AgentSide] = sess.agentCtrl
	ctrls[1-cfg.AgentSide] = opponent
	sess.match = game.NewMatch(mcfg, ctrls[0], ctrls[1])

	// The match outlives the start_game call, so it runs on its own context.
	runCtx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	go sess.run(runCtx, cfg.Recorder, zl)

	return sess, nil
}

// acceptHuman listens on port and reads the joiner's handshake.
func (s *GameSession) acceptHuman(ctx context.Context, port string) (gwentnet.ClientMessage, error) {
	var lc stdnet.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", ":"+port)
	if err != nil {
		return gwentnet.ClientMessage{}, fmt.Errorf("listen on port %s: %w", port, err)
	}
	s.listener = ln
	if addr, ok := ln.Addr().(*stdnet.TCPAddr); ok {
		s.port = fmt.Sprint(addr.Port)
	}

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	// Accept one connection (blocks until the human runs `gwentx join`)
	conn, err := ln.Accept()
	if err != nil {
		ln.Close()
		if ctx.Err() != nil {
			return gwentnet.ClientMessage{}, ctx.Err()
		}
		return gwentnet.ClientMessage{}, fmt.Errorf("accept: %w", err)
	}
	s.humanConn = conn

	// Read join message to get the human's deck choice
	var joinMsg gwentnet.ClientMessage
	if err := json.NewDecoder(conn).Decode(&joinMsg); err != nil {
		s.closeConns()
		return gwentnet.ClientMessage{}, fmt.Errorf("read join message: %w", err)
	}
	if joinMsg.Type != gwentnet.MsgJoin {
		s.closeConns()
		return gwentnet.ClientMessage{}, fmt.Errorf("expected %s, got %q", gwentnet.MsgJoin, joinMsg.Type)
	}
	s.humanCtrl = gwentnet.NewNetworkController(conn, 1-s.agentSide)
	return joinMsg, nil
}

func (s *GameSession) closeConns() {
	if s.humanConn != nil {
		s.humanConn.Close()
	}
	if s.listener != nil {
		s.listener.Close()
	}
}

// run plays the match to completion and reports the result through pendingCh.
func (s *GameSession) run(ctx context.Context, rec gwentnet.Recorder, zl *zap.Logger) {
	defer close(s.done)
	defer s.closeConns()

	winner, err := s.match.Run(ctx)
	result := s.match.Result
	switch {
	case errors.Is(err, context.Canceled):
		result = "match abandoned"
	case err != nil:
		result = fmt.Sprintf("error: %v", err)
	case rec != nil:
		if err := rec.RecordMatch(ctx, s.match); err != nil {
			zl.Warn("record match", zap.String("match", s.match.ID), zap.Error(err))
		}
	}
	if result == "" {
		result = fmt.Sprintf("Game over. Winner: %s", log.PlayerName(winner))
	}

	// Notify the human over TCP
	if s.humanCtrl != nil {
		_ = s.humanCtrl.SendGameOver(winner, result)
	}

	view := s.match.View(s.agentSide)
	s.mu.Lock()
	s.gameOver = true
	s.winner = winner
	s.result = result
	s.lastView = view
	s.mu.Unlock()

	// Wake whoever is waiting on the agent side
	select {
	case s.pendingCh <- &PendingDecision{Type: DecisionGameOver, Player: winner, State: view}:
	case <-ctx.Done():
	}
}

// Close abandons the match and waits for its goroutine to exit.
func (s *GameSession) Close() {
	s.cancel()
	s.closeConns()
	<-s.done
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev gwentnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *GameSession) setView(v *game.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastView = v
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []gwentnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []gwentnet.EventView{}
	}
	return events
}

// waitForPending blocks until the next decision arrives from the match, then builds a
// ToolResponse with the accumulated events and the pending decision.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	var pending *PendingDecision
	select {
	case pending = <-s.pendingCh:
	case <-s.done:
		select {
		case pending = <-s.pendingCh:
		default:
			return s.snapshot(), nil
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	s.currentPending = pending
	s.lastView = pending.State
	s.mu.Unlock()

	return s.snapshot(), nil
}

// snapshot describes the session without waiting on the match.
func (s *GameSession) snapshot() *ToolResponse {
	events := s.drainEvents()

	s.mu.Lock()
	defer s.mu.Unlock()
	resp := &ToolResponse{
		MatchID:  s.match.ID,
		Events:   events,
		State:    s.lastView,
		GameOver: s.gameOver,
		Port:     s.port,
	}
	if s.gameOver {
		resp.Winner = s.winner
		resp.Result = s.result
		return resp
	}
	if p := s.currentPending; p != nil && p.Type != DecisionGameOver {
		resp.Pending = &PendingView{
			Type:       p.Type,
			ForPlayer:  s.playerLabel(p.Player),
			Options:    p.Options,
			Prompt:     p.Prompt,
			Candidates: p.Candidates,
			Min:        p.Min,
			Max:        p.Max,
			Card:       p.Card,
			Lanes:      p.Lanes,
		}
	}
	return resp
}

// takePending hands the current decision to a tool exactly once.
func (s *GameSession) takePending(want DecisionType) (*PendingDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.currentPending
	switch {
	case s.gameOver:
		return nil, errors.New("the game is over; use start_game to play again")
	case p == nil:
		return nil, errors.New("no pending decision")
	case p.Type != want:
		return nil, fmt.Errorf("wrong tool: pending decision is '%s', not '%s'", p.Type, want)
	}
	return p, nil
}

// respond delivers a tool's answer to the controller and waits for the next decision.
func (s *GameSession) respond(ctx context.Context, answer any) (*ToolResponse, error) {
	s.mu.Lock()
	s.currentPending = nil
	s.mu.Unlock()

	select {
	case s.agentCtrl.responseCh <- answer:
	case <-s.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.waitForPending(ctx)
}

// playerLabel returns "agent" or "opponent" for the given side.
func (s *GameSession) playerLabel(player int) string {
	if player == s.agentSide {
		return "agent"
	}
	return "opponent"
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
