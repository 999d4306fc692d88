package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/peterkuimelis/gwentx/internal/game"
	"github.com/peterkuimelis/gwentx/internal/log"
)

// invalidDecision is what an out-of-range answer turns into. The match rejects it and asks
// again.
var invalidDecision = game.Decision{Type: game.ActionType(-1)}

// NetworkController implements game.DecisionPolicy over a connection.
type NetworkController struct {
	conn   net.Conn
	enc    *json.Encoder
	dec    *json.Decoder
	player int // which side this controller is (0 or 1)
	mu     sync.Mutex
}

// NewNetworkController creates a new controller for the given connection.
func NewNetworkController(conn net.Conn, player int) *NetworkController {
	return &NetworkController{
		conn:   conn,
		enc:    json.NewEncoder(conn),
		dec:    json.NewDecoder(conn),
		player: player,
	}
}

// send sends a server message to the client. Must be called with mu held.
func (nc *NetworkController) send(msg ServerMessage) error {
	return nc.enc.Encode(msg)
}

// recv reads a client message. Must be called with mu held.
func (nc *NetworkController) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := nc.dec.Decode(&msg)
	return msg, err
}

// exchange sends msg and waits for the reply. Cancelling ctx unblocks the read by expiring
// the connection deadline.
func (nc *NetworkController) exchange(ctx context.Context, msg ServerMessage) (ClientMessage, error) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = nc.conn.SetDeadline(time.Now()) })
	defer stop()

	if err := nc.send(msg); err != nil {
		if ctx.Err() != nil {
			return ClientMessage{}, ctx.Err()
		}
		return ClientMessage{}, fmt.Errorf("send %s: %w", msg.Type, err)
	}
	resp, err := nc.recv()
	if err != nil {
		if ctx.Err() != nil {
			return ClientMessage{}, ctx.Err()
		}
		return ClientMessage{}, fmt.Errorf("recv reply to %s: %w", msg.Type, err)
	}
	return resp, nil
}

// ChooseDecision implements game.DecisionPolicy.
func (nc *NetworkController) ChooseDecision(ctx context.Context, view *game.View, options []game.Decision) (game.Decision, error) {
	views := make([]OptionView, 0, len(options))
	for i, d := range options {
		views = append(views, OptionView{Index: i, Desc: d.String()})
	}

	resp, err := nc.exchange(ctx, ServerMessage{Type: MsgChooseDecision, Options: views, State: view})
	if err != nil {
		return game.Decision{}, err
	}
	if resp.Index < 0 || resp.Index >= len(options) {
		return invalidDecision, nil
	}
	return options[resp.Index], nil
}

// ChooseCards implements game.DecisionPolicy. Out-of-range indices are dropped.
func (nc *NetworkController) ChooseCards(ctx context.Context, view *game.View, prompt string, candidates []game.CardView, min, max int) ([]int, error) {
	views := make([]CandidateView, 0, len(candidates))
	for i, c := range candidates {
		views = append(views, CandidateView{Index: i, CardView: c})
	}

	resp, err := nc.exchange(ctx, ServerMessage{
		Type:       MsgChooseCards,
		Prompt:     prompt,
		Candidates: views,
		Min:        min,
		Max:        max,
		State:      view,
	})
	if err != nil {
		return nil, err
	}

	var ids []int
	for _, idx := range resp.Indices {
		if idx >= 0 && idx < len(candidates) {
			ids = append(ids, candidates[idx].ID)
		}
	}
	return ids, nil
}

// ChooseLane implements game.DecisionPolicy. An out-of-range index picks the first lane.
func (nc *NetworkController) ChooseLane(ctx context.Context, view *game.View, card game.CardView, lanes []game.Lane) (game.Lane, error) {
	names := make([]string, 0, len(lanes))
	for _, l := range lanes {
		names = append(names, l.String())
	}

	resp, err := nc.exchange(ctx, ServerMessage{Type: MsgChooseLane, Card: &card, Lanes: names, State: view})
	if err != nil {
		return game.LaneNone, err
	}
	if resp.Index < 0 || resp.Index >= len(lanes) {
		return lanes[0], nil
	}
	return lanes[resp.Index], nil
}

// SendGameOver sends a game_over message to the client.
func (nc *NetworkController) SendGameOver(winner int, result string) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: MsgGameOver, Winner: winner, Result: result})
}

// Notify implements game.DecisionPolicy.
func (nc *NetworkController) Notify(ctx context.Context, event log.GameEvent) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = nc.conn.SetDeadline(time.Now()) })
	defer stop()
	return nc.send(ServerMessage{Type: MsgNotify, Event: NewEventView(event)})
}

// NewEventView flattens a game event for the wire.
func NewEventView(event log.GameEvent) *EventView {
	return &EventView{
		Round:   event.Round,
		Turn:    event.Turn,
		Phase:   event.Phase,
		Player:  event.Player,
		Type:    event.Type.String(),
		Card:    event.Card,
		Details: event.Details,
	}
}
