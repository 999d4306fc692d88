package mcp

import (
	"context"
	"fmt"

	"github.com/peterkuimelis/gwentx/internal/game"
	"github.com/peterkuimelis/gwentx/internal/log"
	"github.com/peterkuimelis/gwentx/internal/net"
)

// MCPController implements game.DecisionPolicy by sending decisions to the MCP session's
// pending channel and blocking on a response channel.
type MCPController struct {
	player     int
	session    *GameSession
	responseCh chan any
}

// NewMCPController creates a controller for the given side.
func NewMCPController(player int, session *GameSession) *MCPController {
	return &MCPController{
		player:     player,
		session:    session,
		responseCh: make(chan any),
	}
}

// ask publishes p and waits for the tool's answer.
func (c *MCPController) ask(ctx context.Context, p *PendingDecision) (any, error) {
	p.Player = c.player
	select {
	case c.session.pendingCh <- p:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-c.responseCh:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ChooseDecision implements game.DecisionPolicy.
func (c *MCPController) ChooseDecision(ctx context.Context, view *game.View, options []game.Decision) (game.Decision, error) {
	views := make([]net.OptionView, 0, len(options))
	for i, d := range options {
		views = append(views, net.OptionView{Index: i, Desc: d.String()})
	}

	resp, err := c.ask(ctx, &PendingDecision{Type: DecisionChooseDecision, State: view, Options: views})
	if err != nil {
		return game.Decision{}, err
	}
	dr, ok := resp.(DecisionResponse)
	if !ok {
		return game.Decision{}, fmt.Errorf("unexpected response %T to %s", resp, DecisionChooseDecision)
	}
	if dr.Index < 0 || dr.Index >= len(options) {
		return game.Pass(), nil
	}
	return options[dr.Index], nil
}

// ChooseCards implements game.DecisionPolicy.
func (c *MCPController) ChooseCards(ctx context.Context, view *game.View, prompt string, candidates []game.CardView, min, max int) ([]int, error) {
	views := make([]net.CandidateView, 0, len(candidates))
	for i, cv := range candidates {
		views = append(views, net.CandidateView{Index: i, CardView: cv})
	}

	resp, err := c.ask(ctx, &PendingDecision{
		Type:       DecisionChooseCards,
		State:      view,
		Prompt:     prompt,
		Candidates: views,
		Min:        min,
		Max:        max,
	})
	if err != nil {
		return nil, err
	}
	cr, ok := resp.(CardsResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response %T to %s", resp, DecisionChooseCards)
	}

	var ids []int
	for _, idx := range cr.Indices {
		if idx >= 0 && idx < len(candidates) {
			ids = append(ids, candidates[idx].ID)
		}
	}
	return ids, nil
}

// ChooseLane implements game.DecisionPolicy.
func (c *MCPController) ChooseLane(ctx context.Context, view *game.View, card game.CardView, lanes []game.Lane) (game.Lane, error) {
	names := make([]string, 0, len(lanes))
	for _, l := range lanes {
		names = append(names, l.String())
	}

	resp, err := c.ask(ctx, &PendingDecision{Type: DecisionChooseLane, State: view, Card: &card, Lanes: names})
	if err != nil {
		return game.LaneNone, err
	}
	lr, ok := resp.(LaneResponse)
	if !ok {
		return game.LaneNone, fmt.Errorf("unexpected response %T to %s", resp, DecisionChooseLane)
	}
	if lr.Index < 0 || lr.Index >= len(lanes) {
		return lanes[0], nil
	}
	return lanes[lr.Index], nil
}

// Notify implements game.DecisionPolicy. It buffers the event for the next tool response and
// refreshes the view get_game_state reports.
func (c *MCPController) Notify(ctx context.Context, event log.GameEvent) error {
	c.session.appendEvent(*net.NewEventView(event))
	if m := c.session.match; m != nil {
		c.session.setView(m.View(c.player))
	}
	return nil
}
