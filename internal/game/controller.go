package game

import (
	"context"

	"github.com/peterkuimelis/gwentx/internal/log"
)

// DecisionPolicy is one seat of a match. The bot, the TCP seat and the MCP seat all
// implement it, so the match never knows who is playing.
type DecisionPolicy interface {
	// ChooseDecision presents the legal decisions and waits for the seat to pick one.
	// Returning a decision outside options is allowed; the match validates it.
	ChooseDecision(ctx context.Context, view *View, options []Decision) (Decision, error)

	// ChooseCards asks the seat to select between min and max candidates (redraw,
	// resurrection, decoy target). It returns the chosen card IDs.
	ChooseCards(ctx context.Context, view *View, prompt string, candidates []CardView, min, max int) ([]int, error)

	// ChooseLane asks the seat which lane to place an agile card in, or where a horn lands.
	ChooseLane(ctx context.Context, view *View, card CardView, lanes []Lane) (Lane, error)

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}
