// Package bot implements the computer opponent as a game.DecisionPolicy.
package bot

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/peterkuimelis/gwentx/internal/game"
	"github.com/peterkuimelis/gwentx/internal/log"
)

type intent int

const (
	intentPlay intent = iota
	intentPass
	intentLeader
)

type weighted struct {
	intent intent
	weight float64
}

// Policy is the built-in opponent. It never blocks and draws all randomness from its rng,
// so a seeded Policy replays the same match.
type Policy struct {
	Tuning Tuning

	rng *rand.Rand
	zl  *zap.Logger
}

// New creates a bot. A nil rng is seeded from the clock and a nil logger discards output.
func New(rng *rand.Rand, tuning Tuning, zl *zap.Logger) *Policy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Policy{Tuning: tuning.withDefaults(), rng: rng, zl: zl.Named("bot")}
}

func (p *Policy) ChooseDecision(ctx context.Context, view *game.View, options []game.Decision) (game.Decision, error) {
	if err := ctx.Err(); err != nil {
		return game.Decision{}, err
	}
	var plays []game.Decision
	for _, d := range options {
		if d.Type == game.ActionPlayCard {
			plays = append(plays, d)
		}
	}
	if len(view.You.Hand) == 0 || len(plays) == 0 {
		return game.Pass(), nil
	}

	switch p.intent(view) {
	case intentPass:
		return game.Pass(), nil
	case intentLeader:
		// A spent or missing leader still costs the turn; the match treats it as a no-op.
		return game.ActivateLeader(), nil
	}
	return p.choosePlay(view, plays), nil
}

// intent rolls the turn decision: cautious when level or ahead, aggressive when behind.
func (p *Policy) intent(view *game.View) intent {
	t := p.Tuning
	if view.You.Score >= view.Opponent.Score {
		return p.roll([]weighted{{intentPlay, t.PlayWhenAhead}, {intentPass, t.PassWhenAhead}})
	}
	return p.roll([]weighted{{intentPlay, t.PlayWhenBehind}, {intentLeader, t.LeaderWhenBehind}})
}

func (p *Policy) roll(choices []weighted) intent {
	total := 0.0
	for _, c := range choices {
		if c.weight > 0 {
			total += c.weight
		}
	}
	if total <= 0 {
		return intentPlay
	}
	r := p.rng.Float64() * total
	for _, c := range choices {
		if c.weight <= 0 {
			continue
		}
		if r < c.weight {
			return c.intent
		}
		r -= c.weight
	}
	return choices[len(choices)-1].intent
}

// choosePlay picks the strongest playable card, or a random one when none has a strength,
// then the best of its offered placements.
func (p *Policy) choosePlay(view *game.View, plays []game.Decision) game.Decision {
	var cards []game.CardView
	seen := make(map[int]bool)
	for _, d := range plays {
		if seen[d.CardID] {
			continue
		}
		seen[d.CardID] = true
		if c, ok := view.HandCard(d.CardID); ok {
			cards = append(cards, c)
		}
	}
	if len(cards) == 0 {
		return plays[p.rng.Intn(len(plays))]
	}

	var pick *game.CardView
	for i := range cards {
		c := &cards[i]
		if c.HasStrength && (pick == nil || c.Strength > pick.Strength) {
			pick = c
		}
	}
	if pick == nil {
		pick = &cards[p.rng.Intn(len(cards))]
	}

	var best game.Decision
	bestValue := -1
	for _, d := range plays {
		if d.CardID != pick.ID {
			continue
		}
		if v := optionValue(view, *pick, d); v > bestValue {
			best, bestValue = d, v
		}
	}
	p.zl.Debug("play", zap.String("card", pick.Name), zap.Stringer("lane", best.Lane))
	return best
}

// optionValue scores one placement of card: a lane by what the card would add there, a decoy
// by the strength it takes back.
func optionValue(view *game.View, card game.CardView, d game.Decision) int {
	switch {
	case d.TargetID != 0:
		for _, row := range view.MyRows().Rows {
			for _, c := range row.Cards {
				if c.ID == d.TargetID {
					return c.Strength
				}
			}
		}
		return 0
	case d.Lane != game.LaneNone:
		return laneValue(view, card, d.Lane)
	default:
		return 0
	}
}

// laneValue is what card would add to the seat's row in lane. A horn without a strength is
// worth the row it doubles.
func laneValue(view *game.View, card game.CardView, lane game.Lane) int {
	row, ok := myRow(view, lane)
	if !ok {
		return 0
	}
	if !card.HasStrength {
		if row.Horn {
			return 0
		}
		return row.Score
	}
	v := card.Strength
	if row.Weather && !card.Hero {
		v = 1
	}
	if row.Horn && !card.Hero {
		v *= 2
	}
	return v
}

func myRow(view *game.View, lane game.Lane) (game.RowView, bool) {
	for _, row := range view.MyRows().Rows {
		if row.Lane == lane.String() {
			return row, true
		}
	}
	return game.RowView{}, false
}

func (p *Policy) ChooseCards(ctx context.Context, view *game.View, prompt string, candidates []game.CardView, min, max int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if view.Phase == game.PhaseRedraw.String() {
		return p.redraw(candidates, max), nil
	}

	sorted := append([]game.CardView(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Strength > sorted[j].Strength })
	n := min
	if n == 0 && max > 0 {
		n = 1
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	ids := make([]int, 0, n)
	for _, c := range sorted[:n] {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// redraw swaps out up to max of the weakest non-hero units below the tuning threshold.
func (p *Policy) redraw(hand []game.CardView, max int) []int {
	var weak []game.CardView
	for _, c := range hand {
		if c.HasStrength && !c.Hero && c.Strength < p.Tuning.RedrawBelow {
			weak = append(weak, c)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Strength < weak[j].Strength })
	if len(weak) > max {
		weak = weak[:max]
	}
	ids := make([]int, 0, len(weak))
	for _, c := range weak {
		ids = append(ids, c.ID)
	}
	return ids
}

func (p *Policy) ChooseLane(ctx context.Context, view *game.View, card game.CardView, lanes []game.Lane) (game.Lane, error) {
	if err := ctx.Err(); err != nil {
		return game.LaneNone, err
	}
	if len(lanes) == 0 {
		return game.LaneNone, nil
	}
	best, bestValue := lanes[0], -1
	for _, lane := range lanes {
		if v := laneValue(view, card, lane); v > bestValue {
			best, bestValue = lane, v
		}
	}
	return best, nil
}

func (p *Policy) Notify(ctx context.Context, event log.GameEvent) error {
	p.zl.Debug("event", zap.Stringer("type", event.Type), zap.String("details", event.Details))
	return nil
}
