package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/peterkuimelis/gwentx/internal/log"
)

// ScriptedPolicy is a DecisionPolicy that follows a predefined script of decisions.
// Used in tests to deterministically drive the match.
type ScriptedPolicy struct {
	t       *testing.T
	name    string
	actions []ScriptedAction
	pos     int

	// For ChooseCards prompts
	cardChoices []ScriptedCardChoice
	cardPos     int

	// For ChooseLane prompts
	laneChoices []Lane
	lanePos     int

	// Called on every notification; used to check invariants mid-match.
	onNotify func(event log.GameEvent)
	notified int

	// Once the script runs out, play the first offered decision instead of passing.
	greedy bool
}

type ScriptedAction struct {
	// Match by ActionType: picks the first offered decision of this type
	Type ActionType
	// Optional: match by hand card name as well
	CardName string
	// Optional: match by lane
	Lane Lane
	// Optional: match by decoy target name
	TargetName string
	// Raw decisions are returned verbatim, offered or not
	Raw *Decision
}

type ScriptedCardChoice struct {
	// Choose cards by name
	Names []string
}

func NewScriptedPolicy(t *testing.T, name string) *ScriptedPolicy {
	return &ScriptedPolicy{t: t, name: name}
}

func (sp *ScriptedPolicy) AddPlay(cardName string, lane Lane) *ScriptedPolicy {
	sp.actions = append(sp.actions, ScriptedAction{Type: ActionPlayCard, CardName: cardName, Lane: lane})
	return sp
}

func (sp *ScriptedPolicy) AddDecoy(decoyName, targetName string) *ScriptedPolicy {
	sp.actions = append(sp.actions, ScriptedAction{Type: ActionPlayCard, CardName: decoyName, TargetName: targetName})
	return sp
}

func (sp *ScriptedPolicy) AddPass() *ScriptedPolicy {
	sp.actions = append(sp.actions, ScriptedAction{Type: ActionPass})
	return sp
}

func (sp *ScriptedPolicy) AddLeader() *ScriptedPolicy {
	sp.actions = append(sp.actions, ScriptedAction{Type: ActionActivateLeader})
	return sp
}

func (sp *ScriptedPolicy) Greedy() *ScriptedPolicy {
	sp.greedy = true
	return sp
}

func (sp *ScriptedPolicy) AddRaw(d Decision) *ScriptedPolicy {
	sp.actions = append(sp.actions, ScriptedAction{Raw: &d})
	return sp
}

func (sp *ScriptedPolicy) AddCardChoice(names ...string) *ScriptedPolicy {
	sp.cardChoices = append(sp.cardChoices, ScriptedCardChoice{Names: names})
	return sp
}

func (sp *ScriptedPolicy) AddLaneChoice(lane Lane) *ScriptedPolicy {
	sp.laneChoices = append(sp.laneChoices, lane)
	return sp
}

func (sp *ScriptedPolicy) ChooseDecision(ctx context.Context, view *View, options []Decision) (Decision, error) {
	if sp.pos >= len(sp.actions) {
		if sp.greedy && len(options) > 0 {
			return options[0], nil
		}
		return Pass(), nil
	}

	scripted := sp.actions[sp.pos]
	if scripted.Raw != nil {
		sp.pos++
		return *scripted.Raw, nil
	}

	for _, d := range options {
		if d.Type != scripted.Type {
			continue
		}
		if scripted.CardName != "" {
			card, ok := view.HandCard(d.CardID)
			if !ok || card.Name != scripted.CardName {
				continue
			}
		}
		if scripted.Lane != LaneNone && d.Lane != scripted.Lane {
			continue
		}
		if scripted.TargetName != "" && boardCardName(view, d.TargetID) != scripted.TargetName {
			continue
		}
		sp.pos++
		return d, nil
	}

	sp.t.Fatalf("[%s] scripted action %+v not offered; options: %v", sp.name, scripted, options)
	return Decision{}, fmt.Errorf("[%s] scripted action not offered", sp.name)
}

func boardCardName(view *View, id int) string {
	for _, side := range view.Board.Sides {
		for _, row := range side.Rows {
			for _, c := range row.Cards {
				if c.ID == id {
					return c.Name
				}
			}
		}
	}
	return ""
}

func (sp *ScriptedPolicy) ChooseCards(ctx context.Context, view *View, prompt string, candidates []CardView, min, max int) ([]int, error) {
	if sp.cardPos >= len(sp.cardChoices) {
		// Default: choose the first min candidates
		if min > len(candidates) {
			min = len(candidates)
		}
		var ids []int
		for _, c := range candidates[:min] {
			ids = append(ids, c.ID)
		}
		return ids, nil
	}

	choice := sp.cardChoices[sp.cardPos]
	sp.cardPos++

	var result []int
	used := make(map[int]bool)
	for _, name := range choice.Names {
		for _, c := range candidates {
			if c.Name == name && !used[c.ID] {
				used[c.ID] = true
				result = append(result, c.ID)
				break
			}
		}
	}

	if len(result) < min {
		return nil, fmt.Errorf("[%s] card choice: wanted %v but only found %d in candidates", sp.name, choice.Names, len(result))
	}
	return result, nil
}

func (sp *ScriptedPolicy) ChooseLane(ctx context.Context, view *View, card CardView, lanes []Lane) (Lane, error) {
	if sp.lanePos >= len(sp.laneChoices) {
		return lanes[0], nil
	}
	lane := sp.laneChoices[sp.lanePos]
	sp.lanePos++
	return lane, nil
}

func (sp *ScriptedPolicy) Notify(ctx context.Context, event log.GameEvent) error {
	sp.notified++
	if sp.onNotify != nil {
		sp.onNotify(event)
	}
	return nil
}

// --- Test card helpers ---

func unit(name string, strength int, row Lane, ability Ability) *Card {
	return &Card{
		Name:        name,
		Strength:    strength,
		HasStrength: true,
		Row:         row,
		Ability:     ability,
	}
}

func hero(name string, strength int, row Lane) *Card {
	return &Card{
		Name:        name,
		Strength:    strength,
		HasStrength: true,
		Row:         row,
		Hero:        true,
	}
}

func special(name string, ability Ability) *Card {
	category := CategorySpecial
	if ability.IsWeather() || ability == AbilityClearWeather {
		category = CategoryWeather
	}
	return &Card{
		Name:     name,
		Ability:  ability,
		Category: category,
	}
}

var nextTestID = 1000

// inst wraps a card in a fresh instance owned by side.
func inst(c *Card, side int) *CardInstance {
	nextTestID++
	return &CardInstance{Card: c, ID: nextTestID, Owner: side}
}

// testRules is the default rule set without the redraw prompt.
func testRules() Rules {
	r := DefaultRules()
	r.RedrawMax = 0
	return r
}

// makePaddedDeck creates a deck with the given cards on top (index 0 drawn first) and
// filler below to reach minSize.
func makePaddedDeck(topCards []*Card, minSize int) DeckList {
	filler := unit("Filler Token", 1, LaneSiege, AbilityNone)
	cards := append([]*Card(nil), topCards...)
	for len(cards) < minSize {
		cards = append(cards, filler)
	}
	return DeckList{Name: "Test Deck", Faction: "Test", Cards: cards}
}

// handOf builds a deck whose initial hand is exactly the given cards.
func handOf(cards ...*Card) DeckList {
	return makePaddedDeck(cards, len(cards)+DefaultInitialHand)
}

// checkCardLocations asserts every card instance of the match sits in exactly one of a deck,
// a hand, a board row or a graveyard.
func checkCardLocations(t *testing.T, m *Match, total int) {
	t.Helper()
	seen := make(map[int]string)
	place := func(where string, cards []*CardInstance) {
		for _, c := range cards {
			if prev, dup := seen[c.ID]; dup {
				t.Fatalf("card %s (#%d) is in both %s and %s", c.Card.Name, c.ID, prev, where)
			}
			seen[c.ID] = where
		}
	}
	for side, p := range m.Players {
		place(fmt.Sprintf("P%d deck", side+1), p.Deck.Cards())
		place(fmt.Sprintf("P%d hand", side+1), p.Hand)
		place(fmt.Sprintf("P%d graveyard", side+1), p.Deck.Graveyard())
	}
	place("board", m.Board.AllCards())
	if len(seen) != total {
		t.Fatalf("expected %d card instances, found %d", total, len(seen))
	}
}

// newTestMatch builds a deterministic match with P1 opening round 1.
func newTestMatch(t *testing.T, cfg MatchConfig, p0, p1 *ScriptedPolicy) (*Match, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	cfg.Logger = logger
	cfg.NoShuffle = true // deterministic tests
	if !cfg.FixedFirstPlayer {
		cfg.FixedFirstPlayer, cfg.FirstPlayer = true, 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	// Scripts answer card prompts in order, so the redraw prompt stays off unless asked for.
	if cfg.Rules == (Rules{}) {
		cfg.Rules = testRules()
	}
	m := NewMatch(cfg, p0, p1)

	total := len(cfg.Players[0].Deck.Cards) + len(cfg.Players[1].Deck.Cards)
	check := func(log.GameEvent) { checkCardLocations(t, m, total) }
	p0.onNotify = check
	return m, logger
}

// runMatchToCompletion runs a match and returns it with the logger for inspection.
func runMatchToCompletion(t *testing.T, cfg MatchConfig, p0, p1 *ScriptedPolicy) (*Match, *log.MemoryLogger) {
	t.Helper()
	m, logger := newTestMatch(t, cfg, p0, p1)

	winner, err := m.Run(context.Background())
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
		t.Fatalf("Match error: %v", err)
	}

	t.Logf("Match result: winner=%d (%s)", winner, m.Result)
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
	return m, logger
}
