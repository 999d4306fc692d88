package game

import "fmt"

// LegalDecisions lists every decision side may submit right now: one PlayCard per hand card
// and lane (and per decoy target), then Pass, then ActivateLeader while it is available.
func (m *Match) LegalDecisions(side int) []Decision {
	if m.Over || m.Phase != PhaseRoundActive || side != m.TurnPlayer {
		return nil
	}
	p := m.Players[side]

	var options []Decision
	for _, card := range p.Hand {
		c := card.Card
		switch {
		case c.IsUnit():
			for _, lane := range c.EligibleLanes() {
				d := PlayCard(card.ID, lane)
				d.Desc = fmt.Sprintf("Play %s → %s", c.Describe(), lane)
				if c.Ability == AbilitySpy {
					d.Desc += " (opponent's side)"
				}
				options = append(options, d)
			}
		case c.Ability == AbilityDecoy:
			for _, target := range m.decoyTargets(side) {
				d := PlayCard(card.ID, LaneNone)
				d.TargetID = target.ID
				d.Desc = fmt.Sprintf("Play %s ↔ %s", c.Name, target.Card.Name)
				options = append(options, d)
			}
		case c.Ability == AbilityHorn && m.Rules.HornScope == ScopeCardLane:
			for _, lane := range BoardLanes {
				d := PlayCard(card.ID, lane)
				d.Desc = fmt.Sprintf("Play %s → %s", c.Describe(), lane)
				options = append(options, d)
			}
		default:
			d := PlayCard(card.ID, LaneNone)
			d.Desc = "Play " + c.Describe()
			options = append(options, d)
		}
	}

	options = append(options, Pass())
	if p.LeaderAvailable() {
		d := ActivateLeader()
		d.Desc = fmt.Sprintf("Activate Leader: %s (%s)", p.Leader.Name, p.Leader.Ability)
		options = append(options, d)
	}
	return options
}

// LegalDecisionsFor narrows LegalDecisions to the plays of the named hand card.
func (m *Match) LegalDecisionsFor(side int, cardName string) []Decision {
	var out []Decision
	for _, d := range m.LegalDecisions(side) {
		if d.Type != ActionPlayCard {
			continue
		}
		if card, _ := m.Players[side].FindInHand(d.CardID); card != nil && card.Card.Name == cardName {
			out = append(out, d)
		}
	}
	return out
}

// BoardView returns a snapshot of the board.
func (m *Match) BoardView() BoardView {
	return NewBoardView(m.Board)
}

// HandView returns a snapshot of side's hand.
func (m *Match) HandView(side int) []CardView {
	return cardViews(m.Players[side].Hand)
}

// Scores returns both sides' current totals.
func (m *Match) Scores() [2]int {
	return [2]int{m.Board.TotalScore(0), m.Board.TotalScore(1)}
}

// Effects reports the weather and horn flags of side's row for lane.
func (m *Match) Effects(side int, lane Lane) (weather, horn bool) {
	row := m.Board.Row(side, lane)
	if row == nil {
		return false, false
	}
	return row.Weather, row.Horn
}

// Lives returns both sides' remaining lives.
func (m *Match) Lives() [2]int {
	return [2]int{m.Players[0].Life, m.Players[1].Life}
}

// CurrentTurn returns the side whose turn it is.
func (m *Match) CurrentTurn() int {
	return m.TurnPlayer
}

// RoundNumber returns the current round (1-based, 0 before the first round).
func (m *Match) RoundNumber() int {
	return m.Round
}

// View returns the match from side's perspective: its own hand is visible, the opponent's
// hand is only counted.
func (m *Match) View(side int) *View {
	scores := m.Scores()
	return &View{
		Side:       side,
		MatchID:    m.ID,
		Round:      m.Round,
		Turn:       m.Turn,
		Phase:      m.Phase.String(),
		IsYourTurn: !m.Over && m.Phase == PhaseRoundActive && m.TurnPlayer == side,
		You:        m.playerView(side, true, scores[side]),
		Opponent:   m.playerView(1-side, false, scores[1-side]),
		Board:      m.BoardView(),
		Over:       m.Over,
		Winner:     m.Winner,
	}
}

func (m *Match) playerView(side int, own bool, score int) PlayerView {
	p := m.Players[side]
	pv := PlayerView{
		Name:           p.Name,
		Faction:        p.Faction,
		Life:           p.Life,
		Passed:         p.Passed,
		HandCount:      len(p.Hand),
		DeckCount:      p.Deck.Len(),
		GraveyardCount: len(p.Deck.graveyard),
		LeaderUsed:     p.LeaderUsed,
		Score:          score,
	}
	if p.Leader != nil {
		pv.Leader = p.Leader.Name
	}
	if own {
		pv.Hand = cardViews(p.Hand)
	}
	return pv
}
