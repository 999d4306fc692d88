package game

// Player represents one side's state for the whole match. Round score is derived from the
// board and never stored.
type Player struct {
	Name       string
	Faction    string
	Deck       *Deck // also owns the graveyard
	Hand       []*CardInstance
	Leader     *Card // single use, not part of the deck
	LeaderUsed bool
	Life       int
	Passed     bool
}

// HandCount returns the number of cards in hand.
func (p *Player) HandCount() int {
	return len(p.Hand)
}

// LeaderAvailable reports whether the leader ability can still be activated.
func (p *Player) LeaderAvailable() bool {
	return p.Leader != nil && !p.LeaderUsed
}

// FindInHand returns the hand card with the given instance ID and its index, or nil, -1.
func (p *Player) FindInHand(id int) (*CardInstance, int) {
	for i, c := range p.Hand {
		if c.ID == id {
			return c, i
		}
	}
	return nil, -1
}

// RemoveFromHand removes a card from the hand by instance ID.
func (p *Player) RemoveFromHand(card *CardInstance) bool {
	for i, c := range p.Hand {
		if c.ID == card.ID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// insertIntoHand puts card back at index i (used to undo a removal).
func (p *Player) insertIntoHand(card *CardInstance, i int) {
	if i < 0 || i > len(p.Hand) {
		i = len(p.Hand)
	}
	p.Hand = append(p.Hand, nil)
	copy(p.Hand[i+1:], p.Hand[i:])
	p.Hand[i] = card
}

// DrawCards draws up to n cards into the hand. A short draw returns what was drawn together
// with an ErrInsufficientCards error.
func (p *Player) DrawCards(n int) ([]*CardInstance, error) {
	drawn, err := p.Deck.Draw(n)
	p.Hand = append(p.Hand, drawn...)
	return drawn, err
}
