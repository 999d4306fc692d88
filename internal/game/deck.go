package game

import (
	"fmt"
	"math/rand"
	"strings"
)

// Deck is a side's draw pile (index 0 is the top) plus its graveyard.
type Deck struct {
	Name      string
	Faction   string
	cards     []*CardInstance
	graveyard []*CardInstance
	rng       *rand.Rand
}

// NewDeck wraps already-instantiated cards and shuffles them once with rng, which must not
// be nil. It does not validate.
func NewDeck(name string, cards []*CardInstance, rng *rand.Rand) *Deck {
	d := NewOrderedDeck(name, cards, rng)
	d.Shuffle()
	return d
}

// NewOrderedDeck is NewDeck without the shuffle: cards are drawn in the given order. rng is
// kept for later shuffles.
func NewOrderedDeck(name string, cards []*CardInstance, rng *rand.Rand) *Deck {
	return &Deck{
		Name:  name,
		cards: cards,
		rng:   rng,
	}
}

// Len returns the number of undrawn cards.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the undrawn cards in draw order.
func (d *Deck) Cards() []*CardInstance {
	return append([]*CardInstance(nil), d.cards...)
}

// Graveyard returns a copy of the graveyard, oldest first.
func (d *Deck) Graveyard() []*CardInstance {
	return append([]*CardInstance(nil), d.graveyard...)
}

// Draw removes and returns the top n cards. When fewer remain, all of them are returned
// along with an ErrInsufficientCards error; callers treat that as a short draw.
func (d *Deck) Draw(n int) ([]*CardInstance, error) {
	if n <= 0 {
		return nil, nil
	}
	var err error
	if n > len(d.cards) {
		err = fmt.Errorf("%w: wanted %d, %d left", ErrInsufficientCards, n, len(d.cards))
		n = len(d.cards)
	}
	drawn := append([]*CardInstance(nil), d.cards[:n]...)
	d.cards = d.cards[n:]
	return drawn, err
}

// Shuffle randomizes the draw order.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// PutBack returns cards to the bottom of the draw pile.
func (d *Deck) PutBack(cards ...*CardInstance) {
	d.cards = append(d.cards, cards...)
}

// Discard appends card to the graveyard.
func (d *Deck) Discard(card *CardInstance) {
	d.graveyard = append(d.graveyard, card)
}

// Resurrect pops the most recently discarded card. ok is false when the graveyard is empty.
func (d *Deck) Resurrect() (card *CardInstance, ok bool) {
	if len(d.graveyard) == 0 {
		return nil, false
	}
	card = d.graveyard[len(d.graveyard)-1]
	d.graveyard = d.graveyard[:len(d.graveyard)-1]
	return card, true
}

// ResurrectLatest removes and returns the most recent graveyard card matching pred.
func (d *Deck) ResurrectLatest(pred func(*CardInstance) bool) (*CardInstance, bool) {
	for i := len(d.graveyard) - 1; i >= 0; i-- {
		if pred(d.graveyard[i]) {
			return d.ResurrectAt(i)
		}
	}
	return nil, false
}

// ResurrectAt removes and returns the graveyard card at index i.
func (d *Deck) ResurrectAt(i int) (*CardInstance, bool) {
	if i < 0 || i >= len(d.graveyard) {
		return nil, false
	}
	card := d.graveyard[i]
	d.graveyard = append(d.graveyard[:i], d.graveyard[i+1:]...)
	return card, true
}

// Validate checks the deck composition: at least minUnits cards with a strength and at
// most maxSpecials special cards. It is advisory and never called implicitly.
func (d *Deck) Validate(minUnits, maxSpecials int) error {
	cards := make([]*Card, 0, len(d.cards))
	for _, ci := range d.cards {
		cards = append(cards, ci.Card)
	}
	return ValidateCards(cards, minUnits, maxSpecials)
}

// ValidateCards applies the deck composition rule to card definitions.
func ValidateCards(cards []*Card, minUnits, maxSpecials int) error {
	units, specials := 0, 0
	for _, c := range cards {
		if c.HasStrength {
			units++
		}
		if c.Category == CategorySpecial {
			specials++
		}
	}

	var problems []string
	if units < minUnits {
		problems = append(problems, fmt.Sprintf("needs at least %d unit cards, has %d", minUnits, units))
	}
	if specials > maxSpecials {
		problems = append(problems, fmt.Sprintf("allows at most %d special cards, has %d", maxSpecials, specials))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDeckComposition, strings.Join(problems, "; "))
	}
	return nil
}
