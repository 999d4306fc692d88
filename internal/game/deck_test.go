package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeck(n int) *Deck {
	cards := make([]*CardInstance, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, &CardInstance{Card: unit("Soldier", i, LaneClose, AbilityNone), ID: i + 1})
	}
	return NewOrderedDeck("Test", cards, rand.New(rand.NewSource(7)))
}

func TestNewDeckShufflesOnce(t *testing.T) {
	ordered := newTestDeck(20)
	shuffled := NewDeck("Test", ordered.Cards(), rand.New(rand.NewSource(7)))

	assert.NotEqual(t, ids(ordered.Cards()), ids(shuffled.Cards()))
	assert.ElementsMatch(t, ids(ordered.Cards()), ids(shuffled.Cards()))

	ordered.Shuffle()
	assert.Equal(t, ids(ordered.Cards()), ids(shuffled.Cards()), "one shuffle with the same seed")
}

func TestDrawTakesFromTop(t *testing.T) {
	d := newTestDeck(5)
	drawn, err := d.Draw(2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(drawn))
	assert.Equal(t, 3, d.Len())
}

func TestDrawClampsWhenShort(t *testing.T) {
	d := newTestDeck(3)
	drawn, err := d.Draw(5)
	assert.True(t, errors.Is(err, ErrInsufficientCards))
	assert.Len(t, drawn, 3)
	assert.Equal(t, 0, d.Len())

	drawn, err = d.Draw(1)
	assert.True(t, errors.Is(err, ErrInsufficientCards))
	assert.Empty(t, drawn)
}

func TestDrawPutBackShufflePreservesSize(t *testing.T) {
	d := newTestDeck(30)
	drawn, err := d.Draw(10)
	require.NoError(t, err)
	d.PutBack(drawn...)
	d.Shuffle()
	assert.Equal(t, 30, d.Len())
	assert.ElementsMatch(t, ids(newTestDeck(30).Cards()), ids(d.Cards()))
}

func TestShuffleIsSeeded(t *testing.T) {
	a, b := newTestDeck(20), newTestDeck(20)
	a.Shuffle()
	b.Shuffle()
	assert.Equal(t, ids(a.Cards()), ids(b.Cards()))
}

func TestResurrectIsLIFO(t *testing.T) {
	d := newTestDeck(0)
	_, ok := d.Resurrect()
	assert.False(t, ok, "empty graveyard resurrects nothing")

	first := &CardInstance{Card: unit("First", 1, LaneClose, AbilityNone), ID: 1}
	second := &CardInstance{Card: unit("Second", 2, LaneClose, AbilityNone), ID: 2}
	d.Discard(first)
	d.Discard(second)

	got, ok := d.Resurrect()
	require.True(t, ok)
	assert.Same(t, second, got)
	got, ok = d.Resurrect()
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Empty(t, d.Graveyard())
}

func TestResurrectLatestSkipsIneligible(t *testing.T) {
	d := newTestDeck(0)
	soldier := &CardInstance{Card: unit("Soldier", 3, LaneClose, AbilityNone), ID: 1}
	geralt := &CardInstance{Card: hero("Geralt", 15, LaneClose), ID: 2}
	scorch := &CardInstance{Card: special("Scorch", AbilityScorch), ID: 3}
	d.Discard(soldier)
	d.Discard(geralt)
	d.Discard(scorch)

	got, ok := d.ResurrectLatest(medicEligible)
	require.True(t, ok)
	assert.Same(t, soldier, got)
	assert.Equal(t, []int{2, 3}, ids(d.Graveyard()))

	_, ok = d.ResurrectLatest(medicEligible)
	assert.False(t, ok)
}

func TestResurrectAtBounds(t *testing.T) {
	d := newTestDeck(0)
	d.Discard(&CardInstance{Card: unit("A", 1, LaneClose, AbilityNone), ID: 1})
	_, ok := d.ResurrectAt(1)
	assert.False(t, ok)
	_, ok = d.ResurrectAt(-1)
	assert.False(t, ok)
	got, ok := d.ResurrectAt(0)
	require.True(t, ok)
	assert.Equal(t, 1, got.ID)
}

func TestValidateComposition(t *testing.T) {
	units := make([]*Card, 0, 30)
	for i := 0; i < 22; i++ {
		units = append(units, unit("Soldier", 3, LaneClose, AbilityNone))
	}
	assert.NoError(t, ValidateCards(units, DefaultMinUnits, DefaultMaxSpecials))

	err := ValidateCards(units[:21], DefaultMinUnits, DefaultMaxSpecials)
	assert.True(t, errors.Is(err, ErrInvalidDeckComposition))
	assert.Contains(t, err.Error(), "at least 22")

	tooMany := append([]*Card(nil), units[:10]...)
	for i := 0; i < 11; i++ {
		tooMany = append(tooMany, special("Decoy", AbilityDecoy))
	}
	err = ValidateCards(tooMany, DefaultMinUnits, DefaultMaxSpecials)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 22")
	assert.Contains(t, err.Error(), "at most 10")
}

func TestDeckValidateUsesUndrawnCards(t *testing.T) {
	d := newTestDeck(25)
	assert.NoError(t, d.Validate(22, 10))
	_, _ = d.Draw(4)
	assert.Error(t, d.Validate(22, 10))
}

func ids(cards []*CardInstance) []int {
	out := make([]int, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}
