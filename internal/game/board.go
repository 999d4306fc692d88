package game

import "fmt"

// Row is one lane on one side of the board.
type Row struct {
	Lane    Lane
	Cards   []*CardInstance // play order
	Weather bool
	Horn    bool
}

// Board holds both sides' three rows. It is rebuilt at the start of every round.
type Board struct {
	Rows  [2][3]*Row
	Rules Rules
}

// NewBoard returns an empty board scored with the given rules.
func NewBoard(rules Rules) *Board {
	b := &Board{Rules: rules}
	b.Reset()
	return b
}

// Reset empties every row and clears every effect.
func (b *Board) Reset() {
	for side := 0; side < 2; side++ {
		for i, lane := range BoardLanes {
			b.Rows[side][i] = &Row{Lane: lane}
		}
	}
}

// Row returns side's row for a placeable lane, or nil.
func (b *Board) Row(side int, lane Lane) *Row {
	idx := lane.index()
	if idx < 0 || side < 0 || side > 1 {
		return nil
	}
	return b.Rows[side][idx]
}

// Place appends card to side's row for lane.
func (b *Board) Place(card *CardInstance, side int, lane Lane) error {
	if !card.Card.IsUnit() {
		return fmt.Errorf("%w: %s has no row and cannot occupy a lane", ErrInvalidPlacement, card.Card.Name)
	}
	if !card.Card.CanOccupy(lane) {
		return fmt.Errorf("%w: %s cannot be placed in the %s row", ErrInvalidPlacement, card.Card.Name, lane)
	}
	row := b.Row(side, lane)
	if row == nil {
		return fmt.Errorf("%w: no %s row for side %d", ErrInvalidPlacement, lane, side)
	}
	row.Cards = append(row.Cards, card)
	return nil
}

// Remove takes card off the board. Returns false if it was not on the board.
func (b *Board) Remove(card *CardInstance) bool {
	for side := 0; side < 2; side++ {
		for _, row := range b.Rows[side] {
			for i, c := range row.Cards {
				if c.ID == card.ID {
					row.Cards = append(row.Cards[:i], row.Cards[i+1:]...)
					return true
				}
			}
		}
	}
	return false
}

// Find locates a card instance on the board by ID.
func (b *Board) Find(id int) (card *CardInstance, side int, lane Lane, ok bool) {
	for s := 0; s < 2; s++ {
		for _, row := range b.Rows[s] {
			for _, c := range row.Cards {
				if c.ID == id {
					return c, s, row.Lane, true
				}
			}
		}
	}
	return nil, -1, LaneNone, false
}

// Cards returns every card on side's rows, close to siege, in play order.
func (b *Board) Cards(side int) []*CardInstance {
	var result []*CardInstance
	for _, row := range b.Rows[side] {
		result = append(result, row.Cards...)
	}
	return result
}

// AllCards returns every card on the board.
func (b *Board) AllCards() []*CardInstance {
	return append(b.Cards(0), b.Cards(1)...)
}

// EffectiveStrength is the strength card contributes in row, applying in order:
// weather, tight bond, morale boost, horn.
func (b *Board) EffectiveStrength(row *Row, card *CardInstance) int {
	c := card.Card
	if !c.HasStrength {
		return 0
	}
	immune := c.IsHero() && b.Rules.HeroesIgnoreRowEffects

	strength := c.Strength
	if row.Weather && !immune {
		strength = 1
	}
	if immune {
		return strength
	}

	if b.Rules.TightBond && c.Ability == AbilityTightBond {
		bonded := 0
		for _, other := range row.Cards {
			if other.Card.Ability == AbilityTightBond && other.Card.Name == c.Name {
				bonded++
			}
		}
		strength *= bonded
	}

	if b.Rules.MoraleBoost {
		for _, other := range row.Cards {
			if other.ID != card.ID && other.Card.Ability == AbilityMoraleBoost {
				strength++
			}
		}
	}

	// Horn is a row flag, so a horn unit is boosted along with the rest of its row.
	if row.Horn {
		strength *= b.Rules.hornMultiplier()
	}
	return strength
}

// RowScore sums effective strengths over side's row for lane.
func (b *Board) RowScore(side int, lane Lane) int {
	row := b.Row(side, lane)
	if row == nil {
		return 0
	}
	total := 0
	for _, c := range row.Cards {
		total += b.EffectiveStrength(row, c)
	}
	return total
}

// TotalScore sums side's three rows.
func (b *Board) TotalScore(side int) int {
	total := 0
	for _, lane := range BoardLanes {
		total += b.RowScore(side, lane)
	}
	return total
}

// ApplyEffect sets effect on side's rows for the given lanes, or on all three when none
// are given. Flags are booleans: applying twice is the same as once.
func (b *Board) ApplyEffect(effect Effect, side int, lanes ...Lane) {
	if len(lanes) == 0 {
		lanes = BoardLanes[:]
	}
	for _, lane := range lanes {
		row := b.Row(side, lane)
		if row == nil {
			continue
		}
		switch effect {
		case EffectWeather:
			row.Weather = true
		case EffectHorn:
			row.Horn = true
		}
	}
}

// ClearEffects removes every effect flag from side's rows.
func (b *Board) ClearEffects(side int) {
	for _, row := range b.Rows[side] {
		row.Weather = false
		row.Horn = false
	}
}

// ClearWeather removes weather from both sides, leaving horns in place.
func (b *Board) ClearWeather() {
	for side := 0; side < 2; side++ {
		for _, row := range b.Rows[side] {
			row.Weather = false
		}
	}
}

// ScorchHighest removes, on each side independently, every non-hero card whose base
// strength equals that side's highest non-hero strength. Returns the removed cards.
func (b *Board) ScorchHighest() []*CardInstance {
	var removed []*CardInstance
	for side := 0; side < 2; side++ {
		top, found := -1, false
		for _, c := range b.Cards(side) {
			if scorchable(c) && c.Card.Strength > top {
				top, found = c.Card.Strength, true
			}
		}
		if !found {
			continue
		}
		for _, row := range b.Rows[side] {
			removed = append(removed, row.burn(func(c *CardInstance) bool {
				return scorchable(c) && c.Card.Strength == top
			})...)
		}
	}
	return removed
}

// ScorchRow destroys the strongest non-hero cards in side's row for lane when that row
// scores at least threshold.
func (b *Board) ScorchRow(side int, lane Lane, threshold int) []*CardInstance {
	row := b.Row(side, lane)
	if row == nil || b.RowScore(side, lane) < threshold {
		return nil
	}
	top, found := -1, false
	for _, c := range row.Cards {
		if scorchable(c) && c.Card.Strength > top {
			top, found = c.Card.Strength, true
		}
	}
	if !found {
		return nil
	}
	return row.burn(func(c *CardInstance) bool {
		return scorchable(c) && c.Card.Strength == top
	})
}

func scorchable(c *CardInstance) bool {
	return c.Card.HasStrength && !c.Card.IsHero()
}

// burn removes the cards matching pred and returns them.
func (r *Row) burn(pred func(*CardInstance) bool) []*CardInstance {
	var kept, removed []*CardInstance
	for _, c := range r.Cards {
		if pred(c) {
			removed = append(removed, c)
		} else {
			kept = append(kept, c)
		}
	}
	r.Cards = kept
	return removed
}
