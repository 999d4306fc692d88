package game

import "fmt"

// Play is one card entering the board (or resolving from hand, for cards without a row).
type Play struct {
	Card   *CardInstance
	Side   int           // playing side
	Lane   Lane          // placement lane for units; target lane for a lane-scoped special horn
	Target *CardInstance // decoy target
}

// Outcome reports what the match has to do after a card resolves.
type Outcome struct {
	Draw       int             // cards the playing side draws
	Resurrect  bool            // the playing side may bring back a graveyard unit
	Removed    []*CardInstance // cards taken off the board, bound for their owners' graveyards
	Returned   *CardInstance   // card taken off the board back into the playing side's hand
	Discard    bool            // the played card itself goes to the graveyard
	PlacedSide int             // side whose row received the card, -1 when not placed
	EffectSide int             // side a weather or horn effect landed on
	Lanes      []Lane          // lanes a weather or horn effect landed on
}

type abilityFunc func(b *Board, p Play, out *Outcome)

// abilityTable is the single dispatch point for every card ability. Abilities that only
// matter at scoring time (tight bond, morale boost, hero) have no entry.
var abilityTable = map[Ability]abilityFunc{
	AbilitySpy: func(b *Board, p Play, out *Outcome) {
		out.Draw = SpyDrawCount
	},
	AbilityScorch: func(b *Board, p Play, out *Outcome) {
		out.Removed = b.ScorchHighest()
	},
	AbilityScorchClose: func(b *Board, p Play, out *Outcome) {
		out.Removed = b.ScorchRow(1-p.Side, LaneClose, ScorchCloseThreshold)
	},
	AbilityMedic: func(b *Board, p Play, out *Outcome) {
		out.Resurrect = true
	},
	AbilityFrost:        applyWeather,
	AbilityFog:          applyWeather,
	AbilityRain:         applyWeather,
	AbilityClearWeather: func(b *Board, p Play, out *Outcome) { b.ClearWeather() },
	AbilityHorn: func(b *Board, p Play, out *Outcome) {
		var lanes []Lane
		if b.Rules.HornScope == ScopeCardLane && p.Lane.index() >= 0 {
			lanes = []Lane{p.Lane}
		}
		b.ApplyEffect(EffectHorn, p.Side, lanes...)
		out.EffectSide = p.Side
		out.Lanes = effectLanes(lanes)
	},
	AbilityDecoy: func(b *Board, p Play, out *Outcome) {
		if p.Target != nil && b.Remove(p.Target) {
			out.Returned = p.Target
		}
	},
}

func applyWeather(b *Board, p Play, out *Outcome) {
	target := 1 - p.Side
	var lanes []Lane
	if b.Rules.WeatherScope == ScopeCardLane {
		lanes = []Lane{p.Card.Card.Ability.WeatherLane()}
	}
	b.ApplyEffect(EffectWeather, target, lanes...)
	out.EffectSide = target
	out.Lanes = effectLanes(lanes)
}

func effectLanes(lanes []Lane) []Lane {
	if len(lanes) == 0 {
		return BoardLanes[:]
	}
	return lanes
}

// leaderAbilities can resolve without the leader occupying a row.
var leaderAbilities = map[Ability]bool{
	AbilityScorch:       true,
	AbilityScorchClose:  true,
	AbilityFrost:        true,
	AbilityFog:          true,
	AbilityRain:         true,
	AbilityClearWeather: true,
	AbilityHorn:         true,
}

// ValidatePlay checks a play against the board without mutating anything.
func ValidatePlay(b *Board, p Play) error {
	c := p.Card.Card
	if c.IsUnit() {
		if !c.CanOccupy(p.Lane) {
			return fmt.Errorf("%w: %s cannot be placed in the %s row", ErrInvalidPlacement, c.Name, p.Lane)
		}
		return nil
	}
	switch c.Ability {
	case AbilityDecoy:
		if p.Target == nil {
			return fmt.Errorf("%w: %s needs a card to swap", ErrInvalidPlacement, c.Name)
		}
		if !DecoyTarget(b, p.Side, p.Target) {
			return fmt.Errorf("%w: %s cannot swap %s", ErrInvalidPlacement, c.Name, p.Target.Card.Name)
		}
	case AbilityHorn:
		if b.Rules.HornScope == ScopeCardLane && p.Lane.index() < 0 {
			return fmt.Errorf("%w: %s needs a row", ErrInvalidPlacement, c.Name)
		}
	}
	return nil
}

// DecoyTarget reports whether target is a non-hero card on side's own rows.
func DecoyTarget(b *Board, side int, target *CardInstance) bool {
	found, s, _, ok := b.Find(target.ID)
	return ok && s == side && !found.Card.IsHero()
}

// Resolve places the played card (cards without a row are never placed) and applies its
// ability. The play is validated first; a rejected play leaves the board untouched.
func Resolve(b *Board, p Play) (Outcome, error) {
	out := Outcome{PlacedSide: -1, EffectSide: -1}
	if err := ValidatePlay(b, p); err != nil {
		return out, err
	}

	c := p.Card.Card
	if c.IsUnit() {
		side := p.Side
		if c.Ability == AbilitySpy {
			side = 1 - p.Side
		}
		if err := b.Place(p.Card, side, p.Lane); err != nil {
			return out, err
		}
		out.PlacedSide = side
	} else {
		out.Discard = true
	}

	if fn, ok := abilityTable[c.Ability]; ok {
		fn(b, p, &out)
	}
	return out, nil
}

// ResolveLeader applies a leader card's ability through the same table, without placement.
// Abilities that need the card on the board do nothing.
func ResolveLeader(b *Board, side int, leader *Card) Outcome {
	out := Outcome{PlacedSide: -1, EffectSide: -1}
	if !leaderAbilities[leader.Ability] {
		return out
	}
	p := Play{
		Card: &CardInstance{Card: leader, Owner: side},
		Side: side,
		Lane: leader.Row,
	}
	abilityTable[leader.Ability](b, p, &out)
	return out
}
