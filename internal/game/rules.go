package game

import (
	"fmt"
	"strings"
)

const (
	DefaultLives         = 2
	DefaultInitialHand   = 10
	DefaultRedrawMax     = 2
	DefaultHornFactor    = 2
	DefaultMaxRounds     = 10
	DefaultMinUnits      = 22
	DefaultMaxSpecials   = 10
	DefaultMaxRejections = 8
	SpyDrawCount         = 2
	ScorchCloseThreshold = 10
)

// Scope selects which rows a weather or horn effect lands on.
type Scope int

const (
	ScopeAllRows  Scope = iota // every row of the target side
	ScopeCardLane              // only the lane tied to the card
)

func (s Scope) String() string {
	if s == ScopeCardLane {
		return "card_lane"
	}
	return "all_rows"
}

// ParseScope parses "all_rows" or "card_lane". An empty string is all_rows.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all_rows", "all":
		return ScopeAllRows, nil
	case "card_lane", "lane":
		return ScopeCardLane, nil
	default:
		return ScopeAllRows, fmt.Errorf("unknown scope %q", s)
	}
}

// MedicMode selects how a Medic picks the card to bring back.
type MedicMode int

const (
	MedicMostRecent MedicMode = iota // last unit card to enter the graveyard
	MedicChoose                      // the seat chooses among graveyard units
)

func (m MedicMode) String() string {
	if m == MedicChoose {
		return "choose"
	}
	return "most_recent"
}

// ParseMedicMode parses "most_recent" or "choose". An empty string is most_recent.
func ParseMedicMode(s string) (MedicMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "most_recent", "lifo":
		return MedicMostRecent, nil
	case "choose":
		return MedicChoose, nil
	default:
		return MedicMostRecent, fmt.Errorf("unknown medic mode %q", s)
	}
}

// Rules holds the variant switches of the engine.
type Rules struct {
	Lives                  int
	InitialHand            int
	RedrawMax              int
	WeatherScope           Scope
	HornScope              Scope
	HornMultiplier         int
	TightBond              bool
	MoraleBoost            bool
	HeroesIgnoreRowEffects bool
	MedicMode              MedicMode
	MaxRounds              int
	MinUnits               int
	MaxSpecials            int
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		Lives:          DefaultLives,
		InitialHand:    DefaultInitialHand,
		RedrawMax:      DefaultRedrawMax,
		WeatherScope:   ScopeAllRows,
		HornScope:      ScopeAllRows,
		HornMultiplier: DefaultHornFactor,
		TightBond:      true,
		MoraleBoost:    true,
		MedicMode:      MedicMostRecent,
		MaxRounds:      DefaultMaxRounds,
		MinUnits:       DefaultMinUnits,
		MaxSpecials:    DefaultMaxSpecials,
	}
}

func (r Rules) hornMultiplier() int {
	if r.HornMultiplier <= 0 {
		return DefaultHornFactor
	}
	return r.HornMultiplier
}

// orDefault returns DefaultRules for the zero Rules and fills zero counters otherwise.
func (r Rules) orDefault() Rules {
	if r == (Rules{}) {
		return DefaultRules()
	}
	return r.withDefaults()
}

// withDefaults fills zero-valued counters so a partially built Rules still plays.
func (r Rules) withDefaults() Rules {
	if r.Lives <= 0 {
		r.Lives = DefaultLives
	}
	if r.InitialHand <= 0 {
		r.InitialHand = DefaultInitialHand
	}
	if r.RedrawMax < 0 {
		r.RedrawMax = 0
	}
	if r.HornMultiplier <= 0 {
		r.HornMultiplier = DefaultHornFactor
	}
	if r.MaxRounds <= 0 {
		r.MaxRounds = DefaultMaxRounds
	}
	if r.MinUnits <= 0 {
		r.MinUnits = DefaultMinUnits
	}
	if r.MaxSpecials <= 0 {
		r.MaxSpecials = DefaultMaxSpecials
	}
	return r
}
