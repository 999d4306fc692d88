package game

import (
	"fmt"
	"strings"
)

// --- Enums ---

type Phase int

const (
	PhaseNone Phase = iota
	PhaseCoinToss
	PhaseRedraw
	PhaseRoundActive
	PhaseRoundEnd
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseCoinToss:
		return "Coin Toss"
	case PhaseRedraw:
		return "Redraw"
	case PhaseRoundActive:
		return "Round"
	case PhaseRoundEnd:
		return "Round End"
	case PhaseGameOver:
		return "Game Over"
	default:
		return "None"
	}
}

// Lane is a card's row affinity. Only Close, Ranged and Siege exist on the board;
// Agile and None describe eligibility.
type Lane int

const (
	LaneNone Lane = iota
	LaneClose
	LaneRanged
	LaneSiege
	LaneAgile
)

// BoardLanes lists the three placeable lanes in board order.
var BoardLanes = [3]Lane{LaneClose, LaneRanged, LaneSiege}

func (l Lane) String() string {
	switch l {
	case LaneClose:
		return "close"
	case LaneRanged:
		return "ranged"
	case LaneSiege:
		return "siege"
	case LaneAgile:
		return "agile"
	default:
		return "none"
	}
}

func (l Lane) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Lane) UnmarshalText(text []byte) error {
	lane, err := ParseLane(string(text))
	if err != nil {
		return err
	}
	*l = lane
	return nil
}

// index returns the board row index for a placeable lane, or -1.
func (l Lane) index() int {
	switch l {
	case LaneClose:
		return 0
	case LaneRanged:
		return 1
	case LaneSiege:
		return 2
	default:
		return -1
	}
}

// ParseLane parses a lane name as used in catalog files and the wire protocol.
func ParseLane(s string) (Lane, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return LaneNone, nil
	case "close", "melee":
		return LaneClose, nil
	case "ranged":
		return LaneRanged, nil
	case "siege":
		return LaneSiege, nil
	case "agile":
		return LaneAgile, nil
	default:
		return LaneNone, fmt.Errorf("unknown lane %q", s)
	}
}

type Ability int

const (
	AbilityNone Ability = iota
	AbilityTightBond
	AbilityHero
	AbilitySpy
	AbilityMedic
	AbilityScorch
	AbilityScorchClose
	AbilityFrost
	AbilityFog
	AbilityRain
	AbilityClearWeather
	AbilityHorn
	AbilityMoraleBoost
	AbilityDecoy
)

var abilityNames = map[Ability]string{
	AbilityNone:         "none",
	AbilityTightBond:    "tight_bond",
	AbilityHero:         "hero",
	AbilitySpy:          "spy",
	AbilityMedic:        "medic",
	AbilityScorch:       "scorch",
	AbilityScorchClose:  "scorch_close",
	AbilityFrost:        "frost",
	AbilityFog:          "fog",
	AbilityRain:         "rain",
	AbilityClearWeather: "clear_weather",
	AbilityHorn:         "horn",
	AbilityMoraleBoost:  "morale_boost",
	AbilityDecoy:        "decoy",
}

func (a Ability) String() string {
	if name, ok := abilityNames[a]; ok {
		return name
	}
	return "unknown"
}

// IsWeather reports whether the ability is one of the three weather effects.
func (a Ability) IsWeather() bool {
	return a == AbilityFrost || a == AbilityFog || a == AbilityRain
}

// WeatherLane is the lane a weather ability hits when weather is lane-scoped.
func (a Ability) WeatherLane() Lane {
	switch a {
	case AbilityFrost:
		return LaneClose
	case AbilityFog:
		return LaneRanged
	case AbilityRain:
		return LaneSiege
	default:
		return LaneNone
	}
}

// ParseAbility accepts the canonical names plus the spellings found in older deck lists
// ("Tight Bond", "Commander Horn", "Scorch Close").
func ParseAbility(s string) (Ability, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_", "'", "", "’", "").Replace(key)
	switch key {
	case "":
		return AbilityNone, nil
	case "commander_horn", "commanders_horn":
		return AbilityHorn, nil
	case "clear":
		return AbilityClearWeather, nil
	}
	for a, name := range abilityNames {
		if name == key {
			return a, nil
		}
	}
	return AbilityNone, fmt.Errorf("unknown ability %q", s)
}

type Category int

const (
	CategoryFaction Category = iota
	CategoryNeutral
	CategorySpecial
	CategoryWeather
)

func (c Category) String() string {
	switch c {
	case CategoryNeutral:
		return "neutral"
	case CategorySpecial:
		return "special"
	case CategoryWeather:
		return "weather"
	default:
		return "faction"
	}
}

// ParseCategory parses a catalog category name. Empty means faction.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "faction":
		return CategoryFaction, nil
	case "neutral":
		return CategoryNeutral, nil
	case "special":
		return CategorySpecial, nil
	case "weather":
		return CategoryWeather, nil
	default:
		return CategoryFaction, fmt.Errorf("unknown category %q", s)
	}
}

// Effect is a row-level flag.
type Effect int

const (
	EffectWeather Effect = iota
	EffectHorn
)

func (e Effect) String() string {
	if e == EffectHorn {
		return "horn"
	}
	return "weather"
}

// --- Card definition (static, from the catalog) ---

// Card is an immutable card definition. Special and weather cards have no strength.
type Card struct {
	Name        string
	Strength    int
	HasStrength bool
	Row         Lane
	Ability     Ability
	Hero        bool
	Category    Category
	Faction     string
}

func (c *Card) String() string {
	return c.Name
}

// IsUnit reports whether the card has a strength and a lane, i.e. it occupies a row.
func (c *Card) IsUnit() bool {
	return c.HasStrength && c.Row != LaneNone
}

// IsHero reports hero status from either the hero flag or the Hero ability tag.
func (c *Card) IsHero() bool {
	return c.Hero || c.Ability == AbilityHero
}

// EligibleLanes returns the board lanes this card may be placed in.
func (c *Card) EligibleLanes() []Lane {
	switch c.Row {
	case LaneAgile:
		return []Lane{LaneClose, LaneRanged}
	case LaneClose, LaneRanged, LaneSiege:
		return []Lane{c.Row}
	default:
		return nil
	}
}

// CanOccupy reports whether lane is a legal placement for this card.
func (c *Card) CanOccupy(lane Lane) bool {
	for _, l := range c.EligibleLanes() {
		if l == lane {
			return true
		}
	}
	return false
}

// Describe renders the card for event details and prompts.
func (c *Card) Describe() string {
	if !c.HasStrength {
		return fmt.Sprintf("%s (%s)", c.Name, c.Ability)
	}
	var tags []string
	if c.IsHero() {
		tags = append(tags, "hero")
	}
	if c.Ability != AbilityNone && c.Ability != AbilityHero {
		tags = append(tags, c.Ability.String())
	}
	if len(tags) == 0 {
		return fmt.Sprintf("%s (%d %s)", c.Name, c.Strength, c.Row)
	}
	return fmt.Sprintf("%s (%d %s, %s)", c.Name, c.Strength, c.Row, strings.Join(tags, ", "))
}

// --- CardInstance (runtime card in deck/hand/row/graveyard) ---

type CardInstance struct {
	Card  *Card
	ID    int // unique within a match
	Owner int // side whose graveyard receives the card
}

func (ci *CardInstance) String() string {
	if ci == nil {
		return "(empty)"
	}
	return ci.Card.Name
}

// --- Decisions ---

type ActionType int

const (
	ActionPlayCard ActionType = iota
	ActionPass
	ActionActivateLeader
)

func (a ActionType) String() string {
	switch a {
	case ActionPlayCard:
		return "Play Card"
	case ActionPass:
		return "Pass"
	case ActionActivateLeader:
		return "Activate Leader"
	default:
		return "Unknown"
	}
}

// Decision is one seat's move. CardID refers to a hand card for PlayCard.
// Lane may be left as LaneNone for cards with a single eligible lane; TargetID selects the
// board card a Decoy swaps back (0 lets the seat be asked).
type Decision struct {
	Type     ActionType
	CardID   int
	Lane     Lane
	TargetID int
	Desc     string
}

func (d Decision) String() string {
	if d.Desc != "" {
		return d.Desc
	}
	return d.Type.String()
}

// Pass returns the pass decision.
func Pass() Decision {
	return Decision{Type: ActionPass, Desc: "Pass"}
}

// ActivateLeader returns the leader activation decision.
func ActivateLeader() Decision {
	return Decision{Type: ActionActivateLeader, Desc: "Activate Leader"}
}

// PlayCard returns a decision to play the given hand card into lane.
func PlayCard(cardID int, lane Lane) Decision {
	return Decision{Type: ActionPlayCard, CardID: cardID, Lane: lane}
}
