package log

// EventType enumerates all observable match events.
type EventType int

const (
	EventCoinToss EventType = iota
	EventShuffle
	EventDeal
	EventRedraw
	EventDraw
	EventRoundStart
	EventPlayCard
	EventAbility
	EventWeather
	EventHorn
	EventScorch
	EventResurrect
	EventDecoy
	EventPass
	EventLeader
	EventRejected
	EventRoundEnd
	EventLifeChange
	EventWin
	EventDrawGame
)

var eventNames = [...]string{
	EventCoinToss:   "CoinToss",
	EventShuffle:    "Shuffle",
	EventDeal:       "Deal",
	EventRedraw:     "Redraw",
	EventDraw:       "Draw",
	EventRoundStart: "RoundStart",
	EventPlayCard:   "PlayCard",
	EventAbility:    "Ability",
	EventWeather:    "Weather",
	EventHorn:       "Horn",
	EventScorch:     "Scorch",
	EventResurrect:  "Resurrect",
	EventDecoy:      "Decoy",
	EventPass:       "Pass",
	EventLeader:     "Leader",
	EventRejected:   "Rejected",
	EventRoundEnd:   "RoundEnd",
	EventLifeChange: "LifeChange",
	EventWin:        "Win",
	EventDrawGame:   "DrawGame",
}

func (e EventType) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "Unknown"
}

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Round   int       // which round (1-based, 0 before the first round)
	Turn    int       // action counter within the match
	Phase   string    // current phase name (e.g. "Round")
	Player  int       // acting side (0 or 1, -1 for none)
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
