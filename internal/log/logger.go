package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.record(event)
}

// record stamps the sequence number and returns the stored event.
func (l *MemoryLogger) record(event GameEvent) GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
	return event
}

func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]GameEvent(nil), l.events...)
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	fmt.Fprintln(l.w, FormatEvent(l.record(event)))
}

// --- MultiLogger: fans events out to several sinks ---

// MultiLogger forwards every event to each sink. Events() reports the first sink's history.
type MultiLogger []EventLogger

func (m MultiLogger) Log(event GameEvent) {
	for _, l := range m {
		l.Log(event)
	}
}

func (m MultiLogger) Events() []GameEvent {
	if len(m) == 0 {
		return nil
	}
	return m[0].Events()
}

// --- Formatting ---

// PlayerName returns "P1" or "P2" for display.
func PlayerName(p int) string {
	if p < 0 {
		return "--"
	}
	return fmt.Sprintf("P%d", p+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	return fmt.Sprintf("R%d T%-3d %-10s| %s", e.Round, e.Turn, e.Phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---
//
// Round, Turn and Phase are stamped by the match when the event is emitted.

func NewCoinTossEvent(first int) GameEvent {
	return GameEvent{
		Player:  first,
		Type:    EventCoinToss,
		Details: fmt.Sprintf("Coin toss: %s goes first", PlayerName(first)),
	}
}

func NewShuffleEvent(player int) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventShuffle,
		Details: fmt.Sprintf("%s shuffles their deck", PlayerName(player)),
	}
}

func NewDealEvent(player int, count int) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventDeal,
		Details: fmt.Sprintf("%s is dealt %d cards", PlayerName(player), count),
	}
}

func NewRedrawEvent(player int, discarded, drawn string) GameEvent {
	details := fmt.Sprintf("%s redraws %s", PlayerName(player), discarded)
	if drawn != "" {
		details += " for " + drawn
	}
	return GameEvent{
		Player:  player,
		Type:    EventRedraw,
		Card:    discarded,
		Details: details,
	}
}

func NewDrawEvent(player int, cardName string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventDraw,
		Card:    cardName,
		Details: fmt.Sprintf("%s draws %s", PlayerName(player), cardName),
	}
}

func NewRoundStartEvent(round int, first int) GameEvent {
	return GameEvent{
		Player:  first,
		Type:    EventRoundStart,
		Details: fmt.Sprintf("=== Round %d (%s starts) ===", round, PlayerName(first)),
	}
}

func NewPlayCardEvent(player int, cardName string, lane string, side int) GameEvent {
	details := fmt.Sprintf("%s plays %s", PlayerName(player), cardName)
	if lane != "" && lane != "none" {
		if side != player {
			details += fmt.Sprintf(" to %s's %s row", PlayerName(side), lane)
		} else {
			details += fmt.Sprintf(" to the %s row", lane)
		}
	}
	return GameEvent{
		Player:  player,
		Type:    EventPlayCard,
		Card:    cardName,
		Details: details,
	}
}

func NewAbilityEvent(player int, cardName string, details string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventAbility,
		Card:    cardName,
		Details: details,
	}
}

func NewWeatherEvent(player int, cardName string, target int, lanes []string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventWeather,
		Card:    cardName,
		Details: fmt.Sprintf("%s brings %s on %s's %s", PlayerName(player), cardName, PlayerName(target), describeLanes(lanes)),
	}
}

func NewClearWeatherEvent(player int, cardName string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventWeather,
		Card:    cardName,
		Details: fmt.Sprintf("%s clears all weather with %s", PlayerName(player), cardName),
	}
}

func NewHornEvent(player int, cardName string, lanes []string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventHorn,
		Card:    cardName,
		Details: fmt.Sprintf("%s sounds %s over their %s", PlayerName(player), cardName, describeLanes(lanes)),
	}
}

func NewScorchEvent(player int, cardName string, burned []string) GameEvent {
	details := fmt.Sprintf("%s casts %s: nothing burns", PlayerName(player), cardName)
	if len(burned) > 0 {
		details = fmt.Sprintf("%s casts %s: %s destroyed", PlayerName(player), cardName, strings.Join(burned, ", "))
	}
	return GameEvent{
		Player:  player,
		Type:    EventScorch,
		Card:    cardName,
		Details: details,
	}
}

func NewResurrectEvent(player int, cardName string, lane string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventResurrect,
		Card:    cardName,
		Details: fmt.Sprintf("%s resurrects %s to the %s row", PlayerName(player), cardName, lane),
	}
}

func NewDecoyEvent(player int, decoy string, returned string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventDecoy,
		Card:    decoy,
		Details: fmt.Sprintf("%s swaps %s back to hand with %s", PlayerName(player), returned, decoy),
	}
}

func NewPassEvent(player int, reason string) GameEvent {
	details := fmt.Sprintf("%s passes", PlayerName(player))
	if reason != "" {
		details += " (" + reason + ")"
	}
	return GameEvent{
		Player:  player,
		Type:    EventPass,
		Details: details,
	}
}

func NewLeaderEvent(player int, cardName string, details string) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventLeader,
		Card:    cardName,
		Details: fmt.Sprintf("%s: %s", PlayerName(player), details),
	}
}

func NewRejectedEvent(player int, decision string, reason error) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventRejected,
		Details: fmt.Sprintf("%s: %q rejected: %v", PlayerName(player), decision, reason),
	}
}

func NewRoundEndEvent(round int, score0, score1 int) GameEvent {
	return GameEvent{
		Player:  -1,
		Type:    EventRoundEnd,
		Details: fmt.Sprintf("Round %d over: P1 %d - P2 %d", round, score0, score1),
	}
}

func NewLifeChangeEvent(player int, oldLife, newLife int) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    EventLifeChange,
		Details: fmt.Sprintf("%s life: %d → %d", PlayerName(player), oldLife, newLife),
	}
}

func NewWinEvent(winner int, reason string) GameEvent {
	return GameEvent{
		Player:  winner,
		Type:    EventWin,
		Details: fmt.Sprintf("%s wins! (%s)", PlayerName(winner), reason),
	}
}

func NewDrawGameEvent(reason string) GameEvent {
	return GameEvent{
		Player:  -1,
		Type:    EventDrawGame,
		Details: fmt.Sprintf("Match drawn (%s)", reason),
	}
}

func describeLanes(lanes []string) string {
	if len(lanes) == 0 || len(lanes) == 3 {
		return "rows"
	}
	return strings.Join(lanes, ", ") + " row"
}
