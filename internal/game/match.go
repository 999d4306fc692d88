package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peterkuimelis/gwentx/internal/log"
)

// PlayerSetup names one side and its deck.
type PlayerSetup struct {
	Name string
	Deck DeckList
}

// MatchConfig holds configuration for creating a new match. The zero value plays the default
// rules with a coin toss for the opening turn.
type MatchConfig struct {
	Players          [2]PlayerSetup
	Rules            Rules // zero value means DefaultRules
	Logger           log.EventLogger
	Log              *zap.Logger // operational logging; nil means no output
	Seed             int64       // RNG seed (0 for random)
	NoShuffle        bool        // skip deck shuffle (for deterministic tests)
	FixedFirstPlayer bool        // open round 1 with FirstPlayer instead of tossing the coin
	FirstPlayer      int
	MaxRejections    int // consecutive rejected decisions before a forced pass (0 = default)
}

// RoundResult records the outcome of one finished round.
type RoundResult struct {
	Round  int    `json:"round"`
	Scores [2]int `json:"scores"`
	Loser  int    `json:"loser"` // -1 on a tie
}

// Match orchestrates an entire game between two seats.
type Match struct {
	ID         string
	Players    [2]*Player
	Board      *Board
	Rules      Rules
	Seats      [2]DecisionPolicy
	Logger     log.EventLogger
	TurnPlayer int
	Round      int
	Turn       int
	Phase      Phase
	Over       bool
	Winner     int
	Result     string
	Rounds     []RoundResult

	ctx           context.Context
	zl            *zap.Logger
	rng           *rand.Rand
	noShuffle     bool
	fixedFirst    bool
	firstPlayer   int
	maxRejections int
	rejections    [2]int
}

// NewMatch creates a new match from the given config and seats.
func NewMatch(cfg MatchConfig, p0, p1 DecisionPolicy) *Match {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	zl := cfg.Log
	if zl == nil {
		zl = zap.NewNop()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	rules := cfg.Rules.orDefault()
	maxRejections := cfg.MaxRejections
	if maxRejections <= 0 {
		maxRejections = DefaultMaxRejections
	}

	m := &Match{
		ID:            uuid.NewString(),
		Board:         NewBoard(rules),
		Rules:         rules,
		Seats:         [2]DecisionPolicy{p0, p1},
		Logger:        logger,
		Winner:        -1,
		ctx:           context.Background(),
		rng:           rng,
		noShuffle:     cfg.NoShuffle,
		fixedFirst:    cfg.FixedFirstPlayer,
		firstPlayer:   cfg.FirstPlayer,
		maxRejections: maxRejections,
	}
	m.zl = zl.With(zap.String("match", m.ID))

	// Instance IDs are unique across both decks and start at 1, so 0 never names a card.
	nextID := 1
	for side, setup := range cfg.Players {
		var instances []*CardInstance
		for _, card := range setup.Deck.Cards {
			instances = append(instances, &CardInstance{Card: card, ID: nextID, Owner: side})
			nextID++
		}
		var deck *Deck
		if cfg.NoShuffle {
			deck = NewOrderedDeck(setup.Deck.Name, instances, rng)
		} else {
			deck = NewDeck(setup.Deck.Name, instances, rng)
		}
		deck.Faction = setup.Deck.Faction
		name := setup.Name
		if name == "" {
			name = log.PlayerName(side)
		}
		m.Players[side] = &Player{
			Name:    name,
			Faction: setup.Deck.Faction,
			Deck:    deck,
			Leader:  setup.Deck.Leader,
			Life:    rules.Lives,
		}
	}
	return m
}

// Start deals, tosses the coin, runs the redraw and opens round 1.
func (m *Match) Start(ctx context.Context) error {
	if m.Phase != PhaseNone {
		return fmt.Errorf("match %s already started", m.ID)
	}
	m.ctx = ctx

	for side, p := range m.Players {
		// Decks are shuffled when built; the event announces it before the deal.
		if !m.noShuffle {
			m.emit(log.NewShuffleEvent(side))
		}
		drawn, err := p.DrawCards(m.Rules.InitialHand)
		if errors.Is(err, ErrInsufficientCards) {
			m.zl.Warn("short initial hand", zap.Int("side", side), zap.Int("dealt", len(drawn)))
		}
		m.emit(log.NewDealEvent(side, len(drawn)))
	}

	m.Phase = PhaseCoinToss
	first := m.rng.Intn(2)
	if m.fixedFirst && (m.firstPlayer == 0 || m.firstPlayer == 1) {
		first = m.firstPlayer
	}
	m.emit(log.NewCoinTossEvent(first))

	m.Phase = PhaseRedraw
	for side := 0; side < 2; side++ {
		if err := m.redraw(ctx, side); err != nil {
			return err
		}
	}

	m.beginRound(first)
	return nil
}

// redraw lets side swap up to RedrawMax hand cards: each chosen card is discarded, then one
// card is drawn in its place.
func (m *Match) redraw(ctx context.Context, side int) error {
	p := m.Players[side]
	limit := m.Rules.RedrawMax
	if limit <= 0 || len(p.Hand) == 0 {
		return nil
	}
	if limit > len(p.Hand) {
		limit = len(p.Hand)
	}
	prompt := fmt.Sprintf("Choose up to %d cards to redraw", limit)
	ids, err := m.Seats[side].ChooseCards(ctx, m.View(side), prompt, cardViews(p.Hand), 0, limit)
	if err != nil {
		return fmt.Errorf("redraw for %s: %w", log.PlayerName(side), err)
	}

	seen := make(map[int]bool)
	for _, id := range ids {
		if len(seen) == limit {
			break
		}
		card, _ := p.FindInHand(id)
		if card == nil || seen[id] {
			continue
		}
		seen[id] = true
		p.RemoveFromHand(card)
		p.Deck.Discard(card)
		drawn, _ := p.DrawCards(1)
		replacement := ""
		if len(drawn) > 0 {
			replacement = drawn[0].Card.Name
		}
		m.emit(log.NewRedrawEvent(side, card.Card.Name, replacement))
	}
	return nil
}

// Run executes the whole match. Returns the winner (0, 1, or -1 for a draw).
func (m *Match) Run(ctx context.Context) (int, error) {
	m.ctx = ctx
	if m.Phase == PhaseNone {
		if err := m.Start(ctx); err != nil {
			return -1, err
		}
	}

	for !m.Over {
		if err := ctx.Err(); err != nil {
			return -1, err
		}
		side := m.TurnPlayer
		chosen, err := m.Seats[side].ChooseDecision(ctx, m.View(side), m.LegalDecisions(side))
		if err != nil {
			return -1, fmt.Errorf("%s decision: %w", log.PlayerName(side), err)
		}

		err = m.SubmitDecision(ctx, side, chosen)
		if err == nil {
			m.rejections[side] = 0
			continue
		}
		if !IsRejection(err) {
			return -1, err
		}
		m.rejections[side]++
		m.emit(log.NewRejectedEvent(side, chosen.String(), err))
		if m.rejections[side] >= m.maxRejections {
			m.rejections[side] = 0
			m.Turn++
			m.pass(side, "too many rejected decisions")
		}
	}

	m.zl.Info("match finished",
		zap.Int("winner", m.Winner),
		zap.Int("rounds", m.Round),
		zap.String("result", m.Result))
	return m.Winner, nil
}

// SubmitDecision validates and applies one decision for side. A rejected decision returns a
// typed error and leaves the match untouched.
func (m *Match) SubmitDecision(ctx context.Context, side int, d Decision) error {
	m.ctx = ctx
	if m.Over {
		return ErrGameOver
	}
	if m.Phase != PhaseRoundActive {
		return fmt.Errorf("%w: phase is %s", ErrRoundAlreadyOver, m.Phase)
	}
	if side != m.TurnPlayer {
		return fmt.Errorf("%w: it is %s's turn", ErrNotYourTurn, log.PlayerName(m.TurnPlayer))
	}

	switch d.Type {
	case ActionPass:
		m.Turn++
		m.pass(side, "")
		return nil
	case ActionActivateLeader:
		m.Turn++
		m.activateLeader(side)
		m.advance(side)
		return nil
	case ActionPlayCard:
		if err := m.playCard(ctx, side, d); err != nil {
			return err
		}
		m.advance(side)
		return nil
	default:
		return fmt.Errorf("%w: %d", errUnsupportedActionType, d.Type)
	}
}

// playCard moves a hand card onto the board (or resolves it from hand) and applies the
// outcome. All questions to the seat are asked before anything changes.
func (m *Match) playCard(ctx context.Context, side int, d Decision) error {
	p := m.Players[side]
	card, idx := p.FindInHand(d.CardID)
	if card == nil {
		return fmt.Errorf("%w: card %d", ErrCardNotInHand, d.CardID)
	}

	play := Play{Card: card, Side: side, Lane: d.Lane}
	c := card.Card
	switch {
	case c.IsUnit():
		if play.Lane == LaneNone {
			lane, err := m.pickLane(ctx, side, card, c.EligibleLanes())
			if err != nil {
				return err
			}
			play.Lane = lane
		}
	case c.Ability == AbilityHorn && m.Rules.HornScope == ScopeCardLane:
		if play.Lane == LaneNone {
			lane, err := m.pickLane(ctx, side, card, BoardLanes[:])
			if err != nil {
				return err
			}
			play.Lane = lane
		}
	case c.Ability == AbilityDecoy:
		target, err := m.pickDecoyTarget(ctx, side, d.TargetID)
		if err != nil {
			return err
		}
		play.Target = target
		play.Lane = LaneNone
	default:
		play.Lane = LaneNone
	}

	if err := ValidatePlay(m.Board, play); err != nil {
		return err
	}

	m.Turn++
	p.RemoveFromHand(card)
	out, err := Resolve(m.Board, play)
	if err != nil {
		p.insertIntoHand(card, idx)
		m.Turn--
		return err
	}

	lane := ""
	if out.PlacedSide >= 0 {
		lane = play.Lane.String()
	}
	return m.applyOutcome(ctx, side, card, out, func() {
		m.emit(log.NewPlayCardEvent(side, c.Name, lane, out.PlacedSide))
	})
}

func (m *Match) pickLane(ctx context.Context, side int, card *CardInstance, lanes []Lane) (Lane, error) {
	if len(lanes) == 1 {
		return lanes[0], nil
	}
	if len(lanes) == 0 {
		return LaneNone, fmt.Errorf("%w: %s has no row", ErrInvalidPlacement, card.Card.Name)
	}
	lane, err := m.Seats[side].ChooseLane(ctx, m.View(side), NewCardView(card), lanes)
	if err != nil {
		return LaneNone, fmt.Errorf("%s lane choice: %w", log.PlayerName(side), err)
	}
	return lane, nil
}

// decoyTargets lists the cards a decoy played by side may swap back.
func (m *Match) decoyTargets(side int) []*CardInstance {
	var targets []*CardInstance
	for _, c := range m.Board.Cards(side) {
		if !c.Card.IsHero() {
			targets = append(targets, c)
		}
	}
	return targets
}

func (m *Match) pickDecoyTarget(ctx context.Context, side int, targetID int) (*CardInstance, error) {
	if targetID != 0 {
		target, _, _, ok := m.Board.Find(targetID)
		if !ok {
			return nil, fmt.Errorf("%w: card %d is not on the board", ErrInvalidPlacement, targetID)
		}
		return target, nil
	}
	targets := m.decoyTargets(side)
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no card to swap", ErrInvalidPlacement)
	}
	ids, err := m.Seats[side].ChooseCards(ctx, m.View(side), "Choose a card to swap back to your hand", cardViews(targets), 1, 1)
	if err != nil {
		return nil, fmt.Errorf("%s decoy target: %w", log.PlayerName(side), err)
	}
	for _, id := range ids {
		for _, t := range targets {
			if t.ID == id {
				return t, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no valid decoy target chosen", ErrInvalidPlacement)
}

// applyOutcome carries out what a resolved card asks for and logs it. Cards reach their
// destination before any event about them is emitted.
func (m *Match) applyOutcome(ctx context.Context, side int, card *CardInstance, out Outcome, announce func()) error {
	for _, removed := range out.Removed {
		m.Players[removed.Owner].Deck.Discard(removed)
	}
	if out.Returned != nil {
		out.Returned.Owner = side
		m.Players[side].Hand = append(m.Players[side].Hand, out.Returned)
	}
	if out.Discard {
		m.Players[card.Owner].Deck.Discard(card)
	}
	announce()

	c := card.Card
	switch {
	case c.Ability.IsWeather():
		m.emit(log.NewWeatherEvent(side, c.Name, out.EffectSide, laneNames(out.Lanes)))
	case c.Ability == AbilityClearWeather:
		m.emit(log.NewClearWeatherEvent(side, c.Name))
	case c.Ability == AbilityHorn:
		m.emit(log.NewHornEvent(side, c.Name, laneNames(out.Lanes)))
	case c.Ability == AbilityScorch || c.Ability == AbilityScorchClose:
		m.emit(log.NewScorchEvent(side, c.Name, cardNames(out.Removed)))
	case c.Ability == AbilitySpy:
		m.emit(log.NewAbilityEvent(side, c.Name, fmt.Sprintf("%s spies on %s", c.Name, log.PlayerName(1-side))))
	case out.Returned != nil:
		m.emit(log.NewDecoyEvent(side, c.Name, out.Returned.Card.Name))
	}

	if out.Draw > 0 {
		m.draw(side, out.Draw)
	}
	if out.Resurrect {
		return m.resurrect(ctx, side, c.Name)
	}
	return nil
}

func (m *Match) draw(side int, n int) {
	drawn, err := m.Players[side].DrawCards(n)
	for _, c := range drawn {
		m.emit(log.NewDrawEvent(side, c.Card.Name))
	}
	if err != nil {
		m.zl.Debug("short draw", zap.Int("side", side), zap.Error(err))
	}
}

// medicEligible reports whether a graveyard card can be brought back by a medic.
func medicEligible(ci *CardInstance) bool {
	return ci.Card.IsUnit() && !ci.Card.IsHero()
}

// resurrect brings one graveyard unit back onto side's rows without resolving its ability.
func (m *Match) resurrect(ctx context.Context, side int, medic string) error {
	deck := m.Players[side].Deck

	var card *CardInstance
	switch m.Rules.MedicMode {
	case MedicChoose:
		var candidates []*CardInstance
		for _, c := range deck.Graveyard() {
			if medicEligible(c) {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) > 0 {
			ids, err := m.Seats[side].ChooseCards(ctx, m.View(side), "Choose a card to resurrect", cardViews(candidates), 1, 1)
			if err != nil {
				return fmt.Errorf("%s resurrection: %w", log.PlayerName(side), err)
			}
			if len(ids) > 0 {
				card, _ = deck.ResurrectLatest(func(c *CardInstance) bool { return c.ID == ids[0] && medicEligible(c) })
			}
		}
		if card == nil {
			card, _ = deck.ResurrectLatest(medicEligible)
		}
	default:
		card, _ = deck.ResurrectLatest(medicEligible)
	}

	if card == nil {
		m.emit(log.NewAbilityEvent(side, medic, fmt.Sprintf("%s finds nothing to resurrect", medic)))
		return nil
	}

	lane, err := m.pickLane(ctx, side, card, card.Card.EligibleLanes())
	if err != nil {
		m.zl.Warn("resurrection lane", zap.Error(err))
	}
	if !card.Card.CanOccupy(lane) {
		lane = card.Card.EligibleLanes()[0]
	}
	if err := m.Board.Place(card, side, lane); err != nil {
		deck.Discard(card)
		return err
	}
	m.emit(log.NewResurrectEvent(side, card.Card.Name, lane.String()))
	return nil
}

// activateLeader uses side's leader once. An absent or spent leader still costs the turn.
func (m *Match) activateLeader(side int) {
	p := m.Players[side]
	if !p.LeaderAvailable() {
		m.emit(log.NewLeaderEvent(side, "", "leader ability unavailable"))
		return
	}
	p.LeaderUsed = true
	out := ResolveLeader(m.Board, side, p.Leader)
	leader := &CardInstance{Card: p.Leader, Owner: side}
	announce := func() {
		m.emit(log.NewLeaderEvent(side, p.Leader.Name, fmt.Sprintf("activates %s (%s)", p.Leader.Name, p.Leader.Ability)))
	}
	if err := m.applyOutcome(m.ctx, side, leader, out, announce); err != nil {
		m.zl.Warn("leader outcome", zap.Error(err))
	}
}

// pass marks side as passed for the rest of the round.
func (m *Match) pass(side int, reason string) {
	m.Players[side].Passed = true
	m.emit(log.NewPassEvent(side, reason))
	m.advance(side)
}

// advance hands the turn to the other side unless it has passed, then settles forced passes
// and round end.
func (m *Match) advance(side int) {
	if m.Over || m.Phase != PhaseRoundActive {
		return
	}
	if !m.Players[1-side].Passed {
		m.TurnPlayer = 1 - side
	}
	m.settle()
}

// settle resolves everything that needs no decision: both sides passed ends the round, a
// passed turn player yields the turn, an empty hand is a forced pass.
func (m *Match) settle() {
	for !m.Over && m.Phase == PhaseRoundActive {
		if m.Players[0].Passed && m.Players[1].Passed {
			m.endRound()
			continue
		}
		tp := m.Players[m.TurnPlayer]
		if tp.Passed {
			m.TurnPlayer = 1 - m.TurnPlayer
			continue
		}
		if len(tp.Hand) == 0 {
			tp.Passed = true
			m.emit(log.NewPassEvent(m.TurnPlayer, "empty hand"))
			continue
		}
		return
	}
}

func (m *Match) beginRound(first int) {
	m.Round++
	m.Phase = PhaseRoundActive
	m.TurnPlayer = first
	m.emit(log.NewRoundStartEvent(m.Round, first))
	m.settle()
}

// endRound scores the round, takes a life from the lower side, clears the board into the
// graveyards and either ends the match or opens the next round.
func (m *Match) endRound() {
	m.Phase = PhaseRoundEnd
	scores := m.Scores()
	m.emit(log.NewRoundEndEvent(m.Round, scores[0], scores[1]))

	loser := -1
	switch {
	case scores[0] < scores[1]:
		loser = 0
	case scores[1] < scores[0]:
		loser = 1
	}
	m.Rounds = append(m.Rounds, RoundResult{Round: m.Round, Scores: scores, Loser: loser})

	if loser >= 0 {
		p := m.Players[loser]
		old := p.Life
		p.Life--
		m.emit(log.NewLifeChangeEvent(loser, old, p.Life))
	}

	for _, c := range m.Board.AllCards() {
		m.Players[c.Owner].Deck.Discard(c)
	}
	m.Board.Reset()
	for _, p := range m.Players {
		p.Passed = false
	}

	if loser >= 0 && m.Players[loser].Life <= 0 {
		winner := 1 - loser
		m.finish(winner, fmt.Sprintf("%s has no lives left", log.PlayerName(loser)))
		return
	}
	if m.Round >= m.Rules.MaxRounds {
		m.finish(-1, fmt.Sprintf("round limit reached (%d rounds)", m.Rules.MaxRounds))
		return
	}

	// Turns keep alternating across the round break: the side that did not take the last
	// turn opens the next round.
	m.beginRound(1 - m.TurnPlayer)
}

func (m *Match) finish(winner int, reason string) {
	m.Phase = PhaseGameOver
	m.Over = true
	m.Winner = winner
	if winner < 0 {
		m.Result = "Draw: " + reason
		m.emit(log.NewDrawGameEvent(reason))
		return
	}
	m.Result = fmt.Sprintf("%s wins: %s", log.PlayerName(winner), reason)
	m.emit(log.NewWinEvent(winner, reason))
}

// emit stamps the event with the match position, logs it and notifies both seats.
func (m *Match) emit(event log.GameEvent) {
	event.Round = m.Round
	event.Turn = m.Turn
	event.Phase = m.Phase.String()
	m.Logger.Log(event)
	// Notify seats (ignore errors for notifications)
	for i := 0; i < 2; i++ {
		if m.Seats[i] != nil {
			_ = m.Seats[i].Notify(m.ctx, event)
		}
	}
}

func laneNames(lanes []Lane) []string {
	names := make([]string, 0, len(lanes))
	for _, l := range lanes {
		names = append(names, l.String())
	}
	return names
}

func cardNames(cards []*CardInstance) []string {
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.Card.Name)
	}
	return names
}
