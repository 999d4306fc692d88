package game

// Read-only snapshots handed to seats and transports. Nothing in a view aliases match state.

// CardView describes one card instance.
type CardView struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Strength    int    `json:"strength"`
	HasStrength bool   `json:"has_strength"`
	Effective   int    `json:"effective,omitempty"` // scored strength, only for cards on the board
	Row         string `json:"row"`
	Ability     string `json:"ability,omitempty"`
	Category    string `json:"category"`
	Hero        bool   `json:"hero,omitempty"`
}

// NewCardView builds a view of ci.
func NewCardView(ci *CardInstance) CardView {
	cv := CardView{
		ID:          ci.ID,
		Name:        ci.Card.Name,
		Strength:    ci.Card.Strength,
		HasStrength: ci.Card.HasStrength,
		Row:         ci.Card.Row.String(),
		Category:    ci.Card.Category.String(),
		Hero:        ci.Card.IsHero(),
	}
	if ci.Card.Ability != AbilityNone && ci.Card.Ability != AbilityHero {
		cv.Ability = ci.Card.Ability.String()
	}
	return cv
}

func cardViews(cards []*CardInstance) []CardView {
	views := make([]CardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, NewCardView(c))
	}
	return views
}

// RowView is one lane of one side.
type RowView struct {
	Lane    string     `json:"lane"`
	Cards   []CardView `json:"cards"`
	Score   int        `json:"score"`
	Weather bool       `json:"weather,omitempty"`
	Horn    bool       `json:"horn,omitempty"`
}

// SideView is one side's three rows, close to siege.
type SideView struct {
	Rows  []RowView `json:"rows"`
	Score int       `json:"score"`
}

// BoardView is both sides of the board.
type BoardView struct {
	Sides [2]SideView `json:"sides"`
}

// NewBoardView snapshots b.
func NewBoardView(b *Board) BoardView {
	var bv BoardView
	for side := 0; side < 2; side++ {
		sv := SideView{Score: b.TotalScore(side)}
		for _, row := range b.Rows[side] {
			rv := RowView{
				Lane:    row.Lane.String(),
				Cards:   make([]CardView, 0, len(row.Cards)),
				Score:   b.RowScore(side, row.Lane),
				Weather: row.Weather,
				Horn:    row.Horn,
			}
			for _, c := range row.Cards {
				cv := NewCardView(c)
				cv.Effective = b.EffectiveStrength(row, c)
				rv.Cards = append(rv.Cards, cv)
			}
			sv.Rows = append(sv.Rows, rv)
		}
		bv.Sides[side] = sv
	}
	return bv
}

// PlayerView is one player as seen by a seat. Hand is only filled for the seat's own side.
type PlayerView struct {
	Name           string     `json:"name"`
	Faction        string     `json:"faction,omitempty"`
	Life           int        `json:"life"`
	Passed         bool       `json:"passed"`
	HandCount      int        `json:"hand_count"`
	Hand           []CardView `json:"hand,omitempty"`
	DeckCount      int        `json:"deck_count"`
	GraveyardCount int        `json:"graveyard_count"`
	Leader         string     `json:"leader,omitempty"`
	LeaderUsed     bool       `json:"leader_used,omitempty"`
	Score          int        `json:"score"`
}

// View is the match from one side's perspective.
type View struct {
	Side       int        `json:"side"`
	MatchID    string     `json:"match_id"`
	Round      int        `json:"round"`
	Turn       int        `json:"turn"`
	Phase      string     `json:"phase"`
	IsYourTurn bool       `json:"is_your_turn"`
	You        PlayerView `json:"you"`
	Opponent   PlayerView `json:"opponent"`
	Board      BoardView  `json:"board"`
	Over       bool       `json:"over,omitempty"`
	Winner     int        `json:"winner"`
}

// MyRows returns the seat's own side of the board.
func (v *View) MyRows() SideView {
	return v.Board.Sides[v.Side]
}

// TheirRows returns the opponent's side of the board.
func (v *View) TheirRows() SideView {
	return v.Board.Sides[1-v.Side]
}

// HandCard returns the hand card with the given ID.
func (v *View) HandCard(id int) (CardView, bool) {
	for _, c := range v.You.Hand {
		if c.ID == id {
			return c, true
		}
	}
	return CardView{}, false
}
