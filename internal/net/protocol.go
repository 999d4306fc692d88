package net

import "github.com/peterkuimelis/gwentx/internal/game"

// Message types for the newline-delimited JSON protocol over TCP.
const (
	MsgJoin           = "join"
	MsgNotify         = "notify"
	MsgChooseDecision = "choose_decision"
	MsgChooseCards    = "choose_cards"
	MsgChooseLane     = "choose_lane"
	MsgDecision       = "decision"
	MsgCards          = "cards"
	MsgLane           = "lane"
	MsgGameOver       = "game_over"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "choose_decision"
	Options []OptionView `json:"options,omitempty"`
	State   *game.View   `json:"state,omitempty"`

	// For "choose_cards"
	Prompt     string          `json:"prompt,omitempty"`
	Candidates []CandidateView `json:"candidates,omitempty"`
	Min        int             `json:"min,omitempty"`
	Max        int             `json:"max,omitempty"`

	// For "choose_lane"
	Card  *game.CardView `json:"card,omitempty"`
	Lanes []string       `json:"lanes,omitempty"`

	// For "game_over"
	Winner int    `json:"winner,omitempty"`
	Result string `json:"result,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Round   int    `json:"round"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// OptionView is a numbered decision.
type OptionView struct {
	Index int    `json:"index"`
	Desc  string `json:"desc"`
}

// CandidateView is a numbered card offered for selection.
type CandidateView struct {
	Index int `json:"index"`
	game.CardView
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "decision" and "lane"
	Index int `json:"index"`

	// For "cards"
	Indices []int `json:"indices,omitempty"`

	// For "join" (initial handshake): a deck number or name, and a display name
	Deck string `json:"deck,omitempty"`
	Name string `json:"name,omitempty"`
}
