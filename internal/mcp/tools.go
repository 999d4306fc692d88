package mcp

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/gwentx/internal/bot"
	"github.com/peterkuimelis/gwentx/internal/game"
	gwentnet "github.com/peterkuimelis/gwentx/internal/net"
)

// Host owns the single game session of one stdio MCP process.
type Host struct {
	Catalog  *game.Catalog
	Rules    game.Rules
	Port     string // TCP port for a human opponent
	Tuning   bot.Tuning
	Log      *zap.Logger
	Recorder gwentnet.Recorder // optional

	mu     sync.Mutex
	active *GameSession
}

// RegisterTools adds all game tools to the MCP server.
func (h *Host) RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), h.handleStartGame)
	s.AddTool(submitDecisionTool(), h.handleSubmitDecision)
	s.AddTool(selectCardsTool(), h.handleSelectCards)
	s.AddTool(chooseLaneTool(), h.handleChooseLane)
	s.AddTool(getGameStateTool(), h.handleGetGameState)
}

// Close abandons the running session, if any.
func (h *Host) Close() {
	h.mu.Lock()
	sess := h.active
	h.active = nil
	h.mu.Unlock()
	if sess != nil {
		sess.Close()
	}
}

func (h *Host) session() *GameSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new Gwent match. Returns the initial game state and first pending decision. "+
			"Against opponent 'human', the other player connects via `gwentx join --addr localhost:<port> --deck N` "+
			"in a separate terminal and this call blocks until they do."),
		mcp.WithString("deck", mcp.Description("Your deck: a number (1-indexed) or a faction name. Defaults to 1.")),
		mcp.WithNumber("side", mcp.Description("Which side you play: 0 or 1. Defaults to 0.")),
		mcp.WithString("opponent", mcp.Description("'bot' (default) or 'human'")),
		mcp.WithString("opponent_deck", mcp.Description("The bot's deck: a number or a faction name. Defaults to 2.")),
		mcp.WithNumber("seed", mcp.Description("Optional seed for a reproducible shuffle and coin toss")),
	)
}

func submitDecisionTool() mcp.Tool {
	return mcp.NewTool("submit_decision",
		mcp.WithDescription("Choose a play from the pending options list. Use this when the pending decision type is 'choose_decision'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the option to take")),
	)
}

func selectCardsTool() mcp.Tool {
	return mcp.NewTool("select_cards",
		mcp.WithDescription("Select cards from the pending candidates list. Use this when the pending decision type is 'choose_cards'."),
		mcp.WithString("indices", mcp.Required(), mcp.Description("Space-separated 0-based indices of cards to select (e.g. '0 2'), or empty string for no selection")),
	)
}

func chooseLaneTool() mcp.Tool {
	return mcp.NewTool("choose_lane",
		mcp.WithDescription("Choose the row for an agile card or a horn. Use this when the pending decision type is 'choose_lane'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the pending lanes list")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state, accumulated events, and pending decision without submitting a response. Read-only."),
	)
}

// --- Tool handlers ---

func (h *Host) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	if h.active != nil {
		if !h.active.snapshot().GameOver {
			h.mu.Unlock()
			return mcp.NewToolResultError("A game is already running. Only one game at a time is supported."), nil
		}
		h.active = nil
	}
	h.mu.Unlock()

	side := request.GetInt("side", 0)
	if side != 0 && side != 1 {
		return mcp.NewToolResultError("side must be 0 or 1"), nil
	}

	sess, err := NewGameSession(ctx, SessionConfig{
		Catalog:      h.Catalog,
		Rules:        h.Rules,
		AgentDeck:    request.GetString("deck", "1"),
		AgentSide:    side,
		AgentName:    "Agent",
		Opponent:     request.GetString("opponent", OpponentBot),
		OpponentDeck: request.GetString("opponent_deck", "2"),
		Port:         h.Port,
		Tuning:       h.Tuning,
		Seed:         int64(request.GetInt("seed", 0)),
		Log:          h.Log,
		Recorder:     h.Recorder,
	})
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}

	h.mu.Lock()
	h.active = sess
	h.mu.Unlock()

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (h *Host) handleSubmitDecision(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := h.session()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	pending, err := sess.takePending(DecisionChooseDecision)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Options) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Options)-1), nil
	}
	return h.respond(ctx, sess, DecisionResponse{Index: index})
}

func (h *Host) handleSelectCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := h.session()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	pending, err := sess.takePending(DecisionChooseCards)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var indices []int
	seen := make(map[int]bool)
	for _, p := range strings.Fields(request.GetString("indices", "")) {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid index '%s': must be an integer.", p), nil
		}
		if idx < 0 || idx >= len(pending.Candidates) {
			return mcp.NewToolResultErrorf("Index %d out of range. Must be 0-%d.", idx, len(pending.Candidates)-1), nil
		}
		if seen[idx] {
			return mcp.NewToolResultErrorf("Index %d selected twice.", idx), nil
		}
		seen[idx] = true
		indices = append(indices, idx)
	}

	if len(indices) < pending.Min {
		return mcp.NewToolResultErrorf("Must select at least %d card(s), got %d.", pending.Min, len(indices)), nil
	}
	if len(indices) > pending.Max {
		return mcp.NewToolResultErrorf("Must select at most %d card(s), got %d.", pending.Max, len(indices)), nil
	}
	return h.respond(ctx, sess, CardsResponse{Indices: indices})
}

func (h *Host) handleChooseLane(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := h.session()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	pending, err := sess.takePending(DecisionChooseLane)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Lanes) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Lanes)-1), nil
	}
	return h.respond(ctx, sess, LaneResponse{Index: index})
}

func (h *Host) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := h.session()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	return mcp.NewToolResultText(respondJSON(sess.snapshot())), nil
}

func (h *Host) respond(ctx context.Context, sess *GameSession, answer any) (*mcp.CallToolResult, error) {
	resp, err := sess.respond(ctx, answer)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
