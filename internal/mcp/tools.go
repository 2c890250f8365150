package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/pokebattle/internal/ai"
	"github.com/peterkuimelis/pokebattle/internal/catalog"
	"github.com/peterkuimelis/pokebattle/internal/game"
)

// Defaults are applied to start_battle arguments the agent leaves out.
type Defaults struct {
	Difficulty        ai.Difficulty
	Personality       ai.Personality
	MaxTurns          int
	HonorThinkingTime bool
}

// Tools serves the battle tools. One battle runs at a time per process.
type Tools struct {
	catalog  *catalog.Catalog
	deps     game.Deps
	defaults Defaults

	mu      sync.Mutex
	session *GameSession
}

// NewTools creates the tool set. deps carries the persistence, audit and
// logging collaborators handed to every battle; its AI field is ignored.
func NewTools(cat *catalog.Catalog, deps game.Deps, defaults Defaults) *Tools {
	return &Tools{catalog: cat, deps: deps, defaults: defaults}
}

// Register adds all game tools to the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(listDecksTool(), t.handleListDecks)
	s.AddTool(startBattleTool(), t.handleStartBattle)
	s.AddTool(takeActionTool(), t.handleTakeAction)
	s.AddTool(surrenderTool(), t.handleSurrender)
	s.AddTool(getGameStateTool(), t.handleGetGameState)
}

// --- Tool definitions ---

func listDecksTool() mcp.Tool {
	return mcp.NewTool("list_decks",
		mcp.WithDescription("List the prebuilt decks, numbered from 1, with their ids and sizes."),
	)
}

func startBattleTool() mcp.Tool {
	return mcp.NewTool("start_battle",
		mcp.WithDescription("Start a battle against the computer. Returns the opening state, including the numbered list of legal actions."),
		mcp.WithString("deck", mcp.Required(), mcp.Description("Your deck: a deck id or its 1-indexed number from list_decks")),
		mcp.WithString("opponent_deck", mcp.Description("Computer deck id or number. Leave empty for a deck built from the catalog.")),
		mcp.WithBoolean("go_first", mcp.Description("true to take the first turn (default true)")),
		mcp.WithString("difficulty", mcp.Description("easy, medium or hard")),
		mcp.WithString("personality", mcp.Description("Computer personality preset, e.g. balanced, aggressive, defensive, reckless")),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Take one action from state.actions. The computer's reply, if any, is played before this returns."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into state.actions")),
	)
}

func surrenderTool() mcp.Tool {
	return mcp.NewTool("surrender",
		mcp.WithDescription("Concede the running battle."),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current state and the events since the last call without acting. Read-only."),
	)
}

// --- Tool handlers ---

type deckListing struct {
	Number int    `json:"number"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Size   int    `json:"size"`
}

func (t *Tools) handleListDecks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out []deckListing
	for i, d := range t.catalog.Decks() {
		out = append(out, deckListing{Number: i + 1, ID: d.ID, Name: d.Name, Size: d.Size()})
	}
	data, err := json.Marshal(map[string]any{"decks": out})
	if err != nil {
		return mcp.NewToolResultErrorf("marshal error: %v", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (t *Tools) handleStartBattle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != nil && !t.session.Over() {
		return mcp.NewToolResultError("A battle is already running. Finish or surrender it first."), nil
	}

	cfg := SessionConfig{
		AgentFirst:        request.GetBool("go_first", true),
		Difficulty:        t.defaults.Difficulty,
		Personality:       t.defaults.Personality,
		MaxTurns:          t.defaults.MaxTurns,
		HonorThinkingTime: t.defaults.HonorThinkingTime,
	}

	deck, err := t.resolveDeck(request.GetString("deck", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("deck: %v", err), nil
	}
	cfg.AgentDeck = deck
	if od := request.GetString("opponent_deck", ""); od != "" {
		if cfg.ComputerDeck, err = t.resolveDeck(od); err != nil {
			return mcp.NewToolResultErrorf("opponent_deck: %v", err), nil
		}
	}
	if d := request.GetString("difficulty", ""); d != "" {
		if cfg.Difficulty, err = ai.ParseDifficulty(d); err != nil {
			return mcp.NewToolResultErrorf("difficulty: %v", err), nil
		}
	}
	if name := request.GetString("personality", ""); name != "" {
		p, ok := ai.Preset(name)
		if !ok {
			return mcp.NewToolResultErrorf("unknown personality %q (have %s)", name, strings.Join(ai.PresetNames(), ", ")), nil
		}
		cfg.Personality = p
	}

	sess, err := NewGameSession(ctx, cfg, t.deps)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start battle: %v", err), nil
	}
	t.session = sess
	return mcp.NewToolResultText(respondJSON(sess.State())), nil
}

// resolveDeck accepts a deck id or a 1-indexed deck number.
func (t *Tools) resolveDeck(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		d, err := t.catalog.DeckByNumber(n)
		if err != nil {
			return "", err
		}
		return d.ID, nil
	}
	return s, nil
}

func (t *Tools) current() *GameSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

func (t *Tools) handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := t.current()
	if sess == nil {
		return mcp.NewToolResultError("No battle is running. Use start_battle first."), nil
	}
	resp, err := sess.Act(ctx, request.GetInt("index", -1))
	if err != nil {
		return mcp.NewToolResultErrorf("%v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleSurrender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := t.current()
	if sess == nil {
		return mcp.NewToolResultError("No battle is running. Use start_battle first."), nil
	}
	resp, err := sess.Surrender(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("%v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := t.current()
	if sess == nil {
		return mcp.NewToolResultError("No battle is running. Use start_battle first."), nil
	}
	resp := sess.State()
	// Ensure events is never null in JSON
	if resp.Events == nil {
		resp.Events = []game.EventView{}
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
