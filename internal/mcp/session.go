package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/pokebattle/internal/ai"
	"github.com/peterkuimelis/pokebattle/internal/game"
	"github.com/peterkuimelis/pokebattle/internal/log"
)

// Seat ids used by MCP sessions.
const (
	AgentID    = "agent"
	ComputerID = "cpu"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events   []game.EventView    `json:"events"`
	State    *game.StateView     `json:"state,omitempty"`
	Response *ActionOutcome      `json:"response,omitempty"`
	GameOver bool                `json:"game_over"`
	Winner   string              `json:"winner,omitempty"`
	Result   string              `json:"result,omitempty"`
	Summary  *game.BattleSummary `json:"summary,omitempty"`
}

// ActionOutcome is the engine's answer to a submitted action.
type ActionOutcome struct {
	Action  string   `json:"action"`
	Result  string   `json:"result"`
	Message string   `json:"message"`
	Effects []string `json:"effects,omitempty"`
}

// SessionConfig describes one agent-versus-computer battle.
type SessionConfig struct {
	AgentDeck         string
	ComputerDeck      string // empty: synthesized from the catalog
	AgentFirst        bool
	Difficulty        ai.Difficulty
	Personality       ai.Personality
	MaxTurns          int
	Seed              int64
	HonorThinkingTime bool
}

// GameSession holds one battle between the MCP agent and a computer seat.
type GameSession struct {
	mu      sync.Mutex
	manager *game.Manager
	events  *log.LogrusLogger
	cursor  int
}

// NewGameSession builds and starts a battle. When the computer moves first
// its opening turn is already played on return.
func NewGameSession(ctx context.Context, cfg SessionConfig, deps game.Deps) (*GameSession, error) {
	entry := deps.Log
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	cpu := ai.New(ComputerID, cfg.Difficulty, cfg.Personality, ai.WithLogger(entry), ai.WithSeed(cfg.Seed, 0))
	deps.AI = []game.Opponent{cpu}

	gc := game.Config{
		PlayerID:          AgentID,
		OpponentID:        ComputerID,
		PlayerDeckID:      cfg.AgentDeck,
		OpponentDeckID:    cfg.ComputerDeck,
		Mode:              game.ModeVersusAI,
		Seed:              cfg.Seed,
		MaxTurns:          cfg.MaxTurns,
		HonorThinkingTime: cfg.HonorThinkingTime,
	}
	if !cfg.AgentFirst {
		gc.PlayerID, gc.OpponentID = ComputerID, AgentID
		gc.PlayerDeckID, gc.OpponentDeckID = cfg.ComputerDeck, cfg.AgentDeck
	}

	events := log.NewLogrusLogger(entry.WithField("component", "battle"))
	gc.Logger = events
	m := game.NewManager(gc, deps)
	if err := m.Start(ctx); err != nil {
		return nil, err
	}
	return &GameSession{manager: m, events: events}, nil
}

// Act submits the agent's choice from the numbered legal action list.
func (s *GameSession) Act(ctx context.Context, index int) (*ToolResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, err := s.manager.GameStateForUI(AgentID)
	if err != nil {
		return nil, err
	}
	if view.BattleOver {
		return nil, fmt.Errorf("the battle is over")
	}
	if !view.IsYourTurn {
		return nil, fmt.Errorf("it is not your turn")
	}
	if index < 0 || index >= len(view.Actions) {
		return nil, fmt.Errorf("invalid index %d, must be 0-%d", index, len(view.Actions)-1)
	}

	req := view.Actions[index].Request
	resp, err := s.manager.ProcessPlayerAction(ctx, req)
	if err != nil {
		return nil, err
	}
	out := s.snapshot()
	out.Response = &ActionOutcome{
		Action:  req.ActionType,
		Result:  resp.Result.String(),
		Message: resp.Message,
		Effects: resp.Effects,
	}
	return out, nil
}

// Surrender concedes the battle for the agent.
func (s *GameSession) Surrender(ctx context.Context) (*ToolResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.manager.ProcessPlayerAction(ctx, game.NewActionRequest(game.ActionSurrender, AgentID))
	if err != nil {
		return nil, err
	}
	out := s.snapshot()
	out.Response = &ActionOutcome{Action: game.ActionSurrender.String(), Result: resp.Result.String(), Message: resp.Message}
	return out, nil
}

// State returns the current snapshot and the events since the last call.
func (s *GameSession) State() *ToolResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Over reports whether the battle has ended.
func (s *GameSession) Over() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Battle().State.IsBattleOver()
}

// snapshot builds a ToolResponse. Callers hold mu.
func (s *GameSession) snapshot() *ToolResponse {
	resp := &ToolResponse{Events: s.drainEvents()}
	if view, err := s.manager.GameStateForUI(AgentID); err == nil {
		resp.State = &view
		resp.GameOver = view.BattleOver
		if view.BattleOver {
			resp.Winner = view.Winner
			resp.Result = view.Result
			sum := s.manager.Summary()
			resp.Summary = &sum
		}
	}
	return resp
}

// drainEvents returns the events logged since the previous drain.
func (s *GameSession) drainEvents() []game.EventView {
	all := s.events.Events()
	views := make([]game.EventView, 0, len(all)-s.cursor)
	for _, e := range all[s.cursor:] {
		views = append(views, game.EventView{
			Turn:    e.Turn,
			Phase:   e.Phase,
			Player:  e.Player,
			Type:    e.Type.String(),
			Details: e.Details,
		})
	}
	s.cursor = len(all)
	return views
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
