package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/pokebattle/internal/log"
)

const (
	// MaxAIActionsPerTurn bounds a computer seat's turn; on reaching it the
	// manager ends the turn on the seat's behalf.
	MaxAIActionsPerTurn = 10

	ModeVersusAI = "vs_ai"
	ModeLocal    = "local"

	CurrencyCoins = "coins"
	RewardWin     = 100
	RewardLoss    = 25
)

// Config holds configuration for creating a new battle.
type Config struct {
	PlayerID       string // moves first
	OpponentID     string
	PlayerDeckID   string
	OpponentDeckID string // empty: synthesize from the catalog (computer seats only)
	Mode           string
	Seed           int64 // RNG seed (0 for random)
	NoShuffle      bool  // skip deck shuffles (for deterministic tests)
	MaxTurns       int   // 0 = DefaultMaxTurns
	DeckSize       int   // synthesized deck size, 0 = DefaultSynthesizedDeckSize

	// HonorThinkingTime makes the manager wait out each AI decision's
	// ThinkingTime before applying it.
	HonorThinkingTime bool

	Logger log.EventLogger
}

// Deps are the external collaborators of a Manager. Only Cards is required.
type Deps struct {
	Cards   CardStore
	Battles BattleStore
	Economy PlayerEconomy
	Sink    ActionSink
	AI      []Opponent // computer seats, matched by PlayerID
	Log     *logrus.Entry
}

// Manager orchestrates one battle: setup, the request pipeline, computer
// turns and the hand-off to persistence.
type Manager struct {
	cfg      Config
	deps     Deps
	logger   log.EventLogger
	entry    *logrus.Entry
	ai       map[string]Opponent
	battle   *Battle
	recorded bool // the store accepted CreateBattleRecord
	finished bool
}

// NewManager creates a manager. Call Start before submitting actions.
func NewManager(cfg Config, deps Deps) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	entry := deps.Log
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeLocal
		if len(deps.AI) > 0 {
			cfg.Mode = ModeVersusAI
		}
	}
	ai := make(map[string]Opponent, len(deps.AI))
	for _, o := range deps.AI {
		ai[o.PlayerID()] = o
	}
	return &Manager{cfg: cfg, deps: deps, logger: logger, entry: entry, ai: ai}
}

// Battle returns the running battle, or nil before Start.
func (m *Manager) Battle() *Battle {
	return m.battle
}

// Logger returns the event logger battle events are flushed to.
func (m *Manager) Logger() log.EventLogger {
	return m.logger
}

// Start builds both players, deals opening hands, places starting actives,
// sets prizes aside and runs the first turn up to the point where input is
// needed. Computer seats play immediately.
func (m *Manager) Start(ctx context.Context) error {
	if m.battle != nil {
		return errors.New("battle already started")
	}
	if m.deps.Cards == nil {
		return errors.New("no card store configured")
	}
	if m.cfg.PlayerID == "" || m.cfg.OpponentID == "" || m.cfg.PlayerID == m.cfg.OpponentID {
		return fmt.Errorf("need two distinct player ids, got %q and %q", m.cfg.PlayerID, m.cfg.OpponentID)
	}

	seed := m.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	rules := DefaultRules()
	rules.MaxTurns = m.cfg.MaxTurns

	deck0, err := m.buildDeck(ctx, rng, rules, m.cfg.PlayerID, m.cfg.PlayerDeckID)
	if err != nil {
		return err
	}
	deck1, err := m.buildDeck(ctx, rng, rules, m.cfg.OpponentID, m.cfg.OpponentDeckID)
	if err != nil {
		return err
	}

	battleID := m.createRecord(ctx)
	m.entry = m.entry.WithField("battle_id", battleID)

	state := NewBattleState(battleID, m.cfg.PlayerID, m.cfg.OpponentID, m.cfg.MaxTurns)
	b := NewBattle(state, rules, rng)
	seats := []struct {
		id, deckID string
		cards      []*Card
	}{
		{m.cfg.PlayerID, m.cfg.PlayerDeckID, deck0},
		{m.cfg.OpponentID, m.cfg.OpponentDeckID, deck1},
	}
	for _, seat := range seats {
		_, isAI := m.ai[seat.id]
		p := NewPlayerState(seat.id, seat.deckID, isAI)
		b.AddPlayer(p)
		for _, c := range seat.cards {
			b.NewCardInstance(c, p)
		}
	}

	for _, p := range b.Ordered() {
		if !m.cfg.NoShuffle {
			p.ShuffleDeck(rng)
			b.emit(log.NewShuffleEvent(0, PhaseSetup.String(), p.ID))
		}
		if n := dealOpeningHand(b, p, !m.cfg.NoShuffle); n > 0 {
			m.entry.WithFields(logrus.Fields{"player": p.ID, "mulligans": n}).Info("mulligan")
		}
		placeStartingActive(b, p)
		p.SetAsidePrizes(PrizeCardCount)
	}
	m.battle = b
	m.entry.WithFields(logrus.Fields{
		"player":   m.cfg.PlayerID,
		"opponent": m.cfg.OpponentID,
		"mode":     m.cfg.Mode,
		"seed":     seed,
	}).Info("battle started")

	if b.CheckBattleEnd() {
		m.flush()
		m.finish(ctx)
		return nil
	}
	advance(b)
	m.flush()
	m.autoPhases(ctx)
	return m.runAI(ctx)
}

func (m *Manager) buildDeck(ctx context.Context, rng *rand.Rand, rules Rules, playerID, deckID string) ([]*Card, error) {
	if deckID != "" {
		return LoadDeck(ctx, m.deps.Cards, deckID, rules)
	}
	if _, isAI := m.ai[playerID]; !isAI {
		return nil, fmt.Errorf("player %s: %w: no deck id given", playerID, ErrDeckNotFound)
	}
	catalog, err := m.deps.Cards.SearchCards(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return SynthesizeDeck(rng, catalog, m.cfg.DeckSize, rules)
}

// createRecord registers the battle with the store. Store failures are not
// fatal: the battle gets a locally generated id and is not persisted.
func (m *Manager) createRecord(ctx context.Context) string {
	if m.deps.Battles == nil {
		return uuid.NewString()
	}
	id, err := m.deps.Battles.CreateBattleRecord(ctx, BattleRecord{
		PlayerID:       m.cfg.PlayerID,
		OpponentID:     m.cfg.OpponentID,
		PlayerDeckID:   m.cfg.PlayerDeckID,
		OpponentDeckID: m.cfg.OpponentDeckID,
		Mode:           m.cfg.Mode,
	})
	if err != nil || id == "" {
		m.entry.WithError(err).Warn("could not create battle record, continuing without persistence")
		return uuid.NewString()
	}
	m.recorded = true
	return id
}

// ProcessPlayerAction is the single entry point for player input. Requests
// for computer seats are refused. After a successful request the manager
// runs automatic phases and any computer turns that follow. The error is
// non-nil only when ctx is cancelled while a computer seat is thinking.
func (m *Manager) ProcessPlayerAction(ctx context.Context, req ActionRequest) (ActionResponse, error) {
	if m.battle == nil {
		return reject(ResultNotAllowed, "%s", ErrBattleNotStarted), nil
	}
	if _, isAI := m.ai[req.PlayerID]; isAI {
		return reject(ResultNotAllowed, "%s is controlled by the computer", req.PlayerID), nil
	}
	resp := m.apply(ctx, req)
	if !resp.Success() {
		return resp, nil
	}
	m.autoPhases(ctx)
	return resp, m.runAI(ctx)
}

// ResumeAI continues computer play after an interrupted ProcessPlayerAction.
func (m *Manager) ResumeAI(ctx context.Context) error {
	if m.battle == nil {
		return ErrBattleNotStarted
	}
	return m.runAI(ctx)
}

// apply runs one request through the pipeline, records it, publishes it
// and settles the battle end.
func (m *Manager) apply(ctx context.Context, req ActionRequest) ActionResponse {
	b := m.battle
	turn, phase := b.State.TurnCount, b.State.Phase
	resp := b.Execute(req)
	if resp.Success() {
		action := BattleAction{
			Turn:     turn,
			Phase:    phase.String(),
			PlayerID: req.PlayerID,
			Request:  req,
			Result:   resp.Result,
			Message:  resp.Message,
			Effects:  resp.Effects,
			At:       time.Now(),
		}
		b.State.RecordAction(action)
		m.publish(ctx, b.State.ActionHistory[len(b.State.ActionHistory)-1])
	}
	b.CheckBattleEnd()
	m.flush()
	if b.State.IsBattleOver() {
		m.finish(ctx)
	}
	return resp
}

func (m *Manager) publish(ctx context.Context, action BattleAction) {
	if m.deps.Sink == nil {
		return
	}
	if err := m.deps.Sink.PublishAction(ctx, m.battle.State.ID, action); err != nil {
		m.entry.WithError(err).WithField("seq", action.Seq).Warn("failed to publish action")
	}
}

// flush hands buffered domain events to the event logger.
func (m *Manager) flush() {
	for _, e := range m.battle.DrainEvents() {
		m.logger.Log(e)
	}
}

// autoPhases performs the mechanical draw and energy steps for whoever is
// the turn player.
func (m *Manager) autoPhases(ctx context.Context) {
	b := m.battle
	for !b.State.IsBattleOver() {
		var t ActionType
		switch b.State.Phase {
		case PhaseDraw:
			t = ActionDrawCard
		case PhaseEnergy:
			t = ActionGainEnergy
		default:
			return
		}
		if resp := m.apply(ctx, NewActionRequest(t, b.State.CurrentTurnPlayer)); !resp.Success() {
			m.entry.WithField("action", t.String()).Warn(resp.Message)
			return
		}
	}
}

// runAI plays computer turns until a human seat is to move or the battle ends.
func (m *Manager) runAI(ctx context.Context) error {
	b := m.battle
	for !b.State.IsBattleOver() {
		ai, ok := m.ai[b.State.CurrentTurnPlayer]
		if !ok {
			return nil
		}
		if err := m.runAITurn(ctx, ai); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) runAITurn(ctx context.Context, ai Opponent) error {
	b := m.battle
	id := ai.PlayerID()
	turn := b.State.TurnCount
	stillMoving := func() bool {
		return !b.State.IsBattleOver() && b.State.CurrentTurnPlayer == id && b.State.TurnCount == turn
	}

	for i := 0; i < MaxAIActionsPerTurn && stillMoving(); i++ {
		d := ai.Decide(ctx, b)
		if m.cfg.HonorThinkingTime && d.ThinkingTime > 0 {
			if err := think(ctx, d.ThinkingTime); err != nil {
				return err
			}
		}
		if d.Request.PlayerID == "" {
			d.Request.PlayerID = id
		}
		resp := m.apply(ctx, d.Request)
		ai.Record(d, resp)
		m.entry.WithFields(logrus.Fields{
			"player": id,
			"action": d.Request.ActionType,
			"result": resp.Result.String(),
			"reason": d.Reason,
		}).Debug("ai decision")
		m.autoPhases(ctx)
	}

	if stillMoving() {
		m.entry.WithField("player", id).Warn("ai hit the per-turn action cap, ending its turn")
		m.autoPhases(ctx)
		if stillMoving() {
			m.apply(ctx, NewActionRequest(ActionEndTurn, id))
			m.autoPhases(ctx)
		}
		if stillMoving() {
			return fmt.Errorf("ai %s could not end turn %d in phase %s", id, turn, b.State.Phase)
		}
	}
	return nil
}

// think waits for d or until ctx is done.
func think(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// finish persists the result and pays out rewards, once. Collaborator
// failures are logged and otherwise ignored.
func (m *Manager) finish(ctx context.Context) {
	if m.finished {
		return
	}
	m.finished = true
	b := m.battle
	b.State.Seal()
	s := b.State
	m.entry.WithFields(logrus.Fields{
		"result": s.Result.String(),
		"winner": s.WinnerID,
		"reason": s.EndReason,
		"turns":  s.TurnCount,
	}).Info("battle ended")

	if m.deps.Battles != nil && m.recorded {
		data, err := json.Marshal(m.Summary())
		if err != nil {
			m.entry.WithError(err).Warn("failed to encode battle summary")
		} else if err := m.deps.Battles.UpdateBattleResult(ctx, s.ID, BattleOutcome{
			WinnerID:  s.WinnerID,
			TurnCount: s.TurnCount,
			Data:      data,
			Duration:  s.Duration(),
		}); err != nil {
			m.entry.WithError(err).Warn("failed to save battle result")
		}
	}

	if m.deps.Economy == nil {
		return
	}
	for _, p := range b.Ordered() {
		if p.IsAI {
			continue
		}
		deltas, coins := settlement(s, p.ID)
		if err := m.deps.Economy.UpdateUserStats(ctx, p.ID, deltas); err != nil {
			m.entry.WithError(err).WithField("player", p.ID).Warn("failed to update player stats")
		}
		if coins > 0 {
			if err := m.deps.Economy.AddCurrency(ctx, p.ID, CurrencyCoins, coins); err != nil {
				m.entry.WithError(err).WithField("player", p.ID).Warn("failed to add currency")
			}
		}
	}
}

// settlement computes stat deltas and coin reward for one player. A player
// who surrendered earns nothing; a draw pays the loss reward.
func settlement(s *BattleState, playerID string) (StatDeltas, int) {
	d := StatDeltas{GamesPlayed: 1}
	switch {
	case s.WinnerID == playerID:
		d.Wins = 1
		return d, RewardWin
	case s.WinnerID == "":
		return d, RewardLoss
	case s.EndReason == ReasonSurrender:
		d.Losses = 1
		d.Surrenders = 1
		return d, 0
	default:
		d.Losses = 1
		return d, RewardLoss
	}
}

// GameStateForUI returns the snapshot for viewer, including the last
// RecentLogSize log entries.
func (m *Manager) GameStateForUI(viewer string) (StateView, error) {
	if m.battle == nil {
		return StateView{}, ErrBattleNotStarted
	}
	events := m.logger.Events()
	if len(events) > RecentLogSize {
		events = events[len(events)-RecentLogSize:]
	}
	return BuildStateView(m.battle, viewer, events), nil
}

// AvailableActions lists the action types open to playerID right now.
func (m *Manager) AvailableActions(playerID string) []ActionType {
	if m.battle == nil {
		return nil
	}
	return m.battle.AvailableActions(playerID)
}

// Summary returns the battle summary handed to the store.
func (m *Manager) Summary() BattleSummary {
	if m.battle == nil {
		return BattleSummary{}
	}
	return Summarize(m.battle, m.cfg.Mode)
}
