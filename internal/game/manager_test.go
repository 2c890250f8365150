package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/pokebattle/internal/log"
)

// scriptedOpponent replays a fixed list of decisions and then ends its turn.
type scriptedOpponent struct {
	id        string
	script    []Decision
	repeat    *Decision // returned forever once script is exhausted, if set
	responses []ActionResponse
}

func (o *scriptedOpponent) PlayerID() string { return o.id }

func (o *scriptedOpponent) Decide(_ context.Context, _ *Battle) Decision {
	if len(o.script) > 0 {
		d := o.script[0]
		o.script = o.script[1:]
		return d
	}
	if o.repeat != nil {
		return *o.repeat
	}
	return Decision{ID: uuid.New(), Request: endTurn(o.id), Reason: "script exhausted"}
}

func (o *scriptedOpponent) Record(_ Decision, resp ActionResponse) {
	o.responses = append(o.responses, resp)
}

func TestMulliganOnce(t *testing.T) {
	m, logger := startBattle(t, makePaddedDeck(trainers(5), 20), makePaddedDeck(nil, 20), Deps{})
	p := m.Battle().Player(ash)

	mulligans := logger.EventsOfType(log.EventMulligan)
	require.Len(t, mulligans, 1)
	assert.Equal(t, ash, mulligans[0].Player)
	require.NotNil(t, p.Active)
	assert.Equal(t, "Filler Pidgey", p.Active.Name())
	assert.Equal(t, 20, p.ZoneCount())
}

func TestMulliganFallbackForcesBasic(t *testing.T) {
	m, logger := startBattle(t, makePaddedDeck(trainers(20), 26), makePaddedDeck(nil, 20), Deps{})
	p := m.Battle().Player(ash)

	assert.Len(t, logger.EventsOfType(log.EventMulligan), MaxMulligans)
	require.NotNil(t, p.Active, "a basic is forced into the hand after the last mulligan")
	assert.Equal(t, "Filler Pidgey", p.Active.Name())
	assert.Equal(t, 26, p.ZoneCount())
}

func TestStartErrors(t *testing.T) {
	ctx := context.Background()

	m := NewManager(Config{PlayerID: ash, OpponentID: ash, PlayerDeckID: "a", OpponentDeckID: "b"}, Deps{Cards: newMemCardStore()})
	assert.Error(t, m.Start(ctx), "players must differ")

	m = NewManager(Config{PlayerID: ash, OpponentID: gary, PlayerDeckID: "missing", OpponentDeckID: "missing"}, Deps{Cards: newMemCardStore()})
	assert.ErrorIs(t, m.Start(ctx), ErrDeckNotFound)

	cards := newMemCardStore()
	cards.addDeck("deck-ash", makePaddedDeck(nil, 20))
	m = NewManager(Config{PlayerID: ash, OpponentID: gary, PlayerDeckID: "deck-ash"}, Deps{Cards: cards})
	assert.ErrorIs(t, m.Start(ctx), ErrDeckNotFound, "human seats need a deck")

	store := newMemCardStore()
	store.addDeck("tiny", makePaddedDeck(nil, 10))
	m = NewManager(Config{PlayerID: ash, OpponentID: gary, PlayerDeckID: "tiny", OpponentDeckID: "tiny"}, Deps{Cards: store})
	assert.ErrorIs(t, m.Start(ctx), ErrIllegalDeck)

	resp, err := m.ProcessPlayerAction(ctx, endTurn(ash))
	require.NoError(t, err)
	assert.Equal(t, ResultNotAllowed, resp.Result, "no battle yet")
	_, err = m.GameStateForUI(ash)
	assert.ErrorIs(t, err, ErrBattleNotStarted)
}

func TestStoreFailureIsNotFatal(t *testing.T) {
	store := &fakeBattleStore{failCreate: true}
	m, _ := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck(nil, 20), Deps{Battles: store})

	_, err := uuid.Parse(m.Battle().State.ID)
	assert.NoError(t, err, "a local id is generated")

	act(t, m, NewActionRequest(ActionSurrender, ash))
	assert.True(t, m.Battle().State.IsBattleOver())
	assert.Empty(t, store.outcomes, "an unrecorded battle is not updated")
}

func TestBattleResultIsPersisted(t *testing.T) {
	store := &fakeBattleStore{}
	m, _ := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck(nil, 20), Deps{Battles: store})
	require.Len(t, store.created, 1)
	assert.Equal(t, BattleRecord{PlayerID: ash, OpponentID: gary, PlayerDeckID: "deck-ash", OpponentDeckID: "deck-gary", Mode: ModeLocal}, store.created[0])
	assert.Equal(t, "battle-1", m.Battle().State.ID)

	act(t, m, NewActionRequest(ActionSurrender, ash))
	out := store.outcomes["battle-1"]
	assert.Equal(t, gary, out.WinnerID)
	assert.Equal(t, 1, out.TurnCount)
	assert.Contains(t, string(out.Data), `"winner_id":"gary"`)

	summary := m.Summary()
	assert.Equal(t, "battle-1", summary.BattleID)
	assert.Equal(t, len(m.Battle().State.ActionHistory), summary.ActionCount)
}

func TestSinkReceivesActionsInOrder(t *testing.T) {
	sink := &fakeSink{}
	m, _ := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{Sink: sink})

	act(t, m, endTurn(ash))
	act(t, m, endTurn(gary))

	history := m.Battle().State.ActionHistory
	require.Equal(t, len(history), len(sink.actions))
	for i, a := range sink.actions {
		assert.Equal(t, i+1, a.Seq)
		assert.Equal(t, history[i].Request.ActionType, a.Request.ActionType)
	}
	assert.Equal(t, ActionDrawCard.String(), sink.actions[0].Request.ActionType)
}

func TestSinkFailureIsNotFatal(t *testing.T) {
	sink := &fakeSink{err: errors.New("redis down")}
	m, _ := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck(nil, 20), Deps{Sink: sink})

	act(t, m, endTurn(ash))
	assert.Equal(t, gary, m.Battle().State.CurrentTurnPlayer)
	assert.Empty(t, sink.actions)
}

func TestGameStateForUI(t *testing.T) {
	m, logger := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{})
	require.Greater(t, len(logger.Events()), RecentLogSize)

	view, err := m.GameStateForUI(ash)
	require.NoError(t, err)
	assert.True(t, view.IsYourTurn)
	assert.Equal(t, ash, view.You.ID)
	assert.Equal(t, gary, view.Opponent.ID)
	assert.Len(t, view.You.Hand, view.You.HandCount)
	assert.Empty(t, view.Opponent.Hand, "opponent hand is hidden")
	require.NotNil(t, view.Opponent.Active)
	assert.Equal(t, "Bulbasaur", view.Opponent.Active.Name)
	assert.Len(t, view.RecentLog, RecentLogSize)
	assert.NotEmpty(t, view.Actions)

	last := logger.LastEvent()
	assert.Equal(t, last.Details, view.RecentLog[RecentLogSize-1].Details)

	view, err = m.GameStateForUI(gary)
	require.NoError(t, err)
	assert.False(t, view.IsYourTurn)
	assert.Equal(t, []string{ActionSurrender.String()}, view.Available)
}

func TestLegalActionsAllValidate(t *testing.T) {
	squirtle := basicPokemon("squirtle", "Squirtle", 40, "Water")
	charmeleon := evolutionPokemon("charmeleon", "Charmeleon", 80, "Fire", "charmander", atk("Slash", "50", 2, ""))
	m, _ := startBattle(t, makePaddedDeck([]*Card{charmanderCard(), squirtle, charmeleon}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{})
	b := m.Battle()
	act(t, m, NewActionRequest(ActionPlayPokemon, ash).WithSource(b.Player(ash).BasicsInHand()[0].ID))

	legal := b.LegalActions(ash)
	seen := make(map[string]bool)
	for _, req := range legal {
		_, resp := ValidateAction(b, req)
		assert.True(t, resp.Success(), "%s: %s", b.Describe(req), resp.Message)
		seen[req.ActionType] = true
	}
	assert.True(t, seen[ActionAttack.String()])
	assert.True(t, seen[ActionRetreat.String()])
	assert.True(t, seen[ActionPlayPokemon.String()])
	assert.True(t, seen[ActionEndTurn.String()])
	assert.Empty(t, b.LegalActions(gary))
}

func TestAIActionCap(t *testing.T) {
	bad := Decision{Request: attackReq(gary, 9), Reason: "broken"}
	ai := &scriptedOpponent{id: gary, repeat: &bad}
	m, logger := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{AI: []Opponent{ai}})

	resp, err := m.ProcessPlayerAction(context.Background(), endTurn(gary))
	require.NoError(t, err)
	assert.Equal(t, ResultNotAllowed, resp.Result, "computer seats do not take direct input")

	act(t, m, endTurn(ash))
	assert.Len(t, ai.responses, MaxAIActionsPerTurn)
	for _, r := range ai.responses {
		assert.Equal(t, ResultInvalid, r.Result)
	}
	assert.Len(t, logger.EventsOfType(log.EventActionRejected), MaxAIActionsPerTurn)

	s := m.Battle().State
	assert.Equal(t, ash, s.CurrentTurnPlayer, "turn is ended on the computer's behalf")
	assert.Equal(t, 2, s.TurnCount)
	assert.Equal(t, PhaseAction, s.Phase)
}

func TestAIThinkingTimeHonorsCancellation(t *testing.T) {
	store := newMemCardStore()
	store.addDeck("deck-ash", makePaddedDeck([]*Card{charmanderCard()}, 20))
	store.addDeck("deck-gary", makePaddedDeck([]*Card{bulbasaurCard()}, 20))
	ai := &scriptedOpponent{id: gary, script: []Decision{
		{Request: endTurn(gary), ThinkingTime: time.Hour},
	}}
	m := NewManager(Config{
		PlayerID:          ash,
		OpponentID:        gary,
		PlayerDeckID:      "deck-ash",
		OpponentDeckID:    "deck-gary",
		Seed:              1,
		NoShuffle:         true,
		HonorThinkingTime: true,
	}, Deps{Cards: store, AI: []Opponent{ai}})
	require.NoError(t, m.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp, err := m.ProcessPlayerAction(ctx, endTurn(ash))
	assert.True(t, resp.Success(), "the human action itself went through")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gary, m.Battle().State.CurrentTurnPlayer)
	assert.Empty(t, ai.responses, "the pending decision was not applied")

	require.NoError(t, m.ResumeAI(context.Background()))
	assert.Equal(t, ash, m.Battle().State.CurrentTurnPlayer)
	require.Len(t, ai.responses, 1)
	assert.True(t, ai.responses[0].Success())
}

func TestAISeatWithoutDeckIsSynthesized(t *testing.T) {
	store := newMemCardStore()
	store.addDeck("deck-ash", makePaddedDeck([]*Card{charmanderCard()}, 20))
	ai := &scriptedOpponent{id: gary}
	economy := newFakeEconomy()
	m := NewManager(Config{PlayerID: ash, OpponentID: gary, PlayerDeckID: "deck-ash", Seed: 7}, Deps{Cards: store, AI: []Opponent{ai}, Economy: economy})
	require.NoError(t, m.Start(context.Background()))

	b := m.Battle()
	opp := b.Player(gary)
	assert.True(t, opp.IsAI)
	assert.Equal(t, DefaultSynthesizedDeckSize, opp.ZoneCount())
	assert.NotNil(t, opp.Active)

	act(t, m, NewActionRequest(ActionSurrender, ash))
	assert.Equal(t, StatDeltas{GamesPlayed: 1, Losses: 1, Surrenders: 1}, economy.stats[ash])
	_, paid := economy.stats[gary]
	assert.False(t, paid, "computer seats are not settled")
}

func TestSettlement(t *testing.T) {
	s := NewBattleState("b", ash, gary, 0)
	s.EndBattle(BattlePlayerWin, ash, "all prize cards taken")

	d, coins := settlement(s, ash)
	assert.Equal(t, StatDeltas{GamesPlayed: 1, Wins: 1}, d)
	assert.Equal(t, RewardWin, coins)
	d, coins = settlement(s, gary)
	assert.Equal(t, StatDeltas{GamesPlayed: 1, Losses: 1}, d)
	assert.Equal(t, RewardLoss, coins)

	draw := NewBattleState("b", ash, gary, 0)
	draw.EndBattle(BattleDraw, "", "turn limit reached")
	d, coins = settlement(draw, ash)
	assert.Equal(t, StatDeltas{GamesPlayed: 1}, d)
	assert.Equal(t, RewardLoss, coins)
}
