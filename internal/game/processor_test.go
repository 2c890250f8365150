package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/pokebattle/internal/log"
)

func charmanderCard() *Card {
	return basicPokemon("charmander", "Charmander", 50, "Fire", atk("Ember", "30", 1, ""))
}

func bulbasaurCard() *Card {
	return basicPokemon("bulbasaur", "Bulbasaur", 40, "Grass", atk("Vine Whip", "20", 1, ""))
}

func TestStartPositionsFirstActionPhase(t *testing.T) {
	m, logger := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{})
	b := m.Battle()
	s := b.State

	assert.Equal(t, PhaseAction, s.Phase)
	assert.Equal(t, ash, s.CurrentTurnPlayer)
	assert.Equal(t, 1, s.TurnCount)

	p := b.Player(ash)
	require.NotNil(t, p.Active)
	assert.Equal(t, "Charmander", p.Active.Name(), "highest HP basic starts active")
	assert.Len(t, p.Hand, InitialHandSize-1+1, "opening hand minus active plus first draw")
	assert.Len(t, p.Prizes, PrizeCardCount)
	assert.Equal(t, 1, p.EnergyPoints)
	assert.Equal(t, 20, p.ZoneCount())

	opp := b.Player(gary)
	assert.Equal(t, "Bulbasaur", opp.Active.Name())
	assert.Equal(t, 0, opp.EnergyPoints)

	assert.NotEmpty(t, logger.EventsOfType(log.EventDraw))
	assert.Len(t, s.ActionHistory, 2, "automatic draw and energy are recorded")
}

func TestRejectedRequests(t *testing.T) {
	m, logger := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  ActionRequest
		want ActionResult
	}{
		{"not your turn", endTurn(gary), ResultNotAllowed},
		{"unknown player", endTurn("brock"), ResultInvalid},
		{"unknown action", ActionRequest{ActionType: "evolve_everything", PlayerID: ash}, ResultInvalid},
		{"wrong phase", NewActionRequest(ActionDrawCard, ash), ResultNotAllowed},
		{"card not in hand", NewActionRequest(ActionPlayPokemon, ash).WithSource(999), ResultInvalid},
		{"bad attack index", attackReq(ash, 3), ResultInvalid},
		{"attack names missing creatures", attackReq(ash, 0).WithTarget(9999).WithSource(8888), ResultInvalid},
		{"attack targets own active", attackReq(ash, 0).WithTarget(m.Battle().Player(ash).Active.ID()), ResultInvalid},
		{"retreat with empty bench", NewActionRequest(ActionRetreat, ash).WithTarget(1), ResultInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := m.ProcessPlayerAction(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Result, resp.Message)
			assert.NotEmpty(t, resp.Message)
		})
	}
	assert.Len(t, logger.EventsOfType(log.EventActionRejected), len(tests))
	assert.Len(t, m.Battle().State.ActionHistory, 2, "rejections are not recorded")
}

func TestProcessAttackRejectsUnknownCreatures(t *testing.T) {
	b, p, opp := newBareBattle()
	attacker := putInPlay(b, p, charmanderCard())
	defender := putInPlay(b, opp, bulbasaurCard())
	p.EnergyPoints = 1

	resp := processAttack(b, p, attackReq(ash, 0).WithSource(attacker.ID()).WithTarget(9999))
	assert.Equal(t, ResultInvalid, resp.Result)
	resp = processAttack(b, p, attackReq(ash, 0).WithSource(defender.ID()))
	assert.Equal(t, ResultInvalid, resp.Result)
	assert.Equal(t, 40, defender.CurrentHP)

	resp = processAttack(b, p, attackReq(ash, 0).WithSource(attacker.ID()).WithTarget(defender.ID()))
	assert.Equal(t, ResultSuccess, resp.Result, resp.Message)
}

func TestPlayPokemonToBenchAction(t *testing.T) {
	squirtle := basicPokemon("squirtle", "Squirtle", 40, "Water")
	m, _ := startBattle(t, makePaddedDeck([]*Card{charmanderCard(), squirtle}, 20), makePaddedDeck(nil, 20), Deps{})
	p := m.Battle().Player(ash)

	var card *CardInstance
	for _, c := range p.Hand {
		if c.Card.ID == "squirtle" {
			card = c
		}
	}
	require.NotNil(t, card)

	resp := act(t, m, NewActionRequest(ActionPlayPokemon, ash).WithSource(card.ID))
	assert.Equal(t, "bench", resp.Data["slot"])
	require.Len(t, p.Bench, 1)
	assert.Equal(t, card.ID, p.Bench[0].ID())
}

func TestAttackKnockoutAwardsPrize(t *testing.T) {
	m, logger := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{})
	b := m.Battle()
	opp := b.Player(gary)
	victim := opp.Active

	resp := act(t, m, attackReq(ash, 0))
	assert.Equal(t, 40, resp.Data["damage"], "30 doubled by weakness, clamped to 40 HP")
	assert.Equal(t, true, resp.Data["knockout"])

	assert.Nil(t, opp.FindPokemon(victim.ID()))
	assert.Equal(t, victim.Instance, opp.Discard[len(opp.Discard)-1])
	assert.Equal(t, 1, b.Player(ash).PrizeCardsTaken)
	assert.Equal(t, 0, opp.PrizeCardsTaken)
	assert.False(t, b.State.IsBattleOver())

	ko := logger.EventsOfType(log.EventKnockout)
	require.Len(t, ko, 1)
	assert.Equal(t, "Bulbasaur", ko[0].Card)

	resp, err := m.ProcessPlayerAction(context.Background(), attackReq(ash, 0))
	require.NoError(t, err)
	assert.Equal(t, ResultNotAllowed, resp.Result, "one attack per turn")
}

func TestKnockoutRefillsActiveFromHand(t *testing.T) {
	m, logger := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{})
	b := m.Battle()
	opp := b.Player(gary)
	require.Empty(t, opp.Bench)
	handBefore := len(opp.Hand)
	require.NotEmpty(t, opp.BasicsInHand())

	resp := act(t, m, attackReq(ash, 0))
	require.Equal(t, true, resp.Data["knockout"])

	require.NotNil(t, opp.Active, "a basic from hand takes the empty active slot")
	assert.Equal(t, "Filler Pidgey", opp.Active.Name())
	assert.Len(t, opp.Hand, handBefore-1)
	assert.Contains(t, resp.Effects, "Filler Pidgey is now active")
	assert.False(t, b.State.IsBattleOver())

	played := logger.EventsOfType(log.EventPlayPokemon)
	require.NotEmpty(t, played)
	last := played[len(played)-1]
	assert.Equal(t, gary, last.Player)
	assert.Equal(t, 1, last.Turn)

	act(t, m, endTurn(ash))
	act(t, m, endTurn(gary))
	require.Equal(t, ash, b.State.CurrentTurnPlayer)
	var attacks int
	for _, req := range b.LegalActions(ash) {
		if req.ActionType == ActionAttack.String() {
			attacks++
		}
	}
	assert.Positive(t, attacks, "the next turn can attack again")
}

func TestKnockoutWithOnlyEvolutionsInHandLoses(t *testing.T) {
	m, logger := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{})
	b := m.Battle()
	opp := b.Player(gary)
	for _, c := range opp.Hand {
		c.Card = evolutionPokemon("ivysaur-"+c.Card.ID, "Ivysaur", 80, "Grass", "Bulbasaur")
	}
	require.Empty(t, opp.BasicsInHand())
	require.NotEmpty(t, opp.PokemonInHand())

	act(t, m, attackReq(ash, 0))

	require.True(t, b.State.IsBattleOver())
	assert.Equal(t, ash, b.State.WinnerID)
	require.NotEmpty(t, logger.EventsOfType(log.EventWin))
}

func TestPrizeCardWin(t *testing.T) {
	m, logger := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{})
	b := m.Battle()
	opp := b.Player(gary)

	for round := 0; round < PrizeCardCount; round++ {
		require.NotNil(t, opp.Active, "round %d", round)
		act(t, m, attackReq(ash, 0))
		if b.State.IsBattleOver() {
			break
		}
		act(t, m, endTurn(ash))

		// gary benches a basic and passes
		require.Equal(t, gary, b.State.CurrentTurnPlayer)
		basics := opp.BasicsInHand()
		require.NotEmpty(t, basics)
		act(t, m, NewActionRequest(ActionPlayPokemon, gary).WithSource(basics[0].ID))
		act(t, m, endTurn(gary))
	}

	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
	require.True(t, b.State.IsBattleOver())
	assert.Equal(t, BattlePlayerWin, b.State.Result)
	assert.Equal(t, ash, b.State.WinnerID)
	assert.Equal(t, PrizeCardCount, b.Player(ash).PrizeCardsTaken)
	assert.True(t, b.State.Sealed())
	require.NotEmpty(t, logger.EventsOfType(log.EventWin))

	resp, err := m.ProcessPlayerAction(context.Background(), endTurn(ash))
	require.NoError(t, err)
	assert.Equal(t, ResultNotAllowed, resp.Result)
}

func TestRetreatAction(t *testing.T) {
	squirtle := basicPokemon("squirtle", "Squirtle", 40, "Water")
	m, _ := startBattle(t, makePaddedDeck([]*Card{charmanderCard(), squirtle}, 20), makePaddedDeck(nil, 20), Deps{})
	b := m.Battle()
	p := b.Player(ash)

	var sq *CardInstance
	for _, c := range p.Hand {
		if c.Card.ID == "squirtle" {
			sq = c
		}
	}
	require.NotNil(t, sq)
	act(t, m, NewActionRequest(ActionPlayPokemon, ash).WithSource(sq.ID))

	p.EnergyPoints = 0
	resp, err := m.ProcessPlayerAction(context.Background(), NewActionRequest(ActionRetreat, ash).WithTarget(sq.ID))
	require.NoError(t, err)
	assert.Equal(t, ResultInsufficientResources, resp.Result)

	p.EnergyPoints = 2
	act(t, m, NewActionRequest(ActionRetreat, ash).WithTarget(sq.ID))
	assert.Equal(t, sq.ID, p.Active.ID())
	assert.Equal(t, 1, p.EnergyPoints)

	charmanderID := p.Bench[0].ID()
	resp, err = m.ProcessPlayerAction(context.Background(), NewActionRequest(ActionRetreat, ash).WithTarget(charmanderID))
	require.NoError(t, err)
	assert.Equal(t, ResultNotAllowed, resp.Result, "one retreat per turn")
}

func TestEvolveAction(t *testing.T) {
	charmeleon := evolutionPokemon("charmeleon", "Charmeleon", 80, "Fire", "charmander", atk("Slash", "50", 2, ""))
	m, _ := startBattle(t, makePaddedDeck([]*Card{charmanderCard(), charmeleon}, 20), makePaddedDeck(nil, 20), Deps{})
	b := m.Battle()
	p := b.Player(ash)
	active := p.Active

	var evo *CardInstance
	for _, c := range p.Hand {
		if c.Card.ID == "charmeleon" {
			evo = c
		}
	}
	require.NotNil(t, evo)

	resp, err := m.ProcessPlayerAction(context.Background(), NewActionRequest(ActionPlayPokemon, ash).WithSource(evo.ID))
	require.NoError(t, err)
	assert.Equal(t, ResultInvalid, resp.Result, "evolution needs a target")

	act(t, m, NewActionRequest(ActionPlayPokemon, ash).WithSource(evo.ID).WithParam(ParamEvolveTarget, int(active.ID())))
	assert.Equal(t, "Charmeleon", p.Active.Name())
	assert.Equal(t, 80, p.Active.MaxHP)
	assert.Equal(t, active.ID(), p.Active.ID())
	assert.Equal(t, 20, p.ZoneCount())
}

func TestEndTurnResolvesStatus(t *testing.T) {
	m, logger := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{})
	b := m.Battle()
	active := b.Player(ash).Active
	active.ApplyStatus(NewStatusEffect(StatusPoison))
	active.ApplyStatus(NewStatusEffect(StatusSleep))

	resp := act(t, m, endTurn(ash))
	assert.Equal(t, 40, active.CurrentHP)
	assert.NotEmpty(t, logger.EventsOfType(log.EventStatusTick))
	assert.False(t, active.Asleep())
	assert.True(t, active.Poisoned())

	expired := logger.EventsOfType(log.EventStatusExpired)
	require.Len(t, expired, 1, "only sleep runs out")
	assert.Equal(t, "Charmander", expired[0].Card)
	assert.Equal(t, ash, expired[0].Player)
	assert.Contains(t, expired[0].Details, StatusSleep.String())
	assert.Contains(t, resp.Effects, "Charmander is no longer "+StatusSleep.String())
	assert.Equal(t, gary, b.State.CurrentTurnPlayer)
	assert.Equal(t, PhaseAction, b.State.Phase, "gary's draw and energy run automatically")
}

func TestStatusKnockoutAtEndOfTurnGivesOpponentPrize(t *testing.T) {
	m, _ := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{})
	b := m.Battle()
	active := b.Player(ash).Active
	active.CurrentHP = 10
	active.ApplyStatus(NewStatusEffect(StatusPoison))

	act(t, m, endTurn(ash))
	assert.True(t, active.KnockedOut)
	assert.Equal(t, 1, b.Player(gary).PrizeCardsTaken)
}

func TestSurrender(t *testing.T) {
	store := &fakeBattleStore{}
	economy := newFakeEconomy()
	m, logger := startBattle(t, makePaddedDeck([]*Card{charmanderCard()}, 20), makePaddedDeck([]*Card{bulbasaurCard()}, 20), Deps{Battles: store, Economy: economy})
	b := m.Battle()

	act(t, m, NewActionRequest(ActionSurrender, gary))
	assert.True(t, b.State.IsBattleOver())
	assert.Equal(t, BattlePlayerWin, b.State.Result)
	assert.Equal(t, ReasonSurrender, b.State.EndReason)
	assert.NotEmpty(t, logger.EventsOfType(log.EventSurrender))

	assert.Equal(t, StatDeltas{GamesPlayed: 1, Wins: 1}, economy.stats[ash])
	assert.Equal(t, StatDeltas{GamesPlayed: 1, Losses: 1, Surrenders: 1}, economy.stats[gary])
	assert.Equal(t, RewardWin, economy.currency[ash+":"+CurrencyCoins])
	assert.Equal(t, 0, economy.currency[gary+":"+CurrencyCoins])

	out, ok := store.outcomes[b.State.ID]
	require.True(t, ok)
	assert.Equal(t, ash, out.WinnerID)
	assert.Contains(t, string(out.Data), `"end_reason":"surrender"`)
}
