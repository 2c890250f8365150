package game

import (
	"math/rand"

	"github.com/peterkuimelis/pokebattle/internal/log"
)

// Battle is the complete mutable state of one match: the phase machine,
// both players keyed by id, and the rules in force. Every operation takes
// the Battle explicitly, so no entity holds a reference back to its owner.
type Battle struct {
	State   *BattleState
	Players map[string]*PlayerState
	Rules   Rules

	rng    *rand.Rand
	nextID InstanceID
	events []log.GameEvent
}

// NewBattle creates an empty battle. Players are added with AddPlayer.
func NewBattle(state *BattleState, rules Rules, rng *rand.Rand) *Battle {
	return &Battle{
		State:   state,
		Players: make(map[string]*PlayerState, 2),
		Rules:   rules,
		rng:     rng,
	}
}

func (b *Battle) AddPlayer(p *PlayerState) {
	b.Players[p.ID] = p
}

// NewCardInstance creates a card copy with a battle-unique ID and puts it
// on top of owner's deck.
func (b *Battle) NewCardInstance(card *Card, owner *PlayerState) *CardInstance {
	b.nextID++
	ci := &CardInstance{ID: b.nextID, Card: card}
	owner.AddToDeck(ci)
	return ci
}

// Player returns the player with the given id, or nil.
func (b *Battle) Player(id string) *PlayerState {
	return b.Players[id]
}

// Opponent returns the other player of id, or nil.
func (b *Battle) Opponent(id string) *PlayerState {
	return b.Players[b.State.OpponentID(id)]
}

// CurrentPlayer returns the turn player, or nil during setup.
func (b *Battle) CurrentPlayer() *PlayerState {
	return b.Players[b.State.CurrentTurnPlayer]
}

// Ordered returns the players in turn order.
func (b *Battle) Ordered() [2]*PlayerState {
	return [2]*PlayerState{b.Players[b.State.PlayerIDs[0]], b.Players[b.State.PlayerIDs[1]]}
}

func (b *Battle) phaseName() string {
	return b.State.Phase.String()
}

// emit buffers a domain event until the owner drains it.
func (b *Battle) emit(e log.GameEvent) {
	b.events = append(b.events, e)
}

// DrainEvents returns buffered events and clears the buffer.
func (b *Battle) DrainEvents() []log.GameEvent {
	out := b.events
	b.events = nil
	return out
}

// Execute validates and applies one request.
func (b *Battle) Execute(req ActionRequest) ActionResponse {
	t, resp := ValidateAction(b, req)
	if !resp.Success() {
		b.emit(log.NewActionRejectedEvent(b.State.TurnCount, b.phaseName(), req.PlayerID, req.ActionType, resp.Result.String(), resp.Message))
		return resp
	}
	return ProcessAction(b, t, req)
}

// endWithWinner finishes the battle in favour of winnerID.
func (b *Battle) endWithWinner(winnerID, reason string) {
	if b.State.EndBattle(b.State.ResultFor(winnerID), winnerID, reason) {
		b.emit(log.NewWinEvent(b.State.TurnCount, b.phaseName(), winnerID, reason))
	}
}

// CheckBattleEnd applies win and lose predicates for both players and ends
// the battle if one holds. It reports whether the battle is over.
func (b *Battle) CheckBattleEnd() bool {
	if b.State.IsBattleOver() {
		return true
	}
	for _, p := range b.Ordered() {
		if b.Rules.CheckWinCondition(p) {
			b.endWithWinner(p.ID, "all prize cards taken")
			return true
		}
	}
	for _, p := range b.Ordered() {
		if b.Rules.CheckLoseCondition(p) {
			b.endWithWinner(b.State.OpponentID(p.ID), p.ID+" has no Pokémon left")
			return true
		}
	}
	return false
}

// knockout removes victim from owner's field, awards scorer a prize and
// re-checks the battle end. Effects are appended to effects.
func (b *Battle) knockout(owner, scorer *PlayerState, victim *PokemonInstance, effects *[]string) {
	turn, phase := b.State.TurnCount, b.phaseName()
	name := victim.Name()
	owner.KnockoutPokemon(victim)
	b.emit(log.NewKnockoutEvent(turn, phase, owner.ID, name))
	*effects = append(*effects, name+" was knocked out")

	if scorer.TakePrizeCard() != nil {
		b.emit(log.NewPrizeTakenEvent(turn, phase, scorer.ID, scorer.PrizeCardsTaken))
		*effects = append(*effects, scorer.ID+" took a prize card")
	}
	if b.Rules.CheckWinCondition(scorer) {
		b.endWithWinner(scorer.ID, "all prize cards taken")
		return
	}
	if next := owner.PromoteFromBench(); next != nil {
		b.emit(log.NewSetActiveEvent(turn, phase, owner.ID, next.Name()))
		*effects = append(*effects, next.Name()+" is now active")
	} else if next := fillActiveFromHand(b, owner, turn, phase); next != nil {
		*effects = append(*effects, next.Name()+" is now active")
	}
	if b.Rules.CheckLoseCondition(owner) {
		b.endWithWinner(scorer.ID, owner.ID+" has no Pokémon left")
	}
}
