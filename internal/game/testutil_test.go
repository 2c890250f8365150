package game

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/pokebattle/internal/log"
)

// --- Test card helpers ---

func atk(name, damage string, cost int, text string) Attack {
	a := Attack{Name: name, Damage: damage, Text: text}
	for i := 0; i < cost; i++ {
		a.Cost = append(a.Cost, "Colorless")
	}
	return a
}

func basicPokemon(id, name string, hp int, typ string, attacks ...Attack) *Card {
	return &Card{ID: id, Name: name, HP: hp, Types: []string{typ}, Rarity: RarityCommon, Attacks: attacks}
}

func evolutionPokemon(id, name string, hp int, typ, from string, attacks ...Attack) *Card {
	c := basicPokemon(id, name, hp, typ, attacks...)
	c.EvolvesFrom = from
	c.Rarity = RarityUncommon
	return c
}

func trainerCard(id, name string) *Card {
	return &Card{ID: id, Name: name, Rarity: RarityCommon, Text: "Trainer"}
}

// fillerPokemon returns n weak basics with distinct ids so that copy limits hold.
func fillerPokemon(n int) []*Card {
	out := make([]*Card, n)
	for i := range out {
		out[i] = basicPokemon(fmt.Sprintf("filler-%d", i), "Filler Pidgey", 30, "Colorless", atk("Peck", "10", 1, ""))
	}
	return out
}

// trainers returns n trainer cards with distinct ids.
func trainers(n int) []*Card {
	out := make([]*Card, n)
	for i := range out {
		out[i] = trainerCard(fmt.Sprintf("trainer-%d", i), "Potion")
	}
	return out
}

// makePaddedDeck creates a deck with topCards drawn first (index 0 first)
// and filler Pokémon underneath up to minSize.
func makePaddedDeck(topCards []*Card, minSize int) []*Card {
	deck := make([]*Card, 0, minSize)
	deck = append(deck, fillerPokemon(minSize-len(topCards))...)
	for i := len(topCards) - 1; i >= 0; i-- {
		deck = append(deck, topCards[i])
	}
	return deck
}

// --- Fakes for external collaborators ---

type memCardStore struct {
	decks map[string][]*Card
	cards map[string]*Card
}

func newMemCardStore() *memCardStore {
	return &memCardStore{decks: make(map[string][]*Card), cards: make(map[string]*Card)}
}

// addDeck registers a deck whose slice order is preserved by LoadDeck.
func (s *memCardStore) addDeck(id string, cards []*Card) {
	s.decks[id] = cards
	for _, c := range cards {
		s.cards[c.ID] = c
	}
}

func (s *memCardStore) GetDeckCards(_ context.Context, deckID string) ([]DeckCard, error) {
	cards, ok := s.decks[deckID]
	if !ok {
		return nil, ErrDeckNotFound
	}
	out := make([]DeckCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, DeckCard{CardID: c.ID, Quantity: 1})
	}
	return out, nil
}

func (s *memCardStore) GetCardByID(_ context.Context, id string) (*Card, error) {
	c, ok := s.cards[id]
	if !ok {
		return nil, ErrCardNotFound
	}
	return c, nil
}

func (s *memCardStore) SearchCards(_ context.Context, limit int) ([]*Card, error) {
	var out []*Card
	for _, c := range s.cards {
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeBattleStore struct {
	failCreate bool
	created    []BattleRecord
	outcomes   map[string]BattleOutcome
}

func (s *fakeBattleStore) CreateBattleRecord(_ context.Context, rec BattleRecord) (string, error) {
	if s.failCreate {
		return "", errors.New("store unreachable")
	}
	s.created = append(s.created, rec)
	return fmt.Sprintf("battle-%d", len(s.created)), nil
}

func (s *fakeBattleStore) UpdateBattleResult(_ context.Context, id string, out BattleOutcome) error {
	if s.outcomes == nil {
		s.outcomes = make(map[string]BattleOutcome)
	}
	s.outcomes[id] = out
	return nil
}

type fakeEconomy struct {
	stats    map[string]StatDeltas
	currency map[string]int
}

func newFakeEconomy() *fakeEconomy {
	return &fakeEconomy{stats: make(map[string]StatDeltas), currency: make(map[string]int)}
}

func (e *fakeEconomy) UpdateUserStats(_ context.Context, userID string, d StatDeltas) error {
	s := e.stats[userID]
	s.GamesPlayed += d.GamesPlayed
	s.Wins += d.Wins
	s.Losses += d.Losses
	s.Surrenders += d.Surrenders
	e.stats[userID] = s
	return nil
}

func (e *fakeEconomy) AddCurrency(_ context.Context, userID, kind string, amount int) error {
	e.currency[userID+":"+kind] += amount
	return nil
}

type fakeSink struct {
	actions []BattleAction
	err     error
}

func (s *fakeSink) PublishAction(_ context.Context, _ string, a BattleAction) error {
	if s.err != nil {
		return s.err
	}
	s.actions = append(s.actions, a)
	return nil
}

// --- Battle helpers ---

const (
	ash  = "ash"
	gary = "gary"
)

// startBattle runs setup for two scripted decks and returns the manager
// positioned at ash's first action phase.
func startBattle(t *testing.T, deck0, deck1 []*Card, deps Deps) (*Manager, *log.MemoryLogger) {
	t.Helper()
	store := newMemCardStore()
	store.addDeck("deck-ash", deck0)
	store.addDeck("deck-gary", deck1)
	if deps.Cards == nil {
		deps.Cards = store
	}
	logger := log.NewMemoryLogger()
	m := NewManager(Config{
		PlayerID:       ash,
		OpponentID:     gary,
		PlayerDeckID:   "deck-ash",
		OpponentDeckID: "deck-gary",
		Seed:           1,
		NoShuffle:      true,
		Logger:         logger,
	}, deps)
	err := m.Start(context.Background())
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
	}
	require.NoError(t, err)
	return m, logger
}

// act submits a request and fails the test if it is rejected.
func act(t *testing.T, m *Manager, req ActionRequest) ActionResponse {
	t.Helper()
	resp, err := m.ProcessPlayerAction(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, ResultSuccess, resp.Result, resp.Message)
	return resp
}

func attackReq(player string, idx int) ActionRequest {
	return NewActionRequest(ActionAttack, player).WithParam(ParamAttackIndex, idx)
}

func endTurn(player string) ActionRequest {
	return NewActionRequest(ActionEndTurn, player)
}

// newBareBattle builds a battle in the action phase without dealing any
// cards, for tests that arrange zones by hand.
func newBareBattle() (*Battle, *PlayerState, *PlayerState) {
	state := NewBattleState("test", ash, gary, DefaultMaxTurns)
	b := NewBattle(state, DefaultRules(), nil)
	p0 := NewPlayerState(ash, "", false)
	p1 := NewPlayerState(gary, "", false)
	b.AddPlayer(p0)
	b.AddPlayer(p1)
	state.NextPhase() // DRAW
	state.NextPhase() // ENERGY
	state.NextPhase() // ACTION
	return b, p0, p1
}

// putInPlay creates a card instance for p and plays it from the hand.
func putInPlay(b *Battle, p *PlayerState, card *Card) *PokemonInstance {
	ci := b.NewCardInstance(card, p)
	p.Draw(1)
	pk, ok := p.PlayPokemonToBench(ci, 0)
	if !ok {
		panic("putInPlay: could not play " + card.Name)
	}
	return pk
}

// giveToHand creates a card instance for p directly in hand.
func giveToHand(b *Battle, p *PlayerState, card *Card) *CardInstance {
	b.NewCardInstance(card, p)
	return p.Draw(1)[0]
}
