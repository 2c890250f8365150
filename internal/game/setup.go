package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/peterkuimelis/pokebattle/internal/log"
)

// DefaultSynthesizedDeckSize is the size of decks built for computer seats
// that have no stored deck.
const DefaultSynthesizedDeckSize = 20

// LoadDeck expands a stored deck list into card templates and validates it.
func LoadDeck(ctx context.Context, store CardStore, deckID string, rules Rules) ([]*Card, error) {
	entries, err := store.GetDeckCards(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("load deck %s: %w", deckID, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("load deck %s: %w", deckID, ErrDeckNotFound)
	}
	var cards []*Card
	for _, e := range entries {
		card, err := store.GetCardByID(ctx, e.CardID)
		if err != nil {
			return nil, fmt.Errorf("load deck %s: card %s: %w", deckID, e.CardID, err)
		}
		if card == nil {
			return nil, fmt.Errorf("load deck %s: card %s: %w", deckID, e.CardID, ErrCardNotFound)
		}
		for i := 0; i < e.Quantity; i++ {
			cards = append(cards, card)
		}
	}
	if v := rules.ValidateDeckComposition(cards); !v.Valid {
		return nil, fmt.Errorf("deck %s: %w: %s", deckID, ErrIllegalDeck, strings.Join(v.Errors, "; "))
	}
	return cards, nil
}

// tierQuota splits a deck size across rarity tiers 60/30/10.
func tierQuota(size int) [3]int {
	rare := size / 10
	uncommon := size * 3 / 10
	return [3]int{size - rare - uncommon, uncommon, rare}
}

// SynthesizeDeck samples a legal deck from the catalog, stratified by
// rarity tier. Basic Pokémon fill the first RequiredPokemon slots. When a
// tier has nothing left to offer, any tier is used instead.
func SynthesizeDeck(rng *rand.Rand, catalog []*Card, size int, rules Rules) ([]*Card, error) {
	if size <= 0 {
		size = DefaultSynthesizedDeckSize
	}
	q := tierQuota(size)
	bag := make([]int, 0, size)
	for tier, n := range q {
		for i := 0; i < n; i++ {
			bag = append(bag, tier)
		}
	}
	rng.Shuffle(len(bag), func(i, j int) { bag[i], bag[j] = bag[j], bag[i] })

	var basics []*Card
	for _, c := range catalog {
		if c.IsPokemon() && !c.IsEvolution() {
			basics = append(basics, c)
		}
	}

	counts := make(map[string]int)
	pick := func(pool []*Card, tier int) *Card {
		var inTier, any []*Card
		for _, c := range pool {
			if counts[c.ID] >= rules.MaxCopies {
				continue
			}
			any = append(any, c)
			if c.Rarity.Tier() == tier {
				inTier = append(inTier, c)
			}
		}
		if len(inTier) > 0 {
			return inTier[rng.Intn(len(inTier))]
		}
		if len(any) > 0 {
			return any[rng.Intn(len(any))]
		}
		return nil
	}

	need := rules.RequiredPokemon(size)
	deck := make([]*Card, 0, size)
	for i, tier := range bag {
		pool := catalog
		if i < need {
			pool = basics
		}
		c := pick(pool, tier)
		if c == nil {
			return nil, fmt.Errorf("synthesize deck: catalog too small for %d cards", size)
		}
		counts[c.ID]++
		deck = append(deck, c)
	}
	if v := rules.ValidateDeckComposition(deck); !v.Valid {
		return nil, fmt.Errorf("synthesize deck: %w: %s", ErrIllegalDeck, strings.Join(v.Errors, "; "))
	}
	return deck, nil
}

// dealOpeningHand draws the opening hand, mulliganing up to MaxMulligans
// times while it holds no basic Pokémon. If every attempt fails, the first
// basic found in the deck is moved into the hand. It returns the number of
// mulligans taken.
func dealOpeningHand(b *Battle, p *PlayerState, shuffle bool) int {
	p.Draw(InitialHandSize)
	mulligans := 0
	for len(p.BasicsInHand()) == 0 && mulligans < MaxMulligans {
		mulligans++
		b.emit(log.NewMulliganEvent(p.ID, mulligans))
		p.ReturnHandToDeck()
		if shuffle {
			p.ShuffleDeck(b.rng)
			b.emit(log.NewShuffleEvent(0, PhaseSetup.String(), p.ID))
		}
		p.Draw(InitialHandSize)
	}
	if len(p.BasicsInHand()) == 0 {
		forceBasicIntoHand(p)
	}
	return mulligans
}

// forceBasicIntoHand moves the topmost basic Pokémon of the deck into the
// hand, swapping a hand card back into its place if the hand is full.
func forceBasicIntoHand(p *PlayerState) bool {
	for i := len(p.Deck) - 1; i >= 0; i-- {
		c := p.Deck[i]
		if !c.Card.IsPokemon() || c.Card.IsEvolution() {
			continue
		}
		if len(p.Hand) >= MaxHandSize {
			out := p.Hand[len(p.Hand)-1]
			p.Hand = p.Hand[:len(p.Hand)-1]
			out.Zone = ZoneDeck
			p.Deck[i] = out
		} else {
			p.Deck = append(p.Deck[:i], p.Deck[i+1:]...)
		}
		c.Zone = ZoneHand
		p.Hand = append(p.Hand, c)
		return true
	}
	return false
}

// placeStartingActive plays the highest-HP basic in hand as the active Pokémon.
func placeStartingActive(b *Battle, p *PlayerState) *PokemonInstance {
	return fillActiveFromHand(b, p, 0, PhaseSetup.String())
}

// fillActiveFromHand plays the highest-HP basic in hand into an empty active
// slot. It returns nil when the slot is taken or no basic is in hand.
func fillActiveFromHand(b *Battle, p *PlayerState, turn int, phase string) *PokemonInstance {
	if p.Active != nil {
		return nil
	}
	var best *CardInstance
	for _, c := range p.BasicsInHand() {
		if best == nil || c.Card.HP > best.Card.HP {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	pk, _ := p.PlayPokemonToBench(best, turn)
	b.emit(log.NewPlayPokemonEvent(turn, phase, p.ID, pk.Name(), "active slot"))
	return pk
}
