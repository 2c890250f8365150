package game

import "math/rand"

const (
	InitialHandSize = 5
	MaxHandSize     = 7
	MaxBenchSize    = 3
	PrizeCardCount  = 3
	MaxMulligans    = 3
)

// PlayerState holds one player's zones and resources.
type PlayerState struct {
	ID     string
	DeckID string
	IsAI   bool

	Deck    []*CardInstance // top of deck is last element (pop from end)
	Hand    []*CardInstance
	Discard []*CardInstance
	Prizes  []*CardInstance // taken front to back

	Active *PokemonInstance
	Bench  []*PokemonInstance

	EnergyPoints      int
	PrizeCardsTaken   int
	RetreatedThisTurn bool

	// cards indexes every instance dealt to this player.
	cards map[InstanceID]*CardInstance
}

func NewPlayerState(id, deckID string, isAI bool) *PlayerState {
	return &PlayerState{
		ID:     id,
		DeckID: deckID,
		IsAI:   isAI,
		cards:  make(map[InstanceID]*CardInstance),
	}
}

// AddToDeck registers a new instance and places it on top of the deck.
func (p *PlayerState) AddToDeck(ci *CardInstance) {
	ci.Owner = p.ID
	ci.Zone = ZoneDeck
	p.cards[ci.ID] = ci
	p.Deck = append(p.Deck, ci)
}

// Card resolves an instance ID owned by this player, or nil.
func (p *PlayerState) Card(id InstanceID) *CardInstance {
	return p.cards[id]
}

// InstanceCount is the number of instances registered to this player.
func (p *PlayerState) InstanceCount() int {
	return len(p.cards)
}

// ZoneCount counts the instances currently sitting in some zone. It always
// equals InstanceCount while zone bookkeeping is correct.
func (p *PlayerState) ZoneCount() int {
	n := len(p.Deck) + len(p.Hand) + len(p.Discard) + len(p.Prizes)
	for _, pk := range p.InPlay() {
		n += len(pk.Cards())
	}
	return n
}

// Draw moves up to n cards from the top of the deck into the hand. It stops
// early when the deck runs out or the hand is full and returns what moved.
func (p *PlayerState) Draw(n int) []*CardInstance {
	var drawn []*CardInstance
	for i := 0; i < n; i++ {
		if len(p.Deck) == 0 || len(p.Hand) >= MaxHandSize {
			break
		}
		card := p.Deck[len(p.Deck)-1]
		p.Deck = p.Deck[:len(p.Deck)-1]
		card.Zone = ZoneHand
		p.Hand = append(p.Hand, card)
		drawn = append(drawn, card)
	}
	return drawn
}

// FindInHand returns the hand card with the given ID, or nil.
func (p *PlayerState) FindInHand(id InstanceID) *CardInstance {
	for _, c := range p.Hand {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (p *PlayerState) removeFromHand(card *CardInstance) bool {
	for i, c := range p.Hand {
		if c.ID == card.ID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// PokemonInHand returns the creature cards in hand.
func (p *PlayerState) PokemonInHand() []*CardInstance {
	var out []*CardInstance
	for _, c := range p.Hand {
		if c.Card.IsPokemon() {
			out = append(out, c)
		}
	}
	return out
}

// BasicsInHand returns the creature cards that can be played without evolving.
func (p *PlayerState) BasicsInHand() []*CardInstance {
	var out []*CardInstance
	for _, c := range p.Hand {
		if c.Card.IsPokemon() && !c.Card.IsEvolution() {
			out = append(out, c)
		}
	}
	return out
}

// InPlay returns the active creature (if any) followed by the bench.
func (p *PlayerState) InPlay() []*PokemonInstance {
	out := make([]*PokemonInstance, 0, 1+len(p.Bench))
	if p.Active != nil {
		out = append(out, p.Active)
	}
	return append(out, p.Bench...)
}

// FindPokemon returns the in-play creature with the given ID, or nil.
func (p *PlayerState) FindPokemon(id InstanceID) *PokemonInstance {
	for _, pk := range p.InPlay() {
		if pk.ID() == id {
			return pk
		}
	}
	return nil
}

func (p *PlayerState) benchIndex(pk *PokemonInstance) int {
	for i, b := range p.Bench {
		if b == pk {
			return i
		}
	}
	return -1
}

// IsBenched reports whether pk sits on this player's bench.
func (p *PlayerState) IsBenched(pk *PokemonInstance) bool {
	return pk != nil && p.benchIndex(pk) >= 0
}

// BenchFull reports whether another creature can be benched.
func (p *PlayerState) BenchFull() bool {
	return len(p.Bench) >= MaxBenchSize
}

// PlayPokemonToBench puts a basic creature from the hand into play. With no
// active creature it goes straight to the active slot. It returns nil,
// false without changing anything when the card is not a basic creature,
// is not in hand, or the bench is full.
func (p *PlayerState) PlayPokemonToBench(card *CardInstance, turn int) (*PokemonInstance, bool) {
	if card == nil || !card.Card.IsPokemon() || card.Card.IsEvolution() {
		return nil, false
	}
	if p.FindInHand(card.ID) == nil {
		return nil, false
	}
	if p.Active != nil && p.BenchFull() {
		return nil, false
	}
	p.removeFromHand(card)
	card.Zone = ZoneField
	pk := NewPokemonInstance(card, turn)
	if p.Active == nil {
		p.Active = pk
	} else {
		p.Bench = append(p.Bench, pk)
	}
	return pk, true
}

// SetActivePokemon promotes a benched creature, moving the previous active
// creature into the vacated bench slot.
func (p *PlayerState) SetActivePokemon(pk *PokemonInstance) bool {
	i := p.benchIndex(pk)
	if i < 0 {
		return false
	}
	if p.Active == nil {
		p.Bench = append(p.Bench[:i], p.Bench[i+1:]...)
	} else {
		p.Bench[i] = p.Active
	}
	p.Active = pk
	return true
}

// RetreatActivePokemon spends energyCost from the pool and swaps the active
// creature with replacement.
func (p *PlayerState) RetreatActivePokemon(replacement *PokemonInstance, energyCost int) ActionResult {
	if p.Active == nil {
		return ResultInvalid
	}
	if !p.IsBenched(replacement) {
		return ResultInvalid
	}
	if p.EnergyPoints < energyCost {
		return ResultInsufficientResources
	}
	p.EnergyPoints -= energyCost
	p.SetActivePokemon(replacement)
	p.RetreatedThisTurn = true
	return ResultSuccess
}

// PromoteFromBench fills an empty active slot with the healthiest benched
// creature. It returns nil when nothing was promoted.
func (p *PlayerState) PromoteFromBench() *PokemonInstance {
	if p.Active != nil || len(p.Bench) == 0 {
		return nil
	}
	best := p.Bench[0]
	for _, b := range p.Bench[1:] {
		if b.CurrentHP > best.CurrentHP {
			best = b
		}
	}
	p.SetActivePokemon(best)
	return best
}

// EvolvePokemon plays an evolution card from the hand onto target.
func (p *PlayerState) EvolvePokemon(card *CardInstance, target *PokemonInstance, turn int) bool {
	if card == nil || target == nil || !card.Card.IsEvolution() {
		return false
	}
	if p.FindInHand(card.ID) == nil || p.FindPokemon(target.ID()) != target {
		return false
	}
	if target.Card.ID != card.Card.EvolvesFrom {
		return false
	}
	p.removeFromHand(card)
	card.Zone = ZoneField
	target.Evolutions = append(target.Evolutions, card)
	target.EvolveTo(card.Card)
	target.TurnPlayed = turn
	return true
}

// TakePrizeCard moves the next prize card to the hand, or to the discard
// pile when the hand is full.
func (p *PlayerState) TakePrizeCard() *CardInstance {
	if len(p.Prizes) == 0 {
		return nil
	}
	card := p.Prizes[0]
	p.Prizes = p.Prizes[1:]
	if len(p.Hand) >= MaxHandSize {
		card.Zone = ZoneDiscard
		p.Discard = append(p.Discard, card)
	} else {
		card.Zone = ZoneHand
		p.Hand = append(p.Hand, card)
	}
	p.PrizeCardsTaken++
	return card
}

// SetAsidePrizes moves the top n deck cards into the prize pile.
func (p *PlayerState) SetAsidePrizes(n int) int {
	moved := 0
	for ; moved < n && len(p.Deck) > 0; moved++ {
		card := p.Deck[len(p.Deck)-1]
		p.Deck = p.Deck[:len(p.Deck)-1]
		card.Zone = ZonePrize
		p.Prizes = append(p.Prizes, card)
	}
	return moved
}

// KnockoutPokemon removes a creature from play and discards every card
// backing it.
func (p *PlayerState) KnockoutPokemon(pk *PokemonInstance) bool {
	switch {
	case pk == nil:
		return false
	case p.Active == pk:
		p.Active = nil
	default:
		i := p.benchIndex(pk)
		if i < 0 {
			return false
		}
		p.Bench = append(p.Bench[:i], p.Bench[i+1:]...)
	}
	pk.KnockedOut = true
	pk.Effects = nil
	for _, c := range pk.Cards() {
		c.Zone = ZoneDiscard
		p.Discard = append(p.Discard, c)
	}
	return true
}

// CheckWinCondition reports whether every prize card has been taken.
func (p *PlayerState) CheckWinCondition() bool {
	return p.PrizeCardsTaken >= PrizeCardCount
}

// CheckLoseCondition reports whether the player has nothing in play and no
// basic left in hand. Evolution cards cannot fill an empty field.
func (p *PlayerState) CheckLoseCondition() bool {
	return p.Active == nil && len(p.Bench) == 0 && len(p.BasicsInHand()) == 0
}

// AddEnergy grows the pool up to MaxEnergy and records the gain on the
// active creature. It returns the amount gained.
func (p *PlayerState) AddEnergy(n int) int {
	if p.EnergyPoints+n > MaxEnergy {
		n = MaxEnergy - p.EnergyPoints
	}
	if n <= 0 {
		return 0
	}
	p.EnergyPoints += n
	if p.Active != nil {
		p.Active.AttachedEnergy += n
	}
	return n
}

// ShuffleDeck randomizes the deck order.
func (p *PlayerState) ShuffleDeck(rng *rand.Rand) {
	rng.Shuffle(len(p.Deck), func(i, j int) {
		p.Deck[i], p.Deck[j] = p.Deck[j], p.Deck[i]
	})
}

// ReturnHandToDeck puts the whole hand on the bottom of the deck.
func (p *PlayerState) ReturnHandToDeck() {
	for _, c := range p.Hand {
		c.Zone = ZoneDeck
	}
	p.Deck = append(append([]*CardInstance{}, p.Hand...), p.Deck...)
	p.Hand = nil
}

// ResetTurnFlags clears per-turn tracking on the player and their creatures.
func (p *PlayerState) ResetTurnFlags() {
	p.RetreatedThisTurn = false
	for _, pk := range p.InPlay() {
		pk.ResetTurnFlags()
	}
}
