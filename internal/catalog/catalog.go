package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/pokebattle/internal/game"
)

// ErrUnknownCard is returned when a deck or evolution names a card id the
// catalog does not contain.
var ErrUnknownCard = errors.New("unknown card")

// CardFile represents the top-level YAML structure of a card catalog.
type CardFile struct {
	Cards []CardEntry `yaml:"cards"`
}

// CardEntry is one catalog card in YAML form.
type CardEntry struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	HP          int           `yaml:"hp"`
	Types       []string      `yaml:"types"`
	Rarity      string        `yaml:"rarity"`
	EvolvesFrom string        `yaml:"evolves_from"`
	Text        string        `yaml:"text"`
	Attacks     []AttackEntry `yaml:"attacks"`
}

// AttackEntry is one attack in YAML form. Damage stays a string so that
// printed values such as "30+" survive.
type AttackEntry struct {
	Name   string   `yaml:"name"`
	Cost   []string `yaml:"cost"`
	Damage string   `yaml:"damage"`
	Text   string   `yaml:"text"`
}

// DeckFile represents the top-level YAML structure of a deck list file.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Cards []DeckLine `yaml:"cards"`
}

// DeckLine represents a card and its count in a deck.
type DeckLine struct {
	Card  string `yaml:"card"`
	Count int    `yaml:"count"`
}

// Deck is a named deck list held by the catalog.
type Deck struct {
	ID    string
	Name  string
	Lines []game.DeckCard
}

// Size is the number of cards in the deck.
func (d Deck) Size() int {
	n := 0
	for _, l := range d.Lines {
		n += l.Quantity
	}
	return n
}

// Catalog is an in-memory card catalog and deck list store. It implements
// game.CardStore.
type Catalog struct {
	cards     map[string]*game.Card
	order     []string
	decks     map[string]Deck
	deckOrder []string
}

// New creates a catalog from cards. Card ids must be unique and every
// evolves_from must name a card in the set.
func New(cards []*game.Card) (*Catalog, error) {
	c := &Catalog{
		cards: make(map[string]*game.Card, len(cards)),
		decks: make(map[string]Deck),
	}
	for _, card := range cards {
		if card.ID == "" || card.Name == "" {
			return nil, fmt.Errorf("card %q: id and name are required", card.Name)
		}
		if _, dup := c.cards[card.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", card.ID)
		}
		c.cards[card.ID] = card
		c.order = append(c.order, card.ID)
	}
	for _, card := range cards {
		if card.EvolvesFrom == "" {
			continue
		}
		if _, ok := c.cards[card.EvolvesFrom]; !ok {
			return nil, fmt.Errorf("%s evolves from %q: %w", card.Name, card.EvolvesFrom, ErrUnknownCard)
		}
	}
	return c, nil
}

// ParseCards decodes the YAML card format.
func ParseCards(data []byte) ([]*game.Card, error) {
	var cf CardFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse card YAML: %w", err)
	}
	cards := make([]*game.Card, 0, len(cf.Cards))
	for _, e := range cf.Cards {
		cards = append(cards, e.toCard())
	}
	return cards, nil
}

func (e CardEntry) toCard() *game.Card {
	card := &game.Card{
		ID:          e.ID,
		Name:        e.Name,
		HP:          e.HP,
		Types:       e.Types,
		Rarity:      game.Rarity(e.Rarity),
		EvolvesFrom: e.EvolvesFrom,
		Text:        e.Text,
	}
	if card.Rarity == "" {
		card.Rarity = game.RarityCommon
	}
	for _, a := range e.Attacks {
		card.Attacks = append(card.Attacks, game.Attack{Name: a.Name, Cost: a.Cost, Damage: a.Damage, Text: a.Text})
	}
	return card
}

// ParseDecks decodes the YAML deck list format.
func ParseDecks(data []byte) ([]DeckEntry, error) {
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse deck YAML: %w", err)
	}
	return df.Decks, nil
}

// Load reads a card file and, if decksPath is not empty, a deck list file.
func Load(cardsPath, decksPath string) (*Catalog, error) {
	data, err := os.ReadFile(cardsPath)
	if err != nil {
		return nil, err
	}
	cards, err := ParseCards(data)
	if err != nil {
		return nil, err
	}
	c, err := New(cards)
	if err != nil {
		return nil, err
	}
	if decksPath == "" {
		return c, nil
	}
	data, err = os.ReadFile(decksPath)
	if err != nil {
		return nil, err
	}
	decks, err := ParseDecks(data)
	if err != nil {
		return nil, err
	}
	for _, d := range decks {
		if err := c.AddDeck(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddDeck registers a deck list. Every line must name a catalog card.
func (c *Catalog) AddDeck(e DeckEntry) error {
	if e.ID == "" {
		return fmt.Errorf("deck %q has no id", e.Name)
	}
	if _, dup := c.decks[e.ID]; dup {
		return fmt.Errorf("duplicate deck id %q", e.ID)
	}
	d := Deck{ID: e.ID, Name: e.Name}
	if d.Name == "" {
		d.Name = e.ID
	}
	for _, line := range e.Cards {
		if _, ok := c.cards[line.Card]; !ok {
			return fmt.Errorf("deck %s: %q: %w", e.ID, line.Card, ErrUnknownCard)
		}
		if line.Count <= 0 {
			return fmt.Errorf("deck %s: %q has count %d", e.ID, line.Card, line.Count)
		}
		d.Lines = append(d.Lines, game.DeckCard{CardID: line.Card, Quantity: line.Count})
	}
	c.decks[e.ID] = d
	c.deckOrder = append(c.deckOrder, e.ID)
	return nil
}

// Decks returns the registered decks in file order.
func (c *Catalog) Decks() []Deck {
	out := make([]Deck, 0, len(c.deckOrder))
	for _, id := range c.deckOrder {
		out = append(out, c.decks[id])
	}
	return out
}

// DeckByNumber returns the Nth deck (1-indexed) in file order.
func (c *Catalog) DeckByNumber(n int) (Deck, error) {
	if n < 1 || n > len(c.deckOrder) {
		return Deck{}, fmt.Errorf("deck %d not found (have %d decks)", n, len(c.deckOrder))
	}
	return c.decks[c.deckOrder[n-1]], nil
}

// Len is the number of distinct cards.
func (c *Catalog) Len() int {
	return len(c.order)
}

// GetDeckCards implements game.CardStore.
func (c *Catalog) GetDeckCards(_ context.Context, deckID string) ([]game.DeckCard, error) {
	d, ok := c.decks[deckID]
	if !ok {
		return nil, fmt.Errorf("deck %q: %w", deckID, game.ErrDeckNotFound)
	}
	out := make([]game.DeckCard, len(d.Lines))
	copy(out, d.Lines)
	return out, nil
}

// GetCardByID implements game.CardStore.
func (c *Catalog) GetCardByID(_ context.Context, id string) (*game.Card, error) {
	card, ok := c.cards[id]
	if !ok {
		return nil, fmt.Errorf("card %q: %w", id, game.ErrCardNotFound)
	}
	return card, nil
}

// SearchCards implements game.CardStore. Cards come back in file order;
// limit <= 0 returns all of them.
func (c *Catalog) SearchCards(_ context.Context, limit int) ([]*game.Card, error) {
	n := len(c.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*game.Card, 0, n)
	for _, id := range c.order[:n] {
		out = append(out, c.cards[id])
	}
	return out, nil
}
