package game

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// --- Card definition (static, supplied by the catalog) ---

// Attack is one attack printed on a Pokémon card.
type Attack struct {
	Name   string
	Cost   []string // energy symbols, e.g. ["Fire", "Colorless"]
	Damage string   // printed damage text: "30", "20+", "10×", or empty
	Text   string   // effect text
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+)`)

// BaseDamage returns the leading number of the printed damage text.
func (a Attack) BaseDamage() int {
	m := leadingNumber.FindStringSubmatch(a.Damage)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// EnergyCost returns the declared cost, or a cost inferred from the damage
// tier when the card declares none.
func (a Attack) EnergyCost() int {
	if len(a.Cost) > 0 {
		return len(a.Cost)
	}
	d := a.BaseDamage()
	switch {
	case d == 0:
		return 0
	case d <= 30:
		return 1
	case d <= 60:
		return 2
	default:
		return 3
	}
}

var healAmount = regexp.MustCompile(`(?i)heal[s]?\s+(\d+)`)

// HealAmount parses "heal N" style effect text.
func (a Attack) HealAmount() int {
	m := healAmount.FindStringSubmatch(a.Text)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// Card is an immutable catalog entry. HP == 0 means the card is not a Pokémon.
type Card struct {
	ID          string
	Name        string
	HP          int
	Types       []string
	Rarity      Rarity
	Attacks     []Attack
	Text        string
	EvolvesFrom string // card ID this card evolves from, empty for basics
}

func (c *Card) String() string {
	return c.Name
}

// IsPokemon reports whether the card can be played as a creature.
func (c *Card) IsPokemon() bool {
	return c.HP > 0
}

// IsEvolution reports whether the card must be played onto another Pokémon.
func (c *Card) IsEvolution() bool {
	return c.IsPokemon() && c.EvolvesFrom != ""
}

// PrimaryType returns the first declared type, or "Colorless".
func (c *Card) PrimaryType() string {
	if len(c.Types) == 0 {
		return "Colorless"
	}
	return NormalizeType(c.Types[0])
}

// DeckCard is one line of a stored deck list.
type DeckCard struct {
	CardID   string
	Quantity int
}

// --- CardInstance (one physical copy within a battle) ---

// InstanceID identifies a card copy within one battle. IDs are handed out
// sequentially and never reused, so a stale ID simply fails to resolve.
type InstanceID int

// NoInstance is the zero InstanceID, meaning "not set".
const NoInstance InstanceID = 0

type CardInstance struct {
	ID    InstanceID
	Card  *Card
	Owner string
	Zone  ZoneType
}

func (ci *CardInstance) String() string {
	if ci == nil {
		return "(empty)"
	}
	return fmt.Sprintf("%s#%d", ci.Card.Name, ci.ID)
}

// cardNames returns display names for a set of instances.
func cardNames(cards []*CardInstance) []string {
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.Card.Name)
	}
	return names
}

// parseInstanceID accepts "12" or "#12".
func parseInstanceID(s string) (InstanceID, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || n <= 0 {
		return NoInstance, false
	}
	return InstanceID(n), true
}
