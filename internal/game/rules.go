package game

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinDeckSize     = 20
	MaxDeckSize     = 60
	MaxCopiesPerID  = 4
	MinPokemonFloor = 5
	DefaultMaxTurns = 50
	EnergyPerTurn   = 1
	MaxEnergy       = 10
	RetreatCostBase = 1
	ConfusionRecoil = 10
)

// StatusRule is the static description of one status effect.
type StatusRule struct {
	Duration      int // turns; -1 = until cured or knocked out
	Power         int // damage per end of turn for damage-over-time effects
	AllowsAttack  bool
	AllowsRetreat bool
}

// StatusEffectTable is consulted by the validator, by PokemonInstance
// capability checks and by end-of-turn status resolution.
var StatusEffectTable = map[StatusType]StatusRule{
	StatusPoison:   {Duration: -1, Power: 10, AllowsAttack: true, AllowsRetreat: true},
	StatusBurn:     {Duration: 3, Power: 20, AllowsAttack: true, AllowsRetreat: true},
	StatusSleep:    {Duration: 1, AllowsAttack: false, AllowsRetreat: false},
	StatusParalyze: {Duration: 1, AllowsAttack: false, AllowsRetreat: false},
	StatusConfuse:  {Duration: 2, AllowsAttack: true, AllowsRetreat: true},
}

// NewStatusEffect builds an effect with the table's default duration and power.
func NewStatusEffect(t StatusType) StatusEffect {
	rule := StatusEffectTable[t]
	return StatusEffect{Type: t, Duration: rule.Duration, Power: rule.Power}
}

// defaultTypeChart maps attacking type -> defending type -> multiplier.
// Pairs that are not listed are neutral.
var defaultTypeChart = map[string]map[string]float64{
	"Fire":      {"Grass": 2.0, "Fire": 0.5, "Water": 0.5},
	"Water":     {"Fire": 2.0, "Water": 0.5, "Grass": 0.5, "Fighting": 2.0},
	"Grass":     {"Water": 2.0, "Grass": 0.5, "Fire": 0.5, "Fighting": 2.0},
	"Lightning": {"Water": 2.0, "Lightning": 0.5, "Grass": 0.5},
	"Fighting":  {"Lightning": 2.0, "Colorless": 2.0, "Psychic": 0.5},
	"Psychic":   {"Fighting": 2.0, "Psychic": 0.5},
	"Colorless": {},
}

// NormalizeType canonicalises a type name ("FIRE", " fire") to "Fire".
func NormalizeType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return "Colorless"
	}
	return cases.Title(language.English).String(strings.ToLower(t))
}

// DeckValidation reports every rule a deck breaks.
type DeckValidation struct {
	Valid   bool
	Errors  []string
	Size    int
	Pokemon int
	MaxCopy int
}

// Rules is the stateless rule engine. The zero value is not useful; use DefaultRules.
type Rules struct {
	MinDeckSize int
	MaxDeckSize int
	MaxCopies   int
	MinPokemon  int
	MaxTurns    int
	TypeChart   map[string]map[string]float64
}

func DefaultRules() Rules {
	return Rules{
		MinDeckSize: MinDeckSize,
		MaxDeckSize: MaxDeckSize,
		MaxCopies:   MaxCopiesPerID,
		MinPokemon:  MinPokemonFloor,
		MaxTurns:    DefaultMaxTurns,
		TypeChart:   defaultTypeChart,
	}
}

// RequiredPokemon returns the minimum creature count for a deck of the given size.
func (r Rules) RequiredPokemon(size int) int {
	if q := size / 4; q > r.MinPokemon {
		return q
	}
	return r.MinPokemon
}

// ValidateDeckComposition checks size, copy limits and creature density.
func (r Rules) ValidateDeckComposition(cards []*Card) DeckValidation {
	v := DeckValidation{Size: len(cards)}
	counts := make(map[string]int)
	for _, c := range cards {
		counts[c.ID]++
		if counts[c.ID] > v.MaxCopy {
			v.MaxCopy = counts[c.ID]
		}
		if c.IsPokemon() {
			v.Pokemon++
		}
	}

	if v.Size < r.MinDeckSize || v.Size > r.MaxDeckSize {
		v.Errors = append(v.Errors, fmt.Sprintf("deck has %d cards, must be between %d and %d", v.Size, r.MinDeckSize, r.MaxDeckSize))
	}
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if n := counts[id]; n > r.MaxCopies {
			v.Errors = append(v.Errors, fmt.Sprintf("card %s appears %d times, limit is %d", id, n, r.MaxCopies))
		}
	}
	if need := r.RequiredPokemon(v.Size); v.Pokemon < need {
		v.Errors = append(v.Errors, fmt.Sprintf("deck has %d Pokémon, needs at least %d", v.Pokemon, need))
	}
	v.Valid = len(v.Errors) == 0
	return v
}

// TypeEffectiveness returns the multiplier for an attacking type against a defending type.
func (r Rules) TypeEffectiveness(attacking, defending string) float64 {
	row, ok := r.TypeChart[NormalizeType(attacking)]
	if !ok {
		return 1.0
	}
	if m, ok := row[NormalizeType(defending)]; ok {
		return m
	}
	return 1.0
}

// CalculateDamage applies type effectiveness and extra modifiers to base
// damage. Positive base damage never rounds below 1.
func (r Rules) CalculateDamage(base int, attacking, defending string, modifiers ...float64) int {
	if base <= 0 {
		return 0
	}
	dmg := float64(base) * r.TypeEffectiveness(attacking, defending)
	for _, m := range modifiers {
		dmg *= m
	}
	final := int(math.Floor(dmg))
	if final < 1 {
		final = 1
	}
	return final
}

// AttackDamage estimates the damage attacker's attack deals to defender,
// including the confusion penalty. It does not mutate either creature.
func (r Rules) AttackDamage(attacker *PokemonInstance, atk Attack, defender *PokemonInstance) int {
	if defender == nil {
		return 0
	}
	var mods []float64
	if attacker.HasStatus(StatusConfuse) {
		mods = append(mods, 0.5)
	}
	return r.CalculateDamage(atk.BaseDamage(), attacker.Card.PrimaryType(), defender.Card.PrimaryType(), mods...)
}

// RetreatCost is the energy a player spends to retreat the given creature.
func (r Rules) RetreatCost(p *PokemonInstance) int {
	if p == nil {
		return RetreatCostBase
	}
	if p.MaxHP > 100 {
		return RetreatCostBase + 1
	}
	return RetreatCostBase
}

// CheckWinCondition reports whether the player has taken every prize card.
func (r Rules) CheckWinCondition(p *PlayerState) bool {
	return p.CheckWinCondition()
}

// CheckLoseCondition reports whether the player has no Pokémon left to play.
func (r Rules) CheckLoseCondition(p *PlayerState) bool {
	return p.CheckLoseCondition()
}

// CheckTurnLimit is advisory: it reports whether turn exceeds the limit.
// BattleState.NextPhase is what actually ends the battle.
func (r Rules) CheckTurnLimit(turn int) bool {
	return r.MaxTurns > 0 && turn > r.MaxTurns
}

var phaseActions = map[Phase][]ActionType{
	PhaseDraw:   {ActionDrawCard, ActionSurrender},
	PhaseEnergy: {ActionGainEnergy, ActionSurrender},
	PhaseAction: {ActionPlayPokemon, ActionAttack, ActionRetreat, ActionEndTurn, ActionSurrender},
}

// AllowedActions returns the actions the phase admits, in declaration order.
func (r Rules) AllowedActions(phase Phase) []ActionType {
	allowed := phaseActions[phase]
	out := make([]ActionType, len(allowed))
	copy(out, allowed)
	return out
}

// ValidateTurnAction reports whether an action type is legal in a phase.
func (r Rules) ValidateTurnAction(phase Phase, action ActionType) bool {
	for _, a := range phaseActions[phase] {
		if a == action {
			return true
		}
	}
	return false
}
