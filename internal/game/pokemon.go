package game

import "fmt"

// StatusEffect is one condition on a Pokémon. Duration -1 never expires.
type StatusEffect struct {
	Type     StatusType
	Duration int
	Power    int
}

func (e StatusEffect) String() string {
	if e.Duration < 0 {
		return e.Type.String()
	}
	return fmt.Sprintf("%s (%d)", e.Type, e.Duration)
}

// DamageRecord remembers the last hit a Pokémon took.
type DamageRecord struct {
	Amount int
	Source string
	Attack string
}

// PokemonInstance is a creature in play. It is owned by exactly one
// PlayerState from the moment it is played until it is knocked out.
type PokemonInstance struct {
	Instance       *CardInstance   // the basic card that was played; its ID is the creature's ID
	Evolutions     []*CardInstance // evolution cards stacked on top, oldest first
	Card           *Card           // current face card (basic or latest evolution)
	CurrentHP      int
	MaxHP          int
	AttachedEnergy int
	Attacks        []Attack
	Effects        []StatusEffect
	ActedThisTurn  bool
	KnockedOut     bool
	TurnPlayed     int // turn the creature was played or last evolved
	LastDamage     DamageRecord
}

// NewPokemonInstance wraps a Pokémon card instance as a creature in play.
func NewPokemonInstance(ci *CardInstance, turn int) *PokemonInstance {
	attacks := make([]Attack, len(ci.Card.Attacks))
	copy(attacks, ci.Card.Attacks)
	return &PokemonInstance{
		Instance:   ci,
		Card:       ci.Card,
		CurrentHP:  ci.Card.HP,
		MaxHP:      ci.Card.HP,
		Attacks:    attacks,
		TurnPlayed: turn,
	}
}

// ID is the stable identifier of the creature (its basic card's instance ID).
func (p *PokemonInstance) ID() InstanceID {
	return p.Instance.ID
}

// Name returns the current card's name.
func (p *PokemonInstance) Name() string {
	return p.Card.Name
}

func (p *PokemonInstance) String() string {
	if p == nil {
		return "(none)"
	}
	return fmt.Sprintf("%s (HP %d/%d)", p.Card.Name, p.CurrentHP, p.MaxHP)
}

// Cards returns every card instance backing the creature, basic first.
func (p *PokemonInstance) Cards() []*CardInstance {
	out := make([]*CardInstance, 0, 1+len(p.Evolutions))
	out = append(out, p.Instance)
	return append(out, p.Evolutions...)
}

// TakeDamage subtracts HP, clamping at zero. Non-positive amounts and hits
// on a knocked-out creature are no-ops. It returns the HP actually lost and
// whether this hit knocked the creature out.
func (p *PokemonInstance) TakeDamage(amount int, source, attackName string) (int, bool) {
	if amount <= 0 || p.KnockedOut {
		return 0, false
	}
	dealt := amount
	if dealt > p.CurrentHP {
		dealt = p.CurrentHP
	}
	p.CurrentHP -= dealt
	p.LastDamage = DamageRecord{Amount: dealt, Source: source, Attack: attackName}
	if p.CurrentHP == 0 {
		p.KnockedOut = true
		return dealt, true
	}
	return dealt, false
}

// Heal restores HP up to MaxHP and returns the amount restored.
func (p *PokemonInstance) Heal(amount int) int {
	if amount <= 0 || p.KnockedOut {
		return 0
	}
	healed := amount
	if p.CurrentHP+healed > p.MaxHP {
		healed = p.MaxHP - p.CurrentHP
	}
	p.CurrentHP += healed
	return healed
}

// HasStatus reports whether an effect of the given type is active.
func (p *PokemonInstance) HasStatus(t StatusType) bool {
	for _, e := range p.Effects {
		if e.Type == t {
			return true
		}
	}
	return false
}

func (p *PokemonInstance) Asleep() bool    { return p.HasStatus(StatusSleep) }
func (p *PokemonInstance) Paralyzed() bool { return p.HasStatus(StatusParalyze) }
func (p *PokemonInstance) Confused() bool  { return p.HasStatus(StatusConfuse) }
func (p *PokemonInstance) Poisoned() bool  { return p.HasStatus(StatusPoison) }
func (p *PokemonInstance) Burned() bool    { return p.HasStatus(StatusBurn) }

// ApplyStatus adds an effect, replacing any existing effect of the same type.
func (p *PokemonInstance) ApplyStatus(effect StatusEffect) {
	for i, e := range p.Effects {
		if e.Type == effect.Type {
			p.Effects[i] = effect
			return
		}
	}
	p.Effects = append(p.Effects, effect)
}

// ClearStatus removes every effect.
func (p *PokemonInstance) ClearStatus() {
	p.Effects = nil
}

// StatusNames lists active effects for display.
func (p *PokemonInstance) StatusNames() []string {
	names := make([]string, 0, len(p.Effects))
	for _, e := range p.Effects {
		names = append(names, e.String())
	}
	return names
}

// CanAttack reports whether the creature may declare an attack this turn.
func (p *PokemonInstance) CanAttack() bool {
	if p.KnockedOut || p.ActedThisTurn {
		return false
	}
	for _, e := range p.Effects {
		if !StatusEffectTable[e.Type].AllowsAttack {
			return false
		}
	}
	return true
}

// CanRetreat reports whether the creature may leave the active slot.
func (p *PokemonInstance) CanRetreat() bool {
	if p.KnockedOut || p.ActedThisTurn {
		return false
	}
	for _, e := range p.Effects {
		if !StatusEffectTable[e.Type].AllowsRetreat {
			return false
		}
	}
	return true
}

// AttackOutcome describes what PerformAttack did.
type AttackOutcome struct {
	Result     ActionResult
	Message    string
	Attack     Attack
	Damage     int
	Multiplier float64
	KnockedOut bool
	Status     *StatusEffect
	Healed     int
	Recoil     int
}

// PerformAttack validates and resolves one attack against target.
// availableEnergy is the attacking player's energy pool; attacks check it
// but do not spend it.
func (p *PokemonInstance) PerformAttack(attackIndex int, target *PokemonInstance, availableEnergy int, rules Rules) AttackOutcome {
	if attackIndex < 0 || attackIndex >= len(p.Attacks) {
		return AttackOutcome{Result: ResultInvalid, Message: fmt.Sprintf("%s has no attack #%d", p.Card.Name, attackIndex)}
	}
	atk := p.Attacks[attackIndex]
	if !p.CanAttack() {
		return AttackOutcome{Result: ResultNotAllowed, Attack: atk, Message: fmt.Sprintf("%s cannot attack right now", p.Card.Name)}
	}
	if cost := atk.EnergyCost(); availableEnergy < cost {
		return AttackOutcome{
			Result:  ResultInsufficientResources,
			Attack:  atk,
			Message: fmt.Sprintf("%s needs %d energy, have %d", atk.Name, cost, availableEnergy),
		}
	}
	if target == nil || target.KnockedOut {
		return AttackOutcome{Result: ResultInvalid, Attack: atk, Message: "no valid target"}
	}

	out := AttackOutcome{Result: ResultSuccess, Attack: atk}
	out.Multiplier = rules.TypeEffectiveness(p.Card.PrimaryType(), target.Card.PrimaryType())
	dmg := rules.AttackDamage(p, atk, target)
	out.Damage, out.KnockedOut = target.TakeDamage(dmg, p.Card.Name, atk.Name)

	if st, ok := ParseStatusKeyword(atk.Text); ok && !target.KnockedOut {
		effect := NewStatusEffect(st)
		target.ApplyStatus(effect)
		out.Status = &effect
	}
	if heal := atk.HealAmount(); heal > 0 {
		out.Healed = p.Heal(heal)
	}
	if p.Confused() {
		out.Recoil, _ = p.TakeDamage(ConfusionRecoil, p.Card.Name, "confusion")
	}

	p.ActedThisTurn = true
	out.Message = fmt.Sprintf("%s used %s for %d damage", p.Card.Name, atk.Name, out.Damage)
	return out
}

// ProcessStatusEffects resolves damage-over-time, ticks durations and drops
// expired effects. It is called once per creature at the end of its
// owner's turn and returns log messages.
func (p *PokemonInstance) ProcessStatusEffects() []string {
	msgs, expired := p.resolveStatusEffects()
	for _, st := range expired {
		msgs = append(msgs, fmt.Sprintf("%s is no longer %s", p.Card.Name, st))
	}
	return msgs
}

// resolveStatusEffects is ProcessStatusEffects with expirations returned
// separately from the damage messages. Nothing expires on a knockout.
func (p *PokemonInstance) resolveStatusEffects() (msgs []string, expired []StatusType) {
	if p.KnockedOut {
		return nil, nil
	}
	kept := p.Effects[:0]
	for _, e := range p.Effects {
		if e.Power > 0 && (e.Type == StatusPoison || e.Type == StatusBurn) {
			dealt, ko := p.TakeDamage(e.Power, e.Type.String(), "")
			msgs = append(msgs, fmt.Sprintf("%s takes %d damage from being %s", p.Card.Name, dealt, e.Type))
			if ko {
				msgs = append(msgs, fmt.Sprintf("%s fainted from being %s", p.Card.Name, e.Type))
			}
		}
		if e.Duration > 0 {
			e.Duration--
			if e.Duration == 0 {
				expired = append(expired, e.Type)
				continue
			}
		}
		kept = append(kept, e)
	}
	p.Effects = kept
	if p.KnockedOut {
		p.Effects = nil
		expired = nil
	}
	return msgs, expired
}

// EvolveTo swaps the face card, keeping HP as the same fraction of the new
// maximum. Status effects are cleared and the attack list is replaced.
func (p *PokemonInstance) EvolveTo(card *Card) {
	if card == nil || !card.IsPokemon() || p.KnockedOut {
		return
	}
	ratio := 1.0
	if p.MaxHP > 0 {
		ratio = float64(p.CurrentHP) / float64(p.MaxHP)
	}
	p.Card = card
	p.MaxHP = card.HP
	p.CurrentHP = int(float64(card.HP)*ratio + 0.5)
	if p.CurrentHP < 1 {
		p.CurrentHP = 1
	}
	if p.CurrentHP > p.MaxHP {
		p.CurrentHP = p.MaxHP
	}
	p.Attacks = make([]Attack, len(card.Attacks))
	copy(p.Attacks, card.Attacks)
	p.ClearStatus()
}

// ResetTurnFlags clears per-turn tracking.
func (p *PokemonInstance) ResetTurnFlags() {
	p.ActedThisTurn = false
}
