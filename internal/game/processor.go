package game

import (
	"fmt"

	"github.com/peterkuimelis/pokebattle/internal/log"
)

// ProcessAction applies a validated request. Each action type has exactly
// one handler; the caller is expected to have run ValidateAction first.
func ProcessAction(b *Battle, t ActionType, req ActionRequest) ActionResponse {
	p := b.Player(req.PlayerID)
	switch t {
	case ActionDrawCard:
		return processDraw(b, p)
	case ActionGainEnergy:
		return processGainEnergy(b, p)
	case ActionPlayPokemon:
		return processPlayPokemon(b, p, req)
	case ActionAttack:
		return processAttack(b, p, req)
	case ActionRetreat:
		return processRetreat(b, p, req)
	case ActionEndTurn:
		return processEndTurn(b, p)
	case ActionSurrender:
		return processSurrender(b, p)
	default:
		return reject(ResultInvalid, "unhandled action %s", t)
	}
}

// advance moves the phase machine forward and logs the phase change.
func advance(b *Battle) {
	prev := b.State.Phase
	b.State.NextPhase()
	s := b.State
	if s.Phase == prev || s.IsBattleOver() {
		if s.IsBattleOver() && s.WinnerID == "" && s.Result == BattleDraw {
			b.emit(log.NewTieEvent(s.TurnCount, s.Phase.String(), s.EndReason))
		}
		return
	}
	if s.Phase == PhaseDraw {
		b.emit(log.NewTurnEvent(s.TurnCount, s.CurrentTurnPlayer))
	}
	b.emit(log.NewPhaseChangeEvent(s.TurnCount, s.Phase.String(), s.CurrentTurnPlayer))
}

func processDraw(b *Battle, p *PlayerState) ActionResponse {
	drawn := p.Draw(1)
	names := cardNames(drawn)
	b.emit(log.NewDrawEvent(b.State.TurnCount, b.phaseName(), p.ID, names))

	resp := succeed(fmt.Sprintf("%s drew %d card(s)", p.ID, len(drawn)))
	if len(drawn) == 0 {
		resp.Message = fmt.Sprintf("%s could not draw", p.ID)
		resp.Effects = append(resp.Effects, "no card drawn")
	} else {
		resp.Effects = append(resp.Effects, "drew "+names[0])
	}
	resp.Data = map[string]any{"drawn": len(drawn), "hand_size": len(p.Hand), "deck_size": len(p.Deck)}
	advance(b)
	return resp
}

func processGainEnergy(b *Battle, p *PlayerState) ActionResponse {
	gained := p.AddEnergy(EnergyPerTurn)
	b.emit(log.NewEnergyEvent(b.State.TurnCount, b.phaseName(), p.ID, gained, p.EnergyPoints))

	resp := succeed(fmt.Sprintf("%s gained %d energy", p.ID, gained), fmt.Sprintf("energy %d/%d", p.EnergyPoints, MaxEnergy))
	resp.Data = map[string]any{"gained": gained, "energy": p.EnergyPoints}
	advance(b)
	return resp
}

func processPlayPokemon(b *Battle, p *PlayerState, req ActionRequest) ActionResponse {
	turn, phase := b.State.TurnCount, b.phaseName()
	card := p.FindInHand(req.SourceID)
	if card == nil {
		return reject(ResultInvalid, "card #%d is not in %s's hand", req.SourceID, p.ID)
	}

	if card.Card.IsEvolution() {
		targetID, _ := evolveTarget(req)
		target := p.FindPokemon(targetID)
		if target == nil {
			return reject(ResultInvalid, "no Pokémon #%d in play", targetID)
		}
		from := target.Name()
		if !p.EvolvePokemon(card, target, turn) {
			return reject(ResultFailed, "%s could not evolve into %s", from, card.Card.Name)
		}
		b.emit(log.NewEvolveEvent(turn, phase, p.ID, from, target.Name()))
		resp := succeed(fmt.Sprintf("%s evolved into %s", from, target.Name()), fmt.Sprintf("%s HP %d/%d", target.Name(), target.CurrentHP, target.MaxHP))
		resp.Data = map[string]any{"instance_id": target.ID(), "evolved": true}
		return resp
	}

	pk, ok := p.PlayPokemonToBench(card, turn)
	if !ok {
		return reject(ResultFailed, "%s could not be played", card.Card.Name)
	}
	slot := "bench"
	if p.Active == pk {
		slot = "active slot"
	}
	b.emit(log.NewPlayPokemonEvent(turn, phase, p.ID, pk.Name(), slot))
	resp := succeed(fmt.Sprintf("%s played %s to the %s", p.ID, pk.Name(), slot))
	resp.Data = map[string]any{"instance_id": pk.ID(), "slot": slot}
	return resp
}

func processAttack(b *Battle, p *PlayerState, req ActionRequest) ActionResponse {
	turn, phase := b.State.TurnCount, b.phaseName()
	opp := b.Opponent(p.ID)
	attacker, defender := p.Active, opp.Active
	if attacker == nil || defender == nil {
		return reject(ResultInvalid, "both players need an active Pokémon")
	}
	if (req.SourceID != NoInstance && req.SourceID != attacker.ID()) ||
		(req.TargetID != NoInstance && req.TargetID != defender.ID()) {
		return reject(ResultInvalid, "attack must be made by and against the active Pokémon")
	}
	idx, _ := attackIndex(req)

	out := attacker.PerformAttack(idx, defender, p.EnergyPoints, b.Rules)
	if out.Result != ResultSuccess {
		return reject(out.Result, "%s", out.Message)
	}

	b.emit(log.NewAttackEvent(turn, p.ID, attacker.Name(), out.Attack.Name, defender.Name()))
	b.emit(log.NewDamageEvent(turn, phase, opp.ID, defender.Name(), out.Damage, defender.CurrentHP, defender.MaxHP, out.Attack.Name))
	effects := []string{fmt.Sprintf("%s took %d damage", defender.Name(), out.Damage)}
	switch {
	case out.Multiplier > 1:
		effects = append(effects, "it's super effective")
	case out.Multiplier < 1:
		effects = append(effects, "it's not very effective")
	}
	if out.Status != nil {
		b.emit(log.NewStatusAppliedEvent(turn, phase, opp.ID, defender.Name(), out.Status.Type.String()))
		effects = append(effects, fmt.Sprintf("%s is now %s", defender.Name(), out.Status.Type))
	}
	if out.Healed > 0 {
		b.emit(log.NewHealEvent(turn, phase, p.ID, attacker.Name(), out.Healed, attacker.CurrentHP, attacker.MaxHP))
		effects = append(effects, fmt.Sprintf("%s healed %d", attacker.Name(), out.Healed))
	}
	if out.Recoil > 0 {
		b.emit(log.NewDamageEvent(turn, phase, p.ID, attacker.Name(), out.Recoil, attacker.CurrentHP, attacker.MaxHP, "confusion"))
		effects = append(effects, fmt.Sprintf("%s hurt itself for %d in its confusion", attacker.Name(), out.Recoil))
	}

	if out.KnockedOut {
		b.knockout(opp, p, defender, &effects)
	}
	if attacker.KnockedOut && !b.State.IsBattleOver() {
		b.knockout(p, opp, attacker, &effects)
	}

	resp := succeed(out.Message, effects...)
	resp.Data = map[string]any{
		"damage":     out.Damage,
		"multiplier": out.Multiplier,
		"knockout":   out.KnockedOut,
		"target_hp":  defender.CurrentHP,
	}
	return resp
}

func processRetreat(b *Battle, p *PlayerState, req ActionRequest) ActionResponse {
	from := p.Active
	to := p.FindPokemon(req.TargetID)
	cost := b.Rules.RetreatCost(from)
	if res := p.RetreatActivePokemon(to, cost); res != ResultSuccess {
		return reject(res, "%s could not retreat", p.ID)
	}
	b.emit(log.NewRetreatEvent(b.State.TurnCount, b.phaseName(), p.ID, from.Name(), to.Name(), cost))
	resp := succeed(fmt.Sprintf("%s retreated %s for %s", p.ID, from.Name(), to.Name()), fmt.Sprintf("spent %d energy", cost))
	resp.Data = map[string]any{"cost": cost, "energy": p.EnergyPoints, "active": to.ID()}
	return resp
}

func processEndTurn(b *Battle, p *PlayerState) ActionResponse {
	opp := b.Opponent(p.ID)
	advance(b) // ACTION -> END_TURN
	turn, phase := b.State.TurnCount, b.phaseName()

	var effects []string
	for _, pk := range p.InPlay() {
		name := pk.Name()
		msgs, expired := pk.resolveStatusEffects()
		for _, msg := range msgs {
			b.emit(log.NewStatusTickEvent(turn, phase, p.ID, name, msg))
			effects = append(effects, msg)
		}
		for _, st := range expired {
			b.emit(log.NewStatusExpiredEvent(turn, phase, p.ID, name, st.String()))
			effects = append(effects, fmt.Sprintf("%s is no longer %s", name, st))
		}
		if pk.KnockedOut {
			b.knockout(p, opp, pk, &effects)
			if b.State.IsBattleOver() {
				return succeed(fmt.Sprintf("%s ended their turn", p.ID), effects...)
			}
		}
	}
	p.ResetTurnFlags()
	b.emit(log.NewEndTurnEvent(turn, p.ID))

	advance(b) // END_TURN -> opponent DRAW
	resp := succeed(fmt.Sprintf("%s ended their turn", p.ID), effects...)
	resp.Data = map[string]any{"next_player": b.State.CurrentTurnPlayer, "turn": b.State.TurnCount}
	return resp
}

func processSurrender(b *Battle, p *PlayerState) ActionResponse {
	b.emit(log.NewSurrenderEvent(b.State.TurnCount, b.phaseName(), p.ID))
	winner := b.State.OpponentID(p.ID)
	b.endWithWinner(winner, ReasonSurrender)
	return succeed(fmt.Sprintf("%s surrendered", p.ID), winner+" wins")
}

// ReasonSurrender is the EndReason recorded when a player concedes.
const ReasonSurrender = "surrender"
