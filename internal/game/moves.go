package game

import "fmt"

// AvailableActions returns the action types the phase admits for playerID.
// Outside the player's own turn only surrender is offered.
func (b *Battle) AvailableActions(playerID string) []ActionType {
	s := b.State
	if s.IsBattleOver() || !s.IsPlayer(playerID) || s.Phase == PhaseSetup {
		return nil
	}
	if s.CurrentTurnPlayer != playerID {
		return []ActionType{ActionSurrender}
	}
	return b.Rules.AllowedActions(s.Phase)
}

// LegalActions enumerates concrete requests that would pass validation for
// playerID right now. Surrender is never included.
func (b *Battle) LegalActions(playerID string) []ActionRequest {
	s := b.State
	if s.IsBattleOver() || s.CurrentTurnPlayer != playerID {
		return nil
	}
	p := b.Player(playerID)
	if p == nil {
		return nil
	}

	var actions []ActionRequest
	switch s.Phase {
	case PhaseDraw:
		actions = append(actions, NewActionRequest(ActionDrawCard, playerID))
	case PhaseEnergy:
		actions = append(actions, NewActionRequest(ActionGainEnergy, playerID))
	case PhaseAction:
		actions = append(actions, b.playActions(p)...)
		actions = append(actions, b.attackActions(p)...)
		actions = append(actions, b.retreatActions(p)...)
		actions = append(actions, NewActionRequest(ActionEndTurn, playerID))
	}
	return actions
}

func (b *Battle) playActions(p *PlayerState) []ActionRequest {
	var actions []ActionRequest
	if p.Active == nil || !p.BenchFull() {
		for _, c := range p.BasicsInHand() {
			actions = append(actions, NewActionRequest(ActionPlayPokemon, p.ID).WithSource(c.ID))
		}
	}
	for _, c := range p.PokemonInHand() {
		if !c.Card.IsEvolution() {
			continue
		}
		for _, pk := range p.InPlay() {
			if pk.Card.ID == c.Card.EvolvesFrom && pk.TurnPlayed != b.State.TurnCount {
				actions = append(actions, NewActionRequest(ActionPlayPokemon, p.ID).
					WithSource(c.ID).
					WithParam(ParamEvolveTarget, int(pk.ID())))
			}
		}
	}
	return actions
}

func (b *Battle) attackActions(p *PlayerState) []ActionRequest {
	opp := b.Opponent(p.ID)
	if p.Active == nil || !p.Active.CanAttack() || opp == nil || opp.Active == nil {
		return nil
	}
	var actions []ActionRequest
	for i, atk := range p.Active.Attacks {
		if atk.EnergyCost() > p.EnergyPoints {
			continue
		}
		actions = append(actions, NewActionRequest(ActionAttack, p.ID).
			WithSource(p.Active.ID()).
			WithTarget(opp.Active.ID()).
			WithParam(ParamAttackIndex, i))
	}
	return actions
}

func (b *Battle) retreatActions(p *PlayerState) []ActionRequest {
	if p.Active == nil || p.RetreatedThisTurn || !p.Active.CanRetreat() {
		return nil
	}
	if b.Rules.RetreatCost(p.Active) > p.EnergyPoints {
		return nil
	}
	var actions []ActionRequest
	for _, pk := range p.Bench {
		actions = append(actions, NewActionRequest(ActionRetreat, p.ID).
			WithSource(p.Active.ID()).
			WithTarget(pk.ID()))
	}
	return actions
}

// Describe renders a request for menus and logs using card names.
func (b *Battle) Describe(req ActionRequest) string {
	p := b.Player(req.PlayerID)
	t, ok := req.Type()
	if !ok || p == nil {
		return req.String()
	}
	switch t {
	case ActionPlayPokemon:
		card := p.Card(req.SourceID)
		if card == nil {
			return req.String()
		}
		if id, ok := req.InstanceParam(ParamEvolveTarget); ok {
			if target := p.FindPokemon(id); target != nil {
				return fmt.Sprintf("Evolve %s into %s", target.Name(), card.Card.Name)
			}
		}
		return fmt.Sprintf("Play %s", card.Card.Name)
	case ActionAttack:
		idx, _ := attackIndex(req)
		if p.Active != nil && idx >= 0 && idx < len(p.Active.Attacks) {
			atk := p.Active.Attacks[idx]
			return fmt.Sprintf("Attack with %s: %s (%s, cost %d)", p.Active.Name(), atk.Name, atk.Damage, atk.EnergyCost())
		}
	case ActionRetreat:
		if to := p.FindPokemon(req.TargetID); to != nil && p.Active != nil {
			return fmt.Sprintf("Retreat %s for %s (cost %d)", p.Active.Name(), to.Name(), b.Rules.RetreatCost(p.Active))
		}
	case ActionDrawCard:
		return "Draw a card"
	case ActionGainEnergy:
		return "Gain energy"
	case ActionEndTurn:
		return "End turn"
	case ActionSurrender:
		return "Surrender"
	}
	return req.String()
}
