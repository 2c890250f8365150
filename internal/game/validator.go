package game

// ValidateAction runs the two validation tiers. Basic checks cover battle
// state, player identity, turn ownership and phase legality; the
// per-action checks cover resources and targets. The returned response is
// a success when the request may be processed.
func ValidateAction(b *Battle, req ActionRequest) (ActionType, ActionResponse) {
	t, resp := validateBasic(b, req)
	if !resp.Success() {
		return t, resp
	}
	p := b.Player(req.PlayerID)
	opp := b.Opponent(req.PlayerID)

	switch t {
	case ActionDrawCard, ActionGainEnergy, ActionEndTurn, ActionSurrender:
		return t, succeed("ok")
	case ActionPlayPokemon:
		return t, validatePlayPokemon(b, p, req)
	case ActionAttack:
		return t, validateAttack(b, p, opp, req)
	case ActionRetreat:
		return t, validateRetreat(b, p, req)
	default:
		return t, reject(ResultInvalid, "unhandled action %s", t)
	}
}

func validateBasic(b *Battle, req ActionRequest) (ActionType, ActionResponse) {
	s := b.State
	if s.IsBattleOver() {
		return 0, reject(ResultNotAllowed, "battle is over")
	}
	if s.Phase == PhaseSetup {
		return 0, reject(ResultNotAllowed, "battle has not started")
	}
	if !s.IsPlayer(req.PlayerID) || b.Player(req.PlayerID) == nil {
		return 0, reject(ResultInvalid, "unknown player %q", req.PlayerID)
	}
	t, ok := req.Type()
	if !ok {
		return 0, reject(ResultInvalid, "unknown action type %q", req.ActionType)
	}
	// Either player may concede at any time.
	if t == ActionSurrender {
		return t, succeed("ok")
	}
	if s.CurrentTurnPlayer != req.PlayerID {
		return t, reject(ResultNotAllowed, "it is not %s's turn", req.PlayerID)
	}
	if !b.Rules.ValidateTurnAction(s.Phase, t) {
		return t, reject(ResultNotAllowed, "%s is not allowed during %s", t, s.Phase)
	}
	return t, succeed("ok")
}

func validatePlayPokemon(b *Battle, p *PlayerState, req ActionRequest) ActionResponse {
	card := p.FindInHand(req.SourceID)
	if card == nil {
		return reject(ResultInvalid, "card #%d is not in %s's hand", req.SourceID, p.ID)
	}
	if !card.Card.IsPokemon() {
		return reject(ResultInvalid, "%s is not a Pokémon", card.Card.Name)
	}
	if !card.Card.IsEvolution() {
		if p.Active != nil && p.BenchFull() {
			return reject(ResultNotAllowed, "bench is full")
		}
		return succeed("ok")
	}

	targetID, ok := evolveTarget(req)
	if !ok {
		return reject(ResultInvalid, "%s evolves from %s: an evolve_target is required", card.Card.Name, card.Card.EvolvesFrom)
	}
	target := p.FindPokemon(targetID)
	if target == nil {
		return reject(ResultInvalid, "no Pokémon #%d in play", targetID)
	}
	if target.Card.ID != card.Card.EvolvesFrom {
		return reject(ResultInvalid, "%s does not evolve from %s", card.Card.Name, target.Name())
	}
	if target.TurnPlayed == b.State.TurnCount {
		return reject(ResultNotAllowed, "%s entered play this turn and cannot evolve yet", target.Name())
	}
	return succeed("ok")
}

// evolveTarget reads the evolution target from parameters, falling back to TargetID.
func evolveTarget(req ActionRequest) (InstanceID, bool) {
	if id, ok := req.InstanceParam(ParamEvolveTarget); ok {
		return id, true
	}
	if req.TargetID != NoInstance {
		return req.TargetID, true
	}
	return NoInstance, false
}

func attackIndex(req ActionRequest) (int, bool) {
	if _, present := req.Parameters[ParamAttackIndex]; !present {
		return 0, true
	}
	return req.IntParam(ParamAttackIndex)
}

func validateAttack(b *Battle, p, opp *PlayerState, req ActionRequest) ActionResponse {
	attacker := p.Active
	if attacker == nil {
		return reject(ResultInvalid, "%s has no active Pokémon", p.ID)
	}
	if !attacker.CanAttack() {
		return reject(ResultNotAllowed, "%s cannot attack right now", attacker.Name())
	}
	idx, ok := attackIndex(req)
	if !ok || idx < 0 || idx >= len(attacker.Attacks) {
		return reject(ResultInvalid, "%s has no attack #%v", attacker.Name(), req.Parameters[ParamAttackIndex])
	}
	atk := attacker.Attacks[idx]
	if cost := atk.EnergyCost(); p.EnergyPoints < cost {
		return reject(ResultInsufficientResources, "%s needs %d energy, %s has %d", atk.Name, cost, p.ID, p.EnergyPoints)
	}
	if opp == nil || opp.Active == nil {
		return reject(ResultInvalid, "opponent has no active Pokémon")
	}
	if req.SourceID != NoInstance && req.SourceID != attacker.ID() {
		return reject(ResultInvalid, "%d is not %s's active Pokémon", req.SourceID, p.ID)
	}
	if req.TargetID != NoInstance && req.TargetID != opp.Active.ID() {
		return reject(ResultInvalid, "%d is not the defending Pokémon", req.TargetID)
	}
	return succeed("ok")
}

func validateRetreat(b *Battle, p *PlayerState, req ActionRequest) ActionResponse {
	active := p.Active
	if active == nil {
		return reject(ResultInvalid, "%s has no active Pokémon", p.ID)
	}
	if p.RetreatedThisTurn {
		return reject(ResultNotAllowed, "%s already retreated this turn", p.ID)
	}
	if !active.CanRetreat() {
		return reject(ResultNotAllowed, "%s cannot retreat right now", active.Name())
	}
	target := p.FindPokemon(req.TargetID)
	if !p.IsBenched(target) {
		return reject(ResultInvalid, "no benched Pokémon #%d", req.TargetID)
	}
	if cost := b.Rules.RetreatCost(active); p.EnergyPoints < cost {
		return reject(ResultInsufficientResources, "retreating %s costs %d energy, %s has %d", active.Name(), cost, p.ID, p.EnergyPoints)
	}
	return succeed("ok")
}
