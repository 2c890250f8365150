package ai

import (
	"fmt"

	"github.com/peterkuimelis/pokebattle/internal/game"
)

// Scoring weights shared by the medium and hard strategies.
const (
	lethalBonus      = 100.0
	winBonus         = 1000.0
	emptyActiveBonus = 150.0
	statusBonus      = 10.0
	retreatBonus     = 40.0
	lowHPRatio       = 0.3
	benchSlotValue   = 8.0
)

// decideEasy picks uniformly among the legal play, attack and end-turn requests.
func (m *DecisionMaker) decideEasy(b *game.Battle) game.Decision {
	var pool []game.ActionRequest
	for _, req := range b.LegalActions(m.playerID) {
		t, _ := req.Type()
		switch t {
		case game.ActionPlayPokemon, game.ActionAttack, game.ActionEndTurn:
			pool = append(pool, req)
		}
	}
	if len(pool) == 0 {
		return m.endTurn("no legal action")
	}
	req := pool[m.rng.Intn(len(pool))]
	return game.Decision{Request: req, Reason: "random pick from " + fmt.Sprint(len(pool))}
}

// decideMedium scores each legal request with fixed heuristics and takes the
// best. Ending the turn scores zero, so only improving moves are played.
func (m *DecisionMaker) decideMedium(b *game.Battle) game.Decision {
	p := b.Player(m.playerID)
	opp := b.Opponent(m.playerID)
	best := m.endTurn("no move scores above zero")
	for _, req := range b.LegalActions(m.playerID) {
		score, reason := m.heuristic(b, p, opp, req)
		if score > best.Score {
			best = game.Decision{Request: req, Reason: reason, Score: score}
		}
	}
	return best
}

func (m *DecisionMaker) heuristic(b *game.Battle, p, opp *game.PlayerState, req game.ActionRequest) (float64, string) {
	t, _ := req.Type()
	switch t {
	case game.ActionAttack:
		idx, _ := req.IntParam(game.ParamAttackIndex)
		v := m.attackValue(b, p.Active, idx, opp)
		if v.lethal {
			return v.score, "lethal attack"
		}
		return v.score, "attack for " + fmt.Sprint(v.damage)

	case game.ActionPlayPokemon:
		card := p.Card(req.SourceID)
		if card == nil {
			return 0, ""
		}
		if card.Card.IsEvolution() {
			target, _ := req.InstanceParam(game.ParamEvolveTarget)
			return m.evolveValue(card.Card, p.FindPokemon(target)), "evolve"
		}
		if p.Active == nil {
			return emptyActiveBonus, "fill the active slot"
		}
		return m.benchValue(p, card.Card), "bench is thin"

	case game.ActionRetreat:
		active, target := p.Active, p.FindPokemon(req.TargetID)
		if active == nil || target == nil || hpRatio(active) >= lowHPRatio {
			return -1, ""
		}
		return retreatBonus*(1-m.personality.RiskTolerance) + float64(target.CurrentHP)/10, "active is low on HP"

	default:
		return 0, ""
	}
}

// focusWeight scales board-building values by the personality's focus.
func (m *DecisionMaker) focusWeight() float64 {
	switch m.personality.StrategyFocus {
	case FocusDefense:
		return 1.5
	case FocusOffense:
		return 0.75
	default:
		return 1
	}
}

func (m *DecisionMaker) benchValue(p *game.PlayerState, c *game.Card) float64 {
	open := game.MaxBenchSize - len(p.Bench)
	if open <= 0 {
		return 0
	}
	return (float64(open)*benchSlotValue + float64(c.HP)/20) * m.focusWeight()
}

func (m *DecisionMaker) evolveValue(c *game.Card, target *game.PokemonInstance) float64 {
	if target == nil {
		return 0
	}
	gain := float64(c.HP - target.MaxHP)
	if gain < 0 {
		gain = 0
	}
	return (15 + gain/4) * m.focusWeight()
}

type attackEval struct {
	score  float64
	damage int
	lethal bool
}

// attackValue rates attacker's attack idx against opp's active without
// touching the battle.
func (m *DecisionMaker) attackValue(b *game.Battle, attacker *game.PokemonInstance, idx int, opp *game.PlayerState) attackEval {
	if attacker == nil || opp == nil || opp.Active == nil || idx < 0 || idx >= len(attacker.Attacks) {
		return attackEval{}
	}
	atk := attacker.Attacks[idx]
	defender := opp.Active
	dmg := b.Rules.AttackDamage(attacker, atk, defender)
	v := attackEval{damage: dmg, score: 10 + float64(dmg)*(0.5+m.personality.Aggression)}
	if dmg >= defender.CurrentHP {
		v.lethal = true
		v.score += lethalBonus
		if me := b.Opponent(opp.ID); me != nil && me.PrizeCardsTaken+1 >= game.PrizeCardCount {
			v.score += winBonus
		}
	} else if _, ok := game.ParseStatusKeyword(atk.Text); ok {
		v.score += statusBonus
	}
	if attacker.Confused() {
		v.score -= game.ConfusionRecoil
		if attacker.CurrentHP <= game.ConfusionRecoil && !v.lethal {
			v.score -= lethalBonus
		}
	}
	return v
}

// threat is the most damage opp's active could deal to target next turn,
// ignoring energy.
func threat(b *game.Battle, opp *game.PlayerState, target *game.PokemonInstance) int {
	if opp == nil || opp.Active == nil || target == nil {
		return 0
	}
	best := 0
	for _, atk := range opp.Active.Attacks {
		if d := b.Rules.AttackDamage(opp.Active, atk, target); d > best {
			best = d
		}
	}
	return best
}

func hpRatio(pk *game.PokemonInstance) float64 {
	if pk.MaxHP == 0 {
		return 0
	}
	return float64(pk.CurrentHP) / float64(pk.MaxHP)
}

// plan is one leaf of the hard strategy's tree: an optional play, an
// optional retreat and an optional attack, taken in that order.
type plan struct {
	play    *game.ActionRequest
	retreat *game.ActionRequest
	attack  *game.ActionRequest
	value   float64
	reason  string
}

func (pl plan) first() *game.ActionRequest {
	switch {
	case pl.play != nil:
		return pl.play
	case pl.retreat != nil:
		return pl.retreat
	default:
		return pl.attack
	}
}

// decideHard enumerates every combination of playable card, retreat target
// and attack index, scores each leaf and plays the first step of the best
// one. It replans after every step.
func (m *DecisionMaker) decideHard(b *game.Battle) game.Decision {
	p := b.Player(m.playerID)
	opp := b.Opponent(m.playerID)

	plays := []*game.ActionRequest{nil}
	retreats := []*game.ActionRequest{nil}
	for _, req := range b.LegalActions(m.playerID) {
		req := req
		t, _ := req.Type()
		switch t {
		case game.ActionPlayPokemon:
			plays = append(plays, &req)
		case game.ActionRetreat:
			retreats = append(retreats, &req)
		}
	}

	best := plan{reason: "no plan beats ending the turn"}
	leaves := 0
	for _, play := range plays {
		for _, retreat := range retreats {
			for _, attack := range m.attackOptions(b, p, opp, retreat) {
				leaves++
				pl := m.scorePlan(b, p, opp, play, retreat, attack)
				if pl.value > best.value {
					best = pl
				}
			}
		}
	}
	m.log.WithField("leaves", leaves).Tracef("hard plan value %.1f", best.value)

	step := best.first()
	if step == nil {
		return m.endTurn(best.reason)
	}
	return game.Decision{Request: *step, Reason: best.reason, Score: best.value}
}

// attackOptions lists attack requests for whoever is active after retreat,
// plus the no-attack branch.
func (m *DecisionMaker) attackOptions(b *game.Battle, p, opp *game.PlayerState, retreat *game.ActionRequest) []*game.ActionRequest {
	opts := []*game.ActionRequest{nil}
	attacker := p.Active
	energy := p.EnergyPoints
	if retreat != nil {
		energy -= b.Rules.RetreatCost(p.Active)
		attacker = p.FindPokemon(retreat.TargetID)
	}
	if attacker == nil || !attacker.CanAttack() || opp == nil || opp.Active == nil {
		return opts
	}
	for i, atk := range attacker.Attacks {
		if atk.EnergyCost() > energy {
			continue
		}
		req := game.NewActionRequest(game.ActionAttack, m.playerID).
			WithSource(attacker.ID()).
			WithTarget(opp.Active.ID()).
			WithParam(game.ParamAttackIndex, i)
		opts = append(opts, &req)
	}
	return opts
}

func (m *DecisionMaker) scorePlan(b *game.Battle, p, opp *game.PlayerState, play, retreat, attack *game.ActionRequest) plan {
	pl := plan{play: play, retreat: retreat, attack: attack}
	var reasons []string

	if play != nil {
		if card := p.Card(play.SourceID); card != nil {
			if card.Card.IsEvolution() {
				target, _ := play.InstanceParam(game.ParamEvolveTarget)
				pl.value += m.evolveValue(card.Card, p.FindPokemon(target))
				reasons = append(reasons, "evolve "+card.Card.Name)
			} else if p.Active == nil {
				pl.value += emptyActiveBonus
				reasons = append(reasons, "fill active with "+card.Card.Name)
			} else {
				pl.value += m.benchValue(p, card.Card)
				reasons = append(reasons, "bench "+card.Card.Name)
			}
		}
	}

	attacker := p.Active
	if retreat != nil {
		target := p.FindPokemon(retreat.TargetID)
		cost := b.Rules.RetreatCost(p.Active)
		v := -5 * float64(cost)
		if t := threat(b, opp, p.Active); t >= p.Active.CurrentHP {
			v += retreatBonus * (1.5 - m.personality.RiskTolerance)
		}
		if t := threat(b, opp, target); t >= target.CurrentHP {
			v -= retreatBonus
		}
		pl.value += v
		attacker = target
		reasons = append(reasons, "retreat to "+target.Name())
	}

	if attack != nil {
		idx, _ := attack.IntParam(game.ParamAttackIndex)
		v := m.attackValue(b, attacker, idx, opp)
		pl.value += v.score
		if v.lethal {
			reasons = append(reasons, "knock out "+opp.Active.Name())
		} else {
			reasons = append(reasons, fmt.Sprintf("attack for %d", v.damage))
		}
	}

	pl.reason = joinReasons(reasons)
	return pl
}

func joinReasons(rs []string) string {
	switch len(rs) {
	case 0:
		return "pass"
	case 1:
		return rs[0]
	}
	out := rs[0]
	for _, r := range rs[1:] {
		out += ", then " + r
	}
	return out
}
