package game

import "github.com/peterkuimelis/pokebattle/internal/log"

// --- UI snapshot types (JSON-serialisable) ---

// StateView is the battle as seen from one seat.
type StateView struct {
	BattleID      string       `json:"battle_id"`
	Turn          int          `json:"turn"`
	Phase         string       `json:"phase"`
	CurrentPlayer string       `json:"current_player"`
	IsYourTurn    bool         `json:"is_your_turn"`
	BattleOver    bool         `json:"battle_over"`
	Result        string       `json:"result"`
	Winner        string       `json:"winner,omitempty"`
	You           PlayerView   `json:"you"`
	Opponent      PlayerView   `json:"opponent"`
	RecentLog     []EventView  `json:"recent_log"`
	Available     []string     `json:"available_actions,omitempty"`
	Actions       []ActionView `json:"actions,omitempty"`
}

// PlayerView shows one side of the board. Hand contents are only filled
// in for the viewing player.
type PlayerView struct {
	ID          string        `json:"id"`
	Energy      int           `json:"energy"`
	PrizesTaken int           `json:"prizes_taken"`
	PrizesLeft  int           `json:"prizes_left"`
	HandCount   int           `json:"hand_count"`
	Hand        []CardView    `json:"hand,omitempty"`
	DeckCount   int           `json:"deck_count"`
	Discard     int           `json:"discard_count"`
	Active      *PokemonView  `json:"active,omitempty"`
	Bench       []PokemonView `json:"bench"`
}

// PokemonView describes one creature in play.
type PokemonView struct {
	ID      InstanceID   `json:"id"`
	Name    string       `json:"name"`
	Type    string       `json:"type"`
	HP      int          `json:"hp"`
	MaxHP   int          `json:"max_hp"`
	Energy  int          `json:"energy"`
	Status  []string     `json:"status,omitempty"`
	Attacks []AttackView `json:"attacks"`
}

type AttackView struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Damage string `json:"damage,omitempty"`
	Cost   int    `json:"cost"`
	Text   string `json:"text,omitempty"`
}

// CardView describes a card in hand.
type CardView struct {
	ID          InstanceID `json:"id"`
	Name        string     `json:"name"`
	HP          int        `json:"hp,omitempty"`
	EvolvesFrom string     `json:"evolves_from,omitempty"`
}

// EventView is a log line for the client.
type EventView struct {
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  string `json:"player,omitempty"`
	Type    string `json:"type"`
	Details string `json:"details"`
}

// ActionView is a numbered legal action.
type ActionView struct {
	Index   int           `json:"index"`
	Desc    string        `json:"desc"`
	Request ActionRequest `json:"request"`
}

// RecentLogSize is how many log entries a snapshot carries.
const RecentLogSize = 5

// BuildStateView builds the snapshot for viewer. recent is the tail of the
// event log.
func BuildStateView(b *Battle, viewer string, recent []log.GameEvent) StateView {
	s := b.State
	v := StateView{
		BattleID:      s.ID,
		Turn:          s.TurnCount,
		Phase:         s.Phase.String(),
		CurrentPlayer: s.CurrentTurnPlayer,
		IsYourTurn:    s.CurrentTurnPlayer == viewer,
		BattleOver:    s.IsBattleOver(),
		Result:        s.Result.String(),
		Winner:        s.WinnerID,
	}
	if p := b.Player(viewer); p != nil {
		v.You = buildPlayerView(p, true)
	}
	if opp := b.Opponent(viewer); opp != nil {
		v.Opponent = buildPlayerView(opp, false)
	}
	for _, e := range recent {
		v.RecentLog = append(v.RecentLog, EventView{
			Turn:    e.Turn,
			Phase:   e.Phase,
			Player:  e.Player,
			Type:    e.Type.String(),
			Details: e.Details,
		})
	}
	for _, a := range b.AvailableActions(viewer) {
		v.Available = append(v.Available, a.String())
	}
	for i, req := range b.LegalActions(viewer) {
		v.Actions = append(v.Actions, ActionView{Index: i, Desc: b.Describe(req), Request: req})
	}
	return v
}

func buildPlayerView(p *PlayerState, self bool) PlayerView {
	pv := PlayerView{
		ID:          p.ID,
		Energy:      p.EnergyPoints,
		PrizesTaken: p.PrizeCardsTaken,
		PrizesLeft:  len(p.Prizes),
		HandCount:   len(p.Hand),
		DeckCount:   len(p.Deck),
		Discard:     len(p.Discard),
		Bench:       []PokemonView{},
	}
	if self {
		for _, c := range p.Hand {
			pv.Hand = append(pv.Hand, CardView{ID: c.ID, Name: c.Card.Name, HP: c.Card.HP, EvolvesFrom: c.Card.EvolvesFrom})
		}
	}
	if p.Active != nil {
		av := buildPokemonView(p.Active)
		pv.Active = &av
	}
	for _, pk := range p.Bench {
		pv.Bench = append(pv.Bench, buildPokemonView(pk))
	}
	return pv
}

func buildPokemonView(pk *PokemonInstance) PokemonView {
	v := PokemonView{
		ID:     pk.ID(),
		Name:   pk.Name(),
		Type:   pk.Card.PrimaryType(),
		HP:     pk.CurrentHP,
		MaxHP:  pk.MaxHP,
		Energy: pk.AttachedEnergy,
		Status: pk.StatusNames(),
	}
	for i, a := range pk.Attacks {
		v.Attacks = append(v.Attacks, AttackView{Index: i, Name: a.Name, Damage: a.Damage, Cost: a.EnergyCost(), Text: a.Text})
	}
	return v
}
