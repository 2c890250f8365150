package game

import "time"

// BattleSummary is the serialized record handed to the battle store.
type BattleSummary struct {
	BattleID    string           `json:"battle_id"`
	Mode        string           `json:"mode"`
	Players     [2]string        `json:"players"`
	Result      string           `json:"result"`
	WinnerID    string           `json:"winner_id,omitempty"`
	EndReason   string           `json:"end_reason,omitempty"`
	TurnCount   int              `json:"turn_count"`
	ActionCount int              `json:"action_count"`
	Turns       []TurnRecord     `json:"turns"`
	Duration    time.Duration    `json:"duration_ns"`
	Board       []PlayerSnapshot `json:"board"`
}

// PlayerSnapshot is the end-of-battle board of one player.
type PlayerSnapshot struct {
	PlayerID    string   `json:"player_id"`
	DeckID      string   `json:"deck_id,omitempty"`
	PrizesTaken int      `json:"prizes_taken"`
	Energy      int      `json:"energy"`
	Active      string   `json:"active,omitempty"`
	Bench       []string `json:"bench,omitempty"`
	HandCount   int      `json:"hand_count"`
	DeckCount   int      `json:"deck_count"`
	Discard     int      `json:"discard_count"`
}

// Summarize builds a BattleSummary from the battle's current state.
func Summarize(b *Battle, mode string) BattleSummary {
	s := b.State
	sum := BattleSummary{
		BattleID:    s.ID,
		Mode:        mode,
		Players:     s.PlayerIDs,
		Result:      s.Result.String(),
		WinnerID:    s.WinnerID,
		EndReason:   s.EndReason,
		TurnCount:   s.TurnCount,
		ActionCount: len(s.ActionHistory),
		Turns:       s.TurnHistory,
		Duration:    s.Duration(),
	}
	for _, p := range b.Ordered() {
		snap := PlayerSnapshot{
			PlayerID:    p.ID,
			DeckID:      p.DeckID,
			PrizesTaken: p.PrizeCardsTaken,
			Energy:      p.EnergyPoints,
			HandCount:   len(p.Hand),
			DeckCount:   len(p.Deck),
			Discard:     len(p.Discard),
		}
		if p.Active != nil {
			snap.Active = p.Active.String()
		}
		for _, pk := range p.Bench {
			snap.Bench = append(snap.Bench, pk.String())
		}
		sum.Board = append(sum.Board, snap)
	}
	return sum
}
