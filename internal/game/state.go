package game

import "time"

// TurnRecord summarises one player-turn in the battle.
type TurnRecord struct {
	Turn        int
	PlayerID    string
	FirstAction int // index into ActionHistory
	ActionCount int
	StartedAt   time.Time
}

// BattleState tracks phase, turn and outcome for a single battle, and keeps
// the append-only action log.
type BattleState struct {
	ID                string
	PlayerIDs         [2]string // PlayerIDs[0] moves first
	Phase             Phase
	CurrentTurnPlayer string
	TurnCount         int // 1-based; increments when PlayerIDs[0] starts a turn
	MaxTurns          int // 0 = no limit

	Result    BattleResult
	WinnerID  string
	EndReason string

	ActionHistory []BattleAction
	TurnHistory   []TurnRecord

	StartedAt time.Time
	EndedAt   time.Time

	sealed bool
	now    func() time.Time
}

// NewBattleState creates a battle in the SETUP phase.
func NewBattleState(id, firstPlayer, secondPlayer string, maxTurns int) *BattleState {
	s := &BattleState{
		ID:        id,
		PlayerIDs: [2]string{firstPlayer, secondPlayer},
		Phase:     PhaseSetup,
		MaxTurns:  maxTurns,
		Result:    BattleOngoing,
		now:       time.Now,
	}
	s.StartedAt = s.now()
	return s
}

// NextPhase is the only forward transition of the phase machine:
// SETUP → DRAW → ENERGY → ACTION → END_TURN → (other player) DRAW.
// Crossing MaxTurns ends the battle in a draw.
func (s *BattleState) NextPhase() Phase {
	if s.IsBattleOver() {
		return s.Phase
	}
	switch s.Phase {
	case PhaseSetup:
		s.TurnCount = 1
		s.CurrentTurnPlayer = s.PlayerIDs[0]
		s.Phase = PhaseDraw
		s.openTurn()
	case PhaseDraw:
		s.Phase = PhaseEnergy
	case PhaseEnergy:
		s.Phase = PhaseAction
	case PhaseAction:
		s.Phase = PhaseEndTurn
	case PhaseEndTurn:
		s.CurrentTurnPlayer = s.OpponentID(s.CurrentTurnPlayer)
		if s.CurrentTurnPlayer == s.PlayerIDs[0] {
			s.TurnCount++
		}
		if s.MaxTurns > 0 && s.TurnCount > s.MaxTurns {
			s.TurnCount = s.MaxTurns
			s.EndBattle(BattleDraw, "", "turn limit reached")
			return s.Phase
		}
		s.Phase = PhaseDraw
		s.openTurn()
	case PhaseBattleEnd:
	}
	return s.Phase
}

func (s *BattleState) openTurn() {
	s.TurnHistory = append(s.TurnHistory, TurnRecord{
		Turn:        s.TurnCount,
		PlayerID:    s.CurrentTurnPlayer,
		FirstAction: len(s.ActionHistory),
		StartedAt:   s.now(),
	})
}

// EndBattle moves to BATTLE_END. It is irreversible; later calls return false.
func (s *BattleState) EndBattle(result BattleResult, winnerID, reason string) bool {
	if s.IsBattleOver() || result == BattleOngoing {
		return false
	}
	s.Result = result
	s.WinnerID = winnerID
	s.EndReason = reason
	s.Phase = PhaseBattleEnd
	s.EndedAt = s.now()
	return true
}

func (s *BattleState) IsBattleOver() bool {
	return s.Result != BattleOngoing
}

// OpponentID returns the other registered player, or "" for an unknown id.
func (s *BattleState) OpponentID(playerID string) string {
	switch playerID {
	case s.PlayerIDs[0]:
		return s.PlayerIDs[1]
	case s.PlayerIDs[1]:
		return s.PlayerIDs[0]
	default:
		return ""
	}
}

// IsPlayer reports whether id is one of the two registered players.
func (s *BattleState) IsPlayer(id string) bool {
	return id != "" && (id == s.PlayerIDs[0] || id == s.PlayerIDs[1])
}

// ResultFor maps a winning player id to a BattleResult.
func (s *BattleState) ResultFor(winnerID string) BattleResult {
	switch winnerID {
	case s.PlayerIDs[0]:
		return BattlePlayerWin
	case s.PlayerIDs[1]:
		return BattleOpponentWin
	default:
		return BattleDraw
	}
}

// RecordAction appends to the action log. Once the battle has been sealed
// the log is frozen and RecordAction returns false.
func (s *BattleState) RecordAction(a BattleAction) bool {
	if s.sealed {
		return false
	}
	a.Seq = len(s.ActionHistory) + 1
	s.ActionHistory = append(s.ActionHistory, a)
	if n := len(s.TurnHistory); n > 0 {
		s.TurnHistory[n-1].ActionCount++
	}
	return true
}

// Seal freezes a finished battle's history.
func (s *BattleState) Seal() {
	if s.IsBattleOver() {
		s.sealed = true
	}
}

func (s *BattleState) Sealed() bool {
	return s.sealed
}

// Duration is the wall-clock length of the battle so far.
func (s *BattleState) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return s.now().Sub(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}
