package log

// EventType enumerates all observable battle events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewTurn
	EventDraw
	EventMulligan
	EventEnergy
	EventPlayPokemon
	EventSetActive
	EventEvolve
	EventAttack
	EventDamage
	EventHeal
	EventStatusApplied
	EventStatusTick
	EventStatusExpired
	EventKnockout
	EventPrizeTaken
	EventRetreat
	EventEndTurn
	EventSurrender
	EventWin
	EventDraw_Tie
	EventShuffle
	EventActionRejected
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventNewTurn:
		return "NewTurn"
	case EventDraw:
		return "Draw"
	case EventMulligan:
		return "Mulligan"
	case EventEnergy:
		return "Energy"
	case EventPlayPokemon:
		return "PlayPokemon"
	case EventSetActive:
		return "SetActive"
	case EventEvolve:
		return "Evolve"
	case EventAttack:
		return "Attack"
	case EventDamage:
		return "Damage"
	case EventHeal:
		return "Heal"
	case EventStatusApplied:
		return "StatusApplied"
	case EventStatusTick:
		return "StatusTick"
	case EventStatusExpired:
		return "StatusExpired"
	case EventKnockout:
		return "Knockout"
	case EventPrizeTaken:
		return "PrizeTaken"
	case EventRetreat:
		return "Retreat"
	case EventEndTurn:
		return "EndTurn"
	case EventSurrender:
		return "Surrender"
	case EventWin:
		return "Win"
	case EventDraw_Tie:
		return "Draw(tie)"
	case EventShuffle:
		return "Shuffle"
	case EventActionRejected:
		return "ActionRejected"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a battle.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based, 0 during setup)
	Phase   string    // current phase name (e.g. "Action Phase")
	Player  string    // acting player id
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
