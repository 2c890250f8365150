package game

import "strings"

// --- Enums ---

type Phase int

const (
	PhaseSetup Phase = iota
	PhaseDraw
	PhaseEnergy
	PhaseAction
	PhaseEndTurn
	PhaseBattleEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "Setup"
	case PhaseDraw:
		return "Draw Phase"
	case PhaseEnergy:
		return "Energy Phase"
	case PhaseAction:
		return "Action Phase"
	case PhaseEndTurn:
		return "End Turn"
	case PhaseBattleEnd:
		return "Battle End"
	default:
		return "Unknown"
	}
}

// BattleResult is the outcome of a battle from the first registered
// player's point of view.
type BattleResult int

const (
	BattleOngoing BattleResult = iota
	BattlePlayerWin
	BattleOpponentWin
	BattleDraw
)

func (r BattleResult) String() string {
	switch r {
	case BattleOngoing:
		return "ONGOING"
	case BattlePlayerWin:
		return "PLAYER_WIN"
	case BattleOpponentWin:
		return "OPPONENT_WIN"
	case BattleDraw:
		return "DRAW"
	default:
		return "UNKNOWN"
	}
}

type ZoneType int

const (
	ZoneDeck ZoneType = iota
	ZoneHand
	ZoneField
	ZoneDiscard
	ZonePrize
)

func (z ZoneType) String() string {
	switch z {
	case ZoneDeck:
		return "deck"
	case ZoneHand:
		return "hand"
	case ZoneField:
		return "field"
	case ZoneDiscard:
		return "discard"
	case ZonePrize:
		return "prize"
	default:
		return "unknown"
	}
}

type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityHolo     Rarity = "rare_holo"
)

// Tier groups rarities for stratified deck sampling: 0 common, 1 uncommon, 2 rare and above.
func (r Rarity) Tier() int {
	switch Rarity(strings.ToLower(string(r))) {
	case RarityCommon, "":
		return 0
	case RarityUncommon:
		return 1
	default:
		return 2
	}
}

type StatusType int

const (
	StatusPoison StatusType = iota
	StatusBurn
	StatusSleep
	StatusParalyze
	StatusConfuse
)

func (s StatusType) String() string {
	switch s {
	case StatusPoison:
		return "poisoned"
	case StatusBurn:
		return "burned"
	case StatusSleep:
		return "asleep"
	case StatusParalyze:
		return "paralyzed"
	case StatusConfuse:
		return "confused"
	default:
		return "unknown"
	}
}

// statusKeywords is scanned in order; the first keyword found in an
// attack's text decides the status it inflicts.
var statusKeywords = []struct {
	keyword string
	status  StatusType
}{
	{"poison", StatusPoison},
	{"burn", StatusBurn},
	{"sleep", StatusSleep},
	{"paralyz", StatusParalyze},
	{"paralys", StatusParalyze},
	{"confus", StatusConfuse},
}

// ParseStatusKeyword finds a status keyword in free card text.
func ParseStatusKeyword(text string) (StatusType, bool) {
	lower := strings.ToLower(text)
	for _, kw := range statusKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.status, true
		}
	}
	return 0, false
}

// --- Action types ---

// ActionType is the closed set of commands a player can submit.
type ActionType int

const (
	ActionDrawCard ActionType = iota
	ActionGainEnergy
	ActionPlayPokemon
	ActionAttack
	ActionRetreat
	ActionEndTurn
	ActionSurrender
)

// AllActionTypes lists every action type in declaration order.
var AllActionTypes = []ActionType{
	ActionDrawCard,
	ActionGainEnergy,
	ActionPlayPokemon,
	ActionAttack,
	ActionRetreat,
	ActionEndTurn,
	ActionSurrender,
}

func (a ActionType) String() string {
	switch a {
	case ActionDrawCard:
		return "draw_card"
	case ActionGainEnergy:
		return "gain_energy"
	case ActionPlayPokemon:
		return "play_pokemon"
	case ActionAttack:
		return "attack"
	case ActionRetreat:
		return "retreat"
	case ActionEndTurn:
		return "end_turn"
	case ActionSurrender:
		return "surrender"
	default:
		return "unknown"
	}
}

// ParseActionType maps the wire name of an action to its type.
func ParseActionType(s string) (ActionType, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, a := range AllActionTypes {
		if a.String() == name {
			return a, true
		}
	}
	return 0, false
}

// ActionResult classifies the reply to an ActionRequest.
type ActionResult int

const (
	ResultSuccess ActionResult = iota
	ResultFailed
	ResultInvalid
	ResultNotAllowed
	ResultInsufficientResources
)

func (r ActionResult) String() string {
	switch r {
	case ResultSuccess:
		return "SUCCESS"
	case ResultFailed:
		return "FAILED"
	case ResultInvalid:
		return "INVALID"
	case ResultNotAllowed:
		return "NOT_ALLOWED"
	case ResultInsufficientResources:
		return "INSUFFICIENT_RESOURCES"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the result by name in JSON payloads.
func (r ActionResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
