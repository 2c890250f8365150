package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// EventLogger is the interface for logging battle events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// Tail returns up to n of the most recent events, oldest first.
func (l *MemoryLogger) Tail(n int) []GameEvent {
	if n <= 0 {
		return nil
	}
	if len(l.events) <= n {
		return l.events
	}
	return l.events[len(l.events)-n:]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- LogrusLogger: forwards events as structured log entries ---

// LogrusLogger records events in memory and writes each one to a logrus
// entry at Info level (Debug for phase changes).
type LogrusLogger struct {
	MemoryLogger
	entry *logrus.Entry
}

func NewLogrusLogger(entry *logrus.Entry) *LogrusLogger {
	return &LogrusLogger{entry: entry}
}

func (l *LogrusLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	stored := l.LastEvent()
	fields := logrus.Fields{
		"seq":   stored.Seq,
		"turn":  stored.Turn,
		"phase": stored.Phase,
		"event": stored.Type.String(),
	}
	if stored.Player != "" {
		fields["player"] = stored.Player
	}
	if stored.Card != "" {
		fields["card"] = stored.Card
	}
	e := l.entry.WithFields(fields)
	if stored.Type == EventPhaseChange {
		e.Debug(stored.Details)
		return
	}
	e.Info(stored.Details)
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	// Pad phase to 14 chars for alignment
	for len(phase) < 14 {
		phase += " "
	}

	return fmt.Sprintf("T%-2d %s| %s", e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewPhaseChangeEvent(turn int, phase string, player string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewTurnEvent(turn int, player string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Draw Phase",
		Player:  player,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, player),
	}
}

func NewDrawEvent(turn int, phase string, player string, cardNames []string) GameEvent {
	details := fmt.Sprintf("%s draws %s", player, strings.Join(cardNames, ", "))
	if len(cardNames) == 0 {
		details = fmt.Sprintf("%s cannot draw (deck empty or hand full)", player)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDraw,
		Details: details,
	}
}

func NewMulliganEvent(player string, attempt int) GameEvent {
	return GameEvent{
		Phase:   "Setup",
		Player:  player,
		Type:    EventMulligan,
		Details: fmt.Sprintf("%s has no Pokémon in hand: mulligan #%d", player, attempt),
	}
}

func NewEnergyEvent(turn int, phase string, player string, gained, total int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventEnergy,
		Details: fmt.Sprintf("%s gains %d energy (now %d)", player, gained, total),
	}
}

func NewPlayPokemonEvent(turn int, phase string, player string, cardName string, slot string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPlayPokemon,
		Card:    cardName,
		Details: fmt.Sprintf("%s plays %s to the %s", player, cardName, slot),
	}
}

func NewSetActiveEvent(turn int, phase string, player string, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSetActive,
		Card:    cardName,
		Details: fmt.Sprintf("%s's active Pokémon is now %s", player, cardName),
	}
}

func NewEvolveEvent(turn int, phase string, player string, from, to string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventEvolve,
		Card:    to,
		Details: fmt.Sprintf("%s evolves %s into %s", player, from, to),
	}
}

func NewAttackEvent(turn int, player string, attacker, attackName, defender string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Action Phase",
		Player:  player,
		Type:    EventAttack,
		Card:    attacker,
		Details: fmt.Sprintf("%s's %s uses %s on %s", player, attacker, attackName, defender),
	}
}

func NewDamageEvent(turn int, phase string, player string, cardName string, amount, hp, maxHP int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDamage,
		Card:    cardName,
		Details: fmt.Sprintf("%s takes %d damage (%s), HP %d/%d", cardName, amount, reason, hp, maxHP),
	}
}

func NewHealEvent(turn int, phase string, player string, cardName string, amount, hp, maxHP int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventHeal,
		Card:    cardName,
		Details: fmt.Sprintf("%s heals %d, HP %d/%d", cardName, amount, hp, maxHP),
	}
}

func NewStatusAppliedEvent(turn int, phase string, player string, cardName string, status string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventStatusApplied,
		Card:    cardName,
		Details: fmt.Sprintf("%s is now %s", cardName, status),
	}
}

func NewStatusTickEvent(turn int, phase string, player string, cardName string, message string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventStatusTick,
		Card:    cardName,
		Details: message,
	}
}

func NewStatusExpiredEvent(turn int, phase string, player string, cardName string, status string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventStatusExpired,
		Card:    cardName,
		Details: fmt.Sprintf("%s is no longer %s", cardName, status),
	}
}

func NewKnockoutEvent(turn int, phase string, owner string, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  owner,
		Type:    EventKnockout,
		Card:    cardName,
		Details: fmt.Sprintf("%s's %s is knocked out", owner, cardName),
	}
}

func NewPrizeTakenEvent(turn int, phase string, player string, taken int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPrizeTaken,
		Details: fmt.Sprintf("%s takes a prize card (%d taken)", player, taken),
	}
}

func NewRetreatEvent(turn int, phase string, player string, from, to string, cost int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventRetreat,
		Card:    from,
		Details: fmt.Sprintf("%s retreats %s for %s (cost %d)", player, from, to, cost),
	}
}

func NewEndTurnEvent(turn int, player string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "End Turn",
		Player:  player,
		Type:    EventEndTurn,
		Details: fmt.Sprintf("%s ends their turn", player),
	}
}

func NewSurrenderEvent(turn int, phase string, player string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSurrender,
		Details: fmt.Sprintf("%s surrenders", player),
	}
}

func NewWinEvent(turn int, phase string, winner string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  winner,
		Type:    EventWin,
		Details: fmt.Sprintf("%s wins! (%s)", winner, reason),
	}
}

func NewTieEvent(turn int, phase string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventDraw_Tie,
		Details: fmt.Sprintf("Battle ends in a draw (%s)", reason),
	}
}

func NewShuffleEvent(turn int, phase string, player string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventShuffle,
		Details: fmt.Sprintf("%s shuffled their deck", player),
	}
}

func NewActionRejectedEvent(turn int, phase string, player string, action, result, message string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventActionRejected,
		Details: fmt.Sprintf("%s: %s rejected (%s: %s)", player, action, result, message),
	}
}
