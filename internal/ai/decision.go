package ai

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/pokebattle/internal/game"
)

// HistorySize bounds the decision history kept by a DecisionMaker.
const HistorySize = 100

// HistoryEntry pairs a decision with the engine's answer to it.
type HistoryEntry struct {
	Decision game.Decision
	Response game.ActionResponse
	At       time.Time
}

// DecisionMaker is a computer seat. Draw and energy phases are handled
// mechanically; the action phase is delegated to the strategy selected by
// the difficulty.
type DecisionMaker struct {
	playerID    string
	difficulty  Difficulty
	personality Personality
	rng         *rand.Rand
	log         *logrus.Entry
	history     []HistoryEntry
}

// Option configures a DecisionMaker.
type Option func(*DecisionMaker)

// WithRand sets the random source used by the easy strategy and tie breaks.
func WithRand(r *rand.Rand) Option {
	return func(m *DecisionMaker) { m.rng = r }
}

// WithSeed derives the random source from a battle seed. seat tells the two
// computer seats of one battle apart. A zero seed keeps the clock default.
func WithSeed(seed int64, seat int) Option {
	return func(m *DecisionMaker) {
		if seed != 0 {
			m.rng = rand.New(rand.NewSource(seed*31 + int64(seat)))
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(e *logrus.Entry) Option {
	return func(m *DecisionMaker) { m.log = e }
}

// New creates a decision maker for playerID.
func New(playerID string, d Difficulty, p Personality, opts ...Option) *DecisionMaker {
	m := &DecisionMaker{
		playerID:    playerID,
		difficulty:  d,
		personality: p.Normalize(),
	}
	for _, o := range opts {
		o(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if m.log == nil {
		m.log = logrus.NewEntry(logrus.StandardLogger())
	}
	m.log = m.log.WithFields(logrus.Fields{"ai": playerID, "difficulty": d.String()})
	return m
}

func (m *DecisionMaker) PlayerID() string         { return m.playerID }
func (m *DecisionMaker) Difficulty() Difficulty   { return m.difficulty }
func (m *DecisionMaker) Personality() Personality { return m.personality }

// Decide picks the next request for the seat. It never returns an empty
// request: when nothing else applies the seat ends its turn.
func (m *DecisionMaker) Decide(_ context.Context, b *game.Battle) game.Decision {
	var d game.Decision
	s := b.State
	switch {
	case s.IsBattleOver() || s.CurrentTurnPlayer != m.playerID:
		d = m.endTurn("not my turn")
	case s.Phase == game.PhaseDraw:
		d = game.Decision{Request: game.NewActionRequest(game.ActionDrawCard, m.playerID), Reason: "draw phase"}
	case s.Phase == game.PhaseEnergy:
		d = game.Decision{Request: game.NewActionRequest(game.ActionGainEnergy, m.playerID), Reason: "energy phase"}
	case s.Phase == game.PhaseAction:
		d = m.decideAction(b)
		d.ThinkingTime = m.personality.ThinkingTime
	default:
		d = m.endTurn("nothing to do in " + s.Phase.String())
	}
	d.ID = uuid.New()
	d.Request.PlayerID = m.playerID
	return d
}

func (m *DecisionMaker) decideAction(b *game.Battle) game.Decision {
	switch m.difficulty {
	case Easy:
		return m.decideEasy(b)
	case Medium:
		return m.decideMedium(b)
	case Hard:
		return m.decideHard(b)
	default:
		m.log.Warnf("unknown difficulty %d, ending turn", int(m.difficulty))
		return m.endTurn("unknown difficulty")
	}
}

func (m *DecisionMaker) endTurn(reason string) game.Decision {
	return game.Decision{Request: game.NewActionRequest(game.ActionEndTurn, m.playerID), Reason: reason}
}

// Record appends the decision and its response to the bounded history.
func (m *DecisionMaker) Record(d game.Decision, resp game.ActionResponse) {
	if !resp.Success() {
		m.log.WithFields(logrus.Fields{
			"action": d.Request.ActionType,
			"result": resp.Result.String(),
		}).Debug(resp.Message)
	}
	m.history = append(m.history, HistoryEntry{Decision: d, Response: resp, At: time.Now()})
	if over := len(m.history) - HistorySize; over > 0 {
		m.history = append(m.history[:0], m.history[over:]...)
	}
}

// History returns a copy of the recorded decisions, oldest first.
func (m *DecisionMaker) History() []HistoryEntry {
	out := make([]HistoryEntry, len(m.history))
	copy(out, m.history)
	return out
}
